package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/TejasriPacharu/code-help/agent"
	"github.com/TejasriPacharu/code-help/core"
	"github.com/TejasriPacharu/code-help/engine"
	"github.com/TejasriPacharu/code-help/guardrail"
	"github.com/TejasriPacharu/code-help/model"
	"github.com/TejasriPacharu/code-help/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, decisions ...model.Decision) *Server {
	t.Helper()

	specialists := []*agent.Specialist{{Name: "Solo"}}
	reg, err := agent.NewRegistry(specialists, agent.KnownNames{})
	require.NoError(t, err)

	e := engine.New(reg, tool.NewRegistry(), guardrail.NewPipeline(), model.NewScriptedInvoker(decisions...))
	return New(e)
}

func TestBootstrapAndState(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/bootstrap")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap core.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.NotEmpty(t, snap.SessionID)
	assert.Equal(t, "Solo", snap.ActiveSpecialist)

	stateResp, err := http.Get(srv.URL + "/api/state?session_id=" + snap.SessionID)
	require.NoError(t, err)
	defer stateResp.Body.Close()
	assert.Equal(t, http.StatusOK, stateResp.StatusCode)
}

func TestStateUnknownSession(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/state?session_id=missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitTurn(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, model.Decision{Text: "reply"}).Handler())
	defer srv.Close()

	snap := bootstrap(t, srv.URL)

	body, _ := json.Marshal(map[string]string{"session_id": snap.SessionID, "text": "hello"})
	resp, err := http.Post(srv.URL+"/api/submit", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out submitResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Empty(t, out.Error)
	require.Len(t, out.State.Events, 2)
	assert.Equal(t, "reply", out.State.Events[1].Message.Text)
}

func TestSubmitInvalidBody(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/submit", "application/json", strings.NewReader("{broken"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResetClearsSession(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, model.Decision{Text: "reply"}).Handler())
	defer srv.Close()

	snap := bootstrap(t, srv.URL)
	body, _ := json.Marshal(map[string]string{"session_id": snap.SessionID, "text": "hello"})
	resp, err := http.Post(srv.URL+"/api/submit", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()

	resetResp, err := http.Post(srv.URL+"/api/reset?session_id="+snap.SessionID, "application/json", nil)
	require.NoError(t, err)
	defer resetResp.Body.Close()
	require.Equal(t, http.StatusOK, resetResp.StatusCode)

	var fresh core.Snapshot
	require.NoError(t, json.NewDecoder(resetResp.Body).Decode(&fresh))
	assert.Equal(t, snap.SessionID, fresh.SessionID)
	assert.Empty(t, fresh.Events)
}

func TestStateStreamDeliversSnapshotAndDeltas(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, model.Decision{Text: "streamed"}).Handler())
	defer srv.Close()

	snap := bootstrap(t, srv.URL)

	streamResp, err := http.Get(srv.URL + "/api/state/stream?session_id=" + snap.SessionID)
	require.NoError(t, err)
	defer streamResp.Body.Close()
	require.Equal(t, http.StatusOK, streamResp.StatusCode)
	assert.Equal(t, "text/event-stream", streamResp.Header.Get("Content-Type"))

	reader := bufio.NewReader(streamResp.Body)
	initial := readSSE(t, reader)
	assert.Equal(t, snap.SessionID, initial.SessionID)

	body, _ := json.Marshal(map[string]string{"session_id": snap.SessionID, "text": "hello"})
	submitResp, err := http.Post(srv.URL+"/api/submit", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	submitResp.Body.Close()

	var events []core.Event
	deadline := time.Now().Add(2 * time.Second)
	for len(events) < 2 && time.Now().Before(deadline) {
		delta := readSSE(t, reader)
		events = append(events, delta.DeltaEvents...)
	}
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].Seq)
	assert.Equal(t, int64(2), events[1].Seq)
}

func bootstrap(t *testing.T, baseURL string) core.Snapshot {
	t.Helper()
	resp, err := http.Get(baseURL + "/api/bootstrap")
	require.NoError(t, err)
	defer resp.Body.Close()
	var snap core.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	return snap
}

func readSSE(t *testing.T, reader *bufio.Reader) core.Snapshot {
	t.Helper()
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var snap core.Snapshot
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &snap))
		return snap
	}
}
