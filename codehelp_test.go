package codehelp

import (
	"context"
	"testing"

	"github.com/TejasriPacharu/code-help/copilot"
	"github.com/TejasriPacharu/code-help/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	ch, err := New()
	require.NoError(t, err)

	snap := ch.Bootstrap()
	assert.NotEmpty(t, snap.SessionID)
	assert.Equal(t, copilot.EntrySpecialist, snap.ActiveSpecialist)
	assert.Len(t, snap.Agents, 6)
	assert.Empty(t, snap.Events)
}

func TestSubmitTurn(t *testing.T) {
	inv := model.NewScriptedInvoker(model.Decision{Text: "Looks like an N+1 query."})
	ch, err := New(WithInvoker(inv))
	require.NoError(t, err)

	snap := ch.Bootstrap()
	after, err := ch.SubmitTurn(context.Background(), snap.SessionID, "my api is slow")
	require.NoError(t, err)

	require.Len(t, after.Events, 2)
	require.NotNil(t, after.Events[0].Message)
	require.NotNil(t, after.Events[1].Message)
	assert.Equal(t, "my api is slow", after.Events[0].Message.Text)
	assert.Equal(t, "Looks like an N+1 query.", after.Events[1].Message.Text)
}

func TestResetAndSubscribe(t *testing.T) {
	ch, err := New()
	require.NoError(t, err)

	snap := ch.Bootstrap()
	sub, err := ch.Subscribe(snap.SessionID)
	require.NoError(t, err)
	defer sub.Close()

	initial := <-sub.Snapshots()
	assert.Equal(t, snap.SessionID, initial.SessionID)

	fresh, err := ch.Reset(snap.SessionID)
	require.NoError(t, err)
	assert.Equal(t, snap.SessionID, fresh.SessionID)
	assert.Empty(t, fresh.Events)
}

func TestUnknownSession(t *testing.T) {
	ch, err := New()
	require.NoError(t, err)

	_, err = ch.SubmitTurn(context.Background(), "nope", "hello")
	assert.Error(t, err)
}
