// Package server exposes the engine's four operations over HTTP: bootstrap,
// state snapshot, turn submission and an SSE state stream. It is a thin
// transport wrapper; all session semantics live in the engine.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/TejasriPacharu/code-help/core"
	"github.com/TejasriPacharu/code-help/engine"
	"github.com/TejasriPacharu/code-help/logging"
)

// Options configures a Server.
type Options struct {
	Logger logging.Logger
}

// Server adapts the engine to HTTP.
type Server struct {
	engine *engine.Engine
	logger logging.Logger
}

// New creates a Server around the engine.
func New(e *engine.Engine, optFns ...func(o *Options)) *Server {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Server{engine: e, logger: opts.Logger}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/bootstrap", s.handleBootstrap)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/submit", s.handleSubmit)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("GET /api/state/stream", s.handleStateStream)
	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "code-help",
		"version": "1.0.0",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "code-help"})
}

func (s *Server) handleBootstrap(w http.ResponseWriter, _ *http.Request) {
	snap := s.engine.Bootstrap()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	snap, err := s.engine.Snapshot(sessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// submitRequest is the turn submission payload.
type submitRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// submitResponse carries the terminal snapshot plus the abort reason for
// turns that failed. The session stays usable either way, so both shapes are
// 200s.
type submitResponse struct {
	State core.Snapshot `json:"state"`
	Error string        `json:"error,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	snap, err := s.engine.SubmitTurn(r.Context(), req.SessionID, req.Text)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) || errors.Is(err, core.ErrSessionBusy) {
			s.writeError(w, err)
			return
		}
		// Turn-scoped failures: the trail ends in an abort marker and the
		// session accepts the next turn.
		writeJSON(w, http.StatusOK, submitResponse{State: snap, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{State: snap})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	snap, err := s.engine.Reset(sessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleStateStream delivers the initial full snapshot followed by deltas as
// server-sent events until the client disconnects.
func (s *Server) handleStateStream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	sub, err := s.engine.Subscribe(sessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer sub.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-sub.Snapshots():
			if !ok {
				return
			}
			data, err := json.Marshal(snap)
			if err != nil {
				s.logger.Error("server.stream.encode", "session_id", sessionID, "error", err.Error())
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrSessionBusy):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
