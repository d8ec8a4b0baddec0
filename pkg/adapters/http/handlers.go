package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/beatbox/internal/presentation/graph"
	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/aretw0/beatbox/pkg/grammar"
	"github.com/aretw0/beatbox/pkg/ports"
	"github.com/aretw0/beatbox/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// errLimitReached stops an expansion once the response is full. Count and Render
// report it as 422 since their output cannot be truncated.
var errLimitReached = errors.New("terminal limit reached")

// errBadRequest marks request bodies that failed decoding or schema validation.
var errBadRequest = errors.New("bad request")

type rulesResponse struct {
	Policy      string            `json:"policy"`
	Fingerprint string            `json:"fingerprint"`
	Lenient     bool              `json:"lenient"`
	Rules       map[string]string `json:"rules"`
}

type expandRequest struct {
	Start string `json:"start"`
	Limit int    `json:"limit"`
}

type expandResponse struct {
	Start     string `json:"start"`
	Terminals string `json:"terminals"`
	Count     int    `json:"count"`
	Truncated bool   `json:"truncated"`
}

type countRequest struct {
	Starts []string `json:"starts"`
}

type countResponse struct {
	Counts map[string]int `json:"counts"`
}

type startRequest struct {
	Start string `json:"start"`
}

type sessionRequest struct {
	ID    string `json:"id"`
	Start string `json:"start"`
}

type nextRequest struct {
	Count int `json:"count"`
}

type checkpointView struct {
	*domain.Checkpoint
	Done bool `json:"done"`
}

type nextResponse struct {
	Terminals  string         `json:"terminals"`
	Checkpoint checkpointView `json:"checkpoint"`
}

func viewOf(cp *domain.Checkpoint) checkpointView {
	return checkpointView{Checkpoint: cp, Done: cp.Done()}
}

// GetHealth answers liveness probes.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo reports the build and API versions.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"version":     s.version,
		"api_version": s.spec.Info.Version,
		"fingerprint": s.engine.Table().Fingerprint(),
	})
}

// GetRules returns the loaded rule table.
func (s *Server) GetRules(w http.ResponseWriter, r *http.Request) {
	t := s.engine.Table()
	s.writeJSON(w, http.StatusOK, rulesResponse{
		Policy:      t.Policy().String(),
		Fingerprint: t.Fingerprint(),
		Lenient:     t.Lenient(),
		Rules:       t.Rules(),
	})
}

// GetGraph returns a Mermaid flowchart of the table, highlighting ?start when given.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	t := s.engine.Table()
	var overlay *graph.Overlay
	if start := r.URL.Query().Get("start"); start != "" {
		if err := t.ValidateSequence(start); err != nil {
			s.writeError(w, err)
			return
		}
		overlay = &graph.Overlay{Root: start, Report: grammar.Reachable(t, start)}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, graph.GenerateMermaid(t, overlay)); err != nil {
		s.logger.Error("GetGraph write failed", "error", err)
	}
}

// Expand returns the terminal stream of a start sequence, cut at the limit.
func (s *Server) Expand(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if err := s.decode(r, "ExpandRequest", &req); err != nil {
		s.logger.Warn("Expand: invalid request body", "error", err)
		s.writeError(w, err)
		return
	}
	limit := s.maxTerminals
	if req.Limit > 0 && req.Limit < limit {
		limit = req.Limit
	}

	var sb strings.Builder
	sink := ports.SinkFunc(func(sym domain.Symbol) error {
		if sb.Len() >= limit {
			return errLimitReached
		}
		return sb.WriteByte(byte(sym))
	})
	_, err := s.engine.Run(r.Context(), req.Start, sink)
	truncated := errors.Is(err, errLimitReached)
	if err != nil && !truncated {
		s.logger.Error("Expand failed", "start", req.Start, "error", err)
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, expandResponse{
		Start:     req.Start,
		Terminals: sb.String(),
		Count:     sb.Len(),
		Truncated: truncated,
	})
}

// Count returns the terminal count of each start sequence.
func (s *Server) Count(w http.ResponseWriter, r *http.Request) {
	var req countRequest
	if err := s.decode(r, "CountRequest", &req); err != nil {
		s.logger.Warn("Count: invalid request body", "error", err)
		s.writeError(w, err)
		return
	}
	counts := make(map[string]int, len(req.Starts))
	for _, start := range req.Starts {
		n := 0
		sink := s.limited(ports.SinkFunc(func(domain.Symbol) error {
			n++
			return nil
		}))
		if _, err := s.engine.Run(r.Context(), start, sink); err != nil {
			s.logger.Warn("Count failed", "start", start, "error", err)
			s.writeError(w, fmt.Errorf("%q: %w", start, err))
			return
		}
		counts[start] = n
	}
	s.writeJSON(w, http.StatusOK, countResponse{Counts: counts})
}

// Render streams the WAV rendering of a start sequence.
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := s.decode(r, "StartRequest", &req); err != nil {
		s.logger.Warn("Render: invalid request body", "error", err)
		s.writeError(w, err)
		return
	}

	// The encoder seeks back to patch the header, so buffer through a temp file.
	f, err := os.CreateTemp("", "beatbox-*.wav")
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	sink := s.engine.NewSink()
	if _, err := s.engine.Run(r.Context(), req.Start, s.limited(sink)); err != nil {
		s.logger.Warn("Render failed", "start", req.Start, "error", err)
		s.writeError(w, err)
		return
	}
	if err := sink.Encode(f); err != nil {
		s.logger.Error("Render: encode failed", "start", req.Start, "error", err)
		s.writeError(w, err)
		return
	}
	n := sink.Len()
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Debug("Render: wav ready", "start", req.Start, "samples", n)

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("X-Beatbox-Samples", strconv.Itoa(n))
	http.ServeContent(w, r, "beatbox.wav", time.Time{}, f)
}

// ListSessions returns the stored session IDs.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.logger.Error("ListSessions failed", "error", err)
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// CreateSession starts a resumable traversal.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := s.decode(r, "SessionRequest", &req); err != nil {
		s.logger.Warn("CreateSession: invalid request body", "error", err)
		s.writeError(w, err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	cp, err := s.sessions.Start(r.Context(), req.ID, req.Start)
	if err != nil {
		s.logger.Error("CreateSession failed", "session_id", req.ID, "error", err)
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, viewOf(cp))
}

// GetSession returns the current position of a session.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cp, err := s.sessions.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, viewOf(cp))
}

// DeleteSession removes a session. Deleting an unknown session is not an error.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.logger.Error("DeleteSession failed", "session_id", id, "error", err)
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NextTerminals pulls the next terminals from a session.
func (s *Server) NextTerminals(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req nextRequest
	if err := s.decode(r, "NextRequest", &req); err != nil {
		s.logger.Warn("NextTerminals: invalid request body", "error", err)
		s.writeError(w, err)
		return
	}
	step, err := s.sessions.Next(r.Context(), id, min(req.Count, s.maxTerminals))
	if err != nil {
		s.logger.Warn("NextTerminals failed", "session_id", id, "error", err)
		s.writeError(w, err)
		return
	}
	s.logger.Debug("NextTerminals", "session_id", id, "emitted", len(step.Terminals), "done", step.Checkpoint.Done())
	s.writeJSON(w, http.StatusOK, nextResponse{
		Terminals:  step.Terminals,
		Checkpoint: viewOf(step.Checkpoint),
	})
}

// limited forwards at most maxTerminals terminals to next and fails on the one after.
func (s *Server) limited(next ports.SampleSink) ports.SampleSink {
	n := 0
	return ports.SinkFunc(func(sym domain.Symbol) error {
		if n >= s.maxTerminals {
			return fmt.Errorf("%w: more than %d terminals", errLimitReached, s.maxTerminals)
		}
		n++
		return next.Write(sym)
	})
}

// decode reads a JSON body, validates it against the named schema and fills dst.
func (s *Server) decode(r *http.Request, schema string, dst any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := s.validator.validate(schema, raw); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// statusOf maps domain errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrMalformedStartSequence),
		errors.Is(err, domain.ErrUnknownSymbol):
		return http.StatusBadRequest
	case session.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCheckpointMismatch):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStepBudgetExceeded),
		errors.Is(err, errLimitReached):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusOf(err), map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
