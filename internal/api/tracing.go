package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/arencloud/surveyboard/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Lightweight in-memory tracing
// Each request will have a Trace with Events. Stored in a ring buffer.

type TraceEvent struct {
	Time   time.Time      `json:"time"`
	Name   string         `json:"name"`
	Fields map[string]any `json:"fields,omitempty"`
}

type Trace struct {
	ID        string        `json:"id"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Status    int           `json:"status"`
	UserAgent string        `json:"userAgent,omitempty"`
	RemoteIP  string        `json:"remoteIp,omitempty"`
	ReqBytes  int64         `json:"reqBytes,omitempty"`
	RespBytes int64         `json:"respBytes,omitempty"`
	Started   time.Time     `json:"started"`
	Ended     time.Time     `json:"ended"`
	Duration  time.Duration `json:"duration"`
	Events    []TraceEvent  `json:"events"`
}

type traceStore struct {
	mu   sync.RWMutex
	buf  []*Trace
	next int
	size int
}

func newTraceStore(size int) *traceStore {
	return &traceStore{buf: make([]*Trace, size), size: size}
}

// add stores a finished trace; traces are not mutated afterwards.
func (s *traceStore) add(t *Trace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf[s.next] = t
	s.next = (s.next + 1) % s.size
}

func (s *traceStore) all(limit int) []*Trace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > s.size {
		limit = s.size
	}
	out := make([]*Trace, 0, limit)
	// walk ring newest-first
	idx := (s.next - 1 + s.size) % s.size
	for i := 0; i < s.size && len(out) < limit; i++ {
		if s.buf[idx] != nil {
			out = append(out, s.buf[idx])
		}
		idx = (idx - 1 + s.size) % s.size
	}
	return out
}

func (s *traceStore) get(id string) *Trace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.buf {
		if t != nil && t.ID == id {
			return t
		}
	}
	return nil
}

// Context helpers

type ctxKey int

const traceKey ctxKey = 1

func traceFrom(ctx context.Context) *Trace {
	if t, ok := ctx.Value(traceKey).(*Trace); ok {
		return t
	}
	return nil
}

func withTraceCtx(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, traceKey, t)
}

func newTraceID() string { return uuid.NewString() }

func addEvent(r *http.Request, name string, fields map[string]any) {
	if t := traceFrom(r.Context()); t != nil {
		t.Events = append(t.Events, TraceEvent{Time: time.Now(), Name: name, Fields: fields})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// respondError records an error event into the current trace and writes the error envelope.
func respondError(w http.ResponseWriter, r *http.Request, code int, msg, details string) {
	addEvent(r, "error", map[string]any{"code": code, "message": msg, "details": details})
	writeJSON(w, code, models.ErrorEnvelope{Error: msg, Details: details})
}

// HTTP Handlers for trace API

func (s *apiServer) traceRecent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.traces.all(queryLimit(r, 200)))
}

func (s *apiServer) traceGet(w http.ResponseWriter, r *http.Request) {
	t := s.traces.get(chi.URLParam(r, "id"))
	if t == nil {
		respondError(w, r, http.StatusNotFound, "trace not found", "")
		return
	}
	writeJSON(w, http.StatusOK, t)
}
