package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arencloud/surveyboard/internal/logging"
)

func TestRecovererWritesEnvelope(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), logging.Nop())
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest("GET", "/api/surveys", nil))
	if rw.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rw.Code)
	}
	if got := strings.TrimSpace(rw.Body.String()); got != `{"error":"Something went wrong!"}` {
		t.Fatalf("body=%s", got)
	}
}

func TestRecovererPassesThrough(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), logging.Nop())
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest("GET", "/", nil))
	if rw.Code != http.StatusTeapot {
		t.Fatalf("status=%d", rw.Code)
	}
}
