package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/arencloud/surveyboard/internal/models"
)

func TestRespondErrorAddsEvent(t *testing.T) {
	r := httptest.NewRequest("GET", "/x", nil)
	tc := &Trace{ID: "t1"}
	r = r.WithContext(withTraceCtx(r.Context(), tc))
	rw := httptest.NewRecorder()
	respondError(rw, r, 500, "Failed to fetch surveys", "upstream down")
	if rw.Code != 500 {
		t.Fatalf("expected 500, got %d", rw.Code)
	}
	var env models.ErrorEnvelope
	if err := json.Unmarshal(rw.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error != "Failed to fetch surveys" || env.Details != "upstream down" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if len(tc.Events) != 1 || tc.Events[0].Name != "error" {
		t.Fatalf("error event not recorded: %+v", tc.Events)
	}
}

func TestTraceStoreRingNewestFirst(t *testing.T) {
	s := newTraceStore(3)
	for _, id := range []string{"a", "b", "c", "d"} {
		s.add(&Trace{ID: id})
	}
	got := s.all(10)
	if len(got) != 3 || got[0].ID != "d" || got[2].ID != "b" {
		t.Fatalf("unexpected ring order %v", []string{got[0].ID, got[1].ID, got[2].ID})
	}
	if s.get("a") != nil {
		t.Fatal("evicted trace still found")
	}
	if s.get("c") == nil {
		t.Fatal("trace c missing")
	}
}
