package exports_test

import (
	"testing"

	"github.com/arencloud/surveyboard/internal/exports"
	"github.com/arencloud/surveyboard/internal/models"
)

func TestParseState(t *testing.T) {
	for _, s := range []string{"requested", "inProgress", "complete", "failed"} {
		got, err := exports.ParseState(s)
		if err != nil || string(got) != s {
			t.Errorf("ParseState(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := exports.ParseState("done"); err == nil {
		t.Error("ParseState(\"done\") expected error")
	}
}

func TestCanAdvance(t *testing.T) {
	cases := []struct {
		from, to models.ExportState
		want     bool
	}{
		{models.ExportRequested, models.ExportInProgress, true},
		{models.ExportRequested, models.ExportComplete, true},
		{models.ExportRequested, models.ExportFailed, true},
		{models.ExportInProgress, models.ExportInProgress, true},
		{models.ExportInProgress, models.ExportComplete, true},
		{models.ExportInProgress, models.ExportFailed, true},
		{models.ExportInProgress, models.ExportRequested, false},
		{models.ExportComplete, models.ExportComplete, true},
		{models.ExportComplete, models.ExportInProgress, false},
		{models.ExportComplete, models.ExportFailed, false},
		{models.ExportFailed, models.ExportComplete, false},
	}
	for _, c := range cases {
		if got := exports.CanAdvance(c.from, c.to); got != c.want {
			t.Errorf("CanAdvance(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestStateFromVendor(t *testing.T) {
	cases := map[string]models.ExportState{
		"":           models.ExportRequested,
		"inProgress": models.ExportInProgress,
		"complete":   models.ExportComplete,
		"failed":     models.ExportFailed,
		"queued":     models.ExportInProgress,
	}
	for in, want := range cases {
		if got := exports.StateFromVendor(in); got != want {
			t.Errorf("StateFromVendor(%q) = %s, want %s", in, got, want)
		}
	}
	if !exports.IsTerminal(models.ExportFailed) || exports.IsTerminal(models.ExportInProgress) {
		t.Error("IsTerminal mismatch")
	}
}
