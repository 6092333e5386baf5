// Package exports tracks vendor export jobs by the vendor's progress id.
//
// State graph:
//
//	requested ──► inProgress ──► complete
//	    │              │
//	    └──────────────┴──────► failed
//
// complete and failed are terminal. Re-observing the current state is
// allowed so repeated polls are idempotent.
package exports

import (
	"fmt"

	"github.com/arencloud/surveyboard/internal/models"
	"github.com/arencloud/surveyboard/internal/qualtrics"
)

var validTransitions = map[models.ExportState][]models.ExportState{
	models.ExportRequested:  {models.ExportInProgress, models.ExportComplete, models.ExportFailed},
	models.ExportInProgress: {models.ExportComplete, models.ExportFailed},
}

// ParseState converts a raw string to an ExportState.
func ParseState(s string) (models.ExportState, error) {
	st := models.ExportState(s)
	switch st {
	case models.ExportRequested, models.ExportInProgress, models.ExportComplete, models.ExportFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown export state %q", s)
}

// CanAdvance reports whether a job in state from may be recorded as to.
func CanAdvance(from, to models.ExportState) bool {
	if from == to {
		return true
	}
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminal(s models.ExportState) bool {
	return s == models.ExportComplete || s == models.ExportFailed
}

// StateFromVendor maps a vendor status onto the local state set. An empty
// status means the vendor has not reported anything yet.
func StateFromVendor(status string) models.ExportState {
	switch status {
	case "":
		return models.ExportRequested
	case qualtrics.StatusComplete:
		return models.ExportComplete
	case qualtrics.StatusFailed:
		return models.ExportFailed
	default:
		return models.ExportInProgress
	}
}
