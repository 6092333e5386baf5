package qualtrics

import (
	"encoding/json"
	"fmt"
)

// Vendor-reported export statuses.
const (
	StatusInProgress = "inProgress"
	StatusComplete   = "complete"
	StatusFailed     = "failed"
)

// Progress is the result block of export start and progress replies.
type Progress struct {
	ProgressID      string  `json:"progressId"`
	Status          string  `json:"status"`
	PercentComplete float64 `json:"percentComplete"`
	FileID          string  `json:"fileId"`
}

func ParseProgress(body []byte) (Progress, error) {
	var env struct {
		Result Progress `json:"result"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return Progress{}, fmt.Errorf("decode export progress: %w", err)
	}
	return env.Result, nil
}
