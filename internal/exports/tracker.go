package exports

import (
	"context"
	"errors"
	"fmt"

	"github.com/arencloud/surveyboard/internal/models"
	"github.com/arencloud/surveyboard/internal/qualtrics"
)

var ErrInvalidTransition = errors.New("invalid export state transition")

// Tracker records what the vendor reports about export jobs. It never talks
// to the vendor itself.
type Tracker struct {
	store Store
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// Requested records a freshly started export. The vendor descriptor may
// already carry a status, in which case the job starts there.
func (t *Tracker) Requested(ctx context.Context, surveyID, format string, p qualtrics.Progress) (*models.ExportJob, error) {
	if p.ProgressID == "" {
		return nil, errors.New("vendor descriptor has no progressId")
	}
	job := &models.ExportJob{
		ProgressID:      p.ProgressID,
		SurveyID:        surveyID,
		Format:          format,
		State:           StateFromVendor(p.Status),
		PercentComplete: p.PercentComplete,
		FileID:          p.FileID,
	}
	if err := t.store.Save(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Observe applies a progress reply to a tracked job. Unknown ids return
// ErrNotFound; replies that would leave a terminal state return
// ErrInvalidTransition and leave the job untouched.
func (t *Tracker) Observe(ctx context.Context, progressID string, p qualtrics.Progress) (*models.ExportJob, error) {
	job, err := t.store.Get(ctx, progressID)
	if err != nil {
		return nil, err
	}
	next := StateFromVendor(p.Status)
	if p.Status == "" {
		next = job.State
	}
	if !CanAdvance(job.State, next) {
		if IsTerminal(job.State) {
			return job, fmt.Errorf("%w: job already %s, vendor reported %s", ErrInvalidTransition, job.State, next)
		}
		return job, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.State, next)
	}
	job.State = next
	job.PercentComplete = p.PercentComplete
	if p.FileID != "" {
		job.FileID = p.FileID
	}
	if err := t.store.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (t *Tracker) Lookup(ctx context.Context, progressID string) (*models.ExportJob, error) {
	return t.store.Get(ctx, progressID)
}

func (t *Tracker) List(ctx context.Context, limit int) ([]models.ExportJob, error) {
	return t.store.List(ctx, limit)
}
