package api

import (
	"errors"
	"net/http"

	"github.com/arencloud/surveyboard/internal/exports"
	"github.com/arencloud/surveyboard/internal/models"
	"github.com/arencloud/surveyboard/internal/qualtrics"
	"github.com/go-chi/chi/v5"
)

// trackedJob returns the local record for a progress id, or nil when
// tracking is disabled or the id was never seen here.
func (s *apiServer) trackedJob(r *http.Request, progressID string) *models.ExportJob {
	if s.jobs == nil {
		return nil
	}
	job, err := s.jobs.Lookup(r.Context(), progressID)
	if err != nil {
		if !errors.Is(err, exports.ErrNotFound) {
			s.logger.Error("export lookup failed", "progressId", progressID, "error", err)
		}
		return nil
	}
	return job
}

func (s *apiServer) listExports(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		writeJSON(w, http.StatusOK, []models.ExportJob{})
		return
	}
	jobs, err := s.jobs.List(r.Context(), queryLimit(r, 100))
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "Failed to list exports", err.Error())
		return
	}
	if jobs == nil {
		jobs = []models.ExportJob{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *apiServer) exportProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "progressId")
	surveyID := ""
	job := s.trackedJob(r, id)
	if job != nil {
		surveyID = job.SurveyID
	}
	addEvent(r, "export.progress", map[string]any{"progressId": id, "tracked": job != nil})
	resp, err := s.vendor.ExportProgress(r.Context(), surveyID, id)
	if err != nil {
		s.upstreamFailure(w, r, "Failed to check export progress", err)
		return
	}
	if job != nil {
		if p, err := qualtrics.ParseProgress(resp.Body); err != nil {
			s.logger.Error("export progress unreadable", "progressId", id, "error", err)
		} else if updated, err := s.jobs.Observe(r.Context(), id, p); err != nil {
			s.logger.Error("export tracking failed", "progressId", id, "error", err)
		} else {
			job = updated
		}
		w.Header().Set("X-Export-State", string(job.State))
	}
	relay(w, resp)
}

func (s *apiServer) exportFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "progressId")
	surveyID, fileID := "", id
	if job := s.trackedJob(r, id); job != nil {
		surveyID = job.SurveyID
		if job.FileID != "" {
			fileID = job.FileID
		}
	}
	addEvent(r, "export.file", map[string]any{"progressId": id, "fileId": fileID})
	resp, err := s.vendor.ExportFile(r.Context(), surveyID, fileID)
	if err != nil {
		s.upstreamFailure(w, r, "Failed to download export file", err)
		return
	}
	relay(w, resp)
}
