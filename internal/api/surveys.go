package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/arencloud/surveyboard/internal/errs"
	"github.com/arencloud/surveyboard/internal/qualtrics"
	"github.com/go-chi/chi/v5"
)

const defaultExportFormat = "json"

// relay writes a vendor reply back unchanged.
func relay(w http.ResponseWriter, resp *qualtrics.Response) {
	ct := resp.ContentType
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(resp.Body)
}

// upstreamFailure maps every vendor error onto a 500 with the upstream text attached.
func (s *apiServer) upstreamFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error("upstream failure", "op", msg, "path", r.URL.Path, "error", err, "chain", errs.Chain(err))
	respondError(w, r, http.StatusInternalServerError, msg, err.Error())
}

func (s *apiServer) listSurveys(w http.ResponseWriter, r *http.Request) {
	addEvent(r, "surveys.list", nil)
	resp, err := s.vendor.ListSurveys(r.Context())
	if err != nil {
		s.upstreamFailure(w, r, "Failed to fetch surveys", err)
		return
	}
	relay(w, resp)
}

func (s *apiServer) getSurvey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "surveyId")
	addEvent(r, "surveys.get", map[string]any{"surveyId": id})
	resp, err := s.vendor.GetSurvey(r.Context(), id)
	if err != nil {
		s.upstreamFailure(w, r, "Failed to fetch survey details", err)
		return
	}
	relay(w, resp)
}

func (s *apiServer) listResponses(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "surveyId")
	q := qualtrics.ResponsesQuery{
		Limit:     r.URL.Query().Get("limit"),
		SkipToken: r.URL.Query().Get("skipToken"),
	}
	addEvent(r, "surveys.responses", map[string]any{"surveyId": id, "hasSkipToken": q.SkipToken != ""})
	resp, err := s.vendor.ListResponses(r.Context(), id, q)
	if err != nil {
		s.upstreamFailure(w, r, "Failed to fetch survey responses", err)
		return
	}
	relay(w, resp)
}

type exportRequest struct {
	Format string `json:"format"`
}

func (s *apiServer) startExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "surveyId")
	var in exportRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, http.StatusBadRequest, "Invalid export request", err.Error())
		return
	}
	format := strings.TrimSpace(in.Format)
	if format == "" {
		format = defaultExportFormat
	}
	addEvent(r, "export.start", map[string]any{"surveyId": id, "format": format})
	resp, err := s.vendor.StartExport(r.Context(), id, format)
	if err != nil {
		s.upstreamFailure(w, r, "Failed to create export", err)
		return
	}
	if s.jobs != nil {
		if p, err := qualtrics.ParseProgress(resp.Body); err != nil {
			s.logger.Error("export descriptor unreadable", "surveyId", id, "error", err)
		} else if job, err := s.jobs.Requested(r.Context(), id, format, p); err != nil {
			s.logger.Error("export tracking failed", "surveyId", id, "error", err)
		} else {
			w.Header().Set("X-Export-State", string(job.State))
		}
	}
	relay(w, resp)
}
