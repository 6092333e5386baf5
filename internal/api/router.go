package api

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/arencloud/surveyboard/internal/config"
	"github.com/arencloud/surveyboard/internal/exports"
	"github.com/arencloud/surveyboard/internal/logging"
	"github.com/arencloud/surveyboard/internal/middleware"
	"github.com/arencloud/surveyboard/internal/qualtrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Vendor is the subset of the survey platform client the gateway forwards to.
type Vendor interface {
	ListSurveys(ctx context.Context) (*qualtrics.Response, error)
	GetSurvey(ctx context.Context, surveyID string) (*qualtrics.Response, error)
	ListResponses(ctx context.Context, surveyID string, q qualtrics.ResponsesQuery) (*qualtrics.Response, error)
	StartExport(ctx context.Context, surveyID, format string) (*qualtrics.Response, error)
	ExportProgress(ctx context.Context, surveyID, progressID string) (*qualtrics.Response, error)
	ExportFile(ctx context.Context, surveyID, fileID string) (*qualtrics.Response, error)
}

type apiServer struct {
	logger  logging.Logger
	vendor  Vendor
	jobs    *exports.Tracker // nil disables export tracking
	traces  *traceStore
	metrics *counters
}

type statusRecorder struct {
	http.ResponseWriter
	code  int
	bytes int64
}

func (sr *statusRecorder) WriteHeader(statusCode int) {
	sr.code = statusCode
	sr.ResponseWriter.WriteHeader(statusCode)
}
func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += int64(n)
	return n, err
}

// Router builds the gateway handler. Every dependency is passed in; nothing
// is read from the process environment here.
func Router(cfg *config.Config, logger logging.Logger, vendor Vendor, jobs *exports.Tracker) http.Handler {
	s := &apiServer{logger: logger, vendor: vendor, jobs: jobs, traces: newTraceStore(1000), metrics: &counters{started: time.Now()}}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{AllowedOrigins: cfg.AllowedOrigins, AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"}, AllowedHeaders: []string{"*"}, ExposedHeaders: []string{"X-Trace-Id", "X-Export-State"}}))
	r.Use(s.traceRequests)
	r.Use(func(next http.Handler) http.Handler { return middleware.Recoverer(next, logger) })

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "Not found", r.URL.Path)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health)
		r.Get("/version", versionInfo)
		r.Route("/surveys", func(r chi.Router) {
			r.Get("/", s.listSurveys)
			r.Get("/{surveyId}", s.getSurvey)
			r.Get("/{surveyId}/responses", s.listResponses)
			r.Post("/{surveyId}/export", s.startExport)
		})
		r.Route("/exports", func(r chi.Router) {
			r.Get("/", s.listExports)
			r.Get("/{progressId}", s.exportProgress)
			r.Get("/{progressId}/file", s.exportFile)
		})
		r.Get("/repository/stats", repositoryStats)
		r.Route("/obs", func(r chi.Router) {
			r.Get("/metrics", s.metricsHandler)
			r.Get("/logs", logsRecent)
			r.Get("/logs/download", logsDownload)
			r.Get("/logs/level", logsGetLevel)
			r.Put("/logs/level", logsSetLevel)
		})
		r.Get("/trace/recent", s.traceRecent)
		r.Get("/trace/{id}", s.traceGet)
	})
	return r
}

// traceRequests records a trace per request, feeds the counters and emits the request log.
func (s *apiServer) traceRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddUint64(&s.metrics.requests, 1)
		t := &Trace{ID: newTraceID(), Method: r.Method, Path: r.URL.Path, Started: time.Now(), Events: []TraceEvent{}, UserAgent: r.UserAgent(), RemoteIP: r.RemoteAddr}
		if r.ContentLength > 0 {
			t.ReqBytes = r.ContentLength
		}
		w.Header().Set("X-Trace-Id", t.ID)
		r = r.WithContext(withTraceCtx(r.Context(), t))
		addEvent(r, "request.start", map[string]any{"method": r.Method, "path": r.URL.Path})
		rec := &statusRecorder{ResponseWriter: w, code: 200}
		next.ServeHTTP(rec, r)
		t.Status = rec.code
		t.Ended = time.Now()
		t.Duration = t.Ended.Sub(t.Started)
		t.RespBytes = rec.bytes
		addEvent(r, "request.end", map[string]any{"status": rec.code, "respBytes": rec.bytes})
		s.metrics.observe(t)
		s.traces.add(t)
		s.logger.Info("http_request",
			"requestId", chimw.GetReqID(r.Context()),
			"method", t.Method,
			"path", t.Path,
			"status", t.Status,
			"durationMs", float64(t.Duration)/1e6,
			"traceId", t.ID,
			"bytesIn", t.ReqBytes,
			"bytesOut", t.RespBytes,
		)
	})
}
