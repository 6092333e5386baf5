package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/arencloud/surveyboard/internal/logging"
	"github.com/arencloud/surveyboard/internal/version"
)

// counters aggregates request totals since the router was built.
type counters struct {
	started    time.Time
	requests   uint64
	status4xx  uint64
	status5xx  uint64
	bytesIn    uint64
	bytesOut   uint64
	durationNs uint64
}

func (c *counters) observe(t *Trace) {
	switch {
	case t.Status >= 500:
		atomic.AddUint64(&c.status5xx, 1)
	case t.Status >= 400:
		atomic.AddUint64(&c.status4xx, 1)
	}
	if t.ReqBytes > 0 {
		atomic.AddUint64(&c.bytesIn, uint64(t.ReqBytes))
	}
	if t.RespBytes > 0 {
		atomic.AddUint64(&c.bytesOut, uint64(t.RespBytes))
	}
	atomic.AddUint64(&c.durationNs, uint64(t.Duration))
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Research Visualization API is running",
	})
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"name": "surveyboard", "version": version.Version})
}

func (s *apiServer) metricsHandler(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := time.Since(s.metrics.started)
	tr := atomic.LoadUint64(&s.metrics.requests)
	dn := atomic.LoadUint64(&s.metrics.durationNs)
	avgMs := 0.0
	if tr > 0 {
		avgMs = float64(dn) / float64(tr) / 1e6
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"uptimeSec":     uptime.Seconds(),
		"uptimeHuman":   uptime.Truncate(time.Second).String(),
		"startedAt":     s.metrics.started.Format(time.RFC3339),
		"goroutines":    runtime.NumGoroutine(),
		"heapAlloc":     m.HeapAlloc,
		"heapSys":       m.HeapSys,
		"gcNum":         m.NumGC,
		"totalRequests": tr,
		"total4xx":      atomic.LoadUint64(&s.metrics.status4xx),
		"total5xx":      atomic.LoadUint64(&s.metrics.status5xx),
		"bytesIn":       atomic.LoadUint64(&s.metrics.bytesIn),
		"bytesOut":      atomic.LoadUint64(&s.metrics.bytesOut),
		"avgDurationMs": avgMs,
	})
}

func queryLimit(r *http.Request, def int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return def
}

// logsRecent returns the newest log entries first.
func logsRecent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, logging.Recent(queryLimit(r, 200)))
}

// logsDownload streams the same entries as NDJSON.
func logsDownload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-store")
	enc := json.NewEncoder(w)
	for _, e := range logging.Recent(queryLimit(r, 1000)) {
		_ = enc.Encode(e)
	}
}

func logsGetLevel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"level": logging.GetLevel()})
}

func logsSetLevel(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Level string `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid level request", err.Error())
		return
	}
	if in.Level == "" {
		respondError(w, r, http.StatusBadRequest, "level required", "")
		return
	}
	logging.SetLevel(in.Level)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "level": logging.GetLevel()})
}
