package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/arencloud/surveyboard/internal/logging"
	"github.com/arencloud/surveyboard/internal/models"
)

// Recoverer turns a handler panic into the generic 500 error envelope.
func Recoverer(next http.Handler, logger logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic recovered", "error", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(models.ErrorEnvelope{Error: "Something went wrong!"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
