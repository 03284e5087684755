package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/truckbites/truckbites-backend/pkg/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging attaches request-scoped fields to the logger and emits one line per
// completed request.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			if requestID := RequestIDFrom(ctx); requestID != "" {
				ctx = logg.WithRequestID(ctx, requestID)
			}
			if userID, ok := UserIDFrom(ctx); ok {
				ctx = logg.WithUserID(ctx, userID.String())
			}
			ctx = logg.WithFields(ctx, map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r.WithContext(ctx))

			ctx = logg.WithFields(ctx, map[string]any{
				"status":      recorder.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			logg.Info(ctx, fmt.Sprintf("%s %s", r.Method, r.URL.Path))
		})
	}
}
