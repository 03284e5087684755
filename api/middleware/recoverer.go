package middleware

import (
	"fmt"
	"net/http"

	"github.com/truckbites/truckbites-backend/api/responses"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
	"github.com/truckbites/truckbites-backend/pkg/logger"
)

// Recoverer turns panics into 500 responses instead of dropped connections.
func Recoverer(logg *logger.Logger, writer *responses.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("panic: %v", rec))
					logg.Error(r.Context(), "panic recovered", err)
					writer.Error(r.Context(), w, err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
