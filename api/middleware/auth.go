package middleware

import (
	"net/http"
	"strings"

	"github.com/truckbites/truckbites-backend/api/responses"
	"github.com/truckbites/truckbites-backend/pkg/auth"
	"github.com/truckbites/truckbites-backend/pkg/config"
	"github.com/truckbites/truckbites-backend/pkg/enums"
	pkgerrors "github.com/truckbites/truckbites-backend/pkg/errors"
)

// Auth validates the bearer token and stores user id + role on the context.
func Auth(cfg config.JWTConfig, writer *responses.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writer.Error(r.Context(), w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing authorization header"))
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writer.Error(r.Context(), w, pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed authorization header"))
				return
			}

			claims, err := auth.ParseAccessToken(cfg, strings.TrimSpace(parts[1]))
			if err != nil {
				writer.Error(r.Context(), w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			ctx = WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a subtree to one role. Must run after Auth.
func RequireRole(role enums.UserRole, writer *responses.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := RoleFrom(r.Context())
			if !ok {
				writer.Error(r.Context(), w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			if got != role {
				writer.Error(r.Context(), w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
