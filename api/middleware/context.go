package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/truckbites/truckbites-backend/pkg/enums"
)

type ctxKey string

const (
	ctxUserID    ctxKey = "user_id"
	ctxRole      ctxKey = "role"
	ctxRequestID ctxKey = "request_id"
)

// WithUserID stores the authenticated user id on the context.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

// UserIDFrom returns the authenticated user id, if any.
func UserIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxUserID).(uuid.UUID)
	return id, ok
}

// WithRole stores the authenticated role on the context.
func WithRole(ctx context.Context, role enums.UserRole) context.Context {
	return context.WithValue(ctx, ctxRole, role)
}

// RoleFrom returns the authenticated role, if any.
func RoleFrom(ctx context.Context) (enums.UserRole, bool) {
	role, ok := ctx.Value(ctxRole).(enums.UserRole)
	return role, ok
}

// WithRequestID stores the request id on the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestID, requestID)
}

// RequestIDFrom returns the request id, if any.
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(ctxRequestID).(string); ok {
		return id
	}
	return ""
}
