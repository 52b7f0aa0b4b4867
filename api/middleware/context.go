package middleware

import (
	"context"

	"github.com/angelmondragon/atacado-catalog/pkg/enums"
)

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxUsername  contextKey = "username"
	ctxRole      contextKey = "actor_role"
	ctxSessionID contextKey = "session_id"
	ctxRequestID contextKey = "request_id"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func UsernameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUsername).(string); ok {
		return v
	}
	return ""
}

// RoleFromContext returns the viewer role, GUEST when no session was resolved.
func RoleFromContext(ctx context.Context) enums.Role {
	if ctx == nil {
		return enums.RoleGuest
	}
	if v, ok := ctx.Value(ctxRole).(enums.Role); ok && v.IsValid() {
		return v
	}
	return enums.RoleGuest
}

// SessionIDFromContext returns the jti of the access token in use.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithViewer injects an authenticated viewer into the context.
func WithViewer(ctx context.Context, userID, username string, role enums.Role) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxUsername, username)
	return context.WithValue(ctx, ctxRole, role)
}
