package middleware

import "context"

type contextKey string

const (
	ctxActorID contextKey = "actor_id"
	ctxRole    contextKey = "actor_role"
)

// ActorIDFromContext returns the authenticated actor ID seeded by Auth.
func ActorIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxActorID).(string); ok {
		return v
	}
	return ""
}

// RoleFromContext returns the authenticated actor role seeded by Auth.
func RoleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithActorID injects an actor ID, used by tests and internal calls.
func WithActorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxActorID, id)
}

// WithRole injects an actor role, used by tests and internal calls.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxRole, role)
}
