package http

import (
	"context"
	"log/slog"

	"github.com/TADI-I/TUT-Labs/internal/application"
	"github.com/TADI-I/TUT-Labs/internal/logging"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	tutorIDContextKey   contextKey = "tutor_id"
	shiftIDContextKey   contextKey = "shift_id"
	labNameContextKey   contextKey = "lab_name"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithTutorID injects the tutor identifier resolved from the request path.
func ContextWithTutorID(ctx context.Context, tutorID string) context.Context {
	return context.WithValue(ctx, tutorIDContextKey, tutorID)
}

// TutorIDFromContext extracts a tutor identifier previously associated with the context.
func TutorIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(tutorIDContextKey).(string)
	return id, ok
}

// ContextWithShiftID injects the shift identifier resolved from the request path.
func ContextWithShiftID(ctx context.Context, shiftID string) context.Context {
	return context.WithValue(ctx, shiftIDContextKey, shiftID)
}

// ShiftIDFromContext extracts a shift identifier previously associated with the context.
func ShiftIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(shiftIDContextKey).(string)
	return id, ok
}

// ContextWithLabName injects the lab name resolved from the request path.
func ContextWithLabName(ctx context.Context, labName string) context.Context {
	return context.WithValue(ctx, labNameContextKey, labName)
}

// LabNameFromContext extracts a lab name previously associated with the context.
func LabNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(labNameContextKey).(string)
	return name, ok
}

// ContextWithLogger stores the request-scoped logger for downstream handlers.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext retrieves the request-scoped logger when one is present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
