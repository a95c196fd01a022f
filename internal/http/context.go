package http

import (
	"context"
	"log/slog"

	"github.com/example/tablohm/internal/application"
	"github.com/example/tablohm/internal/logging"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	eventIDContextKey   contextKey = "event_id"
	groupIDContextKey   contextKey = "group_id"
	macContextKey       contextKey = "display_mac"
	imageContextKey     contextKey = "image_name"
	userIDContextKey    contextKey = "user_id"
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

// ContextWithEventID injects the event identifier resolved from the request path.
func ContextWithEventID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, eventIDContextKey, id)
}

// EventIDFromContext extracts an event identifier previously associated with the context.
func EventIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(eventIDContextKey).(string)
	return id, ok
}

// ContextWithGroupID injects the recurring series identifier resolved from the request path.
func ContextWithGroupID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, groupIDContextKey, id)
}

// GroupIDFromContext extracts a recurring series identifier from the context.
func GroupIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(groupIDContextKey).(string)
	return id, ok
}

// ContextWithDisplayMAC injects the display address resolved from the request path.
func ContextWithDisplayMAC(ctx context.Context, mac string) context.Context {
	return context.WithValue(ctx, macContextKey, mac)
}

// DisplayMACFromContext extracts a display address from the context.
func DisplayMACFromContext(ctx context.Context) (string, bool) {
	mac, ok := ctx.Value(macContextKey).(string)
	return mac, ok
}

// ContextWithImageName injects the image name resolved from the request path.
func ContextWithImageName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, imageContextKey, name)
}

// ImageNameFromContext extracts an image name from the context.
func ImageNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(imageContextKey).(string)
	return name, ok
}

// ContextWithUserID injects the user identifier resolved from the request path.
func ContextWithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDContextKey, id)
}

// UserIDFromContext extracts a user identifier from the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok
}

// ContextWithLogger attaches a request scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts a request scoped logger, or nil.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
