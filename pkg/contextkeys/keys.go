// Package contextkeys provides centralized context key definitions.
//
// All context keys used across the application are defined here so that
// producers and consumers of request-scoped values share a single source
// of truth.
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// AuthKey contains *auth.Context
	// Set by: middleware.AuthMiddleware (pkg/middleware/auth.go)
	// Required by: all authenticated API endpoints
	AuthKey Key = "auth_context"

	// RequestIDKey contains the request ID string
	// Set by: httputil.RequestIDMiddleware
	// Used by: logger, request tracing
	RequestIDKey Key = "request_id"

	// UserIDKey contains the authenticated user ID string
	// Set by: middleware.AuthMiddleware after token verification
	// Used by: logger, ownership-scoped storage access
	UserIDKey Key = "user_id"

	// LoggerKey contains *observability.Logger
	// Set by: observability middleware
	LoggerKey Key = "logger"
)

// WithAuth adds the authentication context to the context
func WithAuth(ctx context.Context, authCtx interface{}) context.Context {
	return context.WithValue(ctx, AuthKey, authCtx)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithUserID adds the authenticated user ID to the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
