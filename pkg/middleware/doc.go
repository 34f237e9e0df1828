// Package middleware provides HTTP middleware for bearer token authentication.
//
// # Overview
//
// AuthMiddleware guards the authenticated API routes. It extracts the
// Authorization Bearer token, verifies its signature and expiry, resolves
// the token subject against the user store, and injects the resolved user
// into the request context. Every failure mode returns the same 401
// response, so a valid-but-foreign token leaks nothing.
//
// # Usage
//
//	gate := middleware.NewAuthMiddleware(tokens, store, logger, metrics)
//	protected := router.PathPrefix("/api").Subrouter()
//	protected.Use(gate.Handler)
//
// Handlers downstream read the resolved user via GetAuthContext:
//
//	authCtx := middleware.GetAuthContext(r)
//	userID := authCtx.User.ID
package middleware
