package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/perfectstack/taskhub/pkg/auth"
	"github.com/perfectstack/taskhub/pkg/contextkeys"
	"github.com/perfectstack/taskhub/pkg/httputil"
	"github.com/perfectstack/taskhub/pkg/observability"
)

// UserLookup resolves a token subject to an account. Satisfied by the
// storage layer.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*auth.User, error)
}

// AuthMiddleware guards routes behind bearer token authentication.
type AuthMiddleware struct {
	issuer  *auth.TokenIssuer
	users   UserLookup
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(issuer *auth.TokenIssuer, users UserLookup, logger *observability.Logger, metrics *observability.Metrics) *AuthMiddleware {
	return &AuthMiddleware{
		issuer:  issuer,
		users:   users,
		logger:  logger,
		metrics: metrics,
	}
}

// Handler wraps an HTTP handler with authentication. Any failure along
// the way (missing header, bad signature, expired token, unknown
// subject) yields an identical 401 so callers learn nothing about which
// step rejected them.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Format: "Bearer <token>"
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.reject(w, r, "missing_header", nil)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.reject(w, r, "malformed_header", nil)
			return
		}

		userID, err := m.issuer.Verify(parts[1])
		if err != nil {
			m.reject(w, r, "invalid_token", err)
			return
		}

		user, err := m.users.GetUserByID(r.Context(), userID)
		if err != nil {
			m.reject(w, r, "unknown_subject", err)
			return
		}

		ctx := contextkeys.WithAuth(r.Context(), &auth.Context{User: user})
		ctx = contextkeys.WithUserID(ctx, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, reason string, err error) {
	if m.metrics != nil {
		m.metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
	}
	if m.logger != nil {
		observability.FromContext(r.Context(), m.logger).
			WithField("reason", reason).
			WithError(err).
			Debug("rejected request authentication")
	}
	httputil.WriteUnauthorized(w, "Could not validate credentials")
}

// GetAuthContext extracts auth context from request
func GetAuthContext(r *http.Request) *auth.Context {
	ctx := r.Context().Value(contextkeys.AuthKey)
	if ctx == nil {
		return nil
	}
	authCtx, ok := ctx.(*auth.Context)
	if !ok {
		return nil
	}
	return authCtx
}
