package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/perfectstack/taskhub/pkg/auth"
	"github.com/perfectstack/taskhub/pkg/httputil"
	"github.com/perfectstack/taskhub/pkg/middleware"
	"github.com/perfectstack/taskhub/pkg/observability"
)

// AuthHandlers handles registration, login and profile requests.
type AuthHandlers struct {
	store   Store
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenIssuer
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(store Store, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer, logger *observability.Logger, metrics *observability.Metrics) *AuthHandlers {
	return &AuthHandlers{
		store:   store,
		hasher:  hasher,
		tokens:  tokens,
		logger:  logger,
		metrics: metrics,
	}
}

// register handles POST /api/auth/register
func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}
	if !validEmail(req.Email) {
		httputil.WriteBadRequest(w, "invalid email address")
		return
	}

	hashed, err := h.hasher.Hash(req.Password)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	user := &auth.User{
		ID:             uuid.NewString(),
		Email:          req.Email,
		Name:           req.Name,
		HashedPassword: hashed,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			httputil.WriteBadRequest(w, "Email already registered")
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.metrics.RegistrationsTotal.Inc()
	observability.FromContext(r.Context(), h.logger).
		WithField("user_id", user.ID).
		Info("registered new user")

	httputil.WriteSuccess(w, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}

// login handles POST /api/auth/login. The body is form-encoded with
// username (the email) and password fields. Unknown email and wrong
// password yield the same 401 so accounts cannot be probed.
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.WriteBadRequest(w, "invalid form body")
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		httputil.WriteBadRequest(w, "username and password are required")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.rejectLogin(w, r)
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}

	if !h.hasher.Check(password, user.HashedPassword) {
		h.rejectLogin(w, r)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	h.metrics.LoginsTotal.WithLabelValues("success").Inc()

	httputil.WriteSuccess(w, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}

func (h *AuthHandlers) rejectLogin(w http.ResponseWriter, r *http.Request) {
	h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
	observability.FromContext(r.Context(), h.logger).Debug("rejected login attempt")
	httputil.WriteUnauthorized(w, "Incorrect email or password")
}

// me handles GET /api/auth/me
func (h *AuthHandlers) me(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)
	if authCtx == nil || authCtx.User == nil {
		httputil.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	httputil.WriteSuccess(w, authCtx.User)
}

// validEmail applies a cheap shape check: one @ with something on both
// sides and a dot in the domain. Full RFC 5322 validation is not the
// goal here.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	if strings.Contains(domain, "@") {
		return false
	}
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
