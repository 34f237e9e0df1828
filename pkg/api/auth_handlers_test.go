package api_test

import (
	"net/http"
	"testing"

	"github.com/perfectstack/taskhub/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	server := newTestServer(t)

	resp := registerUser(t, server, "alice@example.com", "Alice", "s3cret")

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	require.NotNil(t, resp.User)
	assert.NotEmpty(t, resp.User.ID)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "Alice", resp.User.Name)
	assert.False(t, resp.User.CreatedAt.IsZero())
}

func TestRegister_NeverLeaksPasswordHash(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"name":     "Alice",
		"password": "s3cret",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "hashed_password")
	assert.NotContains(t, w.Body.String(), "$2a$")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	server := newTestServer(t)
	registerUser(t, server, "alice@example.com", "Alice", "s3cret")

	w := doJSON(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"name":     "Another Alice",
		"password": "different",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered")
}

func TestRegister_Validation(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing email", map[string]string{"name": "A", "password": "x"}},
		{"missing name", map[string]string{"email": "a@b.com", "password": "x"}},
		{"missing password", map[string]string{"email": "a@b.com", "name": "A"}},
		{"bad email shape", map[string]string{"email": "not-an-email", "name": "A", "password": "x"}},
		{"email without domain dot", map[string]string{"email": "a@b", "name": "A", "password": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, server, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegister_InvalidJSON(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/auth/register", "", "not an object")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	server := newTestServer(t)
	registerUser(t, server, "alice@example.com", "Alice", "s3cret")

	w := loginUser(t, server, "alice@example.com", "s3cret")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.TokenResponse
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "alice@example.com", resp.User.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	server := newTestServer(t)
	registerUser(t, server, "alice@example.com", "Alice", "s3cret")

	w := loginUser(t, server, "alice@example.com", "wrong")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Incorrect email or password")
}

func TestLogin_UnknownEmail(t *testing.T) {
	server := newTestServer(t)
	registerUser(t, server, "alice@example.com", "Alice", "s3cret")

	w := loginUser(t, server, "nobody@example.com", "s3cret")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Incorrect email or password")
}

func TestLogin_IdenticalFailureMessages(t *testing.T) {
	server := newTestServer(t)
	registerUser(t, server, "alice@example.com", "Alice", "s3cret")

	unknownEmail := loginUser(t, server, "nobody@example.com", "s3cret")
	wrongPassword := loginUser(t, server, "alice@example.com", "wrong")

	assert.Equal(t, unknownEmail.Code, wrongPassword.Code)
	assert.Equal(t, unknownEmail.Body.String(), wrongPassword.Body.String())
}

func TestLogin_MissingFields(t *testing.T) {
	server := newTestServer(t)

	w := loginUser(t, server, "", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe(t *testing.T) {
	server := newTestServer(t)
	resp := registerUser(t, server, "alice@example.com", "Alice", "s3cret")

	w := doJSON(t, server, http.MethodGet, "/api/auth/me", resp.AccessToken, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	decodeBody(t, w, &user)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotContains(t, w.Body.String(), "hashed_password")
}

func TestMe_RequiresAuth(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/auth/me", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Could not validate credentials")
}

func TestMe_RejectsGarbageToken(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/auth/me", "garbage", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
