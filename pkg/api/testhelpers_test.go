package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/perfectstack/taskhub/pkg/api"
	"github.com/perfectstack/taskhub/pkg/auth"
	"github.com/perfectstack/taskhub/pkg/observability"
	"github.com/perfectstack/taskhub/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) *api.Server {
	t.Helper()

	store, err := storage.NewFileSystemStore(t.TempDir())
	require.NoError(t, err)

	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	tokens := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	return api.NewServer(store, hasher, tokens, logger, metrics)
}

func doJSON(t *testing.T, server *api.Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

// registerUser registers a fresh account and returns its token envelope.
func registerUser(t *testing.T, server *api.Server, email, name, password string) api.TokenResponse {
	t.Helper()

	w := doJSON(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"name":     name,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, "register failed: %s", w.Body.String())

	var resp api.TokenResponse
	decodeBody(t, w, &resp)
	return resp
}

// loginUser performs a form-encoded login and returns the recorder.
func loginUser(t *testing.T, server *api.Server, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// createTask creates a task for the given token and returns the record.
func createTask(t *testing.T, server *api.Server, token, title string) api.Task {
	t.Helper()

	w := doJSON(t, server, http.MethodPost, "/api/tasks", token, map[string]string{
		"title": title,
	})
	require.Equal(t, http.StatusCreated, w.Code, "create task failed: %s", w.Body.String())

	var task api.Task
	decodeBody(t, w, &task)
	return task
}
