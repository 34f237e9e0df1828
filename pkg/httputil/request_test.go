package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"buy milk"}`))

	var dest struct {
		Title string `json:"title"`
	}
	err := ParseJSON(r, &dest)

	require.NoError(t, err)
	assert.Equal(t, "buy milk", dest.Title)
}

func TestParseJSONOrErrorInvalidBody(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{broken`))

	var dest map[string]string
	ok := ParseJSONOrError(w, r, &dest)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid JSON")
}

func TestParsePathString(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/tasks/t1", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "t1"})

	val, err := ParsePathString(r, "id")

	require.NoError(t, err)
	assert.Equal(t, "t1", val)
}

func TestParsePathStringMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/tasks", nil)

	_, err := ParsePathString(r, "id")

	assert.Error(t, err)
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/tasks?page=3", nil)

	val, err := ParseQueryInt(r, "page", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, val)

	val, err = ParseQueryInt(r, "page_size", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, val)

	r = httptest.NewRequest(http.MethodGet, "/tasks?page=abc", nil)
	_, err = ParseQueryInt(r, "page", 1)
	assert.Error(t, err)
}

func TestRequireNonEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	assert.True(t, RequireNonEmpty(w, "value", "title"))

	w = httptest.NewRecorder()
	assert.False(t, RequireNonEmpty(w, "", "title"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title is required")
}
