package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatpress/core/internal/adapters/repository"
	"github.com/flatpress/core/internal/domain/entities"
	"github.com/flatpress/core/internal/infrastructure/config"
	"github.com/flatpress/core/internal/infrastructure/logger"
)

func newTestServer(t *testing.T) (*Server, *repository.FileRepository) {
	t.Helper()

	repo, err := repository.NewPostRepository(filepath.Join(t.TempDir(), "posts.json"))
	require.NoError(t, err)

	cfg := &config.Config{
		App: config.AppConfig{Name: "FlatPress", Version: "test"},
		Server: config.ServerConfig{
			Port: 5000,
			Host: "127.0.0.1",
		},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: "*",
			RateLimitRequests:  1000,
			RateLimitWindow:    time.Minute,
		},
		// Metrics use a fresh registry per server; disabled here to keep
		// the middleware chain minimal.
		Metrics: config.MetricsConfig{Enabled: false},
	}

	srv, err := New(cfg, repo, logger.NewNop())
	require.NoError(t, err)

	return srv, repo
}

func doRequest(t *testing.T, srv *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func TestAPICreateAndGet(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/posts", echo.MIMEApplicationJSON,
		`{"title":"Hello","content":"World"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created entities.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "Hello", created.Title)
	assert.Equal(t, "World", created.Content)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/posts/1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got entities.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Title, got.Title)
}

func TestAPIListPosts(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/posts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	doRequest(t, srv, http.MethodPost, "/api/v1/posts", echo.MIMEApplicationJSON, `{"title":"One"}`)
	doRequest(t, srv, http.MethodPost, "/api/v1/posts", echo.MIMEApplicationJSON, `{"title":"Two"}`)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/posts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var posts []entities.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	require.Len(t, posts, 2)
	assert.Equal(t, "One", posts[0].Title)
	assert.Equal(t, "Two", posts[1].Title)
}

func TestAPIUpdateAndDelete(t *testing.T) {
	srv, _ := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/v1/posts", echo.MIMEApplicationJSON, `{"title":"Before"}`)

	rec := doRequest(t, srv, http.MethodPut, "/api/v1/posts/1", echo.MIMEApplicationJSON,
		`{"title":"After","content":"edited"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated entities.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, 1, updated.ID)
	assert.Equal(t, "After", updated.Title)

	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/posts/1", "", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/posts/1", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIErrorStatusMapping(t *testing.T) {
	srv, _ := newTestServer(t)

	// Unknown id
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/posts/99", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])

	// Validation failure
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/posts", echo.MIMEApplicationJSON, `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Non-numeric id
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/posts/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Delete on unknown id
	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/posts/99", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebIndexAndForms(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No posts yet")

	form := url.Values{}
	form.Set("title", "From the form")
	form.Set("author", "Ann")
	form.Set("content", "Form body")

	rec = doRequest(t, srv, http.MethodPost, "/add", echo.MIMEApplicationForm, form.Encode())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	rec = doRequest(t, srv, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "From the form")

	rec = doRequest(t, srv, http.MethodGet, "/posts/1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Form body")

	form = url.Values{}
	form.Set("title", "Edited title")
	rec = doRequest(t, srv, http.MethodPost, "/update/1", echo.MIMEApplicationForm, form.Encode())
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/delete/1", "", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/", "", "")
	assert.Contains(t, rec.Body.String(), "No posts yet")
}

func TestWebNotFoundRendersErrorPage(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/posts/99", nil)
	req.Header.Set(echo.HeaderAccept, echo.MIMETextHTML)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404")
	assert.Contains(t, rec.Body.String(), "Back to home")
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAPIPersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posts.json")

	repo, err := repository.NewPostRepository(path)
	require.NoError(t, err)

	cfg := &config.Config{
		Security: config.SecurityConfig{CORSAllowedOrigins: "*", RateLimitRequests: 1000, RateLimitWindow: time.Minute},
	}
	srv, err := New(cfg, repo, logger.NewNop())
	require.NoError(t, err)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/posts", echo.MIMEApplicationJSON, `{"title":"Durable"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Fresh repository over the same file sees the post.
	reloaded, err := repository.NewPostRepository(path)
	require.NoError(t, err)

	posts := reloaded.List(context.Background())
	require.Len(t, posts, 1)
	assert.Equal(t, "Durable", posts[0].Title)
}
