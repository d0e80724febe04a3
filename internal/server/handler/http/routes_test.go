package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/MediaKeeper/internal/models"
	"github.com/atinyakov/MediaKeeper/internal/repository"
	"github.com/atinyakov/MediaKeeper/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo := repository.NewMemoryRepository()
	router := NewRouter(
		&AuthHandler{AuthService: service.NewAuthService(repo)},
		&MediaHandler{MediaService: service.NewMediaService(repo)},
		repo,
		zap.NewNop(),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestRouter_AuthFlow(t *testing.T) {
	srv := newTestServer(t)
	alice := models.Credentials{Username: "alice", Password: "secret"}

	resp, body := call(t, srv, http.MethodPost, "/api/auth/register", alice)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	var id models.Identity
	require.NoError(t, json.Unmarshal(body, &id))
	assert.Equal(t, "alice", id.Username)

	resp, body = call(t, srv, http.MethodPost, "/api/auth/register", alice)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Username already exists"}`, string(body))

	resp, body = call(t, srv, http.MethodPost, "/api/auth/login", alice)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":1,"username":"alice"}`, string(body))

	resp, body = call(t, srv, http.MethodPost, "/api/auth/login", models.Credentials{Username: "alice", Password: "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, string(body))
}

func TestRouter_MediaFlow(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := call(t, srv, http.MethodPost, "/api/auth/register", models.Credentials{Username: "alice", Password: "secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := call(t, srv, http.MethodGet, "/api/users/1/media", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	resp, body = call(t, srv, http.MethodPost, "/api/users/1/media", models.MediaEntry{Title: "Dune", Type: models.Movie})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var dune models.MediaEntry
	require.NoError(t, json.Unmarshal(body, &dune))
	require.NotNil(t, dune.ID)
	assert.NotNil(t, dune.CreatedAt)

	dune.Watched = true
	dune.Rating = models.Ptr(8.0)
	resp, body = call(t, srv, http.MethodPut, "/api/users/1/media/1", dune)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var updated models.MediaEntry
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.NotNil(t, updated.RatingDate)

	resp, body = call(t, srv, http.MethodPost, "/api/users/1/media", map[string]any{"title": "X", "type": "PODCAST"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "invalid type")

	resp, body = call(t, srv, http.MethodPost, "/api/users/1/media", map[string]any{"title": "X", "type": "MOVIE", "rating": 7})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "invalid rating")

	resp, _ = call(t, srv, http.MethodDelete, "/api/users/1/media/1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = call(t, srv, http.MethodDelete, "/api/users/1/media/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = call(t, srv, http.MethodGet, "/api/users/1/media", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestRouter_Errors(t *testing.T) {
	srv := newTestServer(t)

	resp, body := call(t, srv, http.MethodGet, "/api/users/9/media", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"user not found"}`, string(body))

	resp, _ = call(t, srv, http.MethodGet, "/api/users/x/media", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = call(t, srv, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"not found"}`, string(body))

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/auth/login", bytes.NewBufferString("username=a"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, res.StatusCode)
}
