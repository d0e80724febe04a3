package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atinyakov/MediaKeeper/internal/client/api"
	"github.com/atinyakov/MediaKeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemote(t *testing.T, handler http.HandlerFunc) *Remote {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.New(api.Config{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	return NewRemote(client, "/api/users/{userId}/media")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRemote_Fetch(t *testing.T) {
	r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/api/users/7/media", req.URL.Path)
		assert.NotEmpty(t, req.Header.Get(api.RequestIDHeader))
		writeJSON(w, http.StatusOK, []models.MediaEntry{dune(), dark()})
	})

	got, err := r.Fetch(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []models.MediaEntry{dune(), dark()}, got)
}

func TestRemote_FetchEmptyBodies(t *testing.T) {
	for _, body := range []string{"", "null", "[]"} {
		t.Run("body="+body, func(t *testing.T) {
			r := newRemote(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			got, err := r.Fetch(context.Background(), 1)
			require.NoError(t, err)
			assert.Empty(t, got)
			assert.NotNil(t, got)
		})
	}
}

func TestRemote_FetchErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		r := newRemote(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
		})
		_, err := r.Fetch(context.Background(), 1)
		var re *RemoteError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, http.StatusForbidden, re.StatusCode)
		assert.Equal(t, "forbidden", re.Message)
	})

	t.Run("unknown media type", func(t *testing.T) {
		r := newRemote(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"id":1,"title":"X","type":"PODCAST"}]`))
		})
		_, err := r.Fetch(context.Background(), 1)
		var ve *models.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "type", ve.Field)
	})

	t.Run("wrapped by model", func(t *testing.T) {
		r := newRemote(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := NewModel(r, nil).Load(context.Background(), 1)
		assert.ErrorIs(t, err, ErrFetch)
		var re *RemoteError
		assert.ErrorAs(t, err, &re)
	})
}

func TestRemote_SaveCreates(t *testing.T) {
	r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/api/users/3/media", req.URL.Path)

		var in models.MediaEntry
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&in))
		assert.Nil(t, in.ID)
		in.ID = models.Ptr[int64](11)
		writeJSON(w, http.StatusCreated, in)
	})

	saved, err := r.Save(context.Background(), 3, models.MediaEntry{Title: "Arrival", Type: models.Movie})
	require.NoError(t, err)
	require.NotNil(t, saved.ID)
	assert.Equal(t, int64(11), *saved.ID)
	assert.Equal(t, "Arrival", saved.Title)
}

func TestRemote_SaveUpdates(t *testing.T) {
	r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodPut, req.Method)
		assert.Equal(t, "/api/users/3/media/2", req.URL.Path)
		var in models.MediaEntry
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&in))
		writeJSON(w, http.StatusOK, in)
	})

	e := dark()
	e.Watched = true
	saved, err := r.Save(context.Background(), 3, e)
	require.NoError(t, err)
	assert.Equal(t, e, saved)
}

func TestRemote_SaveRejectsInvalidEntry(t *testing.T) {
	r := newRemote(t, func(http.ResponseWriter, *http.Request) {
		t.Error("invalid entries must not reach the server")
	})
	_, err := r.Save(context.Background(), 1, models.MediaEntry{Title: "", Type: models.Movie})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestRemote_Delete(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusNoContent)
	r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodDelete, req.Method)
		assert.Equal(t, "/api/users/1/media/5", req.URL.Path)
		w.WriteHeader(int(status.Load()))
	})

	require.NoError(t, r.Delete(context.Background(), 1, 5))

	status.Store(http.StatusNotFound)
	require.NoError(t, r.Delete(context.Background(), 1, 5), "already gone")

	status.Store(http.StatusInternalServerError)
	var re *RemoteError
	require.ErrorAs(t, r.Delete(context.Background(), 1, 5), &re)
}
