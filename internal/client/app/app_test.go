package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/atinyakov/MediaKeeper/internal/client/api"
	"github.com/atinyakov/MediaKeeper/internal/client/auth"
	"github.com/atinyakov/MediaKeeper/internal/client/catalog"
	"github.com/atinyakov/MediaKeeper/internal/client/navigation"
	"github.com/atinyakov/MediaKeeper/internal/client/session"
	"github.com/atinyakov/MediaKeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory stand-in for the remote API with one account.
type fakeAPI struct {
	mu      sync.Mutex
	nextID  int64
	entries map[int64][]models.MediaEntry
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		nextID: 100,
		entries: map[int64][]models.MediaEntry{
			1: {
				{ID: models.Ptr[int64](1), Title: "Dune", Type: models.Movie},
				{ID: models.Ptr[int64](2), Title: "Dark", Type: models.Series, Watched: true, Rating: models.Ptr(9.0)},
			},
		},
	}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Username != "alice" || creds.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, models.Identity{ID: 1, Username: "alice"})
	})
	mux.HandleFunc("GET /api/users/{userId}/media", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.entries[userID(r)])
	})
	mux.HandleFunc("POST /api/users/{userId}/media", func(w http.ResponseWriter, r *http.Request) {
		var e models.MediaEntry
		_ = json.NewDecoder(r.Body).Decode(&e)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextID++
		e.ID = models.Ptr(f.nextID)
		uid := userID(r)
		f.entries[uid] = append(f.entries[uid], e)
		writeJSON(w, http.StatusCreated, e)
	})
	mux.HandleFunc("PUT /api/users/{userId}/media/{id}", func(w http.ResponseWriter, r *http.Request) {
		var e models.MediaEntry
		_ = json.NewDecoder(r.Body).Decode(&e)
		if e.Watched && e.Rating != nil {
			now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			e.RatingDate = &now
		}
		writeJSON(w, http.StatusOK, e)
	})
	mux.HandleFunc("DELETE /api/users/{userId}/media/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func userID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type fixture struct {
	app   *App
	nav   *navigation.Log
	store *session.Store
	slot  string
	url   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := httptest.NewServer(newFakeAPI().handler())
	t.Cleanup(srv.Close)
	slot := filepath.Join(t.TempDir(), "currentUser.json")
	return build(t, srv.URL, slot)
}

func build(t *testing.T, url, slot string) *fixture {
	t.Helper()
	client, err := api.New(api.Config{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	store := session.NewStore(session.NewFileSlot(slot), nil)
	remote := catalog.NewRemote(client, "/api/users/{userId}/media")
	nav := navigation.NewLog(nil)
	a := New(store, auth.NewGateway(client, store, nil), catalog.NewModel(remote, nil), remote, nav, nil)
	return &fixture{app: a, nav: nav, store: store, slot: slot, url: url}
}

var alice = models.Credentials{Username: "alice", Password: "secret"}

func TestApp_LoginLoadsCatalog(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.nav.Navigate(navigation.About))

	id, err := f.app.Login(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{ID: 1, Username: "alice"}, id)
	assert.Equal(t, navigation.Home, f.nav.Current())

	movies := f.app.Entries(models.Filter{Type: models.MoviesOnly})
	require.Len(t, movies, 1)
	assert.Equal(t, "Dune", movies[0].Title)
	assert.Len(t, f.app.Entries(models.Filter{}), 2)
}

func TestApp_LoginFailure(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.Login(context.Background(), models.Credentials{Username: "alice", Password: "nope"})
	require.ErrorIs(t, err, auth.ErrAuthentication)
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.Nil(t, f.app.Current())
	assert.Empty(t, f.app.Entries(models.Filter{}))
}

func TestApp_BootstrapRestoresSession(t *testing.T) {
	f := newFixture(t)

	id, err := f.app.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Nil(t, id)

	_, err = f.app.Login(context.Background(), alice)
	require.NoError(t, err)

	restarted := build(t, f.url, f.slot)
	id, err = restarted.app.Bootstrap(context.Background())
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "alice", id.Username)
	assert.Len(t, restarted.app.Entries(models.Filter{}), 2)
}

func TestApp_Logout(t *testing.T) {
	f := newFixture(t)
	_, err := f.app.Login(context.Background(), alice)
	require.NoError(t, err)
	require.NoError(t, f.nav.Navigate(navigation.About))

	require.NoError(t, f.app.Logout(context.Background()))
	assert.Nil(t, f.app.Current())
	assert.Empty(t, f.app.Entries(models.Filter{}))
	assert.Equal(t, navigation.Home, f.nav.Current())

	require.NoError(t, f.app.Logout(context.Background()))

	_, err = f.app.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestApp_RequiresSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.app.Save(ctx, models.MediaEntry{Title: "Arrival", Type: models.Movie})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, f.app.Delete(ctx, 1), ErrNotAuthenticated)
	_, err = f.app.Rate(ctx, 1, 5)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestApp_SaveRateDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.app.Login(ctx, alice)
	require.NoError(t, err)

	created, err := f.app.Save(ctx, models.MediaEntry{Title: "Arrival", Genre: "Sci-Fi", Type: models.Movie})
	require.NoError(t, err)
	require.NotNil(t, created.ID)
	assert.Len(t, f.app.Entries(models.Filter{}), 3)

	rated, err := f.app.Rate(ctx, *created.ID, 8)
	require.NoError(t, err)
	assert.True(t, rated.Watched)
	assert.Equal(t, 8.0, *rated.Rating)
	assert.NotNil(t, rated.RatingDate)

	got, err := f.app.Entry(*created.ID)
	require.NoError(t, err)
	assert.Equal(t, rated, got)

	_, err = f.app.Rate(ctx, *created.ID, 11)
	var ve *models.ValidationError
	assert.True(t, errors.As(err, &ve))

	require.NoError(t, f.app.Delete(ctx, *created.ID))
	_, err = f.app.Entry(*created.ID)
	assert.ErrorIs(t, err, ErrUnknownEntry)
	assert.Equal(t, map[models.MediaType]int{models.Movie: 1, models.Series: 1}, f.app.Counts())
}

func TestApp_SaveRejectsInvalidEntry(t *testing.T) {
	f := newFixture(t)
	_, err := f.app.Login(context.Background(), alice)
	require.NoError(t, err)

	_, err = f.app.Save(context.Background(), models.MediaEntry{Title: "Dune", Type: models.Movie, Rating: models.Ptr(7.0)})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, f.app.Entries(models.Filter{}), 2)
}
