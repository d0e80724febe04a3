package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atinyakov/MediaKeeper/internal/client/api"
	"github.com/atinyakov/MediaKeeper/internal/client/app"
	"github.com/atinyakov/MediaKeeper/internal/client/auth"
	"github.com/atinyakov/MediaKeeper/internal/client/catalog"
	"github.com/atinyakov/MediaKeeper/internal/client/navigation"
	"github.com/atinyakov/MediaKeeper/internal/client/prompt"
	"github.com/atinyakov/MediaKeeper/internal/client/session"
	"github.com/atinyakov/MediaKeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestShell(t *testing.T, input string) (*shell, *bytes.Buffer) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.Identity{ID: 7, Username: "alice"})
	})
	mux.HandleFunc("GET /api/users/7/media", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]models.MediaEntry{
			{ID: models.Ptr[int64](1), Title: "Dune", Type: models.Movie, Genre: "Sci-Fi"},
			{ID: models.Ptr[int64](2), Title: "Dark", Type: models.Series, Genre: "Thriller", Watched: true, Rating: models.Ptr(9.0)},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := api.New(api.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	log := zap.NewNop()
	store := session.NewStore(session.NewFileSlot(filepath.Join(t.TempDir(), "session.json")), log)
	remote := catalog.NewRemote(client, "/api/users/{userId}/media")
	nav := navigation.NewLog(log)
	a := app.New(store, auth.NewGateway(client, store, log), catalog.NewModel(remote, log), remote, nav, log)

	out := &bytes.Buffer{}
	return &shell{app: a, nav: nav, prompt: prompt.New(strings.NewReader(input), out), out: out}, out
}

func TestShell_GuestCommands(t *testing.T) {
	sh, out := newTestShell(t, "help\nwhoami\nlist\nrefresh\ngo about\nfrobnicate\nexit\n")
	sh.run(context.Background())

	got := out.String()
	assert.Contains(t, got, "Available commands:")
	assert.Contains(t, got, "Not logged in.")
	assert.Contains(t, got, "No entries.")
	assert.Contains(t, got, "Please log in first.")
	assert.Contains(t, got, `unknown command "frobnicate"`)
	assert.Contains(t, got, "mediakeeper[guest /about]> ")
	assert.Contains(t, got, "Bye")
	assert.Equal(t, navigation.About, sh.nav.Current())
}

func TestShell_LoginAndList(t *testing.T) {
	sh, out := newTestShell(t, "login\nalice\nsecret\nlist series\nstats\nshow 1\n")
	sh.run(context.Background())

	got := out.String()
	assert.Contains(t, got, "Logged in as alice (id 7).")
	assert.Contains(t, got, "movies: 1, series: 1")
	assert.Contains(t, got, "Sci-Fi")
	assert.Contains(t, got, "mediakeeper[alice /]> ")

	listing := got[strings.Index(got, "TITLE"):strings.Index(got, "movies:")]
	assert.Contains(t, listing, "Dark")
	assert.NotContains(t, listing, "Dune")
}

func TestParseFilter(t *testing.T) {
	f, err := parseFilter([]string{"movie", "unwatched", "star", "wars"})
	require.NoError(t, err)
	assert.Equal(t, models.MoviesOnly, f.Type)
	require.NotNil(t, f.Watched)
	assert.False(t, *f.Watched)
	assert.Equal(t, "star wars", f.Query)

	f, err = parseFilter(nil)
	require.NoError(t, err)
	assert.True(t, f.IsZero())
}

func TestParseID(t *testing.T) {
	id, err := parseID([]string{"#42"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, args := range [][]string{nil, {"x"}, {"0"}, {"1", "2"}} {
		_, err := parseID(args)
		assert.Error(t, err, "%v", args)
	}
}
