// Package app wires the session, the auth gateway and the catalog into the
// operations a front end calls. It owns exactly one session per process.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/MediaKeeper/internal/client/auth"
	"github.com/atinyakov/MediaKeeper/internal/client/catalog"
	"github.com/atinyakov/MediaKeeper/internal/client/navigation"
	"github.com/atinyakov/MediaKeeper/internal/client/session"
	"github.com/atinyakov/MediaKeeper/internal/logger"
	"github.com/atinyakov/MediaKeeper/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrNotAuthenticated is returned by operations that need a session.
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrUnknownEntry is returned when an entry id is not in the catalog.
	ErrUnknownEntry = errors.New("no such entry in the catalog")
)

// EntryWriter persists catalog changes remotely. *catalog.Remote implements it.
type EntryWriter interface {
	Save(ctx context.Context, userID int64, entry models.MediaEntry) (models.MediaEntry, error)
	Delete(ctx context.Context, userID, id int64) error
}

// App is the client core as seen by a front end.
type App struct {
	session *session.Store
	auth    *auth.Gateway
	catalog *catalog.Model
	writer  EntryWriter
	nav     navigation.Navigator
	log     *zap.Logger
}

// New wires the given components. The store must not be shared with another App.
func New(store *session.Store, gateway *auth.Gateway, model *catalog.Model, writer EntryWriter, nav navigation.Navigator, log *zap.Logger) *App {
	return &App{
		session: store,
		auth:    gateway,
		catalog: model,
		writer:  writer,
		nav:     nav,
		log:     logger.OrNop(log),
	}
}

// Bootstrap restores a persisted session and, when there is one, loads its
// catalog. It must be called once at start-up. A restored identity is
// returned even if the catalog could not be loaded.
func (a *App) Bootstrap(ctx context.Context) (*models.Identity, error) {
	id, ok := a.session.Restore()
	if !ok {
		a.log.Debug("no session to restore")
		return nil, nil
	}
	a.log.Info("session restored", zap.Int64("user_id", id.ID), zap.String("username", id.Username))
	if _, err := a.Refresh(ctx); err != nil {
		return id, err
	}
	return id, nil
}

// Login authenticates, loads the user's catalog and navigates home. When the
// returned error is not an auth error the login itself succeeded.
func (a *App) Login(ctx context.Context, creds models.Credentials) (models.Identity, error) {
	return a.enter(ctx, creds, a.auth.Login)
}

// Register creates an account with the same follow-up as Login.
func (a *App) Register(ctx context.Context, creds models.Credentials) (models.Identity, error) {
	return a.enter(ctx, creds, a.auth.Register)
}

type authFunc func(context.Context, models.Credentials) (models.Identity, error)

func (a *App) enter(ctx context.Context, creds models.Credentials, authenticate authFunc) (models.Identity, error) {
	id, err := authenticate(ctx, creds)
	if err != nil {
		return models.Identity{}, err
	}

	a.catalog.Reset()
	if _, err := a.catalog.Load(ctx, id.ID); err != nil {
		return id, err
	}
	a.navigate(navigation.Home)
	return id, nil
}

// Logout ends the session, drops the catalog and navigates home. It is safe
// to call when already logged out.
func (a *App) Logout(ctx context.Context) error {
	err := a.auth.Logout(ctx)
	a.catalog.Reset()
	a.navigate(navigation.Home)
	return err
}

// Current returns the logged-in identity, or nil.
func (a *App) Current() *models.Identity {
	return a.session.Current()
}

// Refresh reloads the catalog of the current user.
func (a *App) Refresh(ctx context.Context) ([]models.MediaEntry, error) {
	uid, ok := a.session.CurrentUserID()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return a.catalog.Load(ctx, uid)
}

// Entries returns the catalog filtered by f.
func (a *App) Entries(f models.Filter) []models.MediaEntry {
	return a.catalog.FilteredBy(f)
}

// Entry returns a single catalog entry.
func (a *App) Entry(id int64) (models.MediaEntry, error) {
	e, ok := a.catalog.Get(id)
	if !ok {
		return models.MediaEntry{}, fmt.Errorf("entry %d: %w", id, ErrUnknownEntry)
	}
	return e, nil
}

// Counts returns the number of entries per media type.
func (a *App) Counts() map[models.MediaType]int {
	return a.catalog.Counts()
}

// Save creates or updates entry remotely and mirrors the stored result into
// the catalog.
func (a *App) Save(ctx context.Context, entry models.MediaEntry) (models.MediaEntry, error) {
	uid, ok := a.session.CurrentUserID()
	if !ok {
		return models.MediaEntry{}, ErrNotAuthenticated
	}
	if err := entry.Validate(); err != nil {
		return models.MediaEntry{}, err
	}

	saved, err := a.writer.Save(ctx, uid, entry)
	if err != nil {
		return models.MediaEntry{}, err
	}
	if err := a.catalog.Upsert(saved); err != nil {
		return models.MediaEntry{}, fmt.Errorf("server returned an invalid entry: %w", err)
	}
	a.log.Debug("entry saved", zap.Int64("user_id", uid), zap.Int64("entry_id", *saved.ID))
	return saved, nil
}

// Delete removes an entry remotely and from the catalog.
func (a *App) Delete(ctx context.Context, id int64) error {
	uid, ok := a.session.CurrentUserID()
	if !ok {
		return ErrNotAuthenticated
	}
	if err := a.writer.Delete(ctx, uid, id); err != nil {
		return err
	}
	a.catalog.Remove(id)
	return nil
}

// Rate marks the entry watched and sets its rating.
func (a *App) Rate(ctx context.Context, id int64, rating float64) (models.MediaEntry, error) {
	if !a.session.IsAuthenticated() {
		return models.MediaEntry{}, ErrNotAuthenticated
	}
	e, err := a.Entry(id)
	if err != nil {
		return models.MediaEntry{}, err
	}
	e.Watched = true
	e.Rating = models.Ptr(rating)
	return a.Save(ctx, e)
}

// Navigate forwards to the configured Navigator.
func (a *App) Navigate(r navigation.Route) error {
	if a.nav == nil {
		return nil
	}
	return a.nav.Navigate(r)
}

func (a *App) navigate(r navigation.Route) {
	if err := a.Navigate(r); err != nil {
		a.log.Warn("navigation failed", zap.String("route", string(r)), zap.Error(err))
	}
}
