// Package auth performs login and registration against the remote identity
// API, normalizes failures into a single error kind, and records the
// resulting identity in the session store.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/atinyakov/MediaKeeper/internal/client/api"
	"github.com/atinyakov/MediaKeeper/internal/logger"
	"github.com/atinyakov/MediaKeeper/internal/models"
	"go.uber.org/zap"
)

const (
	apiLogin    = "/api/auth/login"
	apiRegister = "/api/auth/register"
)

// Doer sends API requests. *api.Client implements it.
type Doer interface {
	Do(ctx context.Context, method, path string, in any) (*api.Response, error)
}

// SessionStore is the part of the session store the gateway writes to.
type SessionStore interface {
	Set(id models.Identity) error
	Clear() error
	Current() *models.Identity
}

// Revoker invalidates a session on the server. The remote API does not
// define such an endpoint; the hook lets a deployment add one.
type Revoker interface {
	Revoke(ctx context.Context, id models.Identity) error
}

// Gateway authenticates users and keeps the session store in sync.
type Gateway struct {
	api     Doer
	session SessionStore
	revoker Revoker
	log     *zap.Logger
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithRevoker installs a server-side revocation hook called by Logout.
func WithRevoker(r Revoker) Option {
	return func(g *Gateway) { g.revoker = r }
}

// NewGateway constructs a Gateway.
func NewGateway(client Doer, session SessionStore, log *zap.Logger, opts ...Option) *Gateway {
	g := &Gateway{api: client, session: session, log: logger.OrNop(log)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Login authenticates with the given credentials. On success the identity
// is stored in the session and returned; otherwise the session is untouched
// and the error is an *Error.
func (g *Gateway) Login(ctx context.Context, creds models.Credentials) (models.Identity, error) {
	return g.authenticate(ctx, "login", apiLogin, LoginFailedMessage, creds)
}

// Register creates an account and logs it in, with the same contract as Login.
func (g *Gateway) Register(ctx context.Context, creds models.Credentials) (models.Identity, error) {
	return g.authenticate(ctx, "register", apiRegister, RegistrationFailedMessage, creds)
}

func (g *Gateway) authenticate(ctx context.Context, op, path, fallback string, creds models.Credentials) (models.Identity, error) {
	log := g.log.With(zap.String("op", op), zap.String("username", creds.Username))

	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return models.Identity{}, &Error{
			Op:      op,
			Kind:    InvalidInput,
			Message: "username and password are required",
		}
	}

	resp, err := g.api.Do(ctx, http.MethodPost, path, creds)
	if f := classify(resp, err); f != nil {
		authErr := f.toError(op, fallback)
		log.Info("authentication failed",
			zap.Stringer("kind", f.kind),
			zap.Int("status", f.statusCode),
			zap.Error(f.cause),
		)
		return models.Identity{}, authErr
	}

	id, err := decodeIdentity(resp.Body)
	if err != nil {
		log.Warn("malformed identity payload", zap.String("request_id", resp.RequestID), zap.Error(err))
		return models.Identity{}, (&failure{kind: MalformedResponse, statusCode: resp.StatusCode, cause: err}).toError(op, fallback)
	}

	if err := g.session.Set(id); err != nil {
		// The identity is valid for this process even if it could not be saved.
		log.Warn("session not persisted", zap.Error(err))
	}
	log.Info("authenticated", zap.Int64("user_id", id.ID))
	return id, nil
}

func decodeIdentity(body []byte) (models.Identity, error) {
	var id models.Identity
	if err := json.Unmarshal(body, &id); err != nil {
		return models.Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	if !id.Valid() {
		return models.Identity{}, errors.New("identity payload is missing id or username")
	}
	return id, nil
}

// Logout ends the local session. It never fails when already logged out.
// A configured Revoker is called first; its failure is logged only.
func (g *Gateway) Logout(ctx context.Context) error {
	if cur := g.session.Current(); cur != nil && g.revoker != nil {
		if err := g.revoker.Revoke(ctx, *cur); err != nil {
			g.log.Warn("server-side revocation failed", zap.Int64("user_id", cur.ID), zap.Error(err))
		}
	}
	if err := g.session.Clear(); err != nil {
		g.log.Warn("session slot not cleared", zap.Error(err))
		return err
	}
	return nil
}
