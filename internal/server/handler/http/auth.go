// Package http provides the HTTP handlers and routing of the MediaKeeper
// reference API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/atinyakov/MediaKeeper/internal/models"
	"github.com/atinyakov/MediaKeeper/internal/repository"
	"github.com/atinyakov/MediaKeeper/internal/service"
)

const maxBodySize = 1 << 20

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	Register(ctx context.Context, creds models.Credentials) (models.Identity, error)
	Login(ctx context.Context, creds models.Credentials) (models.Identity, error)
}

// AuthHandler handles HTTP requests for user registration and login.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// Register handles POST /api/auth/register. On success it responds with
// the new identity.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.AuthService.Register)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.AuthService.Login)
}

func (h *AuthHandler) authenticate(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, models.Credentials) (models.Identity, error)) {
	var creds models.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	id, err := fn(r.Context(), creds)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("decode body: trailing data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service and repository errors onto statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, repository.ErrUserExists):
		writeError(w, http.StatusConflict, "Username already exists")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
