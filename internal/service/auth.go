// Package service provides the business logic of the reference API,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/MediaKeeper/internal/models"
	"github.com/atinyakov/MediaKeeper/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login for an unknown user or a wrong
// password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// CreateUser stores a new account; a taken name yields repository.ErrUserExists.
	CreateUser(ctx context.Context, username string, hash []byte) (models.User, error)
	// GetUserByUsername yields repository.ErrNotFound for unknown names.
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// Service implements registration and login on top of an AuthRepository.
type Service struct {
	repo AuthRepository
	cost int
}

// NewAuthService constructs a new Service using the provided repository.
func NewAuthService(repo AuthRepository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// Register creates an account and returns its identity.
func (s *Service) Register(ctx context.Context, creds models.Credentials) (models.Identity, error) {
	username, err := checkCredentials(creds)
	if err != nil {
		return models.Identity{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return models.Identity{}, &models.ValidationError{Field: "password", Reason: "must be at most 72 bytes"}
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.CreateUser(ctx, username, hash)
	if err != nil {
		return models.Identity{}, err
	}
	return u.Identity(), nil
}

// Login verifies the credentials and returns the matching identity.
func (s *Service) Login(ctx context.Context, creds models.Credentials) (models.Identity, error) {
	username, err := checkCredentials(creds)
	if err != nil {
		return models.Identity{}, err
	}

	u, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Identity{}, err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(creds.Password)); err != nil {
		return models.Identity{}, ErrInvalidCredentials
	}
	return u.Identity(), nil
}

func checkCredentials(creds models.Credentials) (string, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" {
		return "", &models.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if creds.Password == "" {
		return "", &models.ValidationError{Field: "password", Reason: "must not be empty"}
	}
	return username, nil
}
