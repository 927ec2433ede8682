package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rodrigopasa/launchajato/internal/models"
	"github.com/rodrigopasa/launchajato/internal/storage"
	"github.com/rodrigopasa/launchajato/internal/utils"
)

// Authentication failures the chatbot tells apart
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
)

// Authenticator verifies chat login credentials
type Authenticator interface {
	VerifyCredentials(ctx context.Context, username, password string) (*models.User, error)
}

// StoreAuthenticator checks credentials against users in the store using
// the same bcrypt hashes as the web login.
type StoreAuthenticator struct {
	store storage.Store
}

// NewStoreAuthenticator creates a store backed authenticator
func NewStoreAuthenticator(store storage.Store) *StoreAuthenticator {
	return &StoreAuthenticator{store: store}
}

// VerifyCredentials returns the user on success, ErrUserNotFound or
// ErrInvalidPassword on bad credentials, or a wrapped store error.
func (a *StoreAuthenticator) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := a.store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		utils.BurnPasswordCheck(password)
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user %q: %w", username, err)
	}

	err = utils.VerifyPassword(user.PasswordHash, password)
	if errors.Is(err, utils.ErrPasswordMismatch) {
		return nil, ErrInvalidPassword
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
