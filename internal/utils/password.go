package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a password does not match its hash
var ErrPasswordMismatch = errors.New("password mismatch")

// dummyHash is compared against when no user exists so both paths cost the same
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword hashes a password with bcrypt at the default cost
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, bcrypt.DefaultCost)
}

// HashPasswordCost hashes a password with an explicit bcrypt cost
func HashPasswordCost(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a candidate password with a stored bcrypt hash
func VerifyPassword(hash, password string) error {
	if hash == "" {
		BurnPasswordCheck(password)
		return ErrPasswordMismatch
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	return nil
}

// BurnPasswordCheck spends the time of one comparison without a real hash
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
