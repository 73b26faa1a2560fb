package cryptox

import (
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a password does not match its hash.
var ErrPasswordMismatch = errors.New("cryptox: password does not match")

// ErrPasswordTooLong is returned for passwords bcrypt would silently truncate.
var ErrPasswordTooLong = errors.New("cryptox: password longer than 72 bytes")

var passwordCost atomic.Int64

func init() {
	passwordCost.Store(int64(bcrypt.DefaultCost))
}

// SetPasswordCost changes the bcrypt cost used by HashPassword. Tests use
// bcrypt.MinCost to stay fast; values outside bcrypt's range are clamped.
func SetPasswordCost(cost int) {
	cost = max(bcrypt.MinCost, min(cost, bcrypt.MaxCost))
	passwordCost.Store(int64(cost))
}

// HashPassword returns a bcrypt hash (modular crypt format, "$2a$...").
func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), int(passwordCost.Load()))
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash.
func VerifyPassword(password, encodedHash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("cryptox: invalid hash format: %w", err)
	}
}
