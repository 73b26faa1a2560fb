package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/access"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/domain"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/store"
	"github.com/aussiebroadwan/sataplan/pkg/cryptox"
	"github.com/aussiebroadwan/sataplan/pkg/slogx"
)

// SessionService logs users in and refreshes their sessions.
type SessionService struct {
	Store  store.Store
	Issuer *access.SessionIssuer
}

// dummyHash is verified against when the user does not exist, so unknown
// usernames cost the same as wrong passwords.
var dummyHash = sync.OnceValue(func() string {
	h, _ := cryptox.HashPassword("sataplan-timing-equaliser")
	return h
})

// Login authenticates by username, or by email when identifier contains
// an "@". Unknown users, inactive users and wrong passwords are all
// ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, identifier, password string) (domain.TokenPair, domain.User, error) {
	l := slogx.FromContext(ctx)
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return domain.TokenPair{}, domain.User{}, ErrInvalidCredentials
	}

	var (
		user domain.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.Store.Users().GetUserByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.Store.Users().GetUserByUsername(ctx, identifier)
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		_ = cryptox.VerifyPassword(password, dummyHash())
		l.Info("login failed: unknown user")
		return domain.TokenPair{}, domain.User{}, ErrInvalidCredentials
	case err != nil:
		return domain.TokenPair{}, domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash unusable", slog.Int64("user_id", user.ID), "err", err)
		}
		l.Info("login failed: bad password", slog.Int64("user_id", user.ID))
		return domain.TokenPair{}, domain.User{}, ErrInvalidCredentials
	}
	if !user.Active {
		l.Info("login failed: inactive user", slog.Int64("user_id", user.ID))
		return domain.TokenPair{}, domain.User{}, ErrInvalidCredentials
	}

	pair, err := s.Issuer.Issue(user.ID, user.Username)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}
	return pair, user, nil
}

// Refresh exchanges a refresh token for a new pair. Token failures come
// back as the access gate's errors; a principal that no longer exists or
// was deactivated is ErrInvalidCredentials.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	pair, sc, err := s.Issuer.Refresh(ctx, refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, sc.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.TokenPair{}, ErrInvalidCredentials
	case err != nil:
		return domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	case !user.Active:
		return domain.TokenPair{}, ErrInvalidCredentials
	}
	return pair, nil
}
