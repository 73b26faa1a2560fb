package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/domain"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/store"
	"github.com/aussiebroadwan/sataplan/pkg/cryptox"
	"github.com/aussiebroadwan/sataplan/pkg/slogx"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

type UserService struct {
	Store store.Store
}

// Register creates an active user. Emails are stored lowercased.
func (s *UserService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateRegistration(username, email, password); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		if errors.Is(err, cryptox.ErrPasswordTooLong) {
			return domain.User{}, invalid("password", err.Error())
		}
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.Store.Users().CreateUser(ctx, domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		if _, lookupErr := s.Store.Users().GetUserByUsername(ctx, username); lookupErr == nil {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, ErrEmailTaken
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", id)
	return s.GetUserByID(ctx, id)
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID int64) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

func validateRegistration(username, email, password string) error {
	switch n := utf8.RuneCountInString(username); {
	case n < domain.MinUsernameLength || n > domain.MaxUsernameLength:
		return invalid("username", fmt.Sprintf("must be %d-%d characters", domain.MinUsernameLength, domain.MaxUsernameLength))
	case !usernamePattern.MatchString(username):
		return invalid("username", "may only contain letters, digits, '_', '.' and '-'")
	}

	local, domainPart, ok := strings.Cut(email, "@")
	if !ok || local == "" || domainPart == "" || strings.ContainsAny(email, " \t") {
		return invalid("email", "must be a valid email address")
	}

	if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		return invalid("password", fmt.Sprintf("must be at least %d characters", domain.MinPasswordLength))
	}
	return nil
}
