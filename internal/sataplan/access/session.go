package access

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/domain"
	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
)

// SessionIssuer mints access/refresh pairs for logged in users.
type SessionIssuer struct {
	Signer     jwtx.Signer
	Gate       *Gate
	Now        func() time.Time
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewSessionIssuer creates an issuer with the default session lifetimes.
func NewSessionIssuer(signer jwtx.Signer, gate *Gate, now func() time.Time) *SessionIssuer {
	if now == nil {
		now = time.Now
	}
	return &SessionIssuer{
		Signer:     signer,
		Gate:       gate,
		Now:        now,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
}

// Issue mints a fresh pair. Both tokens name the same user; only their kind
// and lifetime differ.
func (s *SessionIssuer) Issue(userID int64, username string) (domain.TokenPair, error) {
	return s.issue(userID, username, s.Now().Truncate(time.Second))
}

func (s *SessionIssuer) issue(userID int64, username string, now time.Time) (domain.TokenPair, error) {
	accessExp := now.Add(s.AccessTTL)
	refreshExp := now.Add(s.RefreshTTL)

	access, err := s.Signer.Sign(jwtx.NewClaims(jwtx.SessionClaims{Username: username, UserID: userID}, accessExp))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.Signer.Sign(jwtx.NewClaims(jwtx.SessionClaims{Refresh: true, Username: username, UserID: userID}, refreshExp))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh exchanges a refresh token for a brand new pair for the same user.
// The presented refresh token stays valid until it expires. The new pair is
// dated at least one second after the presented one, so its access token
// always outlives the access token issued alongside the refresh token.
func (s *SessionIssuer) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, jwtx.SessionClaims, error) {
	claims, err := s.Gate.Authorize(ctx, refreshToken, jwtx.KindSessionRefresh)
	if err != nil {
		return domain.TokenPair{}, jwtx.SessionClaims{}, err
	}

	v, err := claims.Variant()
	if err != nil {
		return domain.TokenPair{}, jwtx.SessionClaims{}, err
	}
	sc, ok := v.(jwtx.SessionClaims)
	if !ok {
		return domain.TokenPair{}, jwtx.SessionClaims{}, ErrWrongTokenKind
	}

	// Expiries have second granularity
	now := s.Now().Truncate(time.Second)
	if floor := claims.Expiry().Add(-s.RefreshTTL).Add(time.Second); now.Before(floor) {
		now = floor
	}

	pair, err := s.issue(sc.UserID, sc.Username, now)
	if err != nil {
		return domain.TokenPair{}, jwtx.SessionClaims{}, err
	}
	return pair, sc, nil
}
