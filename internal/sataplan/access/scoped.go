package access

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/domain"
	"github.com/aussiebroadwan/sataplan/pkg/idx"
	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
)

// ScopedIssuer mints QR tokens scoped to a single goal.
type ScopedIssuer struct {
	Signer       jwtx.Signer
	Passwords    *GoalPasswords
	IDs          *idx.Generator
	Now          func() time.Time
	PermanentTTL time.Duration
	OneTimeTTL   time.Duration
}

// NewScopedIssuer creates an issuer with the default QR lifetimes.
func NewScopedIssuer(signer jwtx.Signer, passwords *GoalPasswords, now func() time.Time) *ScopedIssuer {
	if now == nil {
		now = time.Now
	}
	return &ScopedIssuer{
		Signer:       signer,
		Passwords:    passwords,
		IDs:          idx.NewGenerator(now),
		Now:          now,
		PermanentTTL: jwtx.DefaultPermanentTTL,
		OneTimeTTL:   jwtx.DefaultOneTimeTTL,
	}
}

// IssuePermanent mints a qr_permanent token for goalID on behalf of ownerID.
func (s *ScopedIssuer) IssuePermanent(goalID, ownerID int64) (domain.ScopedToken, error) {
	exp := s.Now().Add(s.PermanentTTL).Truncate(time.Second)
	token, err := s.Signer.Sign(jwtx.NewClaims(jwtx.PermanentClaims{GoalID: goalID, OwnerID: ownerID}, exp))
	if err != nil {
		return domain.ScopedToken{}, fmt.Errorf("sign permanent token: %w", err)
	}
	return domain.ScopedToken{Token: token, ExpiresAt: exp}, nil
}

// IssueScopedPermanent rotates the goal's share password and mints a
// qr_permanent token alongside it.
func (s *ScopedIssuer) IssueScopedPermanent(ctx context.Context, goalID, ownerID int64) (domain.PermanentShare, error) {
	password, err := s.Passwords.Rotate(ctx, goalID)
	if err != nil {
		return domain.PermanentShare{}, err
	}

	tok, err := s.IssuePermanent(goalID, ownerID)
	if err != nil {
		return domain.PermanentShare{}, err
	}
	return domain.PermanentShare{ScopedToken: tok, GoalPassword: password}, nil
}

// RedeemGoalPassword exchanges a goal's share password for a new
// qr_permanent token.
func (s *ScopedIssuer) RedeemGoalPassword(ctx context.Context, goalID, ownerID int64, password string) (domain.ScopedToken, error) {
	if err := s.Passwords.Verify(ctx, goalID, password); err != nil {
		return domain.ScopedToken{}, err
	}
	return s.IssuePermanent(goalID, ownerID)
}

// IssueOneTime mints a qr_onetime token for goalID with a fresh consumption
// id. The id is not registered anywhere until the token is first used.
func (s *ScopedIssuer) IssueOneTime(goalID int64) (domain.ScopedToken, error) {
	exp := s.Now().Add(s.OneTimeTTL).Truncate(time.Second)
	claims := jwtx.NewClaims(jwtx.OneTimeClaims{
		GoalID:        goalID,
		ConsumptionID: s.IDs.New().String(),
	}, exp)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.ScopedToken{}, fmt.Errorf("sign one-time token: %w", err)
	}
	return domain.ScopedToken{Token: token, ExpiresAt: exp}, nil
}
