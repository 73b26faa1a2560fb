package jwtx

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Variant is the typed form of a token payload. Each implementation carries
// exactly the fields its Kind needs.
type Variant interface {
	Kind() Kind
	fill(c *Claims)
}

// SessionClaims identify a logged in user.
type SessionClaims struct {
	Refresh  bool
	Username string
	UserID   int64
}

func (s SessionClaims) Kind() Kind {
	if s.Refresh {
		return KindSessionRefresh
	}
	return KindSessionAccess
}

func (s SessionClaims) fill(c *Claims) {
	c.Subject = s.Username
	c.PrincipalID = s.UserID
}

// PermanentClaims grant read access to a goal on behalf of its owner.
type PermanentClaims struct {
	GoalID  int64
	OwnerID int64
}

func (PermanentClaims) Kind() Kind { return KindQRPermanent }

func (p PermanentClaims) fill(c *Claims) {
	c.ResourceID = p.GoalID
	c.PrincipalID = p.OwnerID
}

// OneTimeClaims grant a single read of a goal.
type OneTimeClaims struct {
	GoalID        int64
	ConsumptionID string
}

func (OneTimeClaims) Kind() Kind { return KindQROneTime }

func (o OneTimeClaims) fill(c *Claims) {
	c.ResourceID = o.GoalID
	c.ConsumptionID = o.ConsumptionID
	c.SingleUse = true
}

// NewClaims builds the wire claims for v expiring at expiresAt.
func NewClaims(v Variant, expiresAt time.Time) Claims {
	c := Claims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		Kind:      v.Kind(),
	}
	v.fill(&c)
	return c
}

// Variant validates the structure of c and returns its typed form. A missing
// field required by the kind yields ErrMissingClaim.
func (c Claims) Variant() (Variant, error) {
	if c.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: expires_at", ErrMissingClaim)
	}

	switch c.Kind {
	case KindSessionAccess, KindSessionRefresh:
		if c.Subject == "" {
			return nil, fmt.Errorf("%w: subject", ErrMissingClaim)
		}
		if c.PrincipalID == 0 {
			return nil, fmt.Errorf("%w: principal_id", ErrMissingClaim)
		}
		return SessionClaims{
			Refresh:  c.Kind == KindSessionRefresh,
			Username: c.Subject,
			UserID:   c.PrincipalID,
		}, nil

	case KindQRPermanent:
		if c.ResourceID == 0 {
			return nil, fmt.Errorf("%w: resource_id", ErrMissingClaim)
		}
		if c.PrincipalID == 0 {
			return nil, fmt.Errorf("%w: principal_id", ErrMissingClaim)
		}
		return PermanentClaims{GoalID: c.ResourceID, OwnerID: c.PrincipalID}, nil

	case KindQROneTime:
		if c.ResourceID == 0 {
			return nil, fmt.Errorf("%w: resource_id", ErrMissingClaim)
		}
		if c.ConsumptionID == "" {
			return nil, fmt.Errorf("%w: consumption_id", ErrMissingClaim)
		}
		if !c.SingleUse {
			return nil, fmt.Errorf("%w: single_use", ErrMissingClaim)
		}
		return OneTimeClaims{GoalID: c.ResourceID, ConsumptionID: c.ConsumptionID}, nil

	case "":
		return nil, fmt.Errorf("%w: kind", ErrMissingClaim)
	}

	return nil, fmt.Errorf("%w: unknown kind %q", ErrMalformed, c.Kind)
}
