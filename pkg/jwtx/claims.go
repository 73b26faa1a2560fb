package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. These can be overridden per-issuer.
const (
	// DefaultAccessTokenTTL is the lifetime of a session access token.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the lifetime of a session refresh token.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// DefaultPermanentTTL is the lifetime of a token minted for a permanent
	// QR code (either directly or after goal password verification).
	DefaultPermanentTTL = 15 * time.Minute

	// DefaultOneTimeTTL is the lifetime of a single use QR token.
	DefaultOneTimeTTL = time.Minute
)

// Kind says what a token is allowed to do. It is always present in a
// verified token.
type Kind string

const (
	KindSessionAccess  Kind = "session_access"
	KindSessionRefresh Kind = "session_refresh"
	KindQRPermanent    Kind = "qr_permanent"
	KindQROneTime      Kind = "qr_onetime"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSessionAccess, KindSessionRefresh, KindQRPermanent, KindQROneTime:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// Claims is the wire form of a token payload. Build one through NewClaims so
// the fields required by each Kind are present by construction; use Variant
// to get the typed form back after decoding.
type Claims struct {
	// Username of the session holder.
	Subject string `json:"subject,omitempty"`

	// User id of the session holder, or the owner of a shared goal.
	PrincipalID int64 `json:"principal_id,omitempty"`

	ExpiresAt *jwt.NumericDate `json:"expires_at,omitempty"`
	Kind      Kind             `json:"kind,omitempty"`

	// Goal id a QR token grants access to.
	ResourceID int64 `json:"resource_id,omitempty"`

	// Ledger key of a one-time token.
	ConsumptionID string `json:"consumption_id,omitempty"`
	SingleUse     bool   `json:"single_use,omitempty"`
}

// Expiry returns expires_at as a time, or the zero time when absent.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

/* jwt.Claims implementation. Only expiry is enforced by the parser. */

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (c Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c Claims) GetIssuer() (string, error)                   { return "", nil }
func (c Claims) GetSubject() (string, error)                  { return c.Subject, nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }
