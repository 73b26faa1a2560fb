package domain

import "time"

// TokenPair is what login and refresh hand back: a short-lived access token
// and a longer-lived refresh token, both session kinds.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string // always "Bearer"
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// ScopedToken is a single QR grant for one goal.
type ScopedToken struct {
	Token     string
	ExpiresAt time.Time
}

// PermanentShare is the result of sharing a goal permanently. The password is
// handed to the owner out-of-band and redeemed by the QR holder.
type PermanentShare struct {
	ScopedToken
	GoalPassword string
}
