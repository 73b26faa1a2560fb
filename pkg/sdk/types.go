package sdk

import "time"

// ErrorResponse is the body of every failure response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ValidationErrorResponse is returned when request fields fail validation.
type ValidationErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database   string `json:"database"`
	StateStore string `json:"state_store"`
}

// ============================================================================
// Auth
// ============================================================================

// SignupRequest registers a new user.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse describes a registered user. Never carries the password hash.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
}

// ============================================================================
// Goals
// ============================================================================

type CreateGoalRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UpdateGoalRequest replaces a goal's name and description. Both are
// required.
type UpdateGoalRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AddMotivationRequest struct {
	Quote string `json:"quote,omitempty"`
	Link  string `json:"link,omitempty"`
}

type MotivationResponse struct {
	ID    int64  `json:"id"`
	Quote string `json:"quote,omitempty"`
	Link  string `json:"link,omitempty"`
}

type GoalResponse struct {
	ID          int64                `json:"id"`
	UserID      int64                `json:"user_id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Motivations []MotivationResponse `json:"motivations"`
	CreatedAt   time.Time            `json:"created_at"`
}

type MotivationListResponse struct {
	Data []MotivationResponse `json:"data"`
}

// GoalSearchResponse is one page of search results. Total counts the
// matches across all pages.
type GoalSearchResponse struct {
	Goals    []GoalResponse `json:"goals"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Total    int            `json:"total"`
}

// ============================================================================
// Sharing
// ============================================================================

// PermanentQR is a permanent share: the QR image plus the password and a
// token taken from the response headers.
type PermanentQR struct {
	PNG          []byte
	GoalPassword string
	AccessToken  string
}

// OneTimeQRResponse is the JSON form of a one-time share.
type OneTimeQRResponse struct {
	Token     string `json:"token"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// VerifyGoalResponse is returned after redeeming a goal password.
type VerifyGoalResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// SharedGoalResponse is what a QR holder sees.
type SharedGoalResponse struct {
	Goal      GoalResponse `json:"goal"`
	Owner     string       `json:"owner"`
	TokenKind string       `json:"token_kind"`
}
