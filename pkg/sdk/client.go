package sdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the sataplan API. It provides the unauthenticated
// operations and creates authenticated Sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Signup registers a new user.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*UserResponse, error) {
	body, headers, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/signup", body, headers)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges a username (or email) and password for a token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	return c.requestToken(ctx, "/v1/auth/token", url.Values{
		"username": {username},
		"password": {password},
	})
}

// Refresh exchanges a refresh token for a new pair. The old refresh token
// stays valid.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	return c.requestToken(ctx, "/v1/auth/refresh", url.Values{
		"refresh_token": {refreshToken},
	})
}

// Authenticate logs in and returns a session that refreshes itself.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	tokenResp, err := c.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, tokenResp), nil
}

// VerifyGoalAccess redeems a goal's share password for a view token.
func (c *Client) VerifyGoalAccess(ctx context.Context, goalID int64, password string) (*VerifyGoalResponse, error) {
	data := url.Values{
		"goal_id":  {strconv.FormatInt(goalID, 10)},
		"password": {password},
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/qrcode/verify",
		strings.NewReader(data.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	if err != nil {
		return nil, err
	}

	var out VerifyGoalResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ViewSharedGoal reads a goal with a QR token. The token is placed in the
// query as given: tokens are URL-safe already, and a percent-encoded token
// (as scanned from a QR code) is decoded once by the server.
func (c *Client) ViewSharedGoal(ctx context.Context, token string) (*SharedGoalResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/qrcode/view?token="+token, nil, nil)
	if err != nil {
		return nil, err
	}

	var out SharedGoalResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness calls /livez.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness calls /readyz.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var out HealthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) requestToken(ctx context.Context, path string, data url.Values) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, path,
		strings.NewReader(data.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}
