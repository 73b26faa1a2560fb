package sdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Session is an authenticated user session. Calls refresh the access token
// automatically shortly before it expires.
type Session struct {
	client *Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// refreshBuffer is how early a session refreshes before expiry.
const refreshBuffer = 30 * time.Second

func newSession(client *Client, tokenResp *TokenResponse) *Session {
	return &Session{
		client:       client,
		accessToken:  tokenResp.AccessToken,
		refreshToken: tokenResp.RefreshToken,
		expiresAt:    time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - refreshBuffer),
	}
}

// NewSessionFromTokens creates a session from previously issued tokens.
func (c *Client) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int) *Session {
	return newSession(c, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}

// getValidToken returns a valid access token, refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if s.refreshToken == "" {
		return "", errors.New("access token expired and no refresh token available")
	}

	tokenResp, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = tokenResp.AccessToken
	s.refreshToken = tokenResp.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - refreshBuffer)

	return s.accessToken, nil
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Me returns the logged in user.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) CreateGoal(ctx context.Context, req CreateGoalRequest) (*GoalResponse, error) {
	body, headers, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/goals", body, headers)
	if err != nil {
		return nil, err
	}

	var out GoalResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListGoals(ctx context.Context) ([]GoalResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/goals", nil, nil)
	if err != nil {
		return nil, err
	}

	var out []GoalResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) GetGoal(ctx context.Context, goalID int64) (*GoalResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, goalPath(goalID, ""), nil, nil)
	if err != nil {
		return nil, err
	}

	var out GoalResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateGoal replaces the name and description of a goal.
func (s *Session) UpdateGoal(ctx context.Context, goalID int64, req UpdateGoalRequest) (*GoalResponse, error) {
	body, headers, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	resp, err := s.doAuthRequest(ctx, http.MethodPatch, goalPath(goalID, ""), body, headers)
	if err != nil {
		return nil, err
	}

	var out GoalResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchGoals searches the caller's goals by name or description. Zero
// page or pageSize leave the server defaults.
func (s *Session) SearchGoals(ctx context.Context, query string, page, pageSize int) (*GoalSearchResponse, error) {
	params := url.Values{"q": {query}}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		params.Set("page_size", strconv.Itoa(pageSize))
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/goals/search?"+params.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	var out GoalSearchResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteGoal(ctx context.Context, goalID int64) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, goalPath(goalID, ""), nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// AddMotivation attaches a quote and/or link to a goal.
func (s *Session) AddMotivation(ctx context.Context, goalID int64, req AddMotivationRequest) (*MotivationResponse, error) {
	body, headers, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	resp, err := s.doAuthRequest(ctx, http.MethodPost, goalPath(goalID, "/motivations"), body, headers)
	if err != nil {
		return nil, err
	}

	var out MotivationResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListMotivations(ctx context.Context, goalID int64) ([]MotivationResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, goalPath(goalID, "/motivations"), nil, nil)
	if err != nil {
		return nil, err
	}

	var out MotivationListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (s *Session) DeleteMotivation(ctx context.Context, motivationID int64) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/motivations/"+strconv.FormatInt(motivationID, 10), nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// PermanentQR shares a goal permanently. Every call rotates the goal
// password, so earlier passwords stop working.
func (s *Session) PermanentQR(ctx context.Context, goalID int64) (*PermanentQR, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, goalPath(goalID, "/qrcode/permanent"), nil, nil)
	if err != nil {
		return nil, err
	}
	png, err := readPNG(resp)
	if err != nil {
		return nil, err
	}
	return &PermanentQR{
		PNG:          png,
		GoalPassword: resp.Header.Get("X-Goal-Password"),
		AccessToken:  resp.Header.Get("X-Goal-Access-Token"),
	}, nil
}

// OneTimeQR mints a one-time share and returns it as JSON.
func (s *Session) OneTimeQR(ctx context.Context, goalID int64) (*OneTimeQRResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, goalPath(goalID, "/qrcode/onetime?format=json"), nil, nil)
	if err != nil {
		return nil, err
	}

	var out OneTimeQRResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// OneTimeQRImage mints a one-time share and returns the PNG and its token.
func (s *Session) OneTimeQRImage(ctx context.Context, goalID int64) ([]byte, string, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, goalPath(goalID, "/qrcode/onetime"), nil, nil)
	if err != nil {
		return nil, "", err
	}
	png, err := readPNG(resp)
	if err != nil {
		return nil, "", err
	}
	return png, resp.Header.Get("X-Goal-Access-Token"), nil
}

func goalPath(goalID int64, suffix string) string {
	return "/v1/goals/" + strconv.FormatInt(goalID, 10) + suffix
}

func readPNG(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if err := parseErrorResponse(resp, body); err != nil {
		return nil, err
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		return nil, fmt.Errorf("unexpected content type %q", ct)
	}
	return body, nil
}
