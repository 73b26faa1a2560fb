package http

import (
	"net/http"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/service"
	"github.com/aussiebroadwan/sataplan/pkg/httpx"
	"github.com/aussiebroadwan/sataplan/pkg/sdk"
	"github.com/aussiebroadwan/sataplan/pkg/slogx"
)

// AuthHandler serves signup, login and refresh.
type AuthHandler struct {
	UserService    *service.UserService
	SessionService *service.SessionService
}

// HandleSignup handles POST /v1/auth/signup
//
//	@Summary		Register User
//	@Description	Creates a new user account. Usernames are 3-32 characters of letters, digits, '_', '.' or '-'.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		sdk.SignupRequest				true	"username, email, password"
//	@Success		201		{object}	sdk.UserResponse				"the new user"
//	@Failure		400		{object}	sdk.ValidationErrorResponse		"code, message, details"
//	@Failure		409		{object}	sdk.ErrorResponse				"error, error_description"
//	@Failure		429		{object}	sdk.ErrorResponse				"error, error_description"
//	@Failure		500		{object}	sdk.ErrorResponse				"error, error_description"
//	@Router			/v1/auth/signup [post].
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req sdk.SignupRequest
	if err := httpx.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		sdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "signup")
		return
	}

	slogx.FromContext(r.Context()).Info("user registered", "user_id", user.ID)
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleToken handles POST /v1/auth/token
//
//	@Summary		Login
//	@Description	Exchanges a username (or email) and password for an access and refresh token pair.
//	@Tags			Auth
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string				true	"Username or email"
//	@Param			password	formData	string				true	"Password"
//	@Success		200			{object}	sdk.TokenResponse	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400			{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		401			{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		429			{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		500			{object}	sdk.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/token [post].
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		sdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		sdk.NewAPIError(http.StatusBadRequest, sdk.ErrorCodeInvalidRequest, "username and password are required").WriteError(w)
		return
	}

	pair, _, err := h.SessionService.Login(r.Context(), username, password)
	if err != nil {
		writeServiceError(w, r, err, "login")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// HandleRefresh handles POST /v1/auth/refresh
//
//	@Summary		Refresh Session
//	@Description	Exchanges a refresh token for a new token pair. The refresh token stays valid until it expires.
//	@Tags			Auth
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			refresh_token	formData	string				true	"Refresh token"
//	@Success		200				{object}	sdk.TokenResponse	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		403				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		500				{object}	sdk.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		sdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	token := r.PostFormValue("refresh_token")
	if token == "" {
		sdk.NewAPIError(http.StatusBadRequest, sdk.ErrorCodeInvalidRequest, "refresh_token is required").WriteError(w)
		return
	}

	pair, err := h.SessionService.Refresh(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err, "refresh")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}
