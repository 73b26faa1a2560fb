package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/service"
	"github.com/aussiebroadwan/sataplan/pkg/httpx"
	"github.com/aussiebroadwan/sataplan/pkg/sdk"
)

// QRCodeHandler shares goals and serves them to QR holders.
type QRCodeHandler struct {
	ShareService *service.ShareService
}

// HandlePermanent handles GET /v1/goals/{id}/qrcode/permanent
//
//	@Summary		Permanent QR Code
//	@Description	Renders a QR code pointing at the goal and rotates the goal's share password.
//	@Description	The new password is returned in X-Goal-Password; earlier passwords stop working.
//	@Tags			QR Codes
//	@Produce		png
//	@Security		BearerAuth
//	@Param			Authorization	header		string				true	"Bearer access token"
//	@Param			id				path		int					true	"Goal ID"
//	@Success		200				{file}		binary				"QR code PNG"
//	@Header			200				{string}	X-Goal-Password		"Share password for the goal"
//	@Header			200				{string}	X-Goal-Access-Token	"qr_permanent token for the owner's own preview"
//	@Failure		400				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		403				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		404				{object}	sdk.ErrorResponse	"error, error_description"
//	@Router			/v1/goals/{id}/qrcode/permanent [get].
func (h *QRCodeHandler) HandlePermanent(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.PrincipalID(r.Context())
	id, ok := pathID(r)
	if !ok {
		errInvalidGoalID.WriteError(w)
		return
	}

	share, code, err := h.ShareService.CreatePermanentQR(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, r, err, "create permanent qr")
		return
	}

	w.Header().Set(HeaderGoalPassword, share.GoalPassword)
	w.Header().Set(HeaderGoalAccessToken, share.Token)
	httpx.WritePNG(w, http.StatusOK, code.PNG)
}

// HandleOneTime handles GET /v1/goals/{id}/qrcode/onetime
//
//	@Summary		One-Time QR Code
//	@Description	Mints a token that opens the goal exactly once and renders it as a QR code.
//	@Description	With format=json the token and link are returned as JSON instead.
//	@Tags			QR Codes
//	@Produce		png,json
//	@Security		BearerAuth
//	@Param			Authorization	header		string					true	"Bearer access token"
//	@Param			id				path		int						true	"Goal ID"
//	@Param			format			query		string					false	"png (default) or json"
//	@Success		200				{object}	sdk.OneTimeQRResponse	"token, url, expires_in (format=json)"
//	@Header			200				{string}	X-Goal-Access-Token		"qr_onetime token"
//	@Failure		400				{object}	sdk.ErrorResponse		"error, error_description"
//	@Failure		401				{object}	sdk.ErrorResponse		"error, error_description"
//	@Failure		403				{object}	sdk.ErrorResponse		"error, error_description"
//	@Failure		404				{object}	sdk.ErrorResponse		"error, error_description"
//	@Router			/v1/goals/{id}/qrcode/onetime [get].
func (h *QRCodeHandler) HandleOneTime(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.PrincipalID(r.Context())
	id, ok := pathID(r)
	if !ok {
		errInvalidGoalID.WriteError(w)
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "png" && format != "json" {
		sdk.NewAPIError(http.StatusBadRequest, sdk.ErrorCodeInvalidRequest, "format must be png or json").WriteError(w)
		return
	}

	tok, code, err := h.ShareService.CreateOneTimeQR(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, r, err, "create one-time qr")
		return
	}

	w.Header().Set(HeaderGoalAccessToken, tok.Token)
	if format == "json" {
		httpx.WriteJSON(w, http.StatusOK, sdk.OneTimeQRResponse{
			Token:     tok.Token,
			URL:       code.URL,
			ExpiresIn: secondsUntil(tok.ExpiresAt),
		})
		return
	}
	httpx.WritePNG(w, http.StatusOK, code.PNG)
}

// HandleVerify handles POST /v1/qrcode/verify
//
//	@Summary		Redeem Goal Password
//	@Description	Exchanges a goal's share password for a short lived qr_permanent view token.
//	@Tags			QR Codes
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			goal_id		formData	int						true	"Goal ID from the QR link"
//	@Param			password	formData	string					true	"Share password"
//	@Success		200			{object}	sdk.VerifyGoalResponse	"token, expires_in"
//	@Failure		400			{object}	sdk.ErrorResponse		"error, error_description"
//	@Failure		401			{object}	sdk.ErrorResponse		"error, error_description"
//	@Failure		404			{object}	sdk.ErrorResponse		"error, error_description"
//	@Failure		429			{object}	sdk.ErrorResponse		"error, error_description"
//	@Router			/v1/qrcode/verify [post].
func (h *QRCodeHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		sdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	id, err := strconv.ParseInt(r.PostFormValue("goal_id"), 10, 64)
	if err != nil || id <= 0 {
		errInvalidGoalID.WriteError(w)
		return
	}
	password := r.PostFormValue("password")
	if password == "" {
		sdk.NewAPIError(http.StatusBadRequest, sdk.ErrorCodeInvalidRequest, "password is required").WriteError(w)
		return
	}

	tok, err := h.ShareService.VerifyGoalAccess(r.Context(), id, password)
	if err != nil {
		writeServiceError(w, r, err, "verify goal password")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sdk.VerifyGoalResponse{
		Token:     tok.Token,
		ExpiresIn: secondsUntil(tok.ExpiresAt),
	})
}

// HandleView handles GET /v1/qrcode/view
//
//	@Summary		View Shared Goal
//	@Description	Opens a goal with a qr_permanent or qr_onetime token. One-time tokens work once.
//	@Description	The token may be percent-encoded; it is decoded exactly once.
//	@Tags			QR Codes
//	@Produce		json
//	@Param			token	query		string					true	"QR token"
//	@Success		200		{object}	sdk.SharedGoalResponse	"goal, owner, token_kind"
//	@Failure		401		{object}	sdk.ErrorResponse		"error, error_description"
//	@Failure		403		{object}	sdk.ErrorResponse		"error, error_description"
//	@Failure		404		{object}	sdk.ErrorResponse		"error, error_description"
//	@Router			/v1/qrcode/view [get].
func (h *QRCodeHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.RawQueryParam(r, "token")
	if !ok || token == "" {
		httpx.WriteTokenError(w, sdk.ErrorCodeMissingToken)
		return
	}

	view, err := h.ShareService.ViewSharedGoal(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err, "view shared goal")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sdk.SharedGoalResponse{
		Goal:      toGoalResponse(view.Goal),
		Owner:     view.Owner,
		TokenKind: view.Kind,
	})
}
