package http

import (
	"net/http"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/service"
	"github.com/aussiebroadwan/sataplan/pkg/httpx"
	"github.com/aussiebroadwan/sataplan/pkg/sdk"
)

type MeHandler struct {
	UserService *service.UserService
}

// ServeHTTP godoc
//
//	@Summary		Current User
//	@Description	Returns the user the access token belongs to.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string				true	"Bearer access token"
//	@Success		200				{object}	sdk.UserResponse	"id, username, email, active, created_at"
//	@Failure		401				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		403				{object}	sdk.ErrorResponse	"error, error_description"
//	@Failure		404				{object}	sdk.ErrorResponse	"error, error_description"
//	@Router			/v1/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.PrincipalID(r.Context())
	if !ok {
		sdk.ErrServerError.WriteError(w)
		return
	}

	user, err := h.UserService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, "get current user")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}
