package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/access"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/service"
	"github.com/aussiebroadwan/sataplan/pkg/httpx"
	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
	"github.com/aussiebroadwan/sataplan/pkg/sdk"
	"github.com/aussiebroadwan/sataplan/pkg/slogx"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// writeServiceError translates a service failure into an API error. Anything
// unrecognised is logged and becomes a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteJSON(w, http.StatusBadRequest, sdk.ValidationErrorResponse{
			Code:    sdk.ErrorCodeValidation,
			Message: verr.Error(),
			Details: map[string]string{verr.Field: verr.Message},
		})
	case errors.Is(err, service.ErrGoalNotFound):
		sdk.NewAPIError(http.StatusNotFound, sdk.ErrorCodeNotFound, "goal not found").WriteError(w)
	case errors.Is(err, service.ErrMotivationNotFound):
		sdk.NewAPIError(http.StatusNotFound, sdk.ErrorCodeNotFound, "motivation not found").WriteError(w)
	case errors.Is(err, service.ErrUserNotFound):
		sdk.NewAPIError(http.StatusNotFound, sdk.ErrorCodeNotFound, "user not found").WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		sdk.ErrForbidden.WriteError(w)
	case errors.Is(err, service.ErrUsernameTaken):
		sdk.ErrUsernameTaken.WriteError(w)
	case errors.Is(err, service.ErrEmailTaken):
		sdk.ErrEmailTaken.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		sdk.ErrInvalidGrant.WriteError(w)
	case errors.Is(err, access.ErrInvalidGoalPassword):
		sdk.ErrInvalidGoalPassword.WriteError(w)
	case isTokenError(err):
		code := access.ErrorCode(err)
		if code == access.CodeServerError {
			slogx.FromContext(r.Context()).Error(action+" failed", "code", code, "err", err)
		} else {
			slogx.FromContext(r.Context()).Warn("token rejected", "code", code, "err", err)
		}
		httpx.WriteTokenError(w, code)
	default:
		slogx.FromContext(r.Context()).Error(action+" failed", "err", err)
		sdk.ErrServerError.WriteError(w)
	}
}

func isTokenError(err error) bool {
	for _, target := range []error{
		jwtx.ErrMalformed, jwtx.ErrInvalidSig, jwtx.ErrExpired, jwtx.ErrMissingClaim,
		access.ErrWrongTokenKind, access.ErrTokenAlreadyUsed, access.ErrInternal,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// pathID parses the {id} path segment as a positive id.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// secondsUntil is the whole number of seconds left before t, never negative.
func secondsUntil(t time.Time) int {
	return max(int(time.Until(t).Round(time.Second).Seconds()), 0)
}
