package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/sataplan/pkg/httpx"
	"github.com/aussiebroadwan/sataplan/pkg/sdk"
)

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always 200 while the process serves requests. Reports uptime and build version
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	sdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, health("ok", startTime, version, nil))
	}
}

func health(status string, startTime time.Time, version string, checks *sdk.HealthChecks) sdk.HealthResponse {
	return sdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(startTime).Truncate(time.Second).String(),
		Version: version,
		Checks:  checks,
	}
}
