package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/access"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/service"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/store"
	"github.com/aussiebroadwan/sataplan/pkg/httpx"
	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
	"github.com/aussiebroadwan/sataplan/pkg/slogx"

	_ "github.com/aussiebroadwan/sataplan/api/sataplan" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Response headers carrying share secrets. Exposed through CORS so the
// frontend can read them.
const (
	HeaderGoalPassword    = "X-Goal-Password"
	HeaderGoalAccessToken = "X-Goal-Access-Token"
)

var _ httpx.Authorizer = (*access.Gate)(nil)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	gate         httpx.Authorizer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	// StateCheck reports whether the consumption ledger's backing store is
	// reachable. Nil means always ready.
	StateCheck func(ctx context.Context) error

	UserService    *service.UserService
	SessionService *service.SessionService
	GoalService    *service.GoalService
	ShareService   *service.ShareService
}

func NewRouter(
	gate httpx.Authorizer,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	corsOrigins []string,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		gate:         gate,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORSMiddleware(corsOrigins, HeaderGoalPassword, HeaderGoalAccessToken, slogx.RequestIDHeader),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerGoals()
	r.registerQRCodes()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			SataPlan API
//	@version		0.1.0
//	@description	Goal tracking with shareable QR codes. Sessions use HMAC-signed access and refresh tokens;
//	@description	shared goals are opened with permanent (password protected) or one-time QR tokens.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/sataplan
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// session guards h with a session_access token and a per-user limit.
func (r *Router) session(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.gate, jwtx.KindSessionAccess),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		UserService:    r.UserService,
		SessionService: r.SessionService,
	}

	// Signup and login are brute force targets
	r.Mux.Handle("POST /v1/auth/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/token",
		httpx.Chain(http.HandlerFunc(h.HandleToken),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	me := &MeHandler{UserService: r.UserService}
	r.Mux.Handle("GET /v1/me", r.session(me, httpx.LenientLimit))
}

func (r *Router) registerGoals() {
	h := &GoalsHandler{GoalService: r.GoalService}

	r.Mux.Handle("POST /v1/goals", r.session(http.HandlerFunc(h.HandleCreate), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/goals", r.session(http.HandlerFunc(h.HandleList), httpx.LenientLimit))
	r.Mux.Handle("GET /v1/goals/search", r.session(http.HandlerFunc(h.HandleSearch), httpx.LenientLimit))
	r.Mux.Handle("GET /v1/goals/{id}", r.session(http.HandlerFunc(h.HandleGet), httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/goals/{id}", r.session(http.HandlerFunc(h.HandleUpdate), httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/goals/{id}", r.session(http.HandlerFunc(h.HandleDelete), httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/goals/{id}/motivations", r.session(http.HandlerFunc(h.HandleAddMotivation), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/goals/{id}/motivations", r.session(http.HandlerFunc(h.HandleListMotivations), httpx.LenientLimit))
	r.Mux.Handle("DELETE /v1/motivations/{id}", r.session(http.HandlerFunc(h.HandleDeleteMotivation), httpx.ModerateLimit))
}

func (r *Router) registerQRCodes() {
	h := &QRCodeHandler{ShareService: r.ShareService}

	r.Mux.Handle("GET /v1/goals/{id}/qrcode/permanent", r.session(http.HandlerFunc(h.HandlePermanent), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/goals/{id}/qrcode/onetime", r.session(http.HandlerFunc(h.HandleOneTime), httpx.ModerateLimit))

	// Goal passwords are short, so guess attempts are limited per goal too
	r.Mux.Handle("POST /v1/qrcode/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "goal_id"),
		),
	)

	// The view handler authorizes the token itself; a middleware would
	// consume one-time tokens before the handler sees them
	r.Mux.Handle("GET /v1/qrcode/view",
		httpx.Chain(http.HandlerFunc(h.HandleView),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.StateCheck),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
