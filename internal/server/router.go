package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/auth"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/config"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/http/handlers"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/http/middleware"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/observability"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/version"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/ws"
)

type Dependencies struct {
	Pingers            map[string]handlers.Pinger
	AuthHandler        *handlers.AuthHandler
	ApplicationHandler *handlers.ApplicationHandler
	LoanHandler        *handlers.LoanHandler
	WSHandler          *ws.Handler
	JWTManager         *auth.JWTManager
	Metrics            *observability.Metrics
}

func NewRouter(cfg config.Config, logger *zap.Logger, deps Dependencies) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	var observer middleware.RequestObserver
	if deps.Metrics != nil {
		observer = deps.Metrics
	}
	r.Use(middleware.RequestLogger(logger, observer))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.RequestBodyLimit(cfg.MaxBodyBytes))

	health := handlers.NewHealthHandler(deps.Pingers)
	meta := handlers.NewMetaHandler(cfg.Env, version.Version, cfg.StoreDriver)

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/v1/meta", meta.GetMeta)
	r.GET("/test", meta.Smoke)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	if deps.JWTManager != nil {
		submitLimiter := middleware.NewIPRateLimiter(cfg.SubmitRateLimit, cfg.SubmitRateBurst)
		mount(r.Group(""), "", submitLimiter, deps)
		mount(r.Group("/api"), "/underwriter", submitLimiter, deps)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	return r
}

// mount registers the API on g with the underwriter routes below
// underwriterPrefix.
func mount(g *gin.RouterGroup, underwriterPrefix string, submitLimiter *middleware.IPRateLimiter, deps Dependencies) {
	requireAuth := middleware.RequireAuth(deps.JWTManager)
	underwriterOnly := middleware.RequireRole(auth.RoleUnderwriter)

	if deps.AuthHandler != nil {
		authGroup := g.Group("/auth")
		authGroup.POST("/signup", deps.AuthHandler.SignupUnderwriter)
		authGroup.POST("/login", deps.AuthHandler.LoginUnderwriter)
		authGroup.POST("/borrower/signup", deps.AuthHandler.SignupBorrower)
		authGroup.POST("/borrower/login", deps.AuthHandler.LoginBorrower)
		authGroup.POST("/logout", deps.AuthHandler.Logout)
		authGroup.GET("/me", requireAuth, deps.AuthHandler.Me)
	}

	if deps.ApplicationHandler != nil {
		g.POST("/application", middleware.RateLimit(submitLimiter), middleware.OptionalAuth(deps.JWTManager), deps.ApplicationHandler.Submit)
	}

	uw := g.Group(underwriterPrefix, requireAuth, underwriterOnly)

	if deps.ApplicationHandler != nil {
		uw.GET("/applications", deps.ApplicationHandler.ListPending)
		uw.GET("/applications/:id", deps.ApplicationHandler.Get)
		uw.POST("/applications/:id/approve", deps.ApplicationHandler.Approve)
		uw.POST("/applications/:id/reject", deps.ApplicationHandler.Reject)
	}
	if deps.LoanHandler != nil {
		uw.GET("/applications/:id/loan", deps.LoanHandler.GetApplicationLoan)
		uw.GET("/loans/:loanId", deps.LoanHandler.GetLoan)
		uw.POST("/loan-terms/quote", deps.LoanHandler.Quote)
	}
	if deps.WSHandler != nil {
		uw.GET("/ws", deps.WSHandler.HandleWebSocket)
	}
}
