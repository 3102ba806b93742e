package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/account"
	"resume-builder/internal/assist"
	googleauth "resume-builder/internal/auth"
	"resume-builder/internal/builder"
	"resume-builder/internal/documents"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/uploads"
	"resume-builder/internal/usage"
	"resume-builder/internal/users"
)

// Rate limit groups.
const (
	GroupAI     = "ai"
	GroupUpload = "upload"
)

// RouterDeps carries the handlers mounted by NewRouter. Nil handlers are skipped.
type RouterDeps struct {
	Config     config.Config
	Builder    *builder.Handler
	Assist     *assist.Handler
	Uploads    *uploads.Handler
	Users      *users.Handler
	Account    *account.Handler
	Documents  *documents.Handler
	Usage      *usage.Handler
	GoogleAuth *googleauth.GoogleService
	// Limiter is shared by the AI and upload groups; nil uses a fresh one.
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		metrics.Middleware(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	registerMeRoutes(api)

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}
	onLimited := func(c *gin.Context, group string) {
		metrics.IncRateLimited(group)
	}

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.Users != nil {
		deps.Users.RegisterRoutes(api)
	}
	if deps.Account != nil {
		deps.Account.RegisterRoutes(api)
	}
	if deps.Usage != nil {
		deps.Usage.RegisterRoutes(api)
		if cfg.Env == "dev" || cfg.Env == "local" {
			deps.Usage.RegisterDevRoutes(api)
		}
	}
	if deps.Documents != nil {
		deps.Documents.RegisterRoutes(api)
	}
	if deps.Builder != nil {
		deps.Builder.RegisterRoutes(api)
	}
	if deps.Assist != nil {
		deps.Assist.RegisterRoutes(api, middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        map[string]middleware.RateLimitRule{GroupAI: perMinute(cfg.AIRatePerMinute)},
			DefaultGroup: GroupAI,
			Limiter:      limiter,
			ErrorMessage: "Rate limit exceeded. Please try again in a moment.",
			OnLimited:    onLimited,
		}))
	}
	if deps.Uploads != nil {
		deps.Uploads.RegisterRoutes(api, middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        map[string]middleware.RateLimitRule{GroupUpload: perMinute(cfg.UploadRatePerMin)},
			DefaultGroup: GroupUpload,
			Limiter:      limiter,
			OnLimited:    onLimited,
		}))
	}

	return r
}

// perMinute converts a per-minute budget to a token bucket; 0 disables limiting.
func perMinute(n int) middleware.RateLimitRule {
	if n <= 0 {
		return middleware.RateLimitRule{}
	}
	return middleware.RateLimitRule{Rate: float64(n) / 60.0, Burst: n}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
