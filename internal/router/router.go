package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/recipeform/config"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/api"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/middleware"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/service"
)

// Deps are the collaborators the routes are built on. Redis may be nil.
type Deps struct {
	Submissions service.ISubmissionService
	Redis       *redis.Client
	Logger      *zap.Logger
}

// SetupRouter configures the application routes
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	router := gin.New()
	metrics := middleware.NewMetrics()

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(deps.Logger),
		middleware.Recovery(deps.Logger),
		metrics.Middleware(),
	)
	router.SetHTMLTemplate(api.Templates())

	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(deps.Redis, middleware.SubmissionRateLimitConfig(cfg.RateLimitPerMinute), deps.Logger)
	}

	var cors gin.HandlerFunc
	if len(cfg.CORSAllowedOrigins) > 0 {
		cors = middleware.CORS(cfg.CORSAllowedOrigins)
	}

	api.NewFormHandler(deps.Submissions, metrics, deps.Logger).RegisterRoutes(router, limiter, cors)
	api.NewHealthHandler(deps.Redis).RegisterRoutes(router)
	router.GET("/metrics", metrics.Handler())

	return router
}
