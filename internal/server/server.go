package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/recipeform/config"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/database"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/router"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/service"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	redis  *redis.Client
	logger *zap.Logger
}

// New wires the recipe client, the submission service and the routes.
// Redis is used only when configured and reachable.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Server {
	gin.SetMode(config.GetEnvironment().GinMode())

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			// Continue without Redis; rate limiting falls back to memory
			logger.Warn("Redis unavailable", zap.Error(err))
		} else {
			redisClient = client
		}
	}

	client := service.NewHTTPRecipeClient(cfg.RecipeAPIURL, cfg.RecipeAPITimeout)
	submissions := service.NewSubmissionService(client, logger)

	r := router.SetupRouter(cfg, router.Deps{
		Submissions: submissions,
		Redis:       redisClient,
		Logger:      logger,
	})

	return &Server{
		cfg:    cfg,
		router: r,
		redis:  redisClient,
		logger: logger,
		http: &http.Server{
			Addr:    cfg.Addr(),
			Handler: r,
		},
	}
}

// Start serves until Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("addr", s.http.Addr),
		zap.String("recipe_api", s.cfg.RecipeAPIURL),
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and closes Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
