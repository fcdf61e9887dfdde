package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/STop211650/ai-scrapbook/internal/config"
	"github.com/STop211650/ai-scrapbook/pkg/circuitbreaker"
	"github.com/STop211650/ai-scrapbook/pkg/logger"
	"github.com/STop211650/ai-scrapbook/pkg/ratelimiter"
)

// NewRouter builds the gin engine with the full middleware chain and the
// /api/v1 route group.
func NewRouter(cfg *config.AppConfig, handler *Handler, log *logger.Logger) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogMiddleware(log))

	if cfg.Middleware.RateLimiter.Enabled {
		limiter := ratelimiter.NewTokenBucket(
			cfg.Middleware.RateLimiter.Rate,
			cfg.Middleware.RateLimiter.Capacity,
		)
		router.Use(RateLimitMiddleware(limiter))
	}
	if cfg.Middleware.CircuitBreaker.Enabled {
		timeout, err := time.ParseDuration(cfg.Middleware.CircuitBreaker.Timeout)
		if err != nil || timeout <= 0 {
			timeout = 30 * time.Second
		}
		cb := circuitbreaker.New(
			cfg.Middleware.CircuitBreaker.FailureThreshold,
			cfg.Middleware.CircuitBreaker.SuccessThreshold,
			timeout,
		)
		router.Use(CircuitBreakerMiddleware(cb))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(cfg.Auth.JwtSecret))
	{
		v1.POST("/content", handler.CreateContent)
		v1.GET("/content/:id", handler.GetContent)
		v1.DELETE("/content/:id", handler.DeleteContent)

		v1.POST("/summarize", handler.Summarize)
		v1.POST("/summarize/file", handler.SummarizeFile)
		v1.GET("/summarize/status", handler.SummarizeStatus)

		v1.POST("/search", handler.Search)
		v1.POST("/ask", handler.Ask)
	}

	return router
}
