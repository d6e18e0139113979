package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/mood-journal/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	logger := handler.logger
	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		errorHandlingMiddleware(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, logger),
	)

	router.GET("/healthz", handler.Health)

	api := router.Group("/api/v1")
	{
		api.POST("/auth/register", handler.Register)
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/refresh", handler.Refresh)
	}

	protected := api.Group("")
	protected.Use(authMiddleware(handler.authSvc))
	{
		protected.GET("/auth/me", handler.Me)
		protected.POST("/auth/logout", handler.Logout)

		protected.GET("/entries", handler.ListEntries)
		protected.POST("/entries", handler.CreateEntry)
		protected.GET("/entries/:id", handler.GetEntry)
		protected.PUT("/entries/:id", handler.UpdateEntry)
		protected.DELETE("/entries/:id", handler.DeleteEntry)
		protected.POST("/entries/:id/analyze", handler.AnalyzeEntry)

		protected.GET("/tags", handler.ListTags)
		protected.GET("/dashboard", handler.Dashboard)
		protected.POST("/exports", handler.Export)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "route", routeOf(c), "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
