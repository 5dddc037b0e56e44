package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haircarepro/server/internal/domain/auth"
	"github.com/haircarepro/server/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authSvc auth.Service) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	requireAuth := authMiddleware(authSvc)

	api := router.Group("/api/v1")
	{
		api.POST("/auth/register", handler.Register)
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/refresh", handler.Refresh)
		api.GET("/auth/profile", requireAuth, handler.Profile)

		api.POST("/plans", requireAuth, handler.SubmitPlan)
		api.GET("/plans", requireAuth, handler.ListPlans)

		api.GET("/artifacts/:name", handler.GetArtifact)

		api.POST("/cron/reminders", handler.TriggerReminders)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
