package server

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers all API routes with the Gin engine.
func SetupRoutes(r *gin.Engine, cfg Config, deps Deps, rateLimiter *RateLimiter) {
	// Global middleware
	r.Use(MetricsMiddlewareGin())
	r.Use(LoggingMiddlewareGin(deps.Logger))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(CORSMiddlewareGin(cfg.AllowedOrigins))
	}
	r.Use(RateLimitMiddlewareGin(rateLimiter))

	systemViews := NewSystemViews(deps.Store, deps.Logger)
	sessionViews := NewSessionViews(deps.Service, deps.Logger)
	focusViews := NewFocusViews(deps.Logger)
	uploadViews := NewUploadViews(deps.Service, cfg, deps.Logger)

	// Health check (public)
	r.GET("/health", systemViews.Health)

	// Uploaded documents
	if cfg.UploadsDir != "" {
		r.StaticFS(cfg.UploadsURL, gin.Dir(cfg.UploadsDir, false))
	}

	api := r.Group("/api")
	if deps.Verifier != nil {
		api.Use(AuthMiddlewareGin(deps.Verifier))
	}
	{
		api.GET("/private", systemViews.Private)

		sessions := api.Group("/study-session")
		{
			sessions.POST("", sessionViews.Create)
			sessions.GET("/:userId", sessionViews.List)
			sessions.GET("/:userId/today", sessionViews.Today)
			sessions.GET("/:userId/stats", sessionViews.Stats)
			sessions.GET("/:userId/profile", sessionViews.Profile)
		}

		api.GET("/focus-levels/:level", focusViews.Describe)
		api.POST("/upload", uploadViews.Upload)
	}
}
