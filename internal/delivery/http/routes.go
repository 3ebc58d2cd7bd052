package http

import (
	"github.com/gin-gonic/gin"
	"github.com/macrolens/nutrilog/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	limited := router.Group("/", RateLimitMiddleware(cfg.RateLimit.PerIP))

	// API v1 routes
	v1 := limited.Group("/api/v1")
	{
		v1.POST("/meals/analyze", handler.AnalyzeMeals)
		v1.POST("/foods/resolve", handler.ResolveFood)

		// Reload is only served when an admin token is configured
		if cfg.Server.AdminToken != "" {
			v1.POST("/reference/reload", AdminAuthMiddleware(cfg.Server.AdminToken), handler.ReloadReference)
		}
	}

	// MCP tools/call endpoint
	limited.POST("/mcp", handler.CallTool)

	return router
}
