package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ukydev/pantry-finder/internal/middleware"
)

// RouterConfig holds the HTTP surface settings.
type RouterConfig struct {
	// AllowedOrigins restricts CORS; empty allows all origins.
	AllowedOrigins    []string
	RateLimitRequests int
	RateLimitWindow   int // seconds
}

// SetupRouter configures the gin router with all routes.
func SetupRouter(h *PantryHandler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.log))

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsConfig))

	authMiddleware := middleware.NewAuthMiddleware(h.authService)
	limiter := middleware.NewRateLimitMiddleware()
	rateLimit := limiter.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow)

	// Health check.
	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")
	api.POST("/sessions", rateLimit, h.CreateSession)

	// Session routes.
	protected := api.Group("", authMiddleware.Authenticate())
	protected.DELETE("/sessions", h.DeleteSession)
	protected.GET("/view", h.GetView)
	protected.GET("/map", h.GetMap)
	protected.GET("/pantries/:id", h.GetPantry)
	protected.PUT("/search", h.PutSearch)
	protected.PUT("/sort", h.PutSort)
	protected.POST("/refresh", rateLimit, h.PostRefresh)
	protected.POST("/location", h.PostLocation)
	protected.PUT("/selection", h.PutSelection)
	protected.GET("/navigation", h.GetNavigation)
	protected.GET("/export.xlsx", h.GetExport)

	return router
}
