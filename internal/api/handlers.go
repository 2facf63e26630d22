package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/pantrychef/backend/internal/database"
	"github.com/pageza/pantrychef/backend/internal/middleware"
	"github.com/pageza/pantrychef/backend/internal/service"
)

// Services bundles the business services the handlers depend on
type Services struct {
	Auth       service.IAuthService
	Recipes    service.IRecipeService
	Recommend  service.IRecommendService
	Suggest    service.ISuggestService
	Favourites service.IFavouriteService
	Images     service.IImageService
}

// RateLimiters guards the expensive endpoints. Nil entries disable limiting.
type RateLimiters struct {
	Image     *middleware.RateLimiter
	Recommend *middleware.RateLimiter
}

// HealthHandler reports whether the API can reach its database
type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := database.HealthCheck(ctx, h.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "ok",
	})
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, db *gorm.DB, svc Services, limiters RateLimiters, logger *zap.Logger) {
	health := NewHealthHandler(db)
	router.GET("/health", health.HealthCheck)
	router.GET("/api/health", health.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	NewAuthHandler(svc.Auth, logger).RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(svc.Auth))

	NewRecommendHandler(svc.Recommend, limiters.Recommend, logger).RegisterRoutes(protected)
	NewImageHandler(svc.Images, limiters.Image, logger).RegisterRoutes(protected)
	NewRecipeHandler(svc.Recipes, svc.Suggest, logger).RegisterRoutes(protected)
	NewFavouriteHandler(svc.Favourites, logger).RegisterRoutes(protected)
}

// limit returns the limiter's middleware, or a no-op when rl is nil
func limit(rl *middleware.RateLimiter) gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return rl.RateLimitMiddleware()
}
