package router

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/pantrychef/backend/config"
	"github.com/pageza/pantrychef/backend/internal/api"
	"github.com/pageza/pantrychef/backend/internal/middleware"
)

// SetupRouter configures the middleware chain and the application routes
func SetupRouter(
	cfg *config.Config,
	db *gorm.DB,
	services api.Services,
	limiters api.RateLimiters,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		requestid.New(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.Metrics(),
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.BodySizeLimit(cfg.Server.MaxBodyBytes),
	)

	api.RegisterRoutes(router, db, services, limiters, logger)

	return router
}
