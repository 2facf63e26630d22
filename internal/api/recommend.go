package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/pantrychef/backend/internal/matcher"
	"github.com/pageza/pantrychef/backend/internal/middleware"
	"github.com/pageza/pantrychef/backend/internal/service"
	"github.com/pageza/pantrychef/backend/internal/types"
)

type RecommendHandler struct {
	recommendService service.IRecommendService
	rateLimiter      *middleware.RateLimiter
	logger           *zap.Logger
}

func NewRecommendHandler(recommendService service.IRecommendService, rateLimiter *middleware.RateLimiter, logger *zap.Logger) *RecommendHandler {
	return &RecommendHandler{
		recommendService: recommendService,
		rateLimiter:      rateLimiter,
		logger:           logger,
	}
}

func (h *RecommendHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/recommend/", limit(h.rateLimiter), h.Recommend)
}

// Recommend ranks stored recipes against the posted ingredients
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req types.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing ingredients"})
		return
	}
	if len(req.Ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing ingredients"})
		return
	}

	results, err := h.recommendService.Recommend(c.Request.Context(), req.Ingredients)
	if err != nil {
		if errors.Is(err, matcher.ErrMissingIngredients) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing ingredients"})
			return
		}
		h.logger.Error("recommendation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recommendations"})
		return
	}

	if results == nil {
		results = []matcher.MatchResult{}
	}
	c.JSON(http.StatusOK, results)
}
