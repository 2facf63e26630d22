package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/pantrychef/backend/internal/model"
	"github.com/pageza/pantrychef/backend/internal/service"
	"github.com/pageza/pantrychef/backend/internal/types"
)

const defaultSimilarLimit = 10

type RecipeHandler struct {
	recipeService  service.IRecipeService
	suggestService service.ISuggestService
	logger         *zap.Logger
}

func NewRecipeHandler(recipeService service.IRecipeService, suggestService service.ISuggestService, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipeService:  recipeService,
		suggestService: suggestService,
		logger:         logger,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("/", h.ListRecipes)
		recipes.GET("/:id/", h.GetRecipe)
		recipes.GET("/:id/similar/", h.SimilarRecipes)
	}
	router.GET("/ingredients/suggest", h.SuggestIngredients)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, size, err := pageParams(c)
	if err != nil {
		invalidPage(c)
		return
	}

	recipes, total, err := h.recipeService.ListRecipes(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		h.logger.Error("failed to list recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	body, err := newPage(c, recipes, total, page, size)
	if err != nil {
		invalidPage(c)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		h.logger.Error("failed to fetch recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipe"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) SimilarRecipes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	limit := defaultSimilarLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= maxPageSize {
			limit = n
		}
	}

	similar, err := h.recipeService.SimilarRecipes(c.Request.Context(), id, limit)
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		h.logger.Error("failed to fetch similar recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch similar recipes"})
		return
	}
	if similar == nil {
		similar = []model.RecipeSummary{}
	}

	c.JSON(http.StatusOK, similar)
}

func (h *RecipeHandler) SuggestIngredients(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit > maxPageSize {
		limit = maxPageSize
	}

	suggestions, err := h.suggestService.Suggest(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		h.logger.Error("failed to suggest ingredients", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suggestions"})
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	c.JSON(http.StatusOK, types.SuggestResponse{Suggestions: suggestions})
}
