package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/pantrychef/backend/internal/middleware"
	"github.com/pageza/pantrychef/backend/internal/model"
	"github.com/pageza/pantrychef/backend/internal/service"
	"github.com/pageza/pantrychef/backend/internal/types"
)

// favouriteSummary is a favourite as shown in list responses
type favouriteSummary struct {
	ID     uuid.UUID           `json:"id"`
	Recipe model.RecipeSummary `json:"recipe"`
}

type FavouriteHandler struct {
	favouriteService service.IFavouriteService
	logger           *zap.Logger
}

func NewFavouriteHandler(favouriteService service.IFavouriteService, logger *zap.Logger) *FavouriteHandler {
	return &FavouriteHandler{
		favouriteService: favouriteService,
		logger:           logger,
	}
}

func (h *FavouriteHandler) RegisterRoutes(router *gin.RouterGroup) {
	favourites := router.Group("/favourites")
	{
		favourites.GET("/", h.ListFavourites)
		favourites.POST("/", h.CreateFavourite)
		favourites.GET("/:id/", h.GetFavourite)
		favourites.DELETE("/:id/", h.DeleteFavourite)
	}
}

func (h *FavouriteHandler) ListFavourites(c *gin.Context) {
	page, size, err := pageParams(c)
	if err != nil {
		invalidPage(c)
		return
	}

	favourites, total, err := h.favouriteService.List(c.Request.Context(), middleware.UserID(c), page, size)
	if err != nil {
		h.logger.Error("failed to list favourites", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch favourites"})
		return
	}

	summaries := make([]favouriteSummary, len(favourites))
	for i, f := range favourites {
		summaries[i] = favouriteSummary{ID: f.ID}
		if f.Recipe != nil {
			summaries[i].Recipe = f.Recipe.Summary()
		}
	}

	body, err := newPage(c, summaries, total, page, size)
	if err != nil {
		invalidPage(c)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *FavouriteHandler) CreateFavourite(c *gin.Context) {
	var req types.CreateFavouriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"recipe_id": []string{"This field is required."}})
		return
	}
	recipeID, err := uuid.Parse(req.RecipeID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"recipe_id": []string{"Must be a valid UUID."}})
		return
	}

	favourite, err := h.favouriteService.Create(c.Request.Context(), middleware.UserID(c), recipeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecipeNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"recipe_id": []string{"Invalid pk \"" + recipeID.String() + "\" - object does not exist."}})
		case errors.Is(err, service.ErrAlreadyFavourite):
			c.JSON(http.StatusConflict, gin.H{"detail": "Recipe is already in favourites."})
		default:
			h.logger.Error("failed to create favourite", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add favourite"})
		}
		return
	}

	c.JSON(http.StatusCreated, favourite)
}

func (h *FavouriteHandler) GetFavourite(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	favourite, err := h.favouriteService.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		if errors.Is(err, service.ErrFavouriteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		h.logger.Error("failed to fetch favourite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch favourite"})
		return
	}

	c.JSON(http.StatusOK, favourite)
}

func (h *FavouriteHandler) DeleteFavourite(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	if err := h.favouriteService.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		if errors.Is(err, service.ErrFavouriteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		h.logger.Error("failed to delete favourite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete favourite"})
		return
	}

	c.Status(http.StatusNoContent)
}
