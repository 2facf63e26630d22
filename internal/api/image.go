package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/pantrychef/backend/internal/detector"
	"github.com/pageza/pantrychef/backend/internal/middleware"
	"github.com/pageza/pantrychef/backend/internal/service"
	"github.com/pageza/pantrychef/backend/internal/types"
)

// ImageHandler handles ingredient detection from photos
type ImageHandler struct {
	imageService service.IImageService
	rateLimiter  *middleware.RateLimiter
	logger       *zap.Logger
}

// NewImageHandler creates a new image handler
func NewImageHandler(imageService service.IImageService, rateLimiter *middleware.RateLimiter, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		rateLimiter:  rateLimiter,
		logger:       logger,
	}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/process_image/", limit(h.rateLimiter), h.ProcessImage)
}

// ProcessImage accepts a multipart "image" field and returns the detected
// ingredients
func (h *ImageHandler) ProcessImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is required"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return
	}

	detections, err := h.imageService.ProcessImage(c.Request.Context(), middleware.UserID(c), service.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoIngredientsDetected):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No ingredients detected"})
		case errors.Is(err, service.ErrInvalidImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image"})
		case errors.Is(err, detector.ErrDetectorUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ingredient detection is temporarily unavailable"})
		default:
			h.logger.Error("image processing failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process image"})
		}
		return
	}

	out := make([]types.DetectedIngredient, len(detections))
	for i, d := range detections {
		out[i] = types.DetectedIngredient{Label: d.Label, Confidence: d.Confidence, Box: d.Box}
	}
	c.JSON(http.StatusOK, types.ProcessImageResponse{Ingredients: out})
}
