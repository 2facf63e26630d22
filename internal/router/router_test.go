package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/pageza/pantrychef/backend/config"
	"github.com/pageza/pantrychef/backend/internal/api"
	"github.com/pageza/pantrychef/backend/internal/service"
	"github.com/pageza/pantrychef/backend/internal/testhelpers"
)

func TestSetupRouter(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	logger := zap.NewNop()
	recipes := service.NewRecipeService(db)
	cfg := &config.Config{
		Env: config.Test,
		Server: config.ServerConfig{
			MaxBodyBytes:   1 << 20,
			AllowedOrigins: []string{"http://localhost:5173"},
		},
	}

	r := SetupRouter(cfg, db, api.Services{
		Auth:       service.NewAuthService(db, "test-secret", time.Hour),
		Recipes:    recipes,
		Recommend:  service.NewRecommendService(recipes, nil, 0, 0, logger),
		Suggest:    service.NewSuggestService(recipes, 0, logger),
		Favourites: service.NewFavouriteService(db),
		Images:     service.NewImageService(new(testhelpers.MockDetector), nil, logger),
	}, api.RateLimiters{}, logger)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/recommend/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
