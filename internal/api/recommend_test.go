package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/pantrychef/backend/internal/matcher"
	"github.com/pageza/pantrychef/backend/internal/middleware"
	"github.com/pageza/pantrychef/backend/internal/service"
	"github.com/pageza/pantrychef/backend/internal/testhelpers"
)

func TestRecommendEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.login(t, "alice")
	a := testhelpers.CreateRecipe(t, env.db, "A", "egg", "milk", "flour", "sugar")
	b := testhelpers.CreateRecipe(t, env.db, "B", "egg", "milk")

	w := env.do(t, http.MethodPost, "/api/recommend/", token, map[string]interface{}{
		"ingredients": []string{"egg", "milk"},
	})
	requireStatus(t, w, http.StatusOK)

	var results []matcher.MatchResult
	decode(t, w, &results)
	require.Len(t, results, 2)
	assert.Equal(t, b.ID, results[0].ID)
	assert.Equal(t, 100.0, results[0].MatchPercentage)
	assert.Equal(t, a.ID, results[1].ID)
	assert.Equal(t, 50.0, results[1].MatchPercentage)
	assert.Equal(t, 2, results[1].MatchCount)
	assert.Equal(t, 4, results[1].TotalIngredients)
}

func TestRecommendEndpointMissingIngredients(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.login(t, "bob")

	bodies := []interface{}{
		map[string]interface{}{},
		map[string]interface{}{"ingredients": []string{}},
		map[string]interface{}{"ingredients": []string{"  ", ""}},
		map[string]interface{}{"ingredients": "egg"},
	}
	for _, body := range bodies {
		w := env.do(t, http.MethodPost, "/api/recommend/", token, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Missing ingredients"}`, w.Body.String())
	}
}

func TestRecommendEndpointNoMatches(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.login(t, "carol")
	testhelpers.CreateRecipe(t, env.db, "A", "egg")

	w := env.do(t, http.MethodPost, "/api/recommend/", token, map[string]interface{}{"ingredients": []string{"durian"}})
	requireStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRecommendEndpointBodyTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupSQLite(t)
	recommend := service.NewRecommendService(service.NewRecipeService(db), nil, 0, 0, zap.NewNop())

	router := gin.New()
	router.Use(middleware.BodySizeLimit(64))
	NewRecommendHandler(recommend, nil, zap.NewNop()).RegisterRoutes(router.Group("/api"))

	body := `{"ingredients":["` + strings.Repeat("egg", 100) + `"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/recommend/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	// undeclared length so the limit is enforced while reading
	req.ContentLength = -1
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	requireStatus(t, w, http.StatusRequestEntityTooLarge)
	assert.JSONEq(t, `{"error":"Request body too large"}`, w.Body.String())
}
