package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/pantrychef/backend/internal/model"
	"github.com/pageza/pantrychef/backend/internal/service"
	"github.com/pageza/pantrychef/backend/internal/testhelpers"
	"github.com/pageza/pantrychef/backend/internal/types"
)

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	auth     *service.AuthService
	detector *testhelpers.MockDetector
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLite(t)
	logger := zap.NewNop()
	det := new(testhelpers.MockDetector)

	auth := service.NewAuthService(db, "test-secret", time.Hour)
	recipes := service.NewRecipeService(db)
	svc := Services{
		Auth:       auth,
		Recipes:    recipes,
		Recommend:  service.NewRecommendService(recipes, nil, 0, 0, logger),
		Suggest:    service.NewSuggestService(recipes, 0, logger),
		Favourites: service.NewFavouriteService(db),
		Images:     service.NewImageService(det, nil, logger),
	}

	router := gin.New()
	RegisterRoutes(router, db, svc, RateLimiters{}, logger)

	return &testEnv{router: router, db: db, auth: auth, detector: det}
}

// login creates a user and returns a bearer token for it
func (e *testEnv) login(t *testing.T, username string) (*model.User, string) {
	t.Helper()
	user := testhelpers.CreateUser(t, e.db, username)
	token, err := e.auth.GenerateToken(&types.TokenClaims{UserID: user.ID, Username: user.Username})
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}
