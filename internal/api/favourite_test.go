package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/pantrychef/backend/internal/model"
	"github.com/pageza/pantrychef/backend/internal/testhelpers"
	"github.com/pageza/pantrychef/backend/internal/types"
)

func TestFavouritesEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	user, token := env.login(t, "alice")
	recipe := testhelpers.CreateRecipe(t, env.db, "Soup", "onion", "stock")

	w := env.do(t, http.MethodPost, "/api/favourites/", token, map[string]string{"recipe_id": recipe.ID.String()})
	requireStatus(t, w, http.StatusCreated)
	var created model.FavouriteRecipe
	decode(t, w, &created)
	assert.Equal(t, user.ID, created.UserID)
	assert.Equal(t, recipe.ID, created.RecipeID)
	require.NotNil(t, created.Recipe)
	assert.Equal(t, "Soup", created.Recipe.Title)

	w = env.do(t, http.MethodPost, "/api/favourites/", token, map[string]string{"recipe_id": recipe.ID.String()})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"detail":"Recipe is already in favourites."}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/favourites/", token, nil)
	requireStatus(t, w, http.StatusOK)
	var page types.Page[favouriteSummary]
	decode(t, w, &page)
	assert.EqualValues(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, created.ID, page.Results[0].ID)
	assert.Equal(t, recipe.ID, page.Results[0].Recipe.ID)
	assert.Equal(t, model.JSONBStringArray{"onion", "stock"}, page.Results[0].Recipe.NER)

	path := "/api/favourites/" + created.ID.String() + "/"
	w = env.do(t, http.MethodGet, path, token, nil)
	requireStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateFavouriteValidation(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.login(t, "bob")

	w := env.do(t, http.MethodPost, "/api/favourites/", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/favourites/", token, map[string]string{"recipe_id": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/favourites/", token, map[string]string{"recipe_id": uuid.NewString()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "object does not exist")
}

func TestFavouritesArePrivate(t *testing.T) {
	env := setupTestEnv(t)
	_, ownerToken := env.login(t, "carol")
	_, otherToken := env.login(t, "dave")
	recipe := testhelpers.CreateRecipe(t, env.db, "Stew", "beef")

	w := env.do(t, http.MethodPost, "/api/favourites/", ownerToken, map[string]string{"recipe_id": recipe.ID.String()})
	requireStatus(t, w, http.StatusCreated)
	var created model.FavouriteRecipe
	decode(t, w, &created)

	path := "/api/favourites/" + created.ID.String() + "/"
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, otherToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, otherToken, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, ownerToken, nil).Code)
}
