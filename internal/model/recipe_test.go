package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Recipe{}, &User{}, &FavouriteRecipe{}))
	return db
}

func TestJSONBStringArrayScan(t *testing.T) {
	var a JSONBStringArray

	require.NoError(t, a.Scan(`["egg","milk"]`))
	assert.Equal(t, JSONBStringArray{"egg", "milk"}, a)

	require.NoError(t, a.Scan([]byte(`["flour"]`)))
	assert.Equal(t, JSONBStringArray{"flour"}, a)

	require.NoError(t, a.Scan(`['egg', not json`))
	assert.Empty(t, a)

	require.NoError(t, a.Scan(nil))
	assert.Empty(t, a)
}

func TestJSONBStringArrayValue(t *testing.T) {
	v, err := JSONBStringArray{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = JSONBStringArray{"egg"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["egg"]`, v)

	v, err = JSONBStringArray{"salt & pepper", "crème fraîche"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["salt & pepper","crème fraîche"]`, v)
}

func TestRecipeRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	recipe := Recipe{
		Title:       "Pancakes",
		Ingredients: JSONBStringArray{"2 eggs", "1 c. milk"},
		Directions:  JSONBStringArray{"Mix.", "Fry."},
		NER:         JSONBStringArray{"eggs", "milk"},
		Link:        "www.example.com/pancakes",
	}
	require.NoError(t, db.Create(&recipe).Error)
	assert.NotEmpty(t, recipe.ID)
	assert.Len(t, recipe.Embedding.Slice(), EmbeddingDimensions)

	var got Recipe
	require.NoError(t, db.First(&got, "id = ?", recipe.ID).Error)
	assert.Equal(t, recipe.NER, got.NER)
	assert.Equal(t, recipe.Directions, got.Directions)
}

func TestRecipeBeforeSaveNormalizesNER(t *testing.T) {
	db := setupTestDB(t)

	recipe := Recipe{Title: "Au lait", NER: JSONBStringArray{" cafe\u0301 ", "", "milk"}}
	require.NoError(t, db.Create(&recipe).Error)

	var got Recipe
	require.NoError(t, db.First(&got, "id = ?", recipe.ID).Error)
	assert.Equal(t, JSONBStringArray{"caf\u00e9", "milk"}, got.NER)
}

func TestRecipeMalformedNERScansEmpty(t *testing.T) {
	db := setupTestDB(t)

	recipe := Recipe{Title: "Broken", NER: JSONBStringArray{"egg"}}
	require.NoError(t, db.Create(&recipe).Error)
	require.NoError(t, db.Exec("UPDATE recipes SET ner = ? WHERE id = ?", "not json", recipe.ID).Error)

	var got Recipe
	require.NoError(t, db.First(&got, "id = ?", recipe.ID).Error)
	assert.Empty(t, got.NER)
}

func TestFavouriteUniquePerUserRecipe(t *testing.T) {
	db := setupTestDB(t)

	user := User{Username: "cook", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	recipe := Recipe{Title: "Soup", NER: JSONBStringArray{"water"}}
	require.NoError(t, db.Create(&recipe).Error)

	require.NoError(t, db.Create(&FavouriteRecipe{UserID: user.ID, RecipeID: recipe.ID}).Error)
	assert.Error(t, db.Create(&FavouriteRecipe{UserID: user.ID, RecipeID: recipe.ID}).Error)
}

func TestNEREmbedding(t *testing.T) {
	a := NEREmbedding([]string{"egg", "milk"})
	b := NEREmbedding([]string{"Milk ", "egg", "egg"})
	assert.Equal(t, a.Slice(), b.Slice())

	var sum float64
	for _, v := range a.Slice() {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sum, 1e-5)

	empty := NEREmbedding(nil)
	assert.Len(t, empty.Slice(), EmbeddingDimensions)
}
