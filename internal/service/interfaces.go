package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pageza/pantrychef/backend/internal/detector"
	"github.com/pageza/pantrychef/backend/internal/matcher"
	"github.com/pageza/pantrychef/backend/internal/model"
	"github.com/pageza/pantrychef/backend/internal/types"
)

var (
	ErrUserExists            = errors.New("user already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidToken          = errors.New("invalid token")
	ErrRecipeNotFound        = errors.New("recipe not found")
	ErrFavouriteNotFound     = errors.New("favourite not found")
	ErrAlreadyFavourite      = errors.New("recipe is already in favourites")
	ErrInvalidImage          = errors.New("invalid image")
	ErrNoIngredientsDetected = errors.New("no ingredients detected")
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.User, error)
	GenerateToken(claims *types.TokenClaims) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IRecipeService defines read access to imported recipes
type IRecipeService interface {
	GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	ListRecipes(ctx context.Context, query string, page, pageSize int) ([]model.RecipeSummary, int64, error)
	FindCandidates(ctx context.Context, tokens []string) ([]matcher.Candidate, error)
	SimilarRecipes(ctx context.Context, id uuid.UUID, limit int) ([]model.RecipeSummary, error)
	Vocabulary(ctx context.Context) ([]string, error)
}

// IRecommendService ranks recipes against a list of ingredients
type IRecommendService interface {
	Recommend(ctx context.Context, ingredients []string) ([]matcher.MatchResult, error)
}

// ISuggestService completes partially typed ingredient names
type ISuggestService interface {
	Suggest(ctx context.Context, query string, limit int) ([]string, error)
}

// IFavouriteService defines the interface for a user's favourites
type IFavouriteService interface {
	List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.FavouriteRecipe, int64, error)
	Create(ctx context.Context, userID, recipeID uuid.UUID) (*model.FavouriteRecipe, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.FavouriteRecipe, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// IImageService detects ingredients in uploaded photos
type IImageService interface {
	ProcessImage(ctx context.Context, userID uuid.UUID, upload ImageUpload) ([]detector.Detection, error)
}
