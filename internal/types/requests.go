package types

import (
	"github.com/google/uuid"
)

// RegisterRequest represents the request body for user registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// TokenRequest represents the credentials exchanged for a token
type TokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries an issued access token
type TokenResponse struct {
	Token  string    `json:"token"`
	UserID uuid.UUID `json:"user_id"`
}

// RecommendRequest represents the request body for /api/recommend/
type RecommendRequest struct {
	Ingredients []string `json:"ingredients"`
}

// CreateFavouriteRequest represents the request body for adding a favourite
type CreateFavouriteRequest struct {
	RecipeID string `json:"recipe_id" binding:"required"`
}

// Page is a paginated list response
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// DetectedIngredient is a single label returned by the image endpoint
type DetectedIngredient struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Box        []float64 `json:"box"`
}

// ProcessImageResponse is the body returned by the image endpoint
type ProcessImageResponse struct {
	Ingredients []DetectedIngredient `json:"ingredients"`
}

// SuggestResponse lists ingredient names for autocompletion
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}
