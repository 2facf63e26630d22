package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/pantrychef/backend/internal/model"
)

// FavouriteService manages the recipes a user has saved. Every operation
// is scoped to the calling user.
type FavouriteService struct {
	db *gorm.DB
}

func NewFavouriteService(db *gorm.DB) *FavouriteService {
	return &FavouriteService{db: db}
}

// List returns one page of the user's favourites, newest first
func (s *FavouriteService) List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.FavouriteRecipe, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.FavouriteRecipe{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var favourites []model.FavouriteRecipe
	err := q.Preload("Recipe").
		Order("added_at DESC, id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&favourites).Error
	if err != nil {
		return nil, 0, err
	}
	return favourites, total, nil
}

// Create saves recipeID for the user
func (s *FavouriteService) Create(ctx context.Context, userID, recipeID uuid.UUID) (*model.FavouriteRecipe, error) {
	favourite := model.FavouriteRecipe{UserID: userID, RecipeID: recipeID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe model.Recipe
		if err := tx.Select("id").First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&model.FavouriteRecipe{}).
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyFavourite
		}

		return tx.Create(&favourite).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyFavourite
		}
		return nil, err
	}

	return s.Get(ctx, userID, favourite.ID)
}

// Get returns a single favourite owned by the user
func (s *FavouriteService) Get(ctx context.Context, userID, id uuid.UUID) (*model.FavouriteRecipe, error) {
	var favourite model.FavouriteRecipe
	err := s.db.WithContext(ctx).
		Preload("Recipe").
		Where("id = ? AND user_id = ?", id, userID).
		First(&favourite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFavouriteNotFound
		}
		return nil, err
	}
	return &favourite, nil
}

// Delete removes a favourite owned by the user
func (s *FavouriteService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.FavouriteRecipe{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFavouriteNotFound
	}
	return nil
}
