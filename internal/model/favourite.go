package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FavouriteRecipe bookmarks a recipe for a user. A user can favourite a
// recipe at most once.
type FavouriteRecipe struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favourite_user_recipe" json:"user"`
	RecipeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favourite_user_recipe;index" json:"recipe_id"`
	Recipe   *Recipe   `gorm:"constraint:OnDelete:CASCADE" json:"recipe,omitempty"`
	AddedAt  time.Time `gorm:"autoCreateTime" json:"added_at"`
}

func (FavouriteRecipe) TableName() string {
	return "favourite_recipes"
}

func (f *FavouriteRecipe) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
