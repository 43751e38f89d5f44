package database

import (
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// Migrate creates or updates the relational schema. Join tables and the
// unique indexes backing the toggle relations come from the model tags.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Subscription{},
		&models.FavoriteRecipe{},
		&models.ShoppingCart{},
	)
}
