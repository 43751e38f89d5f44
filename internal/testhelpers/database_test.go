package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/platefeed/backend/internal/models"
)

func TestSetupTestDBCreatesSchema(t *testing.T) {
	db := SetupTestDB(t)

	user := CreateTestUser(t, db, "schema@example.com")

	var favorites models.FavoriteRecipe
	assert.NoError(t, db.First(&favorites, "user_id = ?", user.ID).Error)

	var cart models.ShoppingCart
	assert.NoError(t, db.First(&cart, "user_id = ?", user.ID).Error)
}

// Exercises the same schema against a real postgres; opt-in because it
// needs a docker daemon.
func TestPostgresMigrations(t *testing.T) {
	db := SetupPostgresDB(t)

	user := CreateTestUser(t, db, "pg@example.com")

	var count int64
	assert.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
