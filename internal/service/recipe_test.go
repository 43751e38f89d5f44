package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/testhelpers"
	"github.com/platefeed/backend/internal/types"
)

type recipeFixture struct {
	db     *gorm.DB
	svc    *RecipeService
	author *models.User
	tag    *models.Tag
	salt   *models.Ingredient
	pepper *models.Ingredient
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	db := testhelpers.SetupTestDB(t)
	return &recipeFixture{
		db:     db,
		svc:    NewRecipeService(db),
		author: testhelpers.CreateTestUser(t, db, "author@example.com"),
		tag:    testhelpers.CreateTestTag(t, db, "Dinner", "dinner"),
		salt:   testhelpers.CreateTestIngredient(t, db, "Salt", "g"),
		pepper: testhelpers.CreateTestIngredient(t, db, "Pepper", "g"),
	}
}

func (f *recipeFixture) validRequest() *types.RecipeRequest {
	return &types.RecipeRequest{
		Name:        "Soup",
		Text:        "Boil everything.",
		CookingTime: 30,
		Ingredients: []types.RecipeIngredientRequest{
			{ID: f.salt.ID, Amount: 5},
		},
		Tags: []uuid.UUID{f.tag.ID},
	}
}

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, field, vErr.Field)
}

func TestCreateRecipeRejectsZeroCookingTime(t *testing.T) {
	f := newRecipeFixture(t)

	req := f.validRequest()
	req.CookingTime = 0

	_, err := f.svc.Create(f.author.ID, req, "")
	assertValidationField(t, err, "cooking_time")
}

func TestCreateRecipeRejectsEmptyIngredients(t *testing.T) {
	f := newRecipeFixture(t)

	req := f.validRequest()
	req.Ingredients = nil

	_, err := f.svc.Create(f.author.ID, req, "")
	assertValidationField(t, err, "ingredients")
}

func TestCreateRecipeRejectsZeroAmount(t *testing.T) {
	f := newRecipeFixture(t)

	req := f.validRequest()
	req.Ingredients[0].Amount = 0

	_, err := f.svc.Create(f.author.ID, req, "")
	assertValidationField(t, err, "ingredients")
}

func TestCreateRecipeRejectsDuplicateIngredient(t *testing.T) {
	f := newRecipeFixture(t)

	req := f.validRequest()
	req.Ingredients = append(req.Ingredients, types.RecipeIngredientRequest{ID: f.salt.ID, Amount: 10})

	_, err := f.svc.Create(f.author.ID, req, "")
	assertValidationField(t, err, "ingredients")
}

func TestCreateRecipeRejectsUnknownIngredient(t *testing.T) {
	f := newRecipeFixture(t)

	req := f.validRequest()
	req.Ingredients = []types.RecipeIngredientRequest{{ID: uuid.New(), Amount: 5}}

	_, err := f.svc.Create(f.author.ID, req, "")
	assertValidationField(t, err, "ingredients")
}

func TestCreateRecipeRejectsEmptyTags(t *testing.T) {
	f := newRecipeFixture(t)

	req := f.validRequest()
	req.Tags = nil

	_, err := f.svc.Create(f.author.ID, req, "")
	assertValidationField(t, err, "tags")
}

func TestCreateRecipeNamesMissingTag(t *testing.T) {
	f := newRecipeFixture(t)

	missing := uuid.New()
	req := f.validRequest()
	req.Tags = append(req.Tags, missing)

	_, err := f.svc.Create(f.author.ID, req, "")
	assertValidationField(t, err, "tags")
	assert.Contains(t, err.Error(), missing.String())
}

func TestCreateRecipePersistsEverything(t *testing.T) {
	f := newRecipeFixture(t)

	recipe, err := f.svc.Create(f.author.ID, f.validRequest(), "/static/recipes/soup.png")
	require.NoError(t, err)

	assert.Equal(t, f.author.ID, recipe.AuthorID)
	assert.Equal(t, "Soup", recipe.Name)
	assert.Equal(t, "/static/recipes/soup.png", recipe.Image)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, "Salt", recipe.Ingredients[0].Ingredient.Name)
	assert.Equal(t, 5.0, recipe.Ingredients[0].Amount)
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "dinner", recipe.Tags[0].Slug)
}

func TestUpdateReplacesIngredientSet(t *testing.T) {
	f := newRecipeFixture(t)

	recipe, err := f.svc.Create(f.author.ID, f.validRequest(), "")
	require.NoError(t, err)

	req := f.validRequest()
	req.Ingredients = []types.RecipeIngredientRequest{{ID: f.pepper.ID, Amount: 2}}

	updated, err := f.svc.Update(recipe.ID, f.author.ID, req, "")
	require.NoError(t, err)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, "Pepper", updated.Ingredients[0].Ingredient.Name)

	// The old rows are gone, not orphaned
	var count int64
	require.NoError(t, f.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateFailedValidationLeavesIngredientsIntact(t *testing.T) {
	f := newRecipeFixture(t)

	recipe, err := f.svc.Create(f.author.ID, f.validRequest(), "")
	require.NoError(t, err)

	req := f.validRequest()
	req.Ingredients = []types.RecipeIngredientRequest{{ID: f.pepper.ID, Amount: 0}}

	_, err = f.svc.Update(recipe.ID, f.author.ID, req, "")
	require.Error(t, err)

	reloaded, err := f.svc.Get(recipe.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Ingredients, 1)
	assert.Equal(t, "Salt", reloaded.Ingredients[0].Ingredient.Name)
}

func TestUpdateByNonAuthorForbidden(t *testing.T) {
	f := newRecipeFixture(t)
	stranger := testhelpers.CreateTestUser(t, f.db, "stranger@example.com")

	recipe, err := f.svc.Create(f.author.ID, f.validRequest(), "")
	require.NoError(t, err)

	_, err = f.svc.Update(recipe.ID, stranger.ID, f.validRequest(), "")
	assert.ErrorIs(t, err, ErrNotRecipeAuthor)

	err = f.svc.Delete(recipe.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotRecipeAuthor)
}

func TestListFiltersByAuthorAndTag(t *testing.T) {
	f := newRecipeFixture(t)
	other := testhelpers.CreateTestUser(t, f.db, "other@example.com")
	breakfast := testhelpers.CreateTestTag(t, f.db, "Breakfast", "breakfast")

	_, err := f.svc.Create(f.author.ID, f.validRequest(), "")
	require.NoError(t, err)

	req := f.validRequest()
	req.Name = "Porridge"
	req.Tags = []uuid.UUID{breakfast.ID}
	_, err = f.svc.Create(other.ID, req, "")
	require.NoError(t, err)

	byAuthor, count, err := f.svc.List(&types.RecipeListFilter{Author: &other.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "Porridge", byAuthor[0].Name)

	byTag, _, err := f.svc.List(&types.RecipeListFilter{TagSlugs: []string{"dinner"}}, nil)
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "Soup", byTag[0].Name)

	// OR semantics across slugs
	both, _, err := f.svc.List(&types.RecipeListFilter{TagSlugs: []string{"dinner", "breakfast"}}, nil)
	require.NoError(t, err)
	assert.Len(t, both, 2)
}

func TestListFavoritedScopedToActingUser(t *testing.T) {
	f := newRecipeFixture(t)
	relations := NewRelationService(f.db)

	recipe, err := f.svc.Create(f.author.ID, f.validRequest(), "")
	require.NoError(t, err)

	_, err = relations.AddFavorite(f.author.ID, recipe.ID)
	require.NoError(t, err)

	favorited, _, err := f.svc.List(&types.RecipeListFilter{IsFavorited: true}, &f.author.ID)
	require.NoError(t, err)
	assert.Len(t, favorited, 1)

	// Anonymous callers get the unfiltered listing
	anonymous, _, err := f.svc.List(&types.RecipeListFilter{IsFavorited: true}, nil)
	require.NoError(t, err)
	assert.Len(t, anonymous, 1)
}
