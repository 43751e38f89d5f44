package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/types"
)

// RecipeService owns the recipe write path and the filtered listing
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// Validate applies the pre-persistence checks to a recipe payload. All
// checks run before any row is touched.
func (s *RecipeService) Validate(req *types.RecipeRequest) error {
	if req.CookingTime < 1 {
		return newValidationError("cooking_time", "must not be less than 1")
	}

	if len(req.Ingredients) == 0 {
		return newValidationError("ingredients", "a recipe needs at least 1 ingredient")
	}
	seen := make(map[uuid.UUID]bool, len(req.Ingredients))
	for _, item := range req.Ingredients {
		if item.Amount < 1 {
			return newValidationError("ingredients", "amount must not be less than 1")
		}
		if seen[item.ID] {
			return newValidationError("ingredients", "ingredient %s is listed more than once", item.ID)
		}
		seen[item.ID] = true
	}

	var ingredientCount int64
	ingredientIDs := make([]uuid.UUID, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		ingredientIDs = append(ingredientIDs, item.ID)
	}
	if err := s.db.Model(&models.Ingredient{}).Where("id IN ?", ingredientIDs).Count(&ingredientCount).Error; err != nil {
		return err
	}
	if int(ingredientCount) != len(ingredientIDs) {
		return newValidationError("ingredients", "unknown ingredient referenced")
	}

	if len(req.Tags) == 0 {
		return newValidationError("tags", "pick at least 1 tag")
	}
	var tags []models.Tag
	if err := s.db.Where("id IN ?", req.Tags).Find(&tags).Error; err != nil {
		return err
	}
	known := make(map[uuid.UUID]bool, len(tags))
	for _, tag := range tags {
		known[tag.ID] = true
	}
	for _, id := range req.Tags {
		if !known[id] {
			return newValidationError("tags", "tag %s does not exist", id)
		}
	}

	return nil
}

// Create validates the payload and persists the recipe with its
// ingredient and tag sets in one transaction. The author is fixed to the
// acting user.
func (s *RecipeService) Create(authorID uuid.UUID, req *types.RecipeRequest, imageURL string) (*models.Recipe, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        req.Name,
		Image:       imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		AuthorID:    authorID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := s.createIngredients(tx, recipe.ID, req.Ingredients); err != nil {
			return err
		}
		return s.setTags(tx, &recipe, req.Tags)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(recipe.ID)
}

// Update validates the payload and replaces the recipe's scalar fields,
// ingredient set (clear then recreate) and tag set. Only the author may
// update; the author itself never changes.
func (s *RecipeService) Update(recipeID, actingUser uuid.UUID, req *types.RecipeRequest, imageURL string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != actingUser {
		return nil, ErrNotRecipeAuthor
	}

	if err := s.Validate(req); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         req.Name,
			"text":         req.Text,
			"cooking_time": req.CookingTime,
		}
		if imageURL != "" {
			updates["image"] = imageURL
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := s.createIngredients(tx, recipe.ID, req.Ingredients); err != nil {
			return err
		}
		return s.setTags(tx, &recipe, req.Tags)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(recipe.ID)
}

func (s *RecipeService) createIngredients(tx *gorm.DB, recipeID uuid.UUID, items []types.RecipeIngredientRequest) error {
	for _, item := range items {
		row := models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *RecipeService) setTags(tx *gorm.DB, recipe *models.Recipe, tagIDs []uuid.UUID) error {
	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return err
	}
	return tx.Model(recipe).Association("Tags").Replace(tags)
}

// Get loads a recipe with its author, tags and ingredient rows
func (s *RecipeService) Get(id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// Delete removes a recipe; only the author may delete it
func (s *RecipeService) Delete(recipeID, actingUser uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if recipe.AuthorID != actingUser {
		return ErrNotRecipeAuthor
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// List returns a page of recipes matching the filter, newest first.
// actingUser scopes the is_favorited/is_in_shopping_cart filters and is
// nil for anonymous callers, for whom those filters are ignored.
func (s *RecipeService) List(filter *types.RecipeListFilter, actingUser *uuid.UUID) ([]models.Recipe, int64, error) {
	query := s.db.Model(&models.Recipe{}).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.pub_date DESC")

	if filter.Author != nil {
		query = query.Where("recipes.author_id = ?", *filter.Author)
	}

	if len(filter.TagSlugs) > 0 {
		// OR semantics over slugs; the subquery keeps the result distinct
		query = query.Where(
			"recipes.id IN (?)",
			s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs),
		)
	}

	if actingUser != nil {
		if filter.IsFavorited {
			query = query.Where(
				"recipes.id IN (?)",
				s.db.Table("favorite_recipe_items").
					Select("favorite_recipe_items.recipe_id").
					Joins("JOIN favorite_recipes ON favorite_recipes.id = favorite_recipe_items.favorite_recipe_id").
					Where("favorite_recipes.user_id = ?", *actingUser),
			)
		}
		if filter.IsInShoppingCart {
			query = query.Where(
				"recipes.id IN (?)",
				s.db.Table("shopping_cart_items").
					Select("shopping_cart_items.recipe_id").
					Joins("JOIN shopping_carts ON shopping_carts.id = shopping_cart_items.shopping_cart_id").
					Where("shopping_carts.user_id = ?", *actingUser),
			)
		}
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
		if filter.Page > 1 {
			query = query.Offset((filter.Page - 1) * filter.Limit)
		}
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}
