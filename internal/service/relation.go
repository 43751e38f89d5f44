package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// RelationService implements the toggle relations: favorites, shopping
// cart and subscriptions. Favorite/cart add and remove are idempotent
// set operations; subscriptions reject self-targets and duplicates.
type RelationService struct {
	db *gorm.DB
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

// SubscriptionEntry is one followed author with their recipe annotations
type SubscriptionEntry struct {
	Author       models.User
	RecipesCount int64
	Recipes      []models.Recipe
}

// AddFavorite inserts the recipe into the user's favorites. Adding an
// already-present recipe is a no-op success.
func (s *RelationService) AddFavorite(userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.appendToCollection(&models.FavoriteRecipe{}, userID, recipeID)
}

// RemoveFavorite removes the recipe from the user's favorites. Removing
// an absent recipe is a no-op success.
func (s *RelationService) RemoveFavorite(userID, recipeID uuid.UUID) error {
	return s.removeFromCollection(&models.FavoriteRecipe{}, userID, recipeID)
}

// AddToCart inserts the recipe into the user's shopping cart
func (s *RelationService) AddToCart(userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.appendToCollection(&models.ShoppingCart{}, userID, recipeID)
}

// RemoveFromCart removes the recipe from the user's shopping cart
func (s *RelationService) RemoveFromCart(userID, recipeID uuid.UUID) error {
	return s.removeFromCollection(&models.ShoppingCart{}, userID, recipeID)
}

func (s *RelationService) appendToCollection(collection interface{}, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.db.First(collection, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}

	// Association append upserts the join row, so repeats stay no-ops
	if err := s.db.Model(collection).Association("Recipes").Append(&recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (s *RelationService) removeFromCollection(collection interface{}, userID, recipeID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.db.First(collection, "user_id = ?", userID).Error; err != nil {
		return err
	}

	return s.db.Model(collection).Association("Recipes").Delete(&recipe)
}

// FavoriteRecipeIDs returns the set of recipe ids the user has favorited
func (s *RelationService) FavoriteRecipeIDs(userID uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.collectionRecipeIDs(
		"favorite_recipe_items", "favorite_recipes", "favorite_recipe_id", userID)
}

// CartRecipeIDs returns the set of recipe ids in the user's cart
func (s *RelationService) CartRecipeIDs(userID uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.collectionRecipeIDs(
		"shopping_cart_items", "shopping_carts", "shopping_cart_id", userID)
}

func (s *RelationService) collectionRecipeIDs(joinTable, ownerTable, ownerFK string, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	err := s.db.Table(joinTable).
		Joins("JOIN "+ownerTable+" ON "+ownerTable+".id = "+joinTable+"."+ownerFK).
		Where(ownerTable+".user_id = ?", userID).
		Pluck(joinTable+".recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Subscribe creates a follower relation and returns the annotated author
// entry. Self-subscription and duplicate pairs are conflicts; the unique
// index on (user_id, author_id) decides races between concurrent
// subscribes.
func (s *RelationService) Subscribe(userID, authorID uuid.UUID) (*SubscriptionEntry, error) {
	var author models.User
	if err := s.db.First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if userID == authorID {
		return nil, ErrSelfSubscription
	}

	var existing models.Subscription
	if err := s.db.Where("user_id = ? AND author_id = ?", userID, authorID).First(&existing).Error; err == nil {
		return nil, ErrAlreadySubscribed
	}

	sub := models.Subscription{UserID: userID, AuthorID: authorID}
	if err := s.db.Create(&sub).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}

	entry, err := s.annotateAuthor(author, 0)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Unsubscribe deletes the relation row; absent rows are a no-op
func (s *RelationService) Unsubscribe(userID, authorID uuid.UUID) error {
	var author models.User
	if err := s.db.First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.db.Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{}).Error
}

// IsSubscribed reports whether actingUser follows target. False for the
// anonymous case (nil actingUser).
func (s *RelationService) IsSubscribed(actingUser *uuid.UUID, target uuid.UUID) (bool, error) {
	if actingUser == nil {
		return false, nil
	}
	var count int64
	err := s.db.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", *actingUser, target).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// annotateAuthor builds the author entry with the recipe count and the
// (optionally capped) recipe list.
func (s *RelationService) annotateAuthor(author models.User, recipesLimit int) (SubscriptionEntry, error) {
	entry := SubscriptionEntry{Author: author}

	if err := s.db.Model(&models.Recipe{}).
		Where("author_id = ?", author.ID).
		Count(&entry.RecipesCount).Error; err != nil {
		return entry, err
	}

	recipes := s.db.Where("author_id = ?", author.ID).Order("pub_date DESC")
	if recipesLimit > 0 {
		recipes = recipes.Limit(recipesLimit)
	}
	if err := recipes.Find(&entry.Recipes).Error; err != nil {
		return entry, err
	}
	return entry, nil
}

// ListSubscriptions returns a page of the user's followed authors, each
// annotated with their recipe count and recipes. recipesLimit caps the
// per-author recipe list; 0 means unlimited.
func (s *RelationService) ListSubscriptions(userID uuid.UUID, page, limit, recipesLimit int) ([]SubscriptionEntry, int64, error) {
	query := s.db.Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit)
		if page > 1 {
			query = query.Offset((page - 1) * limit)
		}
	}

	var subs []models.Subscription
	if err := query.Preload("Author").Find(&subs).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]SubscriptionEntry, 0, len(subs))
	for _, sub := range subs {
		entry, err := s.annotateAuthor(sub.Author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}
	return entries, count, nil
}

// isUniqueViolation matches unique-constraint failures across the
// postgres and sqlite drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
