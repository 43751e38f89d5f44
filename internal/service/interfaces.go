package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(req *types.CreateUserRequest) (*models.User, error)
	Login(email, password string) (string, error)
	SetPassword(userID uuid.UUID, currentPassword, newPassword string) error
	GetUserByID(userID uuid.UUID) (*models.User, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IRecipeService defines the interface for the recipe write path and reads
type IRecipeService interface {
	Validate(req *types.RecipeRequest) error
	Create(authorID uuid.UUID, req *types.RecipeRequest, imageURL string) (*models.Recipe, error)
	Update(recipeID, actingUser uuid.UUID, req *types.RecipeRequest, imageURL string) (*models.Recipe, error)
	Get(id uuid.UUID) (*models.Recipe, error)
	Delete(recipeID, actingUser uuid.UUID) error
	List(filter *types.RecipeListFilter, actingUser *uuid.UUID) ([]models.Recipe, int64, error)
}

// IRelationService defines the interface for the toggle relations
type IRelationService interface {
	AddFavorite(userID, recipeID uuid.UUID) (*models.Recipe, error)
	RemoveFavorite(userID, recipeID uuid.UUID) error
	AddToCart(userID, recipeID uuid.UUID) (*models.Recipe, error)
	RemoveFromCart(userID, recipeID uuid.UUID) error
	Subscribe(userID, authorID uuid.UUID) (*SubscriptionEntry, error)
	Unsubscribe(userID, authorID uuid.UUID) error
	IsSubscribed(actingUser *uuid.UUID, target uuid.UUID) (bool, error)
	ListSubscriptions(userID uuid.UUID, page, limit, recipesLimit int) ([]SubscriptionEntry, int64, error)
	FavoriteRecipeIDs(userID uuid.UUID) (map[uuid.UUID]bool, error)
	CartRecipeIDs(userID uuid.UUID) (map[uuid.UUID]bool, error)
}

// IShoppingListService defines the interface for the cart export
type IShoppingListService interface {
	Aggregate(userID uuid.UUID) ([]ShoppingListItem, error)
	Render(items []ShoppingListItem) ([]byte, error)
	Download(userID uuid.UUID) ([]byte, error)
}

// IImageService defines the interface for recipe image storage
type IImageService interface {
	SaveBase64(ctx context.Context, data string) (string, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IRelationService     = (*RelationService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
	_ IImageService        = (*ImageService)(nil)
)
