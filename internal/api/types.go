package api

import (
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
)

// UserResponse mirrors the public user profile, with is_subscribed
// always present (false for anonymous callers).
type UserResponse struct {
	Email        string    `json:"email"`
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

func newUserResponse(u *models.User, isSubscribed bool) UserResponse {
	return UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

// RecipeIngredientResponse flattens a RecipeIngredient row with its
// ingredient's name and unit.
type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          float64   `json:"amount"`
}

// RecipeResponse is the full recipe representation
type RecipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Tags             []models.Tag               `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

func newRecipeResponse(r *models.Recipe, author UserResponse, favorited, inCart bool) RecipeResponse {
	ingredients := make([]RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, row := range r.Ingredients {
		ingredients = append(ingredients, RecipeIngredientResponse{
			ID:              row.IngredientID,
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		})
	}

	tags := r.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	return RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

// ShortRecipeResponse is the compact recipe body used by the toggle
// endpoints and subscription annotations.
type ShortRecipeResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

func newShortRecipeResponse(r *models.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// SubscriptionResponse is one followed author with recipe annotations
type SubscriptionResponse struct {
	Email        string                `json:"email"`
	ID           uuid.UUID             `json:"id"`
	Username     string                `json:"username"`
	FirstName    string                `json:"first_name"`
	LastName     string                `json:"last_name"`
	IsSubscribed bool                  `json:"is_subscribed"`
	Recipes      []ShortRecipeResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

func newSubscriptionResponse(entry *service.SubscriptionEntry) SubscriptionResponse {
	recipes := make([]ShortRecipeResponse, 0, len(entry.Recipes))
	for i := range entry.Recipes {
		recipes = append(recipes, newShortRecipeResponse(&entry.Recipes[i]))
	}
	return SubscriptionResponse{
		Email:        entry.Author.Email,
		ID:           entry.Author.ID,
		Username:     entry.Author.Username,
		FirstName:    entry.Author.FirstName,
		LastName:     entry.Author.LastName,
		IsSubscribed: true,
		Recipes:      recipes,
		RecipesCount: entry.RecipesCount,
	}
}

// PageResponse wraps a paginated result list
type PageResponse struct {
	Count   int64       `json:"count"`
	Results interface{} `json:"results"`
}
