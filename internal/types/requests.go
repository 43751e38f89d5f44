package types

import "github.com/google/uuid"

// CreateUserRequest is the registration payload
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the token login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SetPasswordRequest rotates the acting user's password
type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=6"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

// RecipeIngredientRequest is one {id, amount} entry of a recipe write
type RecipeIngredientRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount float64   `json:"amount"`
}

// RecipeRequest is the recipe create/update payload. Image is a base64
// data URL; on update an empty image keeps the stored one.
type RecipeRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Image       string                    `json:"image"`
	Text        string                    `json:"text" binding:"required"`
	CookingTime int                       `json:"cooking_time"`
	Ingredients []RecipeIngredientRequest `json:"ingredients"`
	Tags        []uuid.UUID               `json:"tags"`
}

// RecipeListFilter carries the recipe listing query parameters
type RecipeListFilter struct {
	Author           *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
	Page             int
	Limit            int
}
