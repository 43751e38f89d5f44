package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/types"
)

type RecipeHandler struct {
	recipeService   service.IRecipeService
	relations       service.IRelationService
	shoppingService service.IShoppingListService
	imageService    service.IImageService
	authService     service.IAuthService
	rateLimiter     *middleware.RateLimiter
}

func NewRecipeHandler(
	recipeService service.IRecipeService,
	relations service.IRelationService,
	shoppingService service.IShoppingListService,
	imageService service.IImageService,
	authService service.IAuthService,
	rateLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		relations:       relations,
		shoppingService: shoppingService,
		imageService:    imageService,
		authService:     authService,
		rateLimiter:     rateLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	authRequired := middleware.AuthMiddleware(h.authService)
	authOptional := middleware.OptionalAuthMiddleware(h.authService)

	// write chains auth (and the rate limiter when redis is configured)
	// in front of a mutation handler
	write := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{authRequired}
		if h.rateLimiter != nil {
			chain = append(chain, h.rateLimiter.RateLimitMiddleware())
		}
		return append(chain, handler)
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", authOptional, h.ListRecipes)
		recipes.GET("/download_shopping_cart", authRequired, h.DownloadShoppingCart)
		recipes.GET("/:id", authOptional, h.GetRecipe)
		recipes.POST("", write(h.CreateRecipe)...)
		recipes.PATCH("/:id", write(h.UpdateRecipe)...)
		recipes.DELETE("/:id", write(h.DeleteRecipe)...)
		recipes.POST("/:id/favorite", authRequired, h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", authRequired, h.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", authRequired, h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", authRequired, h.RemoveFromShoppingCart)
	}
}

// serializeRecipes builds full recipe responses with the acting-user
// scoped booleans; for anonymous callers every boolean is false.
func (h *RecipeHandler) serializeRecipes(acting *uuid.UUID, recipes []models.Recipe) ([]RecipeResponse, error) {
	favorites := map[uuid.UUID]bool{}
	cart := map[uuid.UUID]bool{}
	if acting != nil {
		var err error
		if favorites, err = h.relations.FavoriteRecipeIDs(*acting); err != nil {
			return nil, err
		}
		if cart, err = h.relations.CartRecipeIDs(*acting); err != nil {
			return nil, err
		}
	}

	results := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		subscribed, err := h.relations.IsSubscribed(acting, r.AuthorID)
		if err != nil {
			return nil, err
		}
		author := newUserResponse(&r.Author, subscribed)
		results = append(results, newRecipeResponse(r, author, favorites[r.ID], cart[r.ID]))
	}
	return results, nil
}

// ListRecipes returns a filtered page of recipes
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, limit := pageParams(c)
	filter := &types.RecipeListFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      c.Query("is_favorited") == "1" || c.Query("is_favorited") == "true",
		IsInShoppingCart: c.Query("is_in_shopping_cart") == "1" || c.Query("is_in_shopping_cart") == "true",
		Page:             page,
		Limit:            limit,
	}

	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.Author = &authorID
	}

	acting := actingUserPtr(c)
	recipes, count, err := h.recipeService.List(filter, acting)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipes"})
		return
	}

	results, err := h.serializeRecipes(acting, recipes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, PageResponse{Count: count, Results: results})
}

// GetRecipe returns one recipe
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.Get(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	results, err := h.serializeRecipes(actingUserPtr(c), []models.Recipe{*recipe})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipe"})
		return
	}

	c.JSON(http.StatusOK, results[0])
}

// CreateRecipe validates and persists a new recipe for the acting user
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imageURL, err := h.imageService.SaveBase64(c.Request.Context(), req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"image": err.Error()}})
		return
	}

	recipe, err := h.recipeService.Create(userID, &req, imageURL)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	results, err := h.serializeRecipes(&userID, []models.Recipe{*recipe})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipe"})
		return
	}

	c.JSON(http.StatusCreated, results[0])
}

// UpdateRecipe validates and replaces a recipe's fields, ingredient set
// and tag set. The author never changes.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imageURL, err := h.imageService.SaveBase64(c.Request.Context(), req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"image": err.Error()}})
		return
	}

	recipe, err := h.recipeService.Update(id, userID, &req, imageURL)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	results, err := h.serializeRecipes(&userID, []models.Recipe{*recipe})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipe"})
		return
	}

	c.JSON(http.StatusOK, results[0])
}

// DeleteRecipe removes one of the acting user's recipes
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.recipeService.Delete(id, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// toggleAdd runs an idempotent collection insert; the recipe not
// existing is a bad request, not a missing resource.
func (h *RecipeHandler) toggleAdd(c *gin.Context, add func(userID, recipeID uuid.UUID) (*models.Recipe, error)) {
	userID, ok := actingUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := add(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": "recipe does not exist"})
			return
		}
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newShortRecipeResponse(recipe))
}

func (h *RecipeHandler) toggleRemove(c *gin.Context, remove func(userID, recipeID uuid.UUID) error) {
	userID, ok := actingUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := remove(userID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": "recipe does not exist"})
			return
		}
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.toggleAdd(c, h.relations.AddFavorite)
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.toggleRemove(c, h.relations.RemoveFavorite)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.toggleAdd(c, h.relations.AddToCart)
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.toggleRemove(c, h.relations.RemoveFromCart)
}

// DownloadShoppingCart streams the aggregated shopping list PDF. Always
// 200, including the "empty" document.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	document, err := h.shoppingService.Download(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build shopping list"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shoppingcart.pdf"`)
	c.Data(http.StatusOK, "application/pdf", document)
}
