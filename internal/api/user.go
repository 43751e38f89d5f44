package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/types"
	"gorm.io/gorm"
)

type UserHandler struct {
	db          *gorm.DB
	authService service.IAuthService
	relations   service.IRelationService
}

func NewUserHandler(db *gorm.DB, authService service.IAuthService, relations service.IRelationService) *UserHandler {
	return &UserHandler{
		db:          db,
		authService: authService,
		relations:   relations,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.authService), h.ListSubscriptions)
		users.POST("/set_password", middleware.AuthMiddleware(h.authService), h.SetPassword)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Unsubscribe)
	}
}

// CreateUser registers a new user
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req types.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user, false))
}

// ListUsers returns a page of user profiles
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c)

	query := h.db.Model(&models.User{}).Order("created_at ASC")

	var count int64
	if err := query.Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
		return
	}
	if limit > 0 {
		query = query.Limit(limit).Offset((page - 1) * limit)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
		return
	}

	acting := actingUserPtr(c)
	results := make([]UserResponse, 0, len(users))
	for i := range users {
		subscribed, err := h.relations.IsSubscribed(acting, users[i].ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
			return
		}
		results = append(results, newUserResponse(&users[i], subscribed))
	}

	c.JSON(http.StatusOK, PageResponse{Count: count, Results: results})
}

// GetUser returns one user profile
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	subscribed, err := h.relations.IsSubscribed(actingUserPtr(c), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user, subscribed))
}

// Me returns the acting user's own profile
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user, false))
}

// SetPassword rotates the acting user's password
func (h *UserHandler) SetPassword(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.SetPassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "password changed successfully"})
}

// Subscribe follows another author
func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	entry, err := h.relations.Subscribe(userID, authorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newSubscriptionResponse(entry))
}

// Unsubscribe removes the follow relation; absent relations are a no-op
func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.relations.Unsubscribe(userID, authorID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSubscriptions returns the acting user's followed authors with
// recipe counts. recipes_limit caps each author's recipe list.
func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	page, limit := pageParams(c)
	recipesLimit, _ := strconv.Atoi(c.DefaultQuery("recipes_limit", "0"))

	entries, count, err := h.relations.ListSubscriptions(userID, page, limit, recipesLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch subscriptions"})
		return
	}

	results := make([]SubscriptionResponse, 0, len(entries))
	for i := range entries {
		results = append(results, newSubscriptionResponse(&entries[i]))
	}

	c.JSON(http.StatusOK, PageResponse{Count: count, Results: results})
}
