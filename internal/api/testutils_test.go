package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/testhelpers"
)

const testJWTSecret = "test-secret"

// testEnv bundles the router with the backing services so tests can seed
// data directly and exercise the HTTP surface.
type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	auth    *service.AuthService
	recipes *service.RecipeService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)

	authService := service.NewAuthService(db, testJWTSecret)
	recipeService := service.NewRecipeService(db)
	relationService := service.NewRelationService(db)
	shoppingService := service.NewShoppingListService(db)
	imageService, err := service.NewImageService(t.TempDir(), nil)
	require.NoError(t, err)

	router := gin.New()
	v1 := router.Group("/api/v1")
	NewAuthHandler(authService).RegisterRoutes(v1)
	NewUserHandler(db, authService, relationService).RegisterRoutes(v1)
	NewTagHandler(db).RegisterRoutes(v1)
	NewIngredientHandler(db).RegisterRoutes(v1)
	NewRecipeHandler(recipeService, relationService, shoppingService, imageService, authService, nil).RegisterRoutes(v1)

	return &testEnv{
		router:  router,
		db:      db,
		auth:    authService,
		recipes: recipeService,
	}
}

// createUser seeds a user and returns them with a valid bearer token
func (e *testEnv) createUser(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	user := testhelpers.CreateTestUser(t, e.db, email)
	token, err := e.auth.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
