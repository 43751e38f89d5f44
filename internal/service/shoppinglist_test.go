package service

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/testhelpers"
	"github.com/platefeed/backend/internal/types"
)

func cartWithRecipes(t *testing.T, db *gorm.DB, user *models.User, requests ...*types.RecipeRequest) {
	t.Helper()
	recipes := NewRecipeService(db)
	relations := NewRelationService(db)
	for _, req := range requests {
		recipe, err := recipes.Create(user.ID, req, "")
		require.NoError(t, err)
		_, err = relations.AddToCart(user.ID, recipe.ID)
		require.NoError(t, err)
	}
}

func TestAggregateSumsSharedIngredients(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateTestUser(t, db, "cart@example.com")
	tag := testhelpers.CreateTestTag(t, db, "Dinner", "dinner")
	salt := testhelpers.CreateTestIngredient(t, db, "Salt", "g")
	pepper := testhelpers.CreateTestIngredient(t, db, "Pepper", "g")

	cartWithRecipes(t, db, user,
		&types.RecipeRequest{
			Name: "Soup", Text: "t", CookingTime: 10,
			Ingredients: []types.RecipeIngredientRequest{
				{ID: salt.ID, Amount: 5},
				{ID: pepper.ID, Amount: 2},
			},
			Tags: []uuid.UUID{tag.ID},
		},
		&types.RecipeRequest{
			Name: "Stew", Text: "t", CookingTime: 20,
			Ingredients: []types.RecipeIngredientRequest{
				{ID: salt.ID, Amount: 10},
			},
			Tags: []uuid.UUID{tag.ID},
		},
	)

	items, err := NewShoppingListService(db).Aggregate(user.ID)
	require.NoError(t, err)

	// One line per (name, unit) pair, amounts summed, ordered by name
	require.Len(t, items, 2)
	assert.Equal(t, "Pepper", items[0].Name)
	assert.Equal(t, 2.0, items[0].Total)
	assert.Equal(t, "Salt", items[1].Name)
	assert.Equal(t, "g", items[1].MeasurementUnit)
	assert.Equal(t, 15.0, items[1].Total)
}

func TestAggregateEmptyCart(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateTestUser(t, db, "empty@example.com")

	items, err := NewShoppingListService(db).Aggregate(user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAggregateScopedToOwner(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	owner := testhelpers.CreateTestUser(t, db, "owner@example.com")
	other := testhelpers.CreateTestUser(t, db, "other@example.com")
	tag := testhelpers.CreateTestTag(t, db, "Dinner", "dinner")
	salt := testhelpers.CreateTestIngredient(t, db, "Salt", "g")

	cartWithRecipes(t, db, owner, &types.RecipeRequest{
		Name: "Soup", Text: "t", CookingTime: 10,
		Ingredients: []types.RecipeIngredientRequest{{ID: salt.ID, Amount: 5}},
		Tags:        []uuid.UUID{tag.ID},
	})

	items, err := NewShoppingListService(db).Aggregate(other.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRenderProducesPDF(t *testing.T) {
	svc := NewShoppingListService(nil)

	doc, err := svc.Render([]ShoppingListItem{
		{Name: "Salt", MeasurementUnit: "g", Total: 15},
		{Name: "Milk", MeasurementUnit: "ml", Total: 250.5},
	})
	require.NoError(t, err)
	assert.True(t, len(doc) > 4)
	assert.Equal(t, "%PDF", string(doc[:4]))
}

func TestRenderEmptyList(t *testing.T) {
	svc := NewShoppingListService(nil)

	doc, err := svc.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(doc[:4]))
}

// pdfTextContent inflates the document's content streams so assertions
// can see the rendered line text.
func pdfTextContent(t *testing.T, doc []byte) string {
	t.Helper()
	var out bytes.Buffer
	rest := doc
	for {
		start := bytes.Index(rest, []byte("stream\n"))
		if start < 0 {
			break
		}
		rest = rest[start+len("stream\n"):]
		end := bytes.Index(rest, []byte("endstream"))
		if end < 0 {
			break
		}
		if r, err := zlib.NewReader(bytes.NewReader(rest[:end])); err == nil {
			if inflated, err := io.ReadAll(r); err == nil {
				out.Write(inflated)
			}
		}
		rest = rest[end+len("endstream"):]
	}
	return out.String()
}

func TestRenderManyItemsPaginates(t *testing.T) {
	svc := NewShoppingListService(nil)

	items := make([]ShoppingListItem, 80)
	for i := range items {
		items[i] = ShoppingListItem{Name: "Item", MeasurementUnit: "g", Total: float64(i + 1)}
	}

	// The heading pushes the first line to topMargin + 2*lineHeight; a
	// line still prints when the cursor sits exactly on the bottom margin
	linesAvailable := (shoppingListPageHeight - shoppingListBottomMargin - (shoppingListTopMargin + 2*shoppingListLineHeight)) / shoppingListLineHeight
	firstPageLines := int(linesAvailable) + 1

	pdf := svc.compose(items)
	assert.Equal(t, 3, pdf.PageCount())

	doc, err := svc.Render(items)
	require.NoError(t, err)
	text := pdfTextContent(t, doc)

	// Numbering continues across the page break instead of restarting
	assert.Contains(t, text, fmt.Sprintf("(%d. Item", firstPageLines))
	assert.Contains(t, text, fmt.Sprintf("(%d. Item", firstPageLines+1))
	assert.Contains(t, text, "(80. Item")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "15", formatAmount(15))
	assert.Equal(t, "250.5", formatAmount(250.5))
	assert.Equal(t, "0.25", formatAmount(0.25))
}
