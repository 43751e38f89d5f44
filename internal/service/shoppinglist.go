package service

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"
)

// Page layout for the rendered shopping list, in millimetres on A4
const (
	shoppingListTopMargin    = 20.0
	shoppingListLeftMargin   = 20.0
	shoppingListBottomMargin = 20.0
	shoppingListLineHeight   = 8.0
	shoppingListPageHeight   = 297.0
)

// ShoppingListItem is one grouped-sum line of the report
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Total           float64
}

// ShoppingListService aggregates a user's cart into grouped ingredient
// totals and renders them as a printable PDF.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate collects every ingredient row of every recipe in the user's
// cart, grouped by (name, measurement unit) with summed amounts. Ordering
// is fixed so the output is reproducible for a given cart snapshot.
func (s *ShoppingListService) Aggregate(userID uuid.UUID) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := s.db.Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_items ON shopping_cart_items.recipe_id = recipe_ingredients.recipe_id").
		Joins("JOIN shopping_carts ON shopping_carts.id = shopping_cart_items.shopping_cart_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Render lays the grouped totals out as a PDF document. One line per
// ingredient with a running sequence number; the cursor walks down the
// page and breaks to a fresh page at the bottom margin without resetting
// the numbering. An empty list yields a single page with only the empty
// message.
func (s *ShoppingListService) Render(items []ShoppingListItem) ([]byte, error) {
	return outputPDF(s.compose(items))
}

func (s *ShoppingListService) compose(items []ShoppingListItem) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	if len(items) == 0 {
		pdf.SetFont("Helvetica", "B", 24)
		pdf.Text(shoppingListLeftMargin, 100, "Shopping list is empty")
		return pdf
	}

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Text(shoppingListLeftMargin, shoppingListTopMargin, "Shopping list")

	pdf.SetFont("Helvetica", "", 14)
	y := shoppingListTopMargin + 2*shoppingListLineHeight
	for i, item := range items {
		if y > shoppingListPageHeight-shoppingListBottomMargin {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "", 14)
			y = shoppingListTopMargin
		}
		line := fmt.Sprintf("%d. %s - %s %s", i+1, item.Name, formatAmount(item.Total), item.MeasurementUnit)
		pdf.Text(shoppingListLeftMargin, y, line)
		y += shoppingListLineHeight
	}

	return pdf
}

// Download aggregates and renders in one step; the document is rebuilt
// on every request.
func (s *ShoppingListService) Download(userID uuid.UUID) ([]byte, error) {
	items, err := s.Aggregate(userID)
	if err != nil {
		return nil, err
	}
	return s.Render(items)
}

func outputPDF(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatAmount drops the trailing ".0" from integral totals
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
