package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"gorm.io/gorm/clause"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/models"
)

type ingredientRow struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// Loads an ingredient catalogue from a JSON file of
// [{"name": ..., "measurement_unit": ...}, ...] entries.
func main() {
	path := flag.String("file", "data/ingredients.json", "path to the ingredients JSON file")
	flag.Parse()

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *path, err)
	}

	var rows []ingredientRow
	if err := json.Unmarshal(data, &rows); err != nil {
		log.Fatalf("Failed to parse %s: %v", *path, err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	for _, row := range rows {
		ingredient := models.Ingredient{
			Name:            row.Name,
			MeasurementUnit: row.MeasurementUnit,
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ingredient).Error; err != nil {
			log.Fatalf("Failed to seed ingredient %s: %v", row.Name, err)
		}
	}

	log.Printf("Seeded %d ingredients", len(rows))
}
