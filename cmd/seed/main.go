// Seeds the reference tags and ingredients a fresh installation needs.
package main

import (
	"log"

	"github.com/foodshare/backend/config"
	"github.com/foodshare/backend/internal/database"
	"github.com/foodshare/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var tags = []models.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
	{Name: "Dessert", Color: "#F9A62B", Slug: "dessert"},
	{Name: "Snack", Color: "#2D9CDB", Slug: "snack"},
}

var ingredients = []models.Ingredient{
	{Name: "flour", MeasurementUnit: "g"},
	{Name: "sugar", MeasurementUnit: "g"},
	{Name: "salt", MeasurementUnit: "g"},
	{Name: "butter", MeasurementUnit: "g"},
	{Name: "milk", MeasurementUnit: "ml"},
	{Name: "water", MeasurementUnit: "ml"},
	{Name: "olive oil", MeasurementUnit: "ml"},
	{Name: "egg", MeasurementUnit: "pcs"},
	{Name: "onion", MeasurementUnit: "pcs"},
	{Name: "garlic", MeasurementUnit: "cloves"},
	{Name: "tomato", MeasurementUnit: "pcs"},
	{Name: "potato", MeasurementUnit: "pcs"},
	{Name: "carrot", MeasurementUnit: "pcs"},
	{Name: "chicken breast", MeasurementUnit: "g"},
	{Name: "ground beef", MeasurementUnit: "g"},
	{Name: "rice", MeasurementUnit: "g"},
	{Name: "pasta", MeasurementUnit: "g"},
	{Name: "cheese", MeasurementUnit: "g"},
	{Name: "black pepper", MeasurementUnit: "g"},
	{Name: "basil", MeasurementUnit: "g"},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tags).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ingredients).Error
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d tags and %d ingredients", len(tags), len(ingredients))
}
