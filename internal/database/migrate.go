package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/models"
)

// Migrate brings the schema up to date. On PostgreSQL the pgvector extension
// must exist before the recipes table can carry its embedding column.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return err
		}
	}

	log.Printf("Running schema migration")
	return db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCart{},
	)
}
