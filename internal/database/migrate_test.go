package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/service"
	"github.com/foodshare/backend/internal/testhelpers"
)

func TestMigrateCreatesSchema(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)

	for _, model := range []interface{}{
		&models.User{},
		&models.Subscription{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCart{},
	} {
		assert.True(t, db.Migrator().HasTable(model))
	}
}

func TestVectorOrderingOnPostgres(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)

	user := models.User{
		Email:        "vec@example.com",
		Username:     "vec",
		FirstName:    "Vec",
		LastName:     "Tor",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)

	names := []string{"Borscht", "Miso soup", "Pancakes with syrup"}
	for _, name := range names {
		recipe := models.Recipe{
			Name:        name,
			Image:       "/media/recipes/images/a.png",
			Text:        "text",
			CookingTime: 10,
			AuthorID:    user.ID,
			Embedding:   service.GenerateEmbedding(name + " text"),
		}
		require.NoError(t, db.Create(&recipe).Error)
	}

	var results []models.Recipe
	vec := service.GenerateEmbedding("Miso soup text")
	err := db.
		Raw("SELECT * FROM recipes ORDER BY embedding <-> ?", vec).
		Scan(&results).Error
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Miso soup", results[0].Name)
}
