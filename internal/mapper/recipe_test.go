package mapper

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/service"
	"github.com/foodshare/backend/internal/testhelpers"
)

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

func pngDataURI(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

type recipeFixture struct {
	db          *gorm.DB
	mapper      *RecipeMapper
	author      *models.User
	tags        []models.Tag
	ingredients []models.Ingredient
}

func setupRecipeFixture(t *testing.T) *recipeFixture {
	t.Helper()
	db := testhelpers.SetupSQLiteDB(t)

	author, err := NewUserMapper(db).Create(validSignup())
	require.NoError(t, err)

	tags := []models.Tag{
		{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
	}
	require.NoError(t, db.Create(&tags).Error)

	ingredients := []models.Ingredient{
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "milk", MeasurementUnit: "ml"},
		{Name: "egg", MeasurementUnit: "pcs"},
	}
	require.NoError(t, db.Create(&ingredients).Error)

	images := service.NewImageService(filepath.Join(t.TempDir(), "media"), nil)
	return &recipeFixture{
		db:          db,
		mapper:      NewRecipeMapper(db, images),
		author:      author,
		tags:        tags,
		ingredients: ingredients,
	}
}

func (f *recipeFixture) rc() RequestContext {
	return RequestContext{User: f.author, Query: url.Values{}}
}

func (f *recipeFixture) validInput(t *testing.T) RecipeInput {
	return RecipeInput{
		Name:        strptr("Pancakes"),
		Image:       strptr(pngDataURI(t)),
		Text:        strptr("Mix and fry."),
		CookingTime: intptr(20),
		Ingredients: []IngredientAmount{
			{ID: f.ingredients[0].ID, Amount: 200},
			{ID: f.ingredients[1].ID, Amount: 300},
		},
		Tags: []uuid.UUID{f.tags[0].ID},
	}
}

func TestRecipeCreateRoundTrip(t *testing.T) {
	f := setupRecipeFixture(t)

	in := f.validInput(t)
	in.Ingredients = append(in.Ingredients, IngredientAmount{ID: f.ingredients[2].ID, Amount: 2})
	in.Tags = []uuid.UUID{f.tags[0].ID, f.tags[1].ID}

	recipe, err := f.mapper.Create(context.Background(), f.rc(), in)
	require.NoError(t, err)

	view, err := f.mapper.Project(f.rc(), recipe)
	require.NoError(t, err)

	require.Len(t, view.Ingredients, 3)
	assert.Equal(t, f.ingredients[0].ID, view.Ingredients[0].ID)
	assert.Equal(t, 200, view.Ingredients[0].Amount)
	assert.Equal(t, "flour", view.Ingredients[0].Name)
	assert.Equal(t, "g", view.Ingredients[0].MeasurementUnit)
	assert.Equal(t, f.ingredients[2].ID, view.Ingredients[2].ID)
	assert.Equal(t, 2, view.Ingredients[2].Amount)

	require.Len(t, view.Tags, 2)
	slugs := []string{view.Tags[0].Slug, view.Tags[1].Slug}
	assert.ElementsMatch(t, []string{"breakfast", "dinner"}, slugs)
	for _, tag := range view.Tags {
		assert.NotEqual(t, "", tag.Name)
		assert.NotEqual(t, "", tag.Color)
	}

	assert.Equal(t, "Pancakes", view.Name)
	assert.Equal(t, 20, view.CookingTime)
	assert.Equal(t, f.author.Username, view.Author.Username)
}

func TestRecipeCreateCookingTimeBoundary(t *testing.T) {
	f := setupRecipeFixture(t)

	in := f.validInput(t)
	in.CookingTime = intptr(0)
	_, err := f.mapper.Create(context.Background(), f.rc(), in)
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, ve, "cooking_time")

	in = f.validInput(t)
	in.CookingTime = intptr(-5)
	_, err = f.mapper.Create(context.Background(), f.rc(), in)
	_, ok = AsValidationErrors(err)
	require.True(t, ok)

	in = f.validInput(t)
	in.CookingTime = intptr(1)
	_, err = f.mapper.Create(context.Background(), f.rc(), in)
	assert.NoError(t, err)
}

func TestRecipeCreateAmountBoundary(t *testing.T) {
	f := setupRecipeFixture(t)

	in := f.validInput(t)
	in.Ingredients = []IngredientAmount{{ID: f.ingredients[0].ID, Amount: 0}}
	_, err := f.mapper.Create(context.Background(), f.rc(), in)
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, ve, "ingredients")

	in = f.validInput(t)
	in.Ingredients = []IngredientAmount{{ID: f.ingredients[0].ID, Amount: 1}}
	_, err = f.mapper.Create(context.Background(), f.rc(), in)
	assert.NoError(t, err)
}

func TestRecipeCreateUnknownReferences(t *testing.T) {
	f := setupRecipeFixture(t)

	in := f.validInput(t)
	in.Ingredients = []IngredientAmount{{ID: uuid.New(), Amount: 5}}
	_, err := f.mapper.Create(context.Background(), f.rc(), in)
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, ve, "ingredients")

	in = f.validInput(t)
	in.Tags = []uuid.UUID{uuid.New()}
	_, err = f.mapper.Create(context.Background(), f.rc(), in)
	ve, ok = AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, ve, "tags")
}

func TestRecipeCreateMissingFields(t *testing.T) {
	f := setupRecipeFixture(t)

	_, err := f.mapper.Create(context.Background(), f.rc(), RecipeInput{})
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	for _, field := range []string{"name", "text", "image", "cooking_time", "ingredients", "tags"} {
		assert.Contains(t, ve, field)
	}
}

func TestRecipeCreateInvalidImage(t *testing.T) {
	f := setupRecipeFixture(t)

	in := f.validInput(t)
	in.Image = strptr("data:image/png;base64,@@not-base64@@")
	_, err := f.mapper.Create(context.Background(), f.rc(), in)
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, ve, "image")

	// Decodable base64 that is not an image is rejected too.
	in = f.validInput(t)
	in.Image = strptr(base64.StdEncoding.EncodeToString([]byte("plain text")))
	_, err = f.mapper.Create(context.Background(), f.rc(), in)
	ve, ok = AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, ve, "image")
}

func TestRecipeImageStoredWithSniffedExtension(t *testing.T) {
	f := setupRecipeFixture(t)

	recipe, err := f.mapper.Create(context.Background(), f.rc(), f.validInput(t))
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(recipe.Image))

	view, err := f.mapper.Project(f.rc(), recipe)
	require.NoError(t, err)
	assert.Equal(t, "/media/recipes/images/"+filepath.Base(recipe.Image), view.Image)
}

func TestRecipeDuplicateIngredientIDsCreateDuplicateLines(t *testing.T) {
	f := setupRecipeFixture(t)

	in := f.validInput(t)
	in.Ingredients = []IngredientAmount{
		{ID: f.ingredients[0].ID, Amount: 100},
		{ID: f.ingredients[0].ID, Amount: 50},
	}
	recipe, err := f.mapper.Create(context.Background(), f.rc(), in)
	require.NoError(t, err)

	view, err := f.mapper.Project(f.rc(), recipe)
	require.NoError(t, err)
	require.Len(t, view.Ingredients, 2)
	assert.Equal(t, 100, view.Ingredients[0].Amount)
	assert.Equal(t, 50, view.Ingredients[1].Amount)
}

func TestRecipeUpdateEmptyTagsIsNoOp(t *testing.T) {
	f := setupRecipeFixture(t)

	recipe, err := f.mapper.Create(context.Background(), f.rc(), f.validInput(t))
	require.NoError(t, err)

	err = f.mapper.Update(context.Background(), f.rc(), recipe, RecipeInput{
		Name: strptr("Renamed"),
		Tags: []uuid.UUID{},
	})
	require.NoError(t, err)

	updated, err := f.mapper.Get(recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "breakfast", updated.Tags[0].Slug)
}

func TestRecipeUpdateReplacesIngredientLines(t *testing.T) {
	f := setupRecipeFixture(t)

	recipe, err := f.mapper.Create(context.Background(), f.rc(), f.validInput(t))
	require.NoError(t, err)

	err = f.mapper.Update(context.Background(), f.rc(), recipe, RecipeInput{
		Ingredients: []IngredientAmount{{ID: f.ingredients[2].ID, Amount: 4}},
	})
	require.NoError(t, err)

	updated, err := f.mapper.Get(recipe.ID)
	require.NoError(t, err)
	view, err := f.mapper.Project(f.rc(), updated)
	require.NoError(t, err)

	require.Len(t, view.Ingredients, 1)
	assert.Equal(t, f.ingredients[2].ID, view.Ingredients[0].ID)
	assert.Equal(t, 4, view.Ingredients[0].Amount)

	// The old rows are gone, not soft-hidden.
	var count int64
	f.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRecipeUpdateEmptyIngredientsIsNoOp(t *testing.T) {
	f := setupRecipeFixture(t)

	recipe, err := f.mapper.Create(context.Background(), f.rc(), f.validInput(t))
	require.NoError(t, err)

	err = f.mapper.Update(context.Background(), f.rc(), recipe, RecipeInput{
		CookingTime: intptr(45),
	})
	require.NoError(t, err)

	updated, err := f.mapper.Get(recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, updated.CookingTime)
	assert.Len(t, updated.Ingredients, 2)
}

func TestRecipeUpdateRejectsBadCookingTime(t *testing.T) {
	f := setupRecipeFixture(t)

	recipe, err := f.mapper.Create(context.Background(), f.rc(), f.validInput(t))
	require.NoError(t, err)

	err = f.mapper.Update(context.Background(), f.rc(), recipe, RecipeInput{
		CookingTime: intptr(0),
	})
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, ve, "cooking_time")
}

func TestRecipeFlags(t *testing.T) {
	f := setupRecipeFixture(t)

	recipe, err := f.mapper.Create(context.Background(), f.rc(), f.validInput(t))
	require.NoError(t, err)

	// Anonymous: both flags false regardless of relation state.
	require.NoError(t, f.db.Create(&models.Favorite{UserID: f.author.ID, RecipeID: recipe.ID}).Error)
	view, err := f.mapper.Project(RequestContext{Query: url.Values{}}, recipe)
	require.NoError(t, err)
	assert.False(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)

	// Authenticated with a favorite edge only.
	view, err = f.mapper.Project(f.rc(), recipe)
	require.NoError(t, err)
	assert.True(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)

	require.NoError(t, f.db.Create(&models.ShoppingCart{UserID: f.author.ID, RecipeID: recipe.ID}).Error)
	view, err = f.mapper.Project(f.rc(), recipe)
	require.NoError(t, err)
	assert.True(t, view.IsInShoppingCart)
}

func TestRecipeDeleteRemovesLines(t *testing.T) {
	f := setupRecipeFixture(t)

	recipe, err := f.mapper.Create(context.Background(), f.rc(), f.validInput(t))
	require.NoError(t, err)

	require.NoError(t, f.mapper.Delete(recipe))

	_, err = f.mapper.Get(recipe.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	f.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}
