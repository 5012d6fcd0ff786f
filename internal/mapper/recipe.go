package mapper

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/service"
)

// RecipeMapper converts between recipe submissions, persisted recipes and
// their response representations.
type RecipeMapper struct {
	db     *gorm.DB
	images *service.ImageService
}

func NewRecipeMapper(db *gorm.DB, images *service.ImageService) *RecipeMapper {
	return &RecipeMapper{db: db, images: images}
}

// RecipeInput is an inbound recipe payload. Pointer fields distinguish
// "absent" from zero values on partial updates.
type RecipeInput struct {
	Name        *string            `json:"name"`
	Image       *string            `json:"image"`
	Text        *string            `json:"text"`
	CookingTime *int               `json:"cooking_time"`
	Ingredients []IngredientAmount `json:"ingredients"`
	Tags        []uuid.UUID        `json:"tags"`
}

// RecipeView is the full outbound recipe projection.
type RecipeView struct {
	ID               uuid.UUID            `json:"id"`
	Tags             []TagView            `json:"tags"`
	Author           SubscribedUserView   `json:"author"`
	Ingredients      []IngredientLineView `json:"ingredients"`
	IsFavorited      bool                 `json:"is_favorited"`
	IsInShoppingCart bool                 `json:"is_in_shopping_cart"`
	Name             string               `json:"name"`
	Image            string               `json:"image"`
	Text             string               `json:"text"`
	CookingTime      int                  `json:"cooking_time"`
}

// Get loads a recipe with its tags, owned ingredient lines and author.
func (m *RecipeMapper) Get(id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := m.db.
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Preload("Author").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Create validates a full submission and persists the recipe, its tag set
// and its ingredient lines in one transaction. Line insertion follows input
// order; repeated ingredient ids produce duplicate lines.
func (m *RecipeMapper) Create(ctx context.Context, rc RequestContext, in RecipeInput) (*models.Recipe, error) {
	errs := ValidationErrors{}
	if in.Name == nil || *in.Name == "" {
		errs.Add("name", "this field is required")
	}
	if in.Text == nil || *in.Text == "" {
		errs.Add("text", "this field is required")
	}
	if in.Image == nil || *in.Image == "" {
		errs.Add("image", "this field is required")
	}
	if in.CookingTime == nil {
		errs.Add("cooking_time", "this field is required")
	}
	if len(in.Ingredients) == 0 {
		errs.Add("ingredients", "this field is required")
	}
	if len(in.Tags) == 0 {
		errs.Add("tags", "this field is required")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	tags, err := m.validateInput(errs, in)
	if err != nil {
		return nil, err
	}

	imagePath, err := m.decodeImage(ctx, errs, *in.Image)
	if err != nil {
		return nil, err
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        *in.Name,
		Image:       imagePath,
		Text:        *in.Text,
		CookingTime: *in.CookingTime,
		AuthorID:    rc.User.ID,
		Embedding:   service.GenerateEmbedding(*in.Name + " " + *in.Text),
	}

	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		return insertIngredientLines(tx, recipe.ID, in.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return m.Get(recipe.ID)
}

// Update applies a partial update. A non-empty tags list replaces the tag
// set wholesale; a non-empty ingredients list deletes every existing line
// and inserts fresh ones. Empty or absent lists leave the existing
// associations untouched, so clearing them is inexpressible through this
// path. Scalar fields present in the payload are assigned directly.
func (m *RecipeMapper) Update(ctx context.Context, rc RequestContext, recipe *models.Recipe, in RecipeInput) error {
	errs := ValidationErrors{}
	tags, err := m.validateInput(errs, in)
	if err != nil {
		return err
	}

	imagePath := ""
	if in.Image != nil && *in.Image != "" {
		imagePath, err = m.decodeImage(ctx, errs, *in.Image)
		if err != nil {
			return err
		}
	}
	if err := errs.Err(); err != nil {
		return err
	}

	return m.db.Transaction(func(tx *gorm.DB) error {
		if len(in.Tags) > 0 {
			if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		if len(in.Ingredients) > 0 {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
			if err := insertIngredientLines(tx, recipe.ID, in.Ingredients); err != nil {
				return err
			}
		}

		if in.Name != nil {
			recipe.Name = *in.Name
		}
		if in.Text != nil {
			recipe.Text = *in.Text
		}
		if in.CookingTime != nil {
			recipe.CookingTime = *in.CookingTime
		}
		if imagePath != "" {
			recipe.Image = imagePath
		}
		if in.Name != nil || in.Text != nil {
			recipe.Embedding = service.GenerateEmbedding(recipe.Name + " " + recipe.Text)
		}
		return tx.Omit("Tags", "Ingredients", "Author").Save(recipe).Error
	})
}

// Delete removes a recipe; its ingredient lines follow their owner.
func (m *RecipeMapper) Delete(recipe *models.Recipe) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
}

// Project builds the outbound representation. The recipe must carry its
// preloaded tags, ingredient lines and author (see Get).
func (m *RecipeMapper) Project(rc RequestContext, recipe *models.Recipe) (RecipeView, error) {
	users := NewUserMapper(m.db)
	author, err := users.ProjectWithSubscription(rc, &recipe.Author)
	if err != nil {
		return RecipeView{}, err
	}

	view := RecipeView{
		ID:          recipe.ID,
		Tags:        ProjectTags(recipe.Tags),
		Author:      author,
		Ingredients: ProjectIngredientLines(recipe.Ingredients),
		Name:        recipe.Name,
		Image:       service.PublicImagePath(recipe.Image),
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
	}

	if rc.Authenticated() {
		favorited, err := exists(m.db, &models.Favorite{}, "user_id = ? AND recipe_id = ?", rc.User.ID, recipe.ID)
		if err != nil {
			return RecipeView{}, err
		}
		inCart, err := exists(m.db, &models.ShoppingCart{}, "user_id = ? AND recipe_id = ?", rc.User.ID, recipe.ID)
		if err != nil {
			return RecipeView{}, err
		}
		view.IsFavorited = favorited
		view.IsInShoppingCart = inCart
	}
	return view, nil
}

// validateInput checks cooking_time, ingredient amounts and the existence of
// every referenced ingredient and tag, returning the resolved tag set.
func (m *RecipeMapper) validateInput(errs ValidationErrors, in RecipeInput) ([]models.Tag, error) {
	if in.CookingTime != nil && *in.CookingTime <= 0 {
		errs.Add("cooking_time", "cooking_time must be a positive integer")
	}
	for _, line := range in.Ingredients {
		line.validate(errs)
		ok, err := exists(m.db, &models.Ingredient{}, "id = ?", line.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			errs.Add("ingredients", fmt.Sprintf("ingredient %s does not exist", line.ID))
		}
	}

	var tags []models.Tag
	if len(in.Tags) > 0 {
		if err := m.db.Where("id IN ?", in.Tags).Find(&tags).Error; err != nil {
			return nil, err
		}
		if len(tags) != len(uniqueIDs(in.Tags)) {
			errs.Add("tags", "one or more tags do not exist")
		}
	}
	return tags, nil
}

// decodeImage turns a data-URI-like payload into a stored file path.
// Undecodable or unsniffable payloads become a field error on image.
func (m *RecipeMapper) decodeImage(ctx context.Context, errs ValidationErrors, payload string) (string, error) {
	path, err := m.images.DecodeAndStore(ctx, payload)
	if err != nil {
		if errors.Is(err, service.ErrInvalidImage) {
			errs.Add("image", "invalid image payload")
			return "", nil
		}
		return "", err
	}
	return path, nil
}

func insertIngredientLines(tx *gorm.DB, recipeID uuid.UUID, lines []IngredientAmount) error {
	for _, line := range lines {
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, "id = ?", line.ID).Error; err != nil {
			return err
		}
		row := models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: ingredient.ID,
			Amount:       line.Amount,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
