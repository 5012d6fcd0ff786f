package mapper

import (
	"github.com/google/uuid"

	"github.com/foodshare/backend/internal/models"
)

// IngredientView projects a reference ingredient. name and measurement_unit
// come from the reference entity and are never settable by clients.
type IngredientView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
}

func ProjectIngredient(i models.Ingredient) IngredientView {
	return IngredientView{
		ID:              i.ID,
		Name:            i.Name,
		MeasurementUnit: i.MeasurementUnit,
	}
}

func ProjectIngredients(ingredients []models.Ingredient) []IngredientView {
	views := make([]IngredientView, 0, len(ingredients))
	for _, i := range ingredients {
		views = append(views, ProjectIngredient(i))
	}
	return views
}

// IngredientAmount is the write-only pairing of an ingredient reference with
// a per-recipe quantity, consumed inside recipe submissions.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id"`
	Amount int       `json:"amount"`
}

func (in IngredientAmount) validate(errs ValidationErrors) {
	if in.Amount <= 0 {
		errs.Add("ingredients", "ensure the amount is greater than 0")
	}
}

// IngredientLineView flattens a recipe-owned ingredient line. The id is the
// referenced ingredient's id, matching the shape clients submit.
type IngredientLineView struct {
	ID              uuid.UUID `json:"id"`
	Amount          int       `json:"amount"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
}

func ProjectIngredientLine(line models.RecipeIngredient) IngredientLineView {
	return IngredientLineView{
		ID:              line.IngredientID,
		Amount:          line.Amount,
		Name:            line.Ingredient.Name,
		MeasurementUnit: line.Ingredient.MeasurementUnit,
	}
}

func ProjectIngredientLines(lines []models.RecipeIngredient) []IngredientLineView {
	views := make([]IngredientLineView, 0, len(lines))
	for _, line := range lines {
		views = append(views, ProjectIngredientLine(line))
	}
	return views
}
