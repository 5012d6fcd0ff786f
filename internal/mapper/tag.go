package mapper

import (
	"github.com/google/uuid"

	"github.com/foodshare/backend/internal/models"
)

// TagView is the full tag projection.
type TagView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Slug  string    `json:"slug"`
}

func ProjectTag(t models.Tag) TagView {
	return TagView{
		ID:    t.ID,
		Name:  t.Name,
		Color: t.Color,
		Slug:  t.Slug,
	}
}

func ProjectTags(tags []models.Tag) []TagView {
	views := make([]TagView, 0, len(tags))
	for _, t := range tags {
		views = append(views, ProjectTag(t))
	}
	return views
}
