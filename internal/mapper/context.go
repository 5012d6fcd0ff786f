package mapper

import (
	"net/url"
	"strconv"

	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/models"
)

// RequestContext carries the read-only per-request inputs every mapper may
// consume: the authenticated user, when there is one, and the query
// parameters of the inbound request.
type RequestContext struct {
	User  *models.User
	Query url.Values
}

func (rc RequestContext) Authenticated() bool {
	return rc.User != nil
}

// RecipesLimit returns the parsed "recipes_limit" query parameter. Absent,
// malformed or non-positive values mean no limit.
func (rc RequestContext) RecipesLimit() int {
	raw := rc.Query.Get("recipes_limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0
	}
	return limit
}

func exists(db *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
