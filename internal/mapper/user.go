package mapper

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/service"
)

const (
	maxEmailLength = 254
	maxFieldLength = 150
)

// UserMapper converts between signup payloads, persisted users and their
// response representations.
type UserMapper struct {
	db *gorm.DB
}

func NewUserMapper(db *gorm.DB) *UserMapper {
	return &UserMapper{db: db}
}

// SignupInput is the raw signup payload.
type SignupInput struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Create validates a signup payload and persists the user. Only a bcrypt
// hash of the password is ever written.
func (m *UserMapper) Create(in SignupInput) (*models.User, error) {
	errs := ValidationErrors{}

	requireField(errs, "email", in.Email, maxEmailLength)
	requireField(errs, "username", in.Username, maxFieldLength)
	requireField(errs, "first_name", in.FirstName, maxFieldLength)
	requireField(errs, "last_name", in.LastName, maxFieldLength)
	requireField(errs, "password", in.Password, maxFieldLength)

	if in.Email != "" {
		taken, err := exists(m.db, &models.User{}, "email = ?", in.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("email", "a user with this email already exists")
		}
	}
	if in.Username != "" {
		taken, err := exists(m.db, &models.User{}, "username = ?", in.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("username", "a user with this username already exists")
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
	}
	if err := m.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func requireField(errs ValidationErrors, field, value string, max int) {
	if value == "" {
		errs.Add(field, "this field is required")
		return
	}
	if len(value) > max {
		errs.Add(field, fmt.Sprintf("ensure this field has no more than %d characters", max))
	}
}

// UserView is the base user projection.
type UserView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// SubscribedUserView decorates the base projection with the subscription
// flag derived from the request context.
type SubscribedUserView struct {
	UserView
	IsSubscribed bool `json:"is_subscribed"`
}

// FullUserView decorates the subscription-aware projection with the user's
// recipes and recipe count.
type FullUserView struct {
	SubscribedUserView
	Recipes      []RecipeSummaryView `json:"recipes"`
	RecipesCount int64               `json:"recipes_count"`
}

// RecipeSummaryView is the minimal recipe projection embedded in user
// representations.
type RecipeSummaryView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

func ProjectUser(u *models.User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func ProjectRecipeSummary(r models.Recipe) RecipeSummaryView {
	return RecipeSummaryView{
		ID:          r.ID,
		Name:        r.Name,
		Image:       service.PublicImagePath(r.Image),
		CookingTime: r.CookingTime,
	}
}

// ProjectWithSubscription adds is_subscribed: true iff the requesting user is
// authenticated and follows the represented author.
func (m *UserMapper) ProjectWithSubscription(rc RequestContext, u *models.User) (SubscribedUserView, error) {
	view := SubscribedUserView{UserView: ProjectUser(u)}
	if !rc.Authenticated() {
		return view, nil
	}
	subscribed, err := exists(m.db, &models.Subscription{}, "user_id = ? AND author_id = ?", rc.User.ID, u.ID)
	if err != nil {
		return view, err
	}
	view.IsSubscribed = subscribed
	return view, nil
}

// ProjectFull adds the author's recipes, truncated to the recipes_limit
// query parameter when present, plus the recipe count.
func (m *UserMapper) ProjectFull(rc RequestContext, u *models.User) (FullUserView, error) {
	base, err := m.ProjectWithSubscription(rc, u)
	if err != nil {
		return FullUserView{}, err
	}

	var count int64
	if err := m.db.Model(&models.Recipe{}).Where("author_id = ?", u.ID).Count(&count).Error; err != nil {
		return FullUserView{}, err
	}

	query := m.db.Where("author_id = ?", u.ID)
	if limit := rc.RecipesLimit(); limit > 0 {
		query = query.Limit(limit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return FullUserView{}, err
	}

	summaries := make([]RecipeSummaryView, 0, len(recipes))
	for _, r := range recipes {
		summaries = append(summaries, ProjectRecipeSummary(r))
	}

	return FullUserView{
		SubscribedUserView: base,
		Recipes:            summaries,
		RecipesCount:       count,
	}, nil
}
