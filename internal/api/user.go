package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/mapper"
	"github.com/foodshare/backend/internal/middleware"
	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/service"
)

type UserHandler struct {
	db        *gorm.DB
	auth      *service.AuthService
	users     *mapper.UserMapper
	passwords *mapper.PasswordChangeMapper
}

func NewUserHandler(db *gorm.DB, auth *service.AuthService) *UserHandler {
	return &UserHandler{
		db:        db,
		auth:      auth,
		users:     mapper.NewUserMapper(db),
		passwords: mapper.NewPasswordChangeMapper(db, service.NewPasswordPolicy()),
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", middleware.OptionalAuthMiddleware(h.auth), h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.auth), h.Me)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.auth), h.ListSubscriptions)
		users.POST("/set_password", middleware.AuthMiddleware(h.auth), h.SetPassword)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	rc, err := requestContext(c, h.db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var users []models.User
	if err := h.db.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
		return
	}

	views := make([]mapper.SubscribedUserView, 0, len(users))
	for i := range users {
		view, err := h.users.ProjectWithSubscription(rc, &users[i])
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to project users"})
			return
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"users": views})
}

func (h *UserHandler) Me(c *gin.Context) {
	rc, err := requestContext(c, h.db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	view, err := h.users.ProjectWithSubscription(rc, rc.User)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to project user"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	rc, err := requestContext(c, h.db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	view, err := h.users.ProjectWithSubscription(rc, &user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to project user"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	rc, err := requestContext(c, h.db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var in mapper.PasswordChangeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.passwords.Apply(rc, in); err != nil {
		if renderMapperError(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		return
	}

	// The presenting token no longer matches the credentials it was issued
	// for.
	if token, exists := c.Get("token"); exists {
		_ = h.auth.RevokeToken(c.Request.Context(), token.(string))
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	rc, err := requestContext(c, h.db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var authors []models.User
	err = h.db.
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", rc.User.ID).
		Find(&authors).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch subscriptions"})
		return
	}

	views := make([]mapper.FullUserView, 0, len(authors))
	for i := range authors {
		view, err := h.users.ProjectFull(rc, &authors[i])
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to project subscriptions"})
			return
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": views})
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	rc, err := requestContext(c, h.db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if authorID == rc.User.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot subscribe to yourself"})
		return
	}

	var author models.User
	if err := h.db.First(&author, "id = ?", authorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	var count int64
	h.db.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", rc.User.ID, authorID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "already subscribed"})
		return
	}

	edge := models.Subscription{UserID: rc.User.ID, AuthorID: authorID}
	if err := h.db.Create(&edge).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}

	view, err := h.users.ProjectFull(rc, &author)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to project user"})
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	rc, err := requestContext(c, h.db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	err = h.db.
		Where("user_id = ? AND author_id = ?", rc.User.ID, authorID).
		Delete(&models.Subscription{}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unsubscribe"})
		return
	}

	c.Status(http.StatusNoContent)
}
