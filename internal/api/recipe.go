package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodshare/backend/internal/mapper"
	"github.com/foodshare/backend/internal/middleware"
	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/service"
)

type RecipeHandler struct {
	db      *gorm.DB
	auth    *service.AuthService
	recipes *mapper.RecipeMapper
}

func NewRecipeHandler(db *gorm.DB, auth *service.AuthService, images *service.ImageService) *RecipeHandler {
	return &RecipeHandler{
		db:      db,
		auth:    auth,
		recipes: mapper.NewRecipeMapper(db, images),
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.auth), h.ListRecipes)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.GetRecipe)
		recipes.POST("", middleware.AuthMiddleware(h.auth), h.CreateRecipe)
		recipes.PATCH("/:id", middleware.AuthMiddleware(h.auth), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.auth), h.DeleteRecipe)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.auth), h.Favorite)
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.auth), h.Unfavorite)
		recipes.POST("/:id/shopping_cart", middleware.AuthMiddleware(h.auth), h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", middleware.AuthMiddleware(h.auth), h.RemoveFromShoppingCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	rc, err := requestContext(c, h.db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	query := h.db.
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Preload("Author")

	if search := c.Query("q"); search != "" {
		if h.db.Dialector.Name() == "postgres" {
			vec := service.GenerateEmbedding(search)
			query = query.Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
			})
		} else {
			like := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(text) LIKE ?", like, like)
		}
	}

	if author := c.Query("author"); author != "" {
		query = query.Where("author_id = ?", author)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipes"})
		return
	}

	views := make([]mapper.RecipeView, 0, len(recipes))
	for i := range recipes {
		view, err := h.recipes.Project(rc, &recipes[i])
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to project recipes"})
			return
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"recipes": views})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	rc, err := requestContext(c, h.db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	recipe, ok := h.loadRecipe(c)
	if !ok {
		return
	}

	view, err := h.recipes.Project(rc, recipe)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to project recipe"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	rc, err := requestContext(c, h.db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var in mapper.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), rc, in)
	if err != nil {
		if renderMapperError(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create recipe"})
		return
	}

	view, err := h.recipes.Project(rc, recipe)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to project recipe"})
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	rc, err := requestContext(c, h.db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	recipe, ok := h.loadRecipe(c)
	if !ok {
		return
	}
	if recipe.AuthorID != rc.User.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not the author of this recipe"})
		return
	}

	var in mapper.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.recipes.Update(c.Request.Context(), rc, recipe, in); err != nil {
		if renderMapperError(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update recipe"})
		return
	}

	updated, err := h.recipes.Get(recipe.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reload recipe"})
		return
	}
	view, err := h.recipes.Project(rc, updated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to project recipe"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	rc, err := requestContext(c, h.db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	recipe, ok := h.loadRecipe(c)
	if !ok {
		return
	}
	if recipe.AuthorID != rc.User.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not the author of this recipe"})
		return
	}

	if err := h.recipes.Delete(recipe); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete recipe"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) Favorite(c *gin.Context) {
	h.addEdge(c, &models.Favorite{}, "recipe already in favorites", func(userID, recipeID uuid.UUID) interface{} {
		return &models.Favorite{UserID: userID, RecipeID: recipeID}
	})
}

func (h *RecipeHandler) Unfavorite(c *gin.Context) {
	h.removeEdge(c, &models.Favorite{})
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.addEdge(c, &models.ShoppingCart{}, "recipe already in shopping cart", func(userID, recipeID uuid.UUID) interface{} {
		return &models.ShoppingCart{UserID: userID, RecipeID: recipeID}
	})
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.removeEdge(c, &models.ShoppingCart{})
}

// addEdge inserts a user->recipe membership edge and answers with the small
// recipe projection.
func (h *RecipeHandler) addEdge(c *gin.Context, model interface{}, duplicateMsg string, build func(userID, recipeID uuid.UUID) interface{}) {
	rc, err := requestContext(c, h.db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	recipe, ok := h.loadRecipe(c)
	if !ok {
		return
	}

	var count int64
	h.db.Model(model).
		Where("user_id = ? AND recipe_id = ?", rc.User.ID, recipe.ID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": duplicateMsg})
		return
	}

	if err := h.db.Create(build(rc.User.ID, recipe.ID)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add recipe"})
		return
	}

	c.JSON(http.StatusCreated, mapper.ProjectRecipeSummary(*recipe))
}

func (h *RecipeHandler) removeEdge(c *gin.Context, model interface{}) {
	rc, err := requestContext(c, h.db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	recipe, ok := h.loadRecipe(c)
	if !ok {
		return
	}

	err = h.db.
		Where("user_id = ? AND recipe_id = ?", rc.User.ID, recipe.ID).
		Delete(model).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove recipe"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) loadRecipe(c *gin.Context) (*models.Recipe, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return nil, false
	}

	recipe, err := h.recipes.Get(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipe"})
		return nil, false
	}
	return recipe, true
}
