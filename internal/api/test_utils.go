package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/mapper"
	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/service"
	"github.com/foodshare/backend/internal/testhelpers"
)

// testEnv bundles the router and services the endpoint tests exercise.
type testEnv struct {
	db     *gorm.DB
	auth   *service.AuthService
	router *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLiteDB(t)
	auth := service.NewAuthService(db, nil, "test-secret")
	images := service.NewImageService(filepath.Join(t.TempDir(), "media"), nil)

	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	NewAuthHandler(db, auth).RegisterRoutes(v1)
	NewUserHandler(db, auth).RegisterRoutes(v1)
	NewRecipeHandler(db, auth, images).RegisterRoutes(v1)
	NewTagHandler(db).RegisterRoutes(v1)
	NewIngredientHandler(db).RegisterRoutes(v1)

	return &testEnv{db: db, auth: auth, router: router}
}

// createUserAndToken registers a user directly and issues a valid token.
func (e *testEnv) createUserAndToken(t *testing.T) (*models.User, string) {
	t.Helper()
	suffix := uuid.New().String()[:8]
	user, err := mapper.NewUserMapper(e.db).Create(mapper.SignupInput{
		Email:     fmt.Sprintf("user-%s@example.com", suffix),
		Username:  "user_" + suffix,
		FirstName: "Test",
		LastName:  "User",
		Password:  "tr0ub4dor&3",
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	token, err := e.auth.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, token
}

// performRequest issues an HTTP request against the test router. An empty
// token leaves the request anonymous.
func (e *testEnv) performRequest(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response body %q: %v", w.Body.String(), err)
	}
	return out
}
