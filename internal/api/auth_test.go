package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodshare/backend/internal/models"
)

func TestRegister(t *testing.T) {
	env := setupTestEnv(t)

	payload := map[string]string{
		"email":      "carol@example.com",
		"username":   "carol",
		"first_name": "Carol",
		"last_name":  "Danvers",
		"password":   "tr0ub4dor&3",
	}
	w := env.performRequest(t, http.MethodPost, "/api/v1/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "carol@example.com", body["email"])
	assert.Equal(t, "carol", body["username"])
	assert.NotEmpty(t, body["id"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "password_hash")
}

func TestRegisterValidationErrors(t *testing.T) {
	env := setupTestEnv(t)

	w := env.performRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "carol@example.com",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	for _, field := range []string{"username", "first_name", "last_name", "password"} {
		assert.Contains(t, body, field)
	}

	var count int64
	env.db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := setupTestEnv(t)
	user, _ := env.createUserAndToken(t)

	w := env.performRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":      user.Email,
		"username":   "someoneelse",
		"first_name": "Some",
		"last_name":  "One",
		"password":   "tr0ub4dor&3",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w), "email")
}

func TestLoginFlow(t *testing.T) {
	env := setupTestEnv(t)
	user, _ := env.createUserAndToken(t)

	w := env.performRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    user.Email,
		"password": "tr0ub4dor&3",
	})
	require.Equal(t, http.StatusOK, w.Code)

	token, ok := decodeBody(t, w)["auth_token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	// The issued token works against a protected endpoint.
	w = env.performRequest(t, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.Email, decodeBody(t, w)["email"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := setupTestEnv(t)
	user, _ := env.createUserAndToken(t)

	w := env.performRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    user.Email,
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.performRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "ghost@example.com",
		"password": "tr0ub4dor&3",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.createUserAndToken(t)

	// With no revocation store the request still succeeds.
	w := env.performRequest(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.performRequest(t, http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	env := setupTestEnv(t)

	w := env.performRequest(t, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.performRequest(t, http.MethodGet, "/api/v1/users/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
