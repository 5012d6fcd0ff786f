package mapper

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/foodshare/backend/internal/models"
	"github.com/foodshare/backend/internal/service"
	"github.com/foodshare/backend/internal/testhelpers"
)

func TestPasswordChange(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	users := NewUserMapper(db)
	m := NewPasswordChangeMapper(db, service.NewPasswordPolicy())

	user, err := users.Create(validSignup())
	require.NoError(t, err)
	rc := RequestContext{User: user, Query: url.Values{}}

	t.Run("wrong current password", func(t *testing.T) {
		err := m.Apply(rc, PasswordChangeInput{
			NewPassword:     "an0ther-g00d-one",
			CurrentPassword: "not-the-password",
		})
		ve, ok := AsValidationErrors(err)
		require.True(t, ok)
		assert.Contains(t, ve, "current_password")
	})

	t.Run("weak new password", func(t *testing.T) {
		err := m.Apply(rc, PasswordChangeInput{
			NewPassword:     "short",
			CurrentPassword: "tr0ub4dor&3",
		})
		ve, ok := AsValidationErrors(err)
		require.True(t, ok)
		assert.Contains(t, ve, "new_password")
	})

	t.Run("new equals current", func(t *testing.T) {
		err := m.Apply(rc, PasswordChangeInput{
			NewPassword:     "tr0ub4dor&3",
			CurrentPassword: "tr0ub4dor&3",
		})
		ve, ok := AsValidationErrors(err)
		require.True(t, ok)
		assert.Contains(t, ve, NonFieldErrors)
	})

	t.Run("valid change", func(t *testing.T) {
		err := m.Apply(rc, PasswordChangeInput{
			NewPassword:     "an0ther-g00d-one",
			CurrentPassword: "tr0ub4dor&3",
		})
		require.NoError(t, err)

		var stored models.User
		require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
		assert.Error(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("tr0ub4dor&3")))
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("an0ther-g00d-one")))
	})
}

func TestPasswordChangeCrossFieldRunsAfterFieldChecks(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	users := NewUserMapper(db)
	m := NewPasswordChangeMapper(db, service.NewPasswordPolicy())

	user, err := users.Create(validSignup())
	require.NoError(t, err)
	rc := RequestContext{User: user, Query: url.Values{}}

	// A weak, identical password reports the field failure, not the
	// cross-field one.
	err = m.Validate(rc, PasswordChangeInput{
		NewPassword:     "short",
		CurrentPassword: "short",
	})
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, ve, "new_password")
	assert.Contains(t, ve, "current_password")
	assert.NotContains(t, ve, NonFieldErrors)
}
