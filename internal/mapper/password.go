package mapper

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/service"
)

// PasswordChangeInput is a password-change request.
type PasswordChangeInput struct {
	NewPassword     string `json:"new_password"`
	CurrentPassword string `json:"current_password"`
}

// PasswordChangeMapper validates and applies password changes for the
// authenticated user.
type PasswordChangeMapper struct {
	db     *gorm.DB
	policy *service.PasswordPolicy
}

func NewPasswordChangeMapper(db *gorm.DB, policy *service.PasswordPolicy) *PasswordChangeMapper {
	return &PasswordChangeMapper{db: db, policy: policy}
}

// Validate runs the field-level checks (strength policy on the new password,
// current password against the stored hash) and, once those pass, the
// cross-field check that the new password differs from the current one.
func (m *PasswordChangeMapper) Validate(rc RequestContext, in PasswordChangeInput) error {
	errs := ValidationErrors{}

	requireField(errs, "new_password", in.NewPassword, maxFieldLength)
	requireField(errs, "current_password", in.CurrentPassword, maxFieldLength)

	if in.NewPassword != "" {
		if err := m.policy.Validate(in.NewPassword, rc.User); err != nil {
			errs.Add("new_password", err.Error())
		}
	}
	if in.CurrentPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(rc.User.PasswordHash), []byte(in.CurrentPassword)); err != nil {
			errs.Add("current_password", "current password is incorrect")
		}
	}
	if err := errs.Err(); err != nil {
		return err
	}

	if in.NewPassword == in.CurrentPassword {
		errs.Add(NonFieldErrors, "new password must differ from the current password")
		return errs
	}
	return nil
}

// Apply validates the request and persists the new password hash.
func (m *PasswordChangeMapper) Apply(rc RequestContext, in PasswordChangeInput) error {
	if err := m.Validate(rc, in); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return m.db.Model(rc.User).Update("password_hash", string(hash)).Error
}
