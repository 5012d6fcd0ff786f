package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/foodshare/backend/internal/models"
)

// commonPasswords is a short list of passwords rejected outright.
var commonPasswords = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"12345678":   {},
	"123456789":  {},
	"qwerty123":  {},
	"iloveyou":   {},
	"letmein123": {},
	"admin123":   {},
	"welcome1":   {},
	"sunshine":   {},
}

// PasswordPolicy decides whether a candidate password is acceptable for a
// given user.
type PasswordPolicy struct {
	MinLength int
}

func NewPasswordPolicy() *PasswordPolicy {
	return &PasswordPolicy{MinLength: 8}
}

// Validate returns a user-visible error describing the first violated rule,
// or nil when the password is acceptable.
func (p *PasswordPolicy) Validate(password string, user *models.User) error {
	if len(password) < p.MinLength {
		return fmt.Errorf("password is too short: it must contain at least %d characters", p.MinLength)
	}
	if isEntirelyNumeric(password) {
		return errors.New("password is entirely numeric")
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		return errors.New("password is too common")
	}
	if user != nil {
		if err := p.checkSimilarity(password, user); err != nil {
			return err
		}
	}
	return nil
}

// checkSimilarity rejects passwords containing the user's identifying
// attributes.
func (p *PasswordPolicy) checkSimilarity(password string, user *models.User) error {
	lowered := strings.ToLower(password)

	attributes := map[string]string{
		"username":   user.Username,
		"email":      emailLocalPart(user.Email),
		"first name": user.FirstName,
		"last name":  user.LastName,
	}
	for label, value := range attributes {
		if len(value) < 3 {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(value)) {
			return fmt.Errorf("password is too similar to the %s", label)
		}
	}
	return nil
}

func isEntirelyNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func emailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
