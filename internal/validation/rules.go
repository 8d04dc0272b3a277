// Package validation holds jellydator/validation rules shared by request
// DTOs and use cases.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/roleguard/internal/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// WrapValidationError maps a validation failure to ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PasswordStrength is a rule for subject passwords.
type PasswordStrength struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireNumber bool
}

// DefaultPasswordStrength is applied when creating subjects.
var DefaultPasswordStrength = PasswordStrength{
	MinLength:     8,
	RequireLower:  true,
	RequireNumber: true,
}

// Validate implements validation.Rule.
func (p PasswordStrength) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_type", "password must be a string")
	}
	if s == "" {
		return nil
	}

	if len(s) < p.MinLength {
		return validation.NewError(
			"validation_password_min_length",
			fmt.Sprintf("password must be at least %d characters", p.MinLength),
		)
	}
	if p.RequireUpper && !strings.ContainsFunc(s, unicode.IsUpper) {
		return validation.NewError("validation_password_uppercase", "password must contain an uppercase letter")
	}
	if p.RequireLower && !strings.ContainsFunc(s, unicode.IsLower) {
		return validation.NewError("validation_password_lowercase", "password must contain a lowercase letter")
	}
	if p.RequireNumber && !strings.ContainsFunc(s, unicode.IsNumber) {
		return validation.NewError("validation_password_number", "password must contain a number")
	}

	return nil
}

// Email validates a plain e-mail address.
var Email = validation.NewStringRuleWithError(
	emailRegex.MatchString,
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NoWhitespace rejects strings containing any whitespace.
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return !strings.ContainsFunc(s, unicode.IsSpace)
	},
	validation.NewError("validation_no_whitespace", "must not contain whitespace"),
)

// NotBlank rejects strings that are empty after trimming.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
