package validation

import (
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/roleguard/internal/errors"
)

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		rule     PasswordStrength
		password string
		errMsg   string
	}{
		{name: "valid default", rule: DefaultPasswordStrength, password: "community42"},
		{name: "empty is left to Required", rule: DefaultPasswordStrength, password: ""},
		{
			name:     "too short",
			rule:     DefaultPasswordStrength,
			password: "abc1",
			errMsg:   "at least 8 characters",
		},
		{
			name:     "two digit minimum in message",
			rule:     PasswordStrength{MinLength: 12},
			password: "short",
			errMsg:   "at least 12 characters",
		},
		{
			name:     "missing number",
			rule:     DefaultPasswordStrength,
			password: "communityonly",
			errMsg:   "number",
		},
		{
			name:     "missing lowercase",
			rule:     DefaultPasswordStrength,
			password: "COMMUNITY42",
			errMsg:   "lowercase",
		},
		{
			name:     "missing uppercase",
			rule:     PasswordStrength{MinLength: 1, RequireUpper: true},
			password: "lower",
			errMsg:   "uppercase",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate(tt.password)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}

	assert.Error(t, DefaultPasswordStrength.Validate(42))
}

func TestStringRules(t *testing.T) {
	tests := []struct {
		name      string
		rule      validation.Rule
		value     string
		shouldErr bool
	}{
		{name: "email valid", rule: Email, value: "jane.smith@example.com"},
		{name: "email with plus", rule: Email, value: "john+dash@example.org"},
		{name: "email missing domain", rule: Email, value: "john@", shouldErr: true},
		{name: "email missing at", rule: Email, value: "john.example.com", shouldErr: true},
		{name: "no whitespace valid", rule: NoWhitespace, value: "eyJhbGciOi.abc.def"},
		{name: "no whitespace inner space", rule: NoWhitespace, value: "abc def", shouldErr: true},
		{name: "no whitespace tab", rule: NoWhitespace, value: "abc\t", shouldErr: true},
		{name: "not blank valid", rule: NotBlank, value: " x "},
		{name: "not blank spaces", rule: NotBlank, value: "   ", shouldErr: true},
		{name: "role valid", rule: Role, value: "service_provider"},
		{name: "role wrong case", rule: Role, value: "Admin", shouldErr: true},
		{name: "role unknown", rule: Role, value: "guest", shouldErr: true},
		{name: "resource type valid", rule: ResourceType, value: "admin_action"},
		{name: "resource type unknown", rule: ResourceType, value: "spreadsheet", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, tt.rule)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(assert.AnError)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), assert.AnError.Error())
}
