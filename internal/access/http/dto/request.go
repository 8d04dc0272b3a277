// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/roleguard/internal/validation"
)

// AuthorizeRequest contains the credentials exchanged for an authorization code.
type AuthorizeRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request credential
}

// Validate checks if the authorize request is valid.
func (r *AuthorizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// TokenRequest contains the authorization code exchanged for a token.
type TokenRequest struct {
	Code string `json:"code"`
}

// Validate checks if the token request is valid.
func (r *TokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Code, validation.Required, customValidation.NotBlank, customValidation.NoWhitespace),
	)
}

// UpdateProfileRequest contains the display fields of the caller's profile.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Validate checks if the profile update is valid. At least one field is required.
func (r *UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DisplayName,
			validation.Required.When(r.AvatarURL == "").Error("display_name or avatar_url is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.AvatarURL, validation.Length(0, 2048)),
	)
}

// DecideRequest lists the resource IDs to evaluate for the caller.
type DecideRequest struct {
	ResourceIDs []string `json:"resource_ids"`
}

// Validate checks if the decide request is valid.
func (r *DecideRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ResourceIDs,
			validation.Required,
			validation.Length(1, 100),
			validation.Each(validation.Required, customValidation.NotBlank),
		),
	)
}

// RegisterResourceRequest contains the declared metadata of a new resource.
// The access list is validated by the classifier, not here.
type RegisterResourceRequest struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Title      string            `json:"title"`
	AccessList []string          `json:"access_list"`
	Sensitive  *bool             `json:"sensitive,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the register resource request is valid.
func (r *RegisterResourceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ID, validation.Length(0, 255), customValidation.NoWhitespace),
		validation.Field(&r.Type, validation.Required, customValidation.ResourceType),
		validation.Field(&r.Title, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.AccessList, validation.Required),
	)
}

// CreateSubjectRequest contains the parameters for creating a subject account.
type CreateSubjectRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"` //nolint:gosec // request credential
	Role        string `json:"role"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// Validate checks the request shape. Password strength and role membership
// are enforced by the subject use case.
func (r *CreateSubjectRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.Email),
		validation.Field(&r.DisplayName, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Role, validation.Required),
	)
}

// SetRoleRequest contains the new role of a subject.
type SetRoleRequest struct {
	Role string `json:"role"`
}

// Validate checks if the set role request is valid.
func (r *SetRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Role, validation.Required, customValidation.Role),
	)
}

// SetStatusRequest activates or deactivates a subject.
type SetStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

// Validate checks if the set status request is valid.
func (r *SetStatusRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.IsActive, validation.NotNil),
	)
}
