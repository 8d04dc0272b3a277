package dto

import (
	"time"

	"github.com/allisson/roleguard/internal/access/domain"
	"github.com/allisson/roleguard/internal/access/usecase"
	"github.com/allisson/roleguard/internal/httputil"
)

// AuthorizeResponse carries a one-time authorization code.
type AuthorizeResponse struct {
	Code string `json:"code"`
}

// TokenResponse contains the result of exchanging an authorization code.
// ExpiresAt is omitted for tokens that never expire.
type TokenResponse struct {
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// SubjectResponse represents a subject in API responses (excludes the password hash).
type SubjectResponse struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	DisplayName  string              `json:"display_name"`
	AvatarURL    string              `json:"avatar_url,omitempty"`
	Role         string              `json:"role"`
	IsActive     bool                `json:"is_active"`
	Presentation domain.Presentation `json:"presentation"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// MapSubjectToResponse converts a domain subject to an API response.
func MapSubjectToResponse(subject *domain.Subject) SubjectResponse {
	return SubjectResponse{
		ID:           subject.ID,
		Email:        subject.Email,
		DisplayName:  subject.DisplayName,
		AvatarURL:    subject.AvatarURL,
		Role:         subject.Role.String(),
		IsActive:     subject.IsActive,
		Presentation: subject.Role.Presentation(),
		CreatedAt:    subject.CreatedAt,
		UpdatedAt:    subject.UpdatedAt,
	}
}

// ListSubjectsResponse represents a page of subjects.
type ListSubjectsResponse struct {
	Data []SubjectResponse `json:"data"`
	Page httputil.Page     `json:"page"`
}

// MapSubjectsToListResponse converts a page of domain subjects to a list API response.
func MapSubjectsToListResponse(subjects []*domain.Subject, page httputil.Page) ListSubjectsResponse {
	data := make([]SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		data = append(data, MapSubjectToResponse(subject))
	}
	return ListSubjectsResponse{Data: data, Page: page}
}

// ResourceResponse represents a protected resource in API responses.
type ResourceResponse struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	Title         string            `json:"title"`
	RequiredRoles []string          `json:"required_roles"`
	Sensitive     bool              `json:"sensitive"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// MapResourceToResponse converts a domain resource to an API response.
func MapResourceToResponse(resource domain.Resource) ResourceResponse {
	return ResourceResponse{
		ID:            resource.ID,
		Type:          string(resource.Type),
		Title:         resource.Title,
		RequiredRoles: resource.RequiredRoles.Strings(),
		Sensitive:     resource.Sensitive,
		Metadata:      resource.Metadata,
		CreatedAt:     resource.CreatedAt,
	}
}

// ListResourcesResponse represents a page of visible resources.
type ListResourcesResponse struct {
	Data []ResourceResponse `json:"data"`
	Page httputil.Page      `json:"page"`
}

// MapResourcesToListResponse converts a page of domain resources to a list API response.
func MapResourcesToListResponse(resources []domain.Resource, page httputil.Page) ListResourcesResponse {
	data := make([]ResourceResponse, 0, len(resources))
	for _, resource := range resources {
		data = append(data, MapResourceToResponse(resource))
	}
	return ListResourcesResponse{Data: data, Page: page}
}

// RegisterResourceResponse echoes the stored resource and classification warnings.
type RegisterResourceResponse struct {
	Resource ResourceResponse `json:"resource"`
	Warnings []domain.Warning `json:"warnings"`
}

// MapRegisterOutputToResponse converts a registration result to an API response.
func MapRegisterOutputToResponse(output *domain.RegisterResourceOutput) RegisterResourceResponse {
	warnings := output.Warnings
	if warnings == nil {
		warnings = []domain.Warning{}
	}
	return RegisterResourceResponse{
		Resource: MapResourceToResponse(*output.Resource),
		Warnings: warnings,
	}
}

// DecisionResponse is the decision for one resource.
type DecisionResponse struct {
	ResourceID string `json:"resource_id"`
	Allow      bool   `json:"allow"`
	Reason     string `json:"reason"`
}

// DecideResponse lists decisions in request order.
type DecideResponse struct {
	Decisions []DecisionResponse `json:"decisions"`
}

// MapDecisionsToResponse converts resource decisions to an API response.
func MapDecisionsToResponse(decisions []usecase.ResourceDecision) DecideResponse {
	data := make([]DecisionResponse, 0, len(decisions))
	for _, d := range decisions {
		data = append(data, DecisionResponse{
			ResourceID: d.Resource.ID,
			Allow:      d.Decision.Allow,
			Reason:     string(d.Decision.Reason),
		})
	}
	return DecideResponse{Decisions: data}
}
