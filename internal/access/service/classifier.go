package service

import (
	"slices"
	"strings"

	"github.com/allisson/roleguard/internal/access/domain"
)

// resourceClassifier implements ResourceClassifier.
type resourceClassifier struct{}

// NewResourceClassifier creates a new ResourceClassifier.
func NewResourceClassifier() ResourceClassifier {
	return &resourceClassifier{}
}

// Classify implements ResourceClassifier.
//
// Sensitivity rules:
//   - document: sensitive when every allowed role is admin or moderator
//   - route, admin_action: sensitive when only admin is allowed
//   - every other type: not sensitive
func (r *resourceClassifier) Classify(
	resourceType string,
	declaredAccessList []string,
) (domain.Classification, error) {
	if !domain.IsValidResourceType(resourceType) {
		return domain.Classification{}, domain.ErrUnknownResourceType
	}

	var (
		roles    []domain.Role
		warnings []domain.Warning
		dropped  []string
	)

	for _, entry := range declaredAccessList {
		value := strings.TrimSpace(entry)
		if value == "" {
			continue
		}

		role, err := domain.ParseRole(value)
		if err != nil {
			if !slices.Contains(dropped, value) {
				dropped = append(dropped, value)
				warnings = append(warnings, domain.Warning{
					Code:  domain.WarningUnknownRoleDropped,
					Value: value,
				})
			}
			continue
		}
		roles = append(roles, role)
	}

	required := domain.NewRoleSet(roles...)
	if required.IsEmpty() {
		return domain.Classification{Warnings: warnings}, domain.ErrEmptyAccessList
	}

	return domain.Classification{
		RequiredRoles: required,
		Sensitive:     isSensitive(domain.ResourceType(resourceType), required),
		Warnings:      warnings,
	}, nil
}

// isSensitive applies the per-type sensitivity rules.
func isSensitive(resourceType domain.ResourceType, required domain.RoleSet) bool {
	switch resourceType {
	case domain.ResourceDocument:
		for _, role := range required {
			if role != domain.RoleAdmin && role != domain.RoleModerator {
				return false
			}
		}
		return true
	case domain.ResourceRoute, domain.ResourceAdminAction:
		return required.Equal(domain.NewRoleSet(domain.RoleAdmin))
	default:
		return false
	}
}
