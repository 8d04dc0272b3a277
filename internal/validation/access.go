package validation

import (
	validation "github.com/jellydator/validation"

	"github.com/allisson/roleguard/internal/access/domain"
)

// Role validates that a string names a role in the registry.
var Role = validation.NewStringRuleWithError(
	domain.IsValidRole,
	validation.NewError("validation_role", "must be one of admin, moderator, user, service_provider"),
)

// ResourceType validates that a string names a known resource type.
var ResourceType = validation.NewStringRuleWithError(
	domain.IsValidResourceType,
	validation.NewError("validation_resource_type", "must be a known resource type"),
)
