package domain

import (
	"slices"
	"time"
)

// ResourceType classifies protected items.
type ResourceType string

const (
	ResourceDocument       ResourceType = "document"
	ResourceRoute          ResourceType = "route"
	ResourceAdminAction    ResourceType = "admin_action"
	ResourceReport         ResourceType = "report"
	ResourceBooking        ResourceType = "booking"
	ResourceEvent          ResourceType = "event"
	ResourceTask           ResourceType = "task"
	ResourceRecommendation ResourceType = "recommendation"
)

var resourceTypes = []ResourceType{
	ResourceDocument,
	ResourceRoute,
	ResourceAdminAction,
	ResourceReport,
	ResourceBooking,
	ResourceEvent,
	ResourceTask,
	ResourceRecommendation,
}

// IsValidResourceType reports whether value names a known resource type.
func IsValidResourceType(value string) bool {
	return slices.Contains(resourceTypes, ResourceType(value))
}

// Resource is any protected item: a document, a route or an admin action.
// RequiredRoles is fixed when the resource is registered and is never empty.
type Resource struct {
	ID            string
	Type          ResourceType
	Title         string
	RequiredRoles RoleSet
	Sensitive     bool
	Metadata      map[string]string
	CreatedAt     time.Time
}

// RouteResource models a protected route as a resource keyed by its path.
func RouteResource(path string, roles ...Role) Resource {
	set := NewRoleSet(roles...)
	return Resource{
		ID:            path,
		Type:          ResourceRoute,
		Title:         path,
		RequiredRoles: set,
		Sensitive:     set.Equal(NewRoleSet(RoleAdmin)),
	}
}

// ResourceFilter narrows resource listings.
type ResourceFilter struct {
	Type  ResourceType // Empty means any type
	Query string       // Case-insensitive match on title
}

// RegisterResourceInput contains the declared metadata of a new resource.
// AccessList is untrusted; it is validated by the classifier.
type RegisterResourceInput struct {
	ID         string
	Type       string
	Title      string
	AccessList []string
	Sensitive  *bool // Overrides the type-derived sensitivity when set
	Metadata   map[string]string
}

// WarningCode identifies a non-fatal classification finding.
type WarningCode string

// WarningUnknownRoleDropped reports a declared role that is not in the registry.
const WarningUnknownRoleDropped WarningCode = "unknown_role_dropped"

// Warning is a non-fatal classification finding.
type Warning struct {
	Code  WarningCode `json:"code"`
	Value string      `json:"value"`
}

// Classification is the outcome of classifying a resource definition.
type Classification struct {
	RequiredRoles RoleSet
	Sensitive     bool
	Warnings      []Warning
}

// RegisterResourceOutput returns the stored resource and classification warnings.
type RegisterResourceOutput struct {
	Resource *Resource
	Warnings []Warning
}
