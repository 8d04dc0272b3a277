// Package domain defines the authorization domain models: roles, subjects,
// protected resources, access decisions and client sessions.
//
// Roles form a closed set of unordered labels. Access to a resource is granted
// purely by allow-list membership; no role implies another.
package domain

import (
	"slices"
	"strings"
)

// Role identifies the access level of a subject.
type Role string

const (
	// RoleAdmin manages subject accounts and the resource catalog.
	RoleAdmin Role = "admin"

	// RoleModerator reviews community content.
	RoleModerator Role = "moderator"

	// RoleUser is a regular community member.
	RoleUser Role = "user"

	// RoleServiceProvider offers bookable services.
	RoleServiceProvider Role = "service_provider"
)

// allRoles is the registry of valid roles in declaration order.
var allRoles = []Role{RoleAdmin, RoleModerator, RoleUser, RoleServiceProvider}

// AllRoles returns the closed set of valid roles in declaration order.
func AllRoles() []Role {
	return slices.Clone(allRoles)
}

// IsValidRole reports whether value names one of the defined roles.
// Matching is exact and case-sensitive.
func IsValidRole(value string) bool {
	return slices.Contains(allRoles, Role(value))
}

// ParseRole converts untrusted input into a Role.
func ParseRole(value string) (Role, error) {
	if !IsValidRole(value) {
		return "", ErrUnknownRole
	}
	return Role(value), nil
}

// String returns the wire representation of the role.
func (r Role) String() string {
	return string(r)
}

// RoleSet is an immutable, de-duplicated set of roles kept in registry order.
type RoleSet []Role

// NewRoleSet builds a RoleSet from roles, dropping duplicates and roles
// outside the registry.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, 0, len(roles))
	for _, role := range allRoles {
		if slices.Contains(roles, role) {
			set = append(set, role)
		}
	}
	return set
}

// Contains reports whether role is a member of the set.
func (s RoleSet) Contains(role Role) bool {
	return slices.Contains(s, role)
}

// IsEmpty reports whether the set has no members.
func (s RoleSet) IsEmpty() bool {
	return len(s) == 0
}

// Equal reports whether both sets hold the same roles.
func (s RoleSet) Equal(other RoleSet) bool {
	return slices.Equal(NewRoleSet(s...), NewRoleSet(other...))
}

// Strings returns the members as plain strings.
func (s RoleSet) Strings() []string {
	out := make([]string, len(s))
	for i, role := range s {
		out[i] = string(role)
	}
	return out
}

// String renders the set as a comma-separated list.
func (s RoleSet) String() string {
	return strings.Join(s.Strings(), ",")
}
