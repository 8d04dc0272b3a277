// Package repository implements subject and resource persistence: in-memory
// stores for development and tests, PostgreSQL and MySQL stores for
// deployments, and the YAML seed catalog.
package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/allisson/roleguard/internal/access/domain"
	apperrors "github.com/allisson/roleguard/internal/errors"
)

const (
	subjectColumns  = "id, email, display_name, avatar_url, role, is_active, password_hash, created_at, updated_at"
	resourceColumns = "id, type, title, required_roles, sensitive, metadata, created_at"
)

// isPostgreSQLUniqueViolation reports a unique_violation (SQLSTATE 23505).
func isPostgreSQLUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isMySQLUniqueViolation reports ER_DUP_ENTRY (1062).
func isMySQLUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// encodeRoles stores a role set as a comma separated list.
func encodeRoles(roles domain.RoleSet) string {
	return strings.Join(roles.Strings(), ",")
}

// decodeRoles parses a stored role list. Values no longer in the registry are
// skipped so a stale row can never widen access.
func decodeRoles(raw string) domain.RoleSet {
	var roles []domain.Role
	for value := range strings.SplitSeq(raw, ",") {
		if role, err := domain.ParseRole(strings.TrimSpace(value)); err == nil {
			roles = append(roles, role)
		}
	}
	return domain.NewRoleSet(roles...)
}

func encodeMetadata(metadata map[string]string) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encode resource metadata")
	}
	return string(raw), nil
}

func decodeMetadata(raw string) (map[string]string, error) {
	metadata := map[string]string{}
	if raw == "" {
		return metadata, nil
	}
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode resource metadata")
	}
	return metadata, nil
}

// likePattern builds a case-insensitive LIKE pattern for a search term.
func likePattern(query string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(strings.ToLower(strings.TrimSpace(query))) + "%"
}

// whereBuilder accumulates SQL conditions with driver specific placeholders.
type whereBuilder struct {
	placeholder func(n int) string
	conditions  []string
	args        []any
}

func newPostgreSQLWhere() *whereBuilder {
	return &whereBuilder{placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
}

func newMySQLWhere() *whereBuilder {
	return &whereBuilder{placeholder: func(int) string { return "?" }}
}

// add appends a condition. Each %s in format is replaced by the next placeholder.
func (w *whereBuilder) add(format string, args ...any) {
	placeholders := make([]any, len(args))
	for i := range args {
		placeholders[i] = w.placeholder(len(w.args) + i + 1)
	}
	w.conditions = append(w.conditions, fmt.Sprintf(format, placeholders...))
	w.args = append(w.args, args...)
}

func (w *whereBuilder) String() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

func subjectFilterWhere(w *whereBuilder, filter domain.SubjectFilter) *whereBuilder {
	if strings.TrimSpace(filter.Query) != "" {
		pattern := likePattern(filter.Query)
		w.add(`(LOWER(display_name) LIKE %s OR LOWER(email) LIKE %s)`, pattern, pattern)
	}
	if filter.Role != "" {
		w.add("role = %s", string(filter.Role))
	}
	switch filter.Status {
	case domain.StatusActive:
		w.add("is_active = %s", true)
	case domain.StatusInactive:
		w.add("is_active = %s", false)
	}
	return w
}

func resourceFilterWhere(w *whereBuilder, filter domain.ResourceFilter) *whereBuilder {
	if filter.Type != "" {
		w.add("type = %s", string(filter.Type))
	}
	if strings.TrimSpace(filter.Query) != "" {
		w.add("LOWER(title) LIKE %s", likePattern(filter.Query))
	}
	return w
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(row rowScanner) (*domain.Subject, error) {
	var subject domain.Subject
	var role string
	if err := row.Scan(
		&subject.ID,
		&subject.Email,
		&subject.DisplayName,
		&subject.AvatarURL,
		&role,
		&subject.IsActive,
		&subject.PasswordHash,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	); err != nil {
		return nil, err
	}
	subject.Role = domain.Role(role)
	return &subject, nil
}

func scanResource(row rowScanner) (*domain.Resource, error) {
	var resource domain.Resource
	var resourceType, roles, metadata string
	if err := row.Scan(
		&resource.ID,
		&resourceType,
		&resource.Title,
		&roles,
		&resource.Sensitive,
		&metadata,
		&resource.CreatedAt,
	); err != nil {
		return nil, err
	}

	decoded, err := decodeMetadata(metadata)
	if err != nil {
		return nil, err
	}

	resource.Type = domain.ResourceType(resourceType)
	resource.RequiredRoles = decodeRoles(roles)
	resource.Metadata = decoded
	return &resource, nil
}
