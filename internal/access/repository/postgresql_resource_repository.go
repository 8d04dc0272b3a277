package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/roleguard/internal/access/domain"
	"github.com/allisson/roleguard/internal/database"
	apperrors "github.com/allisson/roleguard/internal/errors"
)

// PostgreSQLResourceRepository handles resource catalog persistence for PostgreSQL.
// Required roles are stored as a comma separated list and metadata as JSON.
type PostgreSQLResourceRepository struct {
	db *sql.DB
}

// Create inserts a new resource. A duplicate ID yields ErrResourceAlreadyExists.
func (r *PostgreSQLResourceRepository) Create(ctx context.Context, resource *domain.Resource) error {
	querier := database.GetTx(ctx, r.db)

	metadata, err := encodeMetadata(resource.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO resources (` + resourceColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(
		ctx,
		query,
		resource.ID,
		string(resource.Type),
		resource.Title,
		encodeRoles(resource.RequiredRoles),
		resource.Sensitive,
		metadata,
		resource.CreatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrResourceAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create resource")
	}
	return nil
}

// Get retrieves a resource by ID.
func (r *PostgreSQLResourceRepository) Get(ctx context.Context, resourceID string) (*domain.Resource, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1`

	resource, err := scanResource(querier.QueryRowContext(ctx, query, resourceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get resource")
	}
	return resource, nil
}

// List returns resources matching the filter in registration order.
func (r *PostgreSQLResourceRepository) List(
	ctx context.Context,
	filter domain.ResourceFilter,
) ([]domain.Resource, error) {
	querier := database.GetTx(ctx, r.db)

	where := resourceFilterWhere(newPostgreSQLWhere(), filter)
	query := `SELECT ` + resourceColumns + ` FROM resources` + where.String() + ` ORDER BY created_at, id`

	rows, err := querier.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list resources")
	}
	defer func() {
		_ = rows.Close()
	}()

	resources := make([]domain.Resource, 0)
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan resource")
		}
		resources = append(resources, *resource)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate resources")
	}

	return resources, nil
}

// NewPostgreSQLResourceRepository creates a new PostgreSQLResourceRepository.
func NewPostgreSQLResourceRepository(db *sql.DB) *PostgreSQLResourceRepository {
	return &PostgreSQLResourceRepository{db: db}
}
