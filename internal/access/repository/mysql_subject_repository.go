package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/roleguard/internal/access/domain"
	"github.com/allisson/roleguard/internal/database"
	apperrors "github.com/allisson/roleguard/internal/errors"
)

// MySQLSubjectRepository handles subject persistence for MySQL.
type MySQLSubjectRepository struct {
	db *sql.DB
}

// Create inserts a new subject. A duplicate e-mail yields ErrSubjectAlreadyExists.
func (r *MySQLSubjectRepository) Create(ctx context.Context, subject *domain.Subject) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO subjects (` + subjectColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		subject.ID,
		subject.Email,
		subject.DisplayName,
		subject.AvatarURL,
		string(subject.Role),
		subject.IsActive,
		subject.PasswordHash,
		subject.CreatedAt,
		subject.UpdatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrSubjectAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create subject")
	}
	return nil
}

// Update replaces the mutable fields of a subject.
func (r *MySQLSubjectRepository) Update(ctx context.Context, subject *domain.Subject) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE subjects
			  SET display_name = ?,
				  avatar_url = ?,
				  role = ?,
				  is_active = ?,
				  password_hash = ?,
				  updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		subject.DisplayName,
		subject.AvatarURL,
		string(subject.Role),
		subject.IsActive,
		subject.PasswordHash,
		subject.UpdatedAt,
		subject.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update subject")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if affected == 0 {
		return domain.ErrSubjectNotFound
	}
	return nil
}

// Get retrieves a subject by ID.
func (r *MySQLSubjectRepository) Get(ctx context.Context, subjectID string) (*domain.Subject, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE id = ?`

	subject, err := scanSubject(querier.QueryRowContext(ctx, query, subjectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubjectNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get subject")
	}
	return subject, nil
}

// GetByEmail retrieves a subject by e-mail.
func (r *MySQLSubjectRepository) GetByEmail(ctx context.Context, email string) (*domain.Subject, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE email = ?`

	subject, err := scanSubject(querier.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubjectNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get subject by email")
	}
	return subject, nil
}

// List returns subjects matching the filter, oldest first.
func (r *MySQLSubjectRepository) List(
	ctx context.Context,
	filter domain.SubjectFilter,
) ([]*domain.Subject, error) {
	querier := database.GetTx(ctx, r.db)

	where := subjectFilterWhere(newMySQLWhere(), filter)
	query := `SELECT ` + subjectColumns + ` FROM subjects` + where.String() + ` ORDER BY created_at, id`

	rows, err := querier.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list subjects")
	}
	defer func() {
		_ = rows.Close()
	}()

	subjects := make([]*domain.Subject, 0)
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan subject")
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate subjects")
	}

	return subjects, nil
}

// NewMySQLSubjectRepository creates a new MySQLSubjectRepository.
func NewMySQLSubjectRepository(db *sql.DB) *MySQLSubjectRepository {
	return &MySQLSubjectRepository{db: db}
}
