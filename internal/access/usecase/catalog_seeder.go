package usecase

import (
	"context"
	"log/slog"

	"github.com/allisson/roleguard/internal/access/domain"
	apperrors "github.com/allisson/roleguard/internal/errors"
)

// catalogSeeder implements CatalogSeeder.
type catalogSeeder struct {
	subjects  SubjectUseCase
	resources ResourceUseCase
	logger    *slog.Logger
}

// Seed creates subjects first, then resources, in catalog order.
func (c *catalogSeeder) Seed(ctx context.Context, catalog *domain.Catalog) (*domain.SeedReport, error) {
	report := &domain.SeedReport{}

	for i := range catalog.Subjects {
		input := catalog.Subjects[i]
		_, err := c.subjects.Create(ctx, &input)
		switch {
		case err == nil:
			report.SubjectsCreated++
		case apperrors.Is(err, domain.ErrSubjectAlreadyExists):
			report.SubjectsSkipped++
		default:
			return report, apperrors.Wrapf(err, "seed subject %q", input.Email)
		}
	}

	for i := range catalog.Resources {
		input := catalog.Resources[i]
		output, err := c.resources.Register(ctx, &input)
		switch {
		case err == nil:
			report.ResourcesCreated++
			report.Warnings = append(report.Warnings, output.Warnings...)
		case apperrors.Is(err, domain.ErrResourceAlreadyExists):
			report.ResourcesSkipped++
		default:
			return report, apperrors.Wrapf(err, "seed resource %q", input.ID)
		}
	}

	c.logger.Info("catalog seeded",
		slog.Int("subjects_created", report.SubjectsCreated),
		slog.Int("subjects_skipped", report.SubjectsSkipped),
		slog.Int("resources_created", report.ResourcesCreated),
		slog.Int("resources_skipped", report.ResourcesSkipped),
		slog.Int("warnings", len(report.Warnings)),
	)

	return report, nil
}

// NewCatalogSeeder creates a CatalogSeeder.
func NewCatalogSeeder(subjects SubjectUseCase, resources ResourceUseCase, logger *slog.Logger) CatalogSeeder {
	return &catalogSeeder{
		subjects:  subjects,
		resources: resources,
		logger:    logger,
	}
}
