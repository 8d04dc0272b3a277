package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/roleguard/internal/access/domain"
	accessUseCase "github.com/allisson/roleguard/internal/access/usecase"
)

// RunSeedCatalog loads catalog through seeder and prints what was created or skipped.
func RunSeedCatalog(
	ctx context.Context,
	seeder accessUseCase.CatalogSeeder,
	catalog *domain.Catalog,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	report, err := seeder.Seed(ctx, catalog)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	for _, warning := range report.Warnings {
		logger.Warn("catalog warning",
			slog.String("code", string(warning.Code)),
			slog.String("value", warning.Value),
		)
	}

	if format == FormatJSON {
		warnings := report.Warnings
		if warnings == nil {
			warnings = []domain.Warning{}
		}
		return writeJSON(writer, map[string]any{
			"subjects_created":  report.SubjectsCreated,
			"subjects_skipped":  report.SubjectsSkipped,
			"resources_created": report.ResourcesCreated,
			"resources_skipped": report.ResourcesSkipped,
			"warnings":          warnings,
		})
	}

	_, _ = fmt.Fprintf(writer, "Subjects:  %d created, %d skipped\n", report.SubjectsCreated, report.SubjectsSkipped)
	_, _ = fmt.Fprintf(writer, "Resources: %d created, %d skipped\n", report.ResourcesCreated, report.ResourcesSkipped)
	for _, warning := range report.Warnings {
		_, _ = fmt.Fprintf(writer, "Warning: %s %q\n", warning.Code, warning.Value)
	}
	return nil
}
