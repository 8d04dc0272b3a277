package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// CodeIssuer mints one-time authorization codes for a subject.
type CodeIssuer interface {
	IssueCode(ctx context.Context, subjectID string) (string, error)
}

// RunIssueCode prints a one-time authorization code for subjectID.
func RunIssueCode(
	ctx context.Context,
	issuer CodeIssuer,
	logger *slog.Logger,
	writer io.Writer,
	subjectID string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	code, err := issuer.IssueCode(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("failed to issue code: %w", err)
	}

	logger.Info("authorization code issued", slog.String("subject_id", subjectID))

	if format == FormatJSON {
		return writeJSON(writer, map[string]string{"subject_id": subjectID, "code": code})
	}

	_, _ = fmt.Fprintf(writer, "Code: %s\n", code)
	_, _ = fmt.Fprintln(writer, "\nThe code can be used once. Exchange it with: login --code <code>")
	return nil
}
