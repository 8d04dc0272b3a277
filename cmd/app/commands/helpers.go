// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/allisson/roleguard/internal/access/domain"
	"github.com/allisson/roleguard/internal/app"
)

// Output formats accepted by the --format flag.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

func validateFormat(format string) error {
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}
	return nil
}

func writeJSON(writer io.Writer, value any) error {
	jsonBytes, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(writer, string(jsonBytes))
	return err
}

// subjectJSON is the machine-readable subject shape. The password hash never leaves the process.
type subjectJSON struct {
	ID          string              `json:"id"`
	Email       string              `json:"email"`
	DisplayName string              `json:"display_name"`
	AvatarURL   string              `json:"avatar_url,omitempty"`
	Role        domain.Role         `json:"role"`
	IsActive    bool                `json:"is_active"`
	Badge       domain.Presentation `json:"badge"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toSubjectJSON(subject *domain.Subject) subjectJSON {
	return subjectJSON{
		ID:          subject.ID,
		Email:       subject.Email,
		DisplayName: subject.DisplayName,
		AvatarURL:   subject.AvatarURL,
		Role:        subject.Role,
		IsActive:    subject.IsActive,
		Badge:       subject.Role.Presentation(),
		CreatedAt:   subject.CreatedAt,
		UpdatedAt:   subject.UpdatedAt,
	}
}

func statusLabel(isActive bool) string {
	if isActive {
		return "active"
	}
	return "inactive"
}

func writeSubjectText(writer io.Writer, subject *domain.Subject) {
	_, _ = fmt.Fprintf(writer, "ID:     %s\n", subject.ID)
	_, _ = fmt.Fprintf(writer, "Email:  %s\n", subject.Email)
	_, _ = fmt.Fprintf(writer, "Name:   %s\n", subject.DisplayName)
	_, _ = fmt.Fprintf(writer, "Role:   %s\n", subject.Role.Presentation().Label)
	_, _ = fmt.Fprintf(writer, "Status: %s\n", statusLabel(subject.IsActive))
}

func writeSubject(writer io.Writer, subject *domain.Subject, format string) error {
	if format == FormatJSON {
		return writeJSON(writer, toSubjectJSON(subject))
	}
	writeSubjectText(writer, subject)
	return nil
}
