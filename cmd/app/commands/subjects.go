package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/allisson/roleguard/internal/access/domain"
	accessUseCase "github.com/allisson/roleguard/internal/access/usecase"
)

// RunCreateSubject creates a subject. When password is empty it is read from io.Reader.
func RunCreateSubject(
	ctx context.Context,
	subjects accessUseCase.SubjectUseCase,
	logger *slog.Logger,
	input domain.CreateSubjectInput,
	format string,
	io IOTuple,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	if input.Password == "" {
		password, err := promptForPassword(io)
		if err != nil {
			return err
		}
		input.Password = password
	}

	subject, err := subjects.Create(ctx, &input)
	if err != nil {
		return fmt.Errorf("failed to create subject: %w", err)
	}

	if format == FormatText {
		_, _ = fmt.Fprintln(io.Writer, "Subject created successfully!")
	}
	if err := writeSubject(io.Writer, subject, format); err != nil {
		return err
	}

	logger.Info("subject created",
		slog.String("subject_id", subject.ID),
		slog.String("role", string(subject.Role)),
	)
	return nil
}

func promptForPassword(io IOTuple) (string, error) {
	_, _ = fmt.Fprint(io.Writer, "Enter password: ")
	password, err := bufio.NewReader(io.Reader).ReadString('\n')
	if err != nil && password == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	_, _ = fmt.Fprintln(io.Writer)

	password = strings.TrimSpace(password)
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

// RunSetRole changes the role of a subject.
func RunSetRole(
	ctx context.Context,
	subjects accessUseCase.SubjectUseCase,
	logger *slog.Logger,
	subjectID string,
	role string,
	format string,
	io IOTuple,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	subject, err := subjects.SetRole(ctx, subjectID, role)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}

	logger.Info("subject role changed", slog.String("subject_id", subject.ID), slog.String("role", role))
	return writeSubject(io.Writer, subject, format)
}

// RunSetStatus activates or deactivates a subject.
func RunSetStatus(
	ctx context.Context,
	subjects accessUseCase.SubjectUseCase,
	logger *slog.Logger,
	subjectID string,
	isActive bool,
	format string,
	io IOTuple,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	subject, err := subjects.SetStatus(ctx, subjectID, isActive)
	if err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}

	logger.Info("subject status changed", slog.String("subject_id", subject.ID), slog.Bool("is_active", isActive))
	return writeSubject(io.Writer, subject, format)
}

// RunListSubjects prints the subjects matching the filter.
func RunListSubjects(
	ctx context.Context,
	subjects accessUseCase.SubjectUseCase,
	filter domain.SubjectFilter,
	format string,
	io IOTuple,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	if filter.Role != "" {
		if _, err := domain.ParseRole(string(filter.Role)); err != nil {
			return fmt.Errorf("invalid role filter %q: %w", filter.Role, err)
		}
	}

	list, err := subjects.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list subjects: %w", err)
	}

	if format == FormatJSON {
		out := make([]subjectJSON, 0, len(list))
		for _, subject := range list {
			out = append(out, toSubjectJSON(subject))
		}
		return writeJSON(io.Writer, out)
	}

	if len(list) == 0 {
		_, _ = fmt.Fprintln(io.Writer, "No subjects found")
		return nil
	}
	for _, subject := range list {
		_, _ = fmt.Fprintf(io.Writer, "%s  %-28s %-18s %s\n",
			subject.ID,
			subject.Email,
			subject.Role.Presentation().Label,
			statusLabel(subject.IsActive),
		)
	}
	return nil
}
