package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/allisson/roleguard/internal/access/domain"
	accessUseCase "github.com/allisson/roleguard/internal/access/usecase"
)

type decisionJSON struct {
	ResourceID string        `json:"resource_id"`
	Type       string        `json:"type"`
	Allow      bool          `json:"allow"`
	Reason     domain.Reason `json:"reason"`
}

type resourceJSON struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	Title         string            `json:"title"`
	RequiredRoles []domain.Role     `json:"required_roles"`
	Sensitive     bool              `json:"sensitive"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// RunCheck decides whether the session subject may access each resource.
// Without a session every resource is denied as unauthenticated.
func RunCheck(
	ctx context.Context,
	sessions accessUseCase.SessionManager,
	resources accessUseCase.ResourceUseCase,
	writer io.Writer,
	resourceIDs []string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if len(resourceIDs) == 0 {
		return fmt.Errorf("at least one --resource is required")
	}

	subject, err := sessions.Restore(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	decisions, err := resources.DecideMany(ctx, subject, resourceIDs)
	if err != nil {
		return fmt.Errorf("failed to decide: %w", err)
	}

	if format == FormatJSON {
		out := make([]decisionJSON, 0, len(decisions))
		for _, d := range decisions {
			out = append(out, decisionJSON{
				ResourceID: d.Resource.ID,
				Type:       string(d.Resource.Type),
				Allow:      d.Decision.Allow,
				Reason:     d.Decision.Reason,
			})
		}
		return writeJSON(writer, out)
	}

	for _, d := range decisions {
		verdict := "DENY "
		if d.Decision.Allow {
			verdict = "ALLOW"
		}
		_, _ = fmt.Fprintf(writer, "%s  %-24s %s\n", verdict, d.Resource.ID, d.Decision.Reason)
	}
	return nil
}

// RunListResources prints the resources the session subject may see.
func RunListResources(
	ctx context.Context,
	sessions accessUseCase.SessionManager,
	resources accessUseCase.ResourceUseCase,
	writer io.Writer,
	filter domain.ResourceFilter,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if filter.Type != "" && !domain.IsValidResourceType(string(filter.Type)) {
		return fmt.Errorf("invalid resource type filter %q: %w", filter.Type, domain.ErrUnknownResourceType)
	}

	subject, err := sessions.Restore(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	visible, err := resources.ListVisible(ctx, subject, filter)
	if err != nil {
		return fmt.Errorf("failed to list resources: %w", err)
	}

	if format == FormatJSON {
		out := make([]resourceJSON, 0, len(visible))
		for _, r := range visible {
			out = append(out, resourceJSON{
				ID:            r.ID,
				Type:          string(r.Type),
				Title:         r.Title,
				RequiredRoles: r.RequiredRoles,
				Sensitive:     r.Sensitive,
				Metadata:      r.Metadata,
			})
		}
		return writeJSON(writer, out)
	}

	if len(visible) == 0 {
		_, _ = fmt.Fprintln(writer, "No visible resources")
		return nil
	}
	for _, r := range visible {
		_, _ = fmt.Fprintf(writer, "%-24s %-16s %s\n", r.ID, r.Type, r.Title)
	}
	return nil
}
