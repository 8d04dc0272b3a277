package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/roleguard/internal/access/domain"
	accessUseCase "github.com/allisson/roleguard/internal/access/usecase"
)

var (
	errLoginCredentials = errors.New("either --code or --email is required")
	errPasswordLogin    = errors.New("password login needs the local identity provider")
)

// CodeExchanger trades a one-time authorization code for a bearer token.
type CodeExchanger interface {
	ExchangeCodeForToken(ctx context.Context, code string) (string, error)
}

// PasswordAuthorizer checks e-mail and password and returns an authorization code.
type PasswordAuthorizer interface {
	Authorize(ctx context.Context, email, password string) (string, error)
}

// TokenRevoker invalidates a bearer token at the identity provider.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string) error
}

// LoginInput holds the login flags. Code wins over Email/Password.
type LoginInput struct {
	Code     string
	Email    string
	Password string
}

// RunLogin starts the client session. authorizer may be nil, which disables
// e-mail/password login.
func RunLogin(
	ctx context.Context,
	sessions accessUseCase.SessionManager,
	exchanger CodeExchanger,
	authorizer PasswordAuthorizer,
	input LoginInput,
	format string,
	io IOTuple,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	code := input.Code
	if code == "" {
		if input.Email == "" {
			return errLoginCredentials
		}
		if authorizer == nil {
			return errPasswordLogin
		}
		if input.Password == "" {
			password, err := promptForPassword(io)
			if err != nil {
				return err
			}
			input.Password = password
		}

		var err error
		code, err = authorizer.Authorize(ctx, input.Email, input.Password)
		if err != nil {
			return fmt.Errorf("failed to authorize: %w", err)
		}
	}

	token, err := exchanger.ExchangeCodeForToken(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}

	subject, err := sessions.Start(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	if format == FormatText {
		_, _ = fmt.Fprintf(io.Writer, "Logged in as %s (%s)\n", subject.Email, subject.Role.Presentation().Label)
		return nil
	}
	return writeSubject(io.Writer, subject, format)
}

// RunLogout ends the client session. When revoker is set the stored token is
// revoked first; a failed revocation is logged and the local session still ends.
func RunLogout(
	ctx context.Context,
	sessions accessUseCase.SessionManager,
	revoker TokenRevoker,
	logger *slog.Logger,
	writer io.Writer,
) error {
	// A stale token is dropped by Restore; there is nothing left to revoke then.
	if _, err := sessions.Restore(ctx); err != nil {
		logger.Debug("no resumable session", slog.Any("error", err))
	}

	if session := sessions.Session(); session != nil && revoker != nil {
		if err := revoker.Revoke(ctx, session.Token); err != nil {
			logger.Warn("failed to revoke session token", slog.Any("error", err))
		}
	}

	if err := sessions.End(ctx); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	_, _ = fmt.Fprintln(writer, "Logged out")
	return nil
}

// RunWhoami prints the subject behind the stored session token.
func RunWhoami(
	ctx context.Context,
	sessions accessUseCase.SessionManager,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	subject, err := sessions.Restore(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	if domain.IsAnonymous(subject) {
		if format == FormatJSON {
			return writeJSON(writer, map[string]any{"state": domain.SessionLoggedOut})
		}
		_, _ = fmt.Fprintln(writer, "Not logged in")
		return nil
	}

	return writeSubject(writer, subject, format)
}
