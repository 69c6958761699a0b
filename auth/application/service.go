package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/AzielCF/az-chat/auth/domain"
	pkgError "github.com/AzielCF/az-chat/pkg/error"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

type AuthService struct {
	provider domain.IIdentityProvider
}

func NewAuthService(provider domain.IIdentityProvider) *AuthService {
	return &AuthService{provider: provider}
}

// BeginLogin creates a fresh attempt and the provider URL to send the
// browser to.
func (s *AuthService) BeginLogin(next string) (domain.LoginAttempt, string) {
	attempt := domain.LoginAttempt{
		State:    uuid.NewString(),
		Nonce:    uuid.NewString(),
		Verifier: oauth2.GenerateVerifier(),
		Next:     SafeNext(next),
	}
	return attempt, s.provider.AuthCodeURL(attempt.State, attempt.Nonce, attempt.Verifier)
}

// CompleteLogin validates the callback against the stored attempt and
// exchanges the code for the user.
func (s *AuthService) CompleteLogin(ctx context.Context, attempt *domain.LoginAttempt, state, code string) (*domain.User, error) {
	if attempt == nil || attempt.State == "" {
		return nil, pkgError.UnauthorizedError(domain.ErrNoLogin.Error())
	}
	if state != attempt.State {
		return nil, pkgError.UnauthorizedError(domain.ErrStateMismatch.Error())
	}
	if code == "" {
		return nil, pkgError.UnauthorizedError(domain.ErrMissingCode.Error())
	}

	user, err := s.provider.Exchange(ctx, code, attempt.Verifier, attempt.Nonce)
	if err != nil {
		return nil, pkgError.UnauthorizedError(fmt.Sprintf("login failed: %v", err))
	}
	return user, nil
}

func (s *AuthService) LogoutURL(postLogoutRedirect string) string {
	return s.provider.LogoutURL(postLogoutRedirect)
}

// SafeNext keeps only same-site relative paths and falls back to "/".
func SafeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
