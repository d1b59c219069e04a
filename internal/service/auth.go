// Package service contains the authentication business logic: it sits
// between the HTTP handlers and the repository/auth packages.
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT)
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gamnamu1/python-code-explainer/internal/auth"
	"github.com/gamnamu1/python-code-explainer/internal/model"
	"github.com/gamnamu1/python-code-explainer/internal/repository"
)

// AuthService orchestrates the OAuth callback: record the sign-in, issue
// the session token.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthService creates an AuthService with all dependencies injected.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Login upserts the user from the provider profile and issues a session
// token whose subject is the profile's openId.
//
// The upsert is best-effort: with a degraded store it is a logged no-op and
// the sign-in still succeeds, because the session is derived from the
// provider identity, not from the row. Availability over consistency, on
// this path only.
func (s *AuthService) Login(ctx context.Context, profile *auth.Profile, loginMethod string) (string, error) {
	if profile == nil {
		return "", fmt.Errorf("service/auth: profile must not be nil")
	}

	err := s.users.Upsert(ctx, repository.UserUpsert{
		OpenID:      profile.OpenID,
		Name:        &profile.Name,
		Email:       &profile.Email,
		LoginMethod: &loginMethod,
	})
	if err != nil {
		return "", fmt.Errorf("service/auth: upserting user (openId=%s): %w", profile.OpenID, err)
	}

	s.logger.Info("user authenticated",
		slog.String("openId", profile.OpenID),
		slog.String("loginMethod", loginMethod),
	)

	token, err := s.tokens.Generate(profile.OpenID)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating token for %s: %w", profile.OpenID, err)
	}

	return token, nil
}

// CurrentUser resolves the session's openId to the stored user record.
// (nil, nil) means the session is valid but no row exists — either the
// store is degraded or the row was never written.
func (s *AuthService) CurrentUser(ctx context.Context, openID string) (*model.User, error) {
	if openID == "" {
		return nil, nil
	}
	user, err := s.users.GetByOpenID(ctx, openID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", openID, err)
	}
	return user, nil
}
