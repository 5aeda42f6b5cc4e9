package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atriumcms/atrium/internal/config"
	"github.com/atriumcms/atrium/internal/models"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// OIDCAuthenticator implements federated login against a generic OIDC
// provider. Accounts are found or created by email; federated accounts
// carry no password hash.
type OIDCAuthenticator struct {
	provider *oidc.Provider
	config   *oauth2.Config
	verifier *oidc.IDTokenVerifier
	db       *gorm.DB
	name     string // provider name recorded on the account
}

// NewOIDCAuthenticator discovers the provider configuration and builds an
// authenticator.
func NewOIDCAuthenticator(ctx context.Context, cfg config.OIDCConfig, db *gorm.DB) (*OIDCAuthenticator, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       scopes,
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	return &OIDCAuthenticator{
		provider: provider,
		config:   oauth2Config,
		verifier: verifier,
		db:       db,
		name:     "oidc",
	}, nil
}

// AuthURL returns the URL to redirect users to for authentication.
func (a *OIDCAuthenticator) AuthURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// HandleCallback exchanges the authorization code, verifies the ID token
// and returns the matching account, creating it on first login.
func (a *OIDCAuthenticator) HandleCallback(ctx context.Context, code string) (*models.User, error) {
	oauth2Token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("no id_token in token response")
	}

	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Sub           string `json:"sub"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}
	if claims.Email == "" {
		return nil, errors.New("id token carries no email claim")
	}

	user, err := a.findOrCreateUser(claims.Email, claims.Name, claims.Picture, claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}

	slog.Info("User logged in via OIDC", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// findOrCreateUser looks an account up by email. An existing account is
// stamped with the provider name and subject if not already federated; a
// missing one is created without a password hash.
func (a *OIDCAuthenticator) findOrCreateUser(email, name, avatarURL, subject string) (*models.User, error) {
	var user models.User

	result := a.db.Where("email = ?", email).First(&user)
	if result.Error == nil {
		updates := map[string]interface{}{}
		if user.Provider != a.name {
			updates["provider"] = a.name
			updates["provider_subject"] = subject
		}
		if avatarURL != "" && user.AvatarURL != avatarURL {
			updates["avatar_url"] = avatarURL
		}
		if len(updates) > 0 {
			if err := a.db.Model(&user).Updates(updates).Error; err != nil {
				return nil, err
			}
		}
		return &user, nil
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}

	user = models.User{
		Email:           email,
		Name:            name,
		AvatarURL:       avatarURL,
		Provider:        a.name,
		ProviderSubject: subject,
		// No password hash: federated accounts never log in locally
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("Created new user from OIDC", "user_id", user.ID, "email", email)
	return &user, nil
}
