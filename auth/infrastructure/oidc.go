package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/AzielCF/az-chat/auth/domain"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

type OIDCConfig struct {
	Authority    string
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// OIDCProvider talks to a Microsoft Entra style authority whose v2.0
// discovery document lives under {authority}/v2.0.
type OIDCProvider struct {
	oauth       oauth2.Config
	verifier    *oidc.IDTokenVerifier
	endSessions string
}

func NewOIDCProvider(ctx context.Context, cfg OIDCConfig) (*OIDCProvider, error) {
	issuer := strings.TrimRight(cfg.Authority, "/") + "/v2.0"
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover oidc provider %s: %w", issuer, err)
	}

	var discovery struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	if err := provider.Claims(&discovery); err != nil {
		logrus.WithError(err).Warn("[AUTH] Could not read provider metadata, logout stays local")
	}

	return &OIDCProvider{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier:    provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		endSessions: discovery.EndSessionEndpoint,
	}, nil
}

func (p *OIDCProvider) AuthCodeURL(state, nonce, verifier string) string {
	return p.oauth.AuthCodeURL(state, oidc.Nonce(nonce), oauth2.S256ChallengeOption(verifier))
}

func (p *OIDCProvider) Exchange(ctx context.Context, code, verifier, nonce string) (*domain.User, error) {
	token, err := p.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("token response carries no id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("id token verification: %w", err)
	}
	if idToken.Nonce != nonce {
		return nil, domain.ErrNonceMismatch
	}

	var claims struct {
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Email             string `json:"email"`
		ObjectID          string `json:"oid"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("id token claims: %w", err)
	}

	id := claims.ObjectID
	if id == "" {
		id = idToken.Subject
	}
	return &domain.User{
		ID:       id,
		Name:     claims.Name,
		Username: claims.PreferredUsername,
		Email:    claims.Email,
	}, nil
}

func (p *OIDCProvider) LogoutURL(postLogoutRedirect string) string {
	if p.endSessions == "" {
		return ""
	}
	u, err := url.Parse(p.endSessions)
	if err != nil {
		logrus.WithError(err).Warn("[AUTH] Invalid end_session_endpoint")
		return ""
	}
	if postLogoutRedirect != "" {
		q := u.Query()
		q.Set("post_logout_redirect_uri", postLogoutRedirect)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
