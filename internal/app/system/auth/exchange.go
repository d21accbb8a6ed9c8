// internal/app/system/auth/exchange.go
package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// CodeExchanger turns an OAuth authorization code into a raw ID token.
// Clients that run the server-side code flow post their code instead of
// an ID token; the exchange happens here.
type CodeExchanger interface {
	Exchange(ctx context.Context, code string) (string, error)
}

// GoogleExchanger exchanges authorization codes against Google's token
// endpoint.
type GoogleExchanger struct {
	cfg *oauth2.Config
}

func NewGoogleExchanger(clientID, clientSecret, redirectURL string) *GoogleExchanger {
	return &GoogleExchanger{cfg: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}}
}

func (g *GoogleExchanger) Exchange(ctx context.Context, code string) (string, error) {
	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange authorization code: %w", err)
	}
	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return "", fmt.Errorf("token response carries no id_token")
	}
	return raw, nil
}

// StaticExchanger resolves codes from a fixed map. Handler tests use it
// the same way they use StaticVerifier.
type StaticExchanger map[string]string

func (s StaticExchanger) Exchange(_ context.Context, code string) (string, error) {
	raw, ok := s[code]
	if !ok {
		return "", fmt.Errorf("unknown code")
	}
	return raw, nil
}
