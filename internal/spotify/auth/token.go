package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// RefreshThreshold is how close to expiry a token may get before it is
// refreshed.
const RefreshThreshold = 5 * time.Minute

// Token represents Spotify OAuth tokens as stored on disk.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	Scope        string    `json:"scope"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IsExpired returns true if the token has already expired.
func (t *Token) IsExpired() bool {
	return !time.Now().Before(t.ExpiresAt)
}

// NeedsRefresh returns true if the token expires within RefreshThreshold.
func (t *Token) NeedsRefresh() bool {
	return time.Now().Add(RefreshThreshold).After(t.ExpiresAt)
}

// OAuth2 converts the token for use with golang.org/x/oauth2 based clients.
func (t *Token) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt,
	}
}

func fromOAuth2(tok *oauth2.Token) *Token {
	token := &Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		token.Scope = scope
	}
	if !tok.Expiry.IsZero() {
		token.ExpiresIn = int(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	return token
}

// ExchangeCode exchanges an authorization code for tokens.
func ExchangeCode(ctx context.Context, cfg *Config, code, codeVerifier string) (*Token, error) {
	ctx = withHTTPClient(ctx)
	tok, err := cfg.OAuth2().Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, tokenError(err)
	}
	return fromOAuth2(tok), nil
}

// RefreshAccessToken uses a refresh token to get a new access token. The
// old refresh token is kept when Spotify does not rotate it.
func RefreshAccessToken(ctx context.Context, cfg *Config, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, errors.New("no refresh token")
	}
	ctx = withHTTPClient(ctx)
	src := cfg.OAuth2().TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, tokenError(err)
	}
	token := fromOAuth2(tok)
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	return token, nil
}

func withHTTPClient(ctx context.Context) context.Context {
	if _, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: 30 * time.Second})
}

func tokenError(err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) && rErr.ErrorCode != "" {
		return fmt.Errorf("token error: %s - %s", rErr.ErrorCode, rErr.ErrorDescription)
	}
	return fmt.Errorf("token request failed: %w", err)
}
