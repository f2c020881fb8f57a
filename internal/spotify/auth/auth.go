// Package auth implements Spotify's authorization code flow with PKCE.
package auth

import (
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"
)

const (
	// SpotifyAuthURL is the Spotify authorization endpoint.
	SpotifyAuthURL = "https://accounts.spotify.com/authorize"

	// SpotifyTokenURL is the Spotify token endpoint.
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"

	// DefaultRedirectURI is the default callback URI for the local server.
	DefaultRedirectURI = "http://127.0.0.1:8888/callback"
)

// DefaultScopes are the Spotify scopes vinyl needs to read the library and
// drive playback.
var DefaultScopes = []string{
	"streaming",
	"user-library-read",
	"user-read-playback-state",
	"user-modify-playback-state",
}

// Config holds the OAuth configuration.
type Config struct {
	ClientID    string
	RedirectURI string
	Scopes      []string

	// Endpoints default to Spotify's accounts service.
	AuthURL  string
	TokenURL string
}

// NewConfig creates a new OAuth configuration with defaults.
func NewConfig(clientID string) *Config {
	return &Config{
		ClientID:    clientID,
		RedirectURI: DefaultRedirectURI,
		Scopes:      DefaultScopes,
		AuthURL:     SpotifyAuthURL,
		TokenURL:    SpotifyTokenURL,
	}
}

// OAuth2 returns the equivalent golang.org/x/oauth2 configuration. Spotify
// public clients carry no secret, so the client ID travels in the form body.
func (c *Config) OAuth2() *oauth2.Config {
	authURL := c.AuthURL
	if authURL == "" {
		authURL = SpotifyAuthURL
	}
	tokenURL := c.TokenURL
	if tokenURL == "" {
		tokenURL = SpotifyTokenURL
	}

	return &oauth2.Config{
		ClientID:    c.ClientID,
		RedirectURL: c.RedirectURI,
		Scopes:      c.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// BuildAuthURL constructs the Spotify authorization URL with PKCE parameters.
func (c *Config) BuildAuthURL(pkce *PKCE) string {
	return c.OAuth2().AuthCodeURL(pkce.State, oauth2.S256ChallengeOption(pkce.Verifier))
}

// CallbackPort returns the port the redirect URI points at, which is where
// the local callback server must listen.
func (c *Config) CallbackPort() (int, error) {
	u, err := url.Parse(c.RedirectURI)
	if err != nil {
		return 0, fmt.Errorf("invalid redirect URI: %w", err)
	}
	if u.Port() == "" {
		return 0, fmt.Errorf("redirect URI %s has no port", c.RedirectURI)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		return 0, fmt.Errorf("invalid redirect URI port: %w", err)
	}
	return port, nil
}

// CallbackPath returns the path component of the redirect URI.
func (c *Config) CallbackPath() string {
	u, err := url.Parse(c.RedirectURI)
	if err != nil || u.Path == "" {
		return "/callback"
	}
	return u.Path
}
