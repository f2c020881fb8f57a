package auth

import (
	"net/url"
	"testing"
)

func TestBuildAuthURL(t *testing.T) {
	pkce := &PKCE{
		Verifier:  "test_verifier",
		Challenge: "test_challenge",
		State:     "test_state",
	}

	cfg := NewConfig("test_client_id")
	cfg.RedirectURI = "http://127.0.0.1:8888/callback"

	authURL := cfg.BuildAuthURL(pkce)

	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("BuildAuthURL() produced invalid URL: %v", err)
	}

	if u.Scheme != "https" || u.Host != "accounts.spotify.com" || u.Path != "/authorize" {
		t.Errorf("BuildAuthURL() base URL = %s://%s%s, want https://accounts.spotify.com/authorize",
			u.Scheme, u.Host, u.Path)
	}

	q := u.Query()

	tests := []struct {
		param string
		want  string
	}{
		{"client_id", "test_client_id"},
		{"response_type", "code"},
		{"redirect_uri", "http://127.0.0.1:8888/callback"},
		{"code_challenge_method", "S256"},
		// The challenge is derived from the verifier, not taken from the struct.
		{"code_challenge", "0Ku4rR8EgR1w3HyHLBCxVLtPsAAks5HOlpmTEt0XhVA"},
		{"state", "test_state"},
		{"scope", "streaming user-library-read user-read-playback-state user-modify-playback-state"},
	}

	for _, tt := range tests {
		if got := q.Get(tt.param); got != tt.want {
			t.Errorf("BuildAuthURL() %s = %q, want %q", tt.param, got, tt.want)
		}
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("my_client_id")

	if cfg.ClientID != "my_client_id" {
		t.Errorf("ClientID = %q, want %q", cfg.ClientID, "my_client_id")
	}
	if cfg.RedirectURI != DefaultRedirectURI {
		t.Errorf("RedirectURI = %q, want %q", cfg.RedirectURI, DefaultRedirectURI)
	}
	if len(cfg.Scopes) != len(DefaultScopes) {
		t.Errorf("Scopes length = %d, want %d", len(cfg.Scopes), len(DefaultScopes))
	}
	if cfg.TokenURL != SpotifyTokenURL {
		t.Errorf("TokenURL = %q, want %q", cfg.TokenURL, SpotifyTokenURL)
	}
}

func TestOAuth2FallsBackToSpotifyEndpoints(t *testing.T) {
	cfg := &Config{ClientID: "abc"}
	oc := cfg.OAuth2()
	if oc.Endpoint.AuthURL != SpotifyAuthURL {
		t.Errorf("AuthURL = %q, want %q", oc.Endpoint.AuthURL, SpotifyAuthURL)
	}
	if oc.Endpoint.TokenURL != SpotifyTokenURL {
		t.Errorf("TokenURL = %q, want %q", oc.Endpoint.TokenURL, SpotifyTokenURL)
	}
}

func TestCallbackPort(t *testing.T) {
	tests := []struct {
		uri     string
		want    int
		wantErr bool
	}{
		{"http://127.0.0.1:8888/callback", 8888, false},
		{"http://localhost:9000/cb", 9000, false},
		{"http://127.0.0.1/callback", 0, true},
		{"://bad", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			cfg := NewConfig("id")
			cfg.RedirectURI = tt.uri
			got, err := cfg.CallbackPort()
			if (err != nil) != tt.wantErr {
				t.Fatalf("CallbackPort() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CallbackPort() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCallbackPath(t *testing.T) {
	cfg := NewConfig("id")
	cfg.RedirectURI = "http://localhost:9000/cb"
	if got := cfg.CallbackPath(); got != "/cb" {
		t.Errorf("CallbackPath() = %q, want /cb", got)
	}

	cfg.RedirectURI = "http://localhost:9000"
	if got := cfg.CallbackPath(); got != "/callback" {
		t.Errorf("CallbackPath() = %q, want /callback", got)
	}
}
