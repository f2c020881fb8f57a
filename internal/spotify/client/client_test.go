package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	verrors "github.com/tessro/vinyl/internal/errors"
	"github.com/tessro/vinyl/internal/spotify/auth"
)

// newTestClient returns a client pointed at handler with a valid token.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	storage, err := auth.NewTokenStorage(filepath.Join(t.TempDir(), "token.json"))
	if err != nil {
		t.Fatal(err)
	}

	c := New(auth.NewConfig("test_client"), storage)
	c.SetBaseURL(server.URL)
	c.retryWait = time.Millisecond
	if err := c.SetToken(&auth.Token{
		AccessToken:  "good_token",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatal(err)
	}
	return c, server
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		params map[string]string
		want   string
	}{
		{"no params", "/me", nil, "/me"},
		{"empty params", "/me", map[string]string{}, "/me"},
		{"single param", "/me/player/pause", map[string]string{"device_id": "abc"}, "/me/player/pause?device_id=abc"},
		{"sorted params", "/me/player/volume", map[string]string{"volume_percent": "40", "device_id": "abc"}, "/me/player/volume?device_id=abc&volume_percent=40"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildURL(tt.path, tt.params); got != tt.want {
				t.Errorf("BuildURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIError(t *testing.T) {
	err := &APIError{}
	err.ErrorInfo.Status = 401
	err.ErrorInfo.Message = "Invalid access token"

	expected := "Spotify API error 401: Invalid access token"
	if got := err.Error(); got != expected {
		t.Errorf("Error() = %q, want %q", got, expected)
	}
	if !errors.Is(err, verrors.ErrNotAuthenticated) {
		t.Error("401 should unwrap to ErrNotAuthenticated")
	}
}

func TestAPIErrorUnwrap(t *testing.T) {
	tests := []struct {
		status int
		reason string
		want   error
	}{
		{403, "PREMIUM_REQUIRED", verrors.ErrPremiumRequired},
		{404, "NO_ACTIVE_DEVICE", verrors.ErrNoActiveDevice},
		{404, "", verrors.ErrNoActiveDevice},
		{429, "", verrors.ErrRateLimited},
	}
	for _, tt := range tests {
		err := &APIError{}
		err.ErrorInfo.Status = tt.status
		err.ErrorInfo.Reason = tt.reason
		if !errors.Is(err, tt.want) {
			t.Errorf("APIError{%d, %q} does not match %v", tt.status, tt.reason, tt.want)
		}
	}
}

func TestRequestSendsBearerToken(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer good_token" {
			t.Errorf("Authorization = %q, want Bearer good_token", got)
		}
		if r.URL.Path != "/me" {
			t.Errorf("path = %q, want /me", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(User{ID: "u1", DisplayName: "Listener", Product: "premium"})
	}))

	user, err := c.GetCurrentUser(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentUser() error = %v", err)
	}
	if user.DisplayName != "Listener" {
		t.Errorf("DisplayName = %q, want Listener", user.DisplayName)
	}
}

func TestRequestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(DevicesResponse{Devices: []Device{{ID: "d1", Name: "Desk"}}})
	}))

	devices, err := c.GetDevices(context.Background())
	if err != nil {
		t.Fatalf("GetDevices() error = %v", err)
	}
	if len(devices) != 1 || devices[0].Name != "Desk" {
		t.Errorf("GetDevices() = %+v, want one Desk device", devices)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestRequestGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	if _, err := c.GetDevices(context.Background()); err == nil {
		t.Fatal("GetDevices() error = nil, want error")
	}
	if calls.Load() != maxRetries+1 {
		t.Errorf("calls = %d, want %d", calls.Load(), maxRetries+1)
	}
}

func TestRequestDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"status":403,"message":"Player command failed: Premium required","reason":"PREMIUM_REQUIRED"}}`))
	}))

	err := c.Pause(context.Background(), "")
	if !errors.Is(err, verrors.ErrPremiumRequired) {
		t.Errorf("Pause() error = %v, want ErrPremiumRequired", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGetPlaybackStateNoContent(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	state, err := c.GetPlaybackState(context.Background())
	if err != nil {
		t.Fatalf("GetPlaybackState() error = %v", err)
	}
	if state != nil {
		t.Errorf("GetPlaybackState() = %+v, want nil", state)
	}
}

func TestPlayAlbumContext(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if r.URL.Path != "/me/player/play" {
			t.Errorf("path = %q, want /me/player/play", r.URL.Path)
		}
		if got := r.URL.Query().Get("device_id"); got != "dev1" {
			t.Errorf("device_id = %q, want dev1", got)
		}
		var body PlayOptions
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.ContextURI != "spotify:album:abc" {
			t.Errorf("context_uri = %q, want spotify:album:abc", body.ContextURI)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := c.Play(context.Background(), "dev1", &PlayOptions{ContextURI: "spotify:album:abc"}); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
}

func TestTransferPlayback(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			DeviceIDs []string `json:"device_ids"`
			Play      bool     `json:"play"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.DeviceIDs) != 1 || body.DeviceIDs[0] != "dev9" || body.Play {
			t.Errorf("body = %+v, want dev9 without play", body)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := c.TransferPlayback(context.Background(), "dev9", false); err != nil {
		t.Fatalf("TransferPlayback() error = %v", err)
	}
}

func TestRequestWithoutToken(t *testing.T) {
	storage, _ := auth.NewTokenStorage(filepath.Join(t.TempDir(), "token.json"))
	c := New(auth.NewConfig("id"), storage)

	_, err := c.GetCurrentUser(context.Background())
	if !errors.Is(err, verrors.ErrNotAuthenticated) {
		t.Errorf("GetCurrentUser() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestRefreshTokenNearExpiry(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("refresh_token") != "refresh" {
			t.Errorf("refresh_token = %q, want refresh", r.PostForm.Get("refresh_token"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	path := filepath.Join(t.TempDir(), "token.json")
	storage, _ := auth.NewTokenStorage(path)
	cfg := auth.NewConfig("id")
	cfg.TokenURL = tokenServer.URL

	c := New(cfg, storage)
	_ = c.SetToken(&auth.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(2 * time.Minute),
	})

	tok, err := c.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken() error = %v", err)
	}
	if tok != "fresh" {
		t.Errorf("AccessToken() = %q, want fresh", tok)
	}

	saved, err := storage.Load()
	if err != nil {
		t.Fatal(err)
	}
	if saved.AccessToken != "fresh" || saved.RefreshToken != "refresh" {
		t.Errorf("stored token = %+v, want refreshed access token with the old refresh token", saved)
	}

	// The oauth2 view reflects the refreshed token.
	ot, err := c.TokenSource(context.Background()).Token()
	if err != nil {
		t.Fatalf("TokenSource().Token() error = %v", err)
	}
	if ot.AccessToken != "fresh" {
		t.Errorf("TokenSource().Token() = %q, want fresh", ot.AccessToken)
	}
}

func TestNetworkErrorIsSentinel(t *testing.T) {
	c, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := c.GetCurrentUser(context.Background())
	if !errors.Is(err, verrors.ErrNetworkError) {
		t.Errorf("error = %v, want ErrNetworkError", err)
	}
	if !strings.Contains(err.Error(), "retries") {
		t.Errorf("error = %q, want retry context", err)
	}
}
