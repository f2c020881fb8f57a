// Package client is a small Spotify Web API client covering the endpoints
// vinyl uses for playback control.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	verrors "github.com/tessro/vinyl/internal/errors"
	"github.com/tessro/vinyl/internal/spotify/auth"
)

const (
	// BaseURL is the Spotify Web API base URL.
	BaseURL = "https://api.spotify.com/v1"

	// Retry configuration for transient errors
	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client is a Spotify API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	auth       *auth.Config
	storage    *auth.TokenStorage
	token      *auth.Token
	mu         sync.RWMutex
	logger     *logrus.Logger
	retryWait  time.Duration
}

// New creates a new Spotify client. Tokens are refreshed through authCfg
// and persisted to storage.
func New(authCfg *auth.Config, storage *auth.TokenStorage) *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    BaseURL,
		auth:       authCfg,
		storage:    storage,
		logger:     logger,
		retryWait:  baseRetryWait,
	}
}

// SetLogger sets the logger used for request tracing.
func (c *Client) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// SetBaseURL points the client at a different API root.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// LoadToken loads the token from storage.
func (c *Client) LoadToken() error {
	token, err := c.storage.Load()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

// SetToken sets the current token.
func (c *Client) SetToken(token *auth.Token) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return c.storage.Save(token)
}

// IsAuthenticated returns true if there's a valid (non-expired) token.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != nil && !c.token.IsExpired()
}

// HasToken returns true if there's any token (even if expired).
func (c *Client) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != nil
}

// RefreshToken refreshes the access token when it is within
// auth.RefreshThreshold of expiring.
func (c *Client) RefreshToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil {
		return verrors.ErrNotAuthenticated
	}

	if !c.token.NeedsRefresh() {
		return nil
	}

	c.logger.WithField("expires_at", c.token.ExpiresAt).Debug("Refreshing Spotify token")

	newToken, err := auth.RefreshAccessToken(ctx, c.auth, c.token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	c.token = newToken
	return c.storage.Save(newToken)
}

// AccessToken returns the current access token, refreshing if needed.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if err := c.RefreshToken(ctx); err != nil {
		return "", err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == nil {
		return "", verrors.ErrNotAuthenticated
	}

	return c.token.AccessToken, nil
}

// TokenSource exposes the client's refreshing token to golang.org/x/oauth2
// based libraries.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, client: c}
}

type tokenSource struct {
	ctx    context.Context
	client *Client
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	if err := ts.client.RefreshToken(ts.ctx); err != nil {
		return nil, err
	}
	ts.client.mu.RLock()
	defer ts.client.mu.RUnlock()
	return ts.client.token.OAuth2(), nil
}

// Get performs a GET request to the Spotify API.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.request(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request to the Spotify API.
func (c *Client) Post(ctx context.Context, path string, body any, result any) error {
	return c.request(ctx, http.MethodPost, path, body, result)
}

// Put performs a PUT request to the Spotify API.
func (c *Client) Put(ctx context.Context, path string, body any, result any) error {
	return c.request(ctx, http.MethodPut, path, body, result)
}

// ErrNoContent is returned by Get when Spotify answers 204, which for the
// player endpoint means nothing is playing.
var ErrNoContent = errors.New("no content")

func (c *Client) request(ctx context.Context, method, path string, body any, result any) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	var jsonBody []byte
	if body != nil {
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	fullURL := c.baseURL + path
	log := c.logger.WithFields(logrus.Fields{
		"method": method,
		"url":    fullURL,
	})
	if jsonBody != nil {
		log.WithField("body", string(jsonBody)).Debug("Spotify request")
	} else {
		log.Debug("Spotify request")
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.retryWait * time.Duration(1<<(attempt-1)) // exponential backoff
			log.WithFields(logrus.Fields{
				"attempt": attempt,
				"wait":    wait,
			}).WithError(lastErr).Debug("Retrying Spotify request")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		var bodyReader io.Reader
		if jsonBody != nil {
			bodyReader = bytes.NewReader(jsonBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", verrors.ErrNetworkError, err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		log.WithField("status", resp.StatusCode).Debug("Spotify response")

		if resp.StatusCode == http.StatusNoContent {
			if method == http.MethodGet {
				return ErrNoContent
			}
			return nil
		}

		if resp.StatusCode >= 500 {
			lastErr = parseError(resp.StatusCode, respBody)
			continue
		}

		if resp.StatusCode >= 400 {
			err := parseError(resp.StatusCode, respBody)
			log.WithError(err).Debug("Spotify request failed")
			return err
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

func parseError(status int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorInfo.Message != "" {
		if apiErr.ErrorInfo.Status == 0 {
			apiErr.ErrorInfo.Status = status
		}
		return &apiErr
	}
	return fmt.Errorf("API error: status %d, body: %s", status, string(body))
}

// APIError represents a Spotify API error response.
type APIError struct {
	ErrorInfo struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Spotify API error %d: %s", e.ErrorInfo.Status, e.ErrorInfo.Message)
}

// Unwrap maps well-known statuses onto vinyl's sentinel errors.
func (e *APIError) Unwrap() error {
	switch {
	case e.ErrorInfo.Status == http.StatusUnauthorized:
		return verrors.ErrNotAuthenticated
	case e.ErrorInfo.Reason == "PREMIUM_REQUIRED":
		return verrors.ErrPremiumRequired
	case e.ErrorInfo.Reason == "NO_ACTIVE_DEVICE", e.ErrorInfo.Status == http.StatusNotFound:
		return verrors.ErrNoActiveDevice
	case e.ErrorInfo.Status == http.StatusTooManyRequests:
		return verrors.ErrRateLimited
	}
	return nil
}

// IsNoActiveDeviceError checks if an error is a "no active device" error.
func IsNoActiveDeviceError(err error) bool {
	return errors.Is(err, verrors.ErrNoActiveDevice)
}

// BuildURL builds a URL with query parameters.
func BuildURL(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}

	u, _ := url.Parse(path)
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
