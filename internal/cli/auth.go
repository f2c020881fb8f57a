package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/vinyl/internal/browser"
	verrors "github.com/tessro/vinyl/internal/errors"
	"github.com/tessro/vinyl/internal/spotify/auth"
)

const loginTimeout = 5 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Spotify authentication",
	Long:  `Commands for managing Spotify OAuth authentication.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Spotify",
	Long:  `Opens a browser to authenticate with Spotify using OAuth PKCE flow.`,
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored Spotify credentials",
	Long:  `Removes the stored Spotify OAuth tokens from the local machine.`,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long:  `Shows the current Spotify authentication status.`,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

type authStatus struct {
	Authenticated bool       `json:"authenticated"`
	Expired       bool       `json:"expired,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	UserID        string     `json:"user_id,omitempty"`
	DisplayName   string     `json:"display_name,omitempty"`
	Email         string     `json:"email,omitempty"`
	Product       string     `json:"product,omitempty"`
	Error         string     `json:"error,omitempty"`
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	if cfg.Spotify.ClientID == "" {
		return verrors.ErrNoClientID
	}

	pkce, err := auth.NewPKCE()
	if err != nil {
		return fmt.Errorf("failed to generate PKCE: %w", err)
	}

	oauth := authConfig()
	port, err := oauth.CallbackPort()
	if err != nil {
		return fmt.Errorf("%w: %v", verrors.ErrInvalidConfig, err)
	}

	callbackServer, err := auth.NewCallbackServer(port, oauth.CallbackPath())
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	callbackServer.Start()
	defer func() { _ = callbackServer.Shutdown(context.Background()) }()

	authURL := oauth.BuildAuthURL(pkce)

	fmt.Println("Opening browser for Spotify authentication...")
	if err := browser.Open(authURL); err != nil {
		logger.WithError(err).Debug("Could not open browser")
		fmt.Printf("Could not open browser automatically.\n")
		fmt.Printf("Please open this URL in your browser:\n\n%s\n\n", authURL)
	}

	fmt.Println("Waiting for authentication...")
	ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
	defer cancel()

	result, err := callbackServer.Wait(ctx)
	if err != nil {
		return fmt.Errorf("%w: authentication did not complete: %v", verrors.ErrTimeout, err)
	}
	if result.Error != "" {
		return fmt.Errorf("authentication failed: %s", result.Error)
	}
	if result.State != pkce.State {
		return fmt.Errorf("state mismatch: possible CSRF attack")
	}

	fmt.Println("Exchanging code for tokens...")
	token, err := auth.ExchangeCode(ctx, oauth, result.Code, pkce.Verifier)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}

	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}
	if err := storage.Save(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	logger.WithField("path", storage.Path()).Debug("Token saved")

	c, err := newSpotifyClient()
	if err != nil {
		return err
	}
	user, err := c.GetCurrentUser(ctx)
	if err != nil {
		logger.WithError(err).Warn("Could not fetch user profile")
		fmt.Println("Authentication successful! Token stored.")
		return nil
	}

	if JSONOutput() {
		return printJSON(authStatus{
			Authenticated: true,
			UserID:        user.ID,
			DisplayName:   user.DisplayName,
			Email:         user.Email,
			Product:       user.Product,
		})
	}
	fmt.Printf("Successfully authenticated as %s (%s)\n", user.DisplayName, user.Email)
	if user.Product != "premium" {
		fmt.Println("Note: playback control needs Spotify Premium. Try 'vinyl --demo' in the meantime.")
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}

	if !storage.Exists() {
		if JSONOutput() {
			return printJSON(map[string]string{"status": "not_authenticated"})
		}
		fmt.Println("Not authenticated with Spotify.")
		return nil
	}

	if err := storage.Delete(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "logged_out"})
	}
	fmt.Println("Logged out of Spotify.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}

	token, err := storage.Load()
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}

	if token == nil {
		if JSONOutput() {
			return printJSON(authStatus{})
		}
		fmt.Println("Not authenticated with Spotify.")
		fmt.Println("Run 'vinyl auth login' to authenticate.")
		return nil
	}

	status := authStatus{
		Authenticated: true,
		Expired:       token.IsExpired(),
		ExpiresAt:     &token.ExpiresAt,
	}

	// Without a client ID the token cannot be refreshed, so report what is stored.
	if cfg.Spotify.ClientID == "" {
		if JSONOutput() {
			return printJSON(status)
		}
		if status.Expired {
			fmt.Println("Authenticated but token expired.")
		} else {
			fmt.Println("Authenticated with Spotify.")
		}
		return nil
	}

	c, err := newSpotifyClient()
	if err != nil {
		return err
	}
	user, err := c.GetCurrentUser(cmd.Context())
	if err != nil {
		status.Expired = true
		status.Error = err.Error()
		if JSONOutput() {
			return printJSON(status)
		}
		fmt.Printf("Token may be expired or invalid: %v\n", verrors.Short(err))
		fmt.Println("Run 'vinyl auth login' to re-authenticate.")
		return nil
	}

	status.Expired = false
	status.UserID = user.ID
	status.DisplayName = user.DisplayName
	status.Email = user.Email
	status.Product = user.Product

	if JSONOutput() {
		return printJSON(status)
	}
	fmt.Printf("Authenticated as: %s (%s)\n", user.DisplayName, user.Email)
	fmt.Printf("Account type: %s\n", user.Product)
	fmt.Printf("Token expires: %s (%s)\n", humanize.Time(token.ExpiresAt), token.ExpiresAt.Format(time.RFC3339))
	return nil
}
