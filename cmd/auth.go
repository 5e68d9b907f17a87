package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/spotboard/internal/auth"
	"github.com/desertthunder/spotboard/internal/server"
	"github.com/desertthunder/spotboard/internal/services"
	"github.com/desertthunder/spotboard/internal/shared"
	"github.com/urfave/cli/v3"
)

const loginTimeout = 2 * time.Minute

// AuthLogin runs the implicit grant login and persists the token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.login(ctx); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s (%s)\n\n", r.config.Token.Path, r.config.Token.Backend)
	r.writePlain("You can now use: spotboard top tracks\n")
	return nil
}

// AuthToken stores a token pasted from a redirect URL or its fragment, for machines without a browser.
func (r *Runner) AuthToken(ctx context.Context, cmd *cli.Command) error {
	fragment := cmd.String("fragment")
	rawURL := cmd.String("url")

	switch {
	case fragment == "" && rawURL == "":
		return fmt.Errorf("%w: either --fragment or --url must be provided", shared.ErrMissingArgument)
	case fragment != "" && rawURL != "":
		return fmt.Errorf("%w: cannot specify both --fragment and --url", shared.ErrInvalidArgument)
	}

	store, err := r.tokenStore()
	if err != nil {
		return err
	}

	if rawURL != "" {
		token, ok := auth.ExtractFromURL(rawURL)
		if !ok {
			return fmt.Errorf("%w: no access_token in URL fragment", shared.ErrInvalidInput)
		}
		if err := store.Save(ctx, token); err != nil {
			return fmt.Errorf("failed to persist token: %w", err)
		}
	} else {
		if _, ok := auth.ExtractFromFragment(fragment); !ok {
			return fmt.Errorf("%w: no access_token in fragment", shared.ErrInvalidInput)
		}
		if _, err := auth.Resolve(ctx, fragment, store); err != nil {
			return err
		}
	}

	r.spotify = nil
	return r.writePlain("✓ Token saved to %s (%s)\n", r.config.Token.Path, r.config.Token.Backend)
}

// AuthStatus reports whether a token is stored and whether Spotify still accepts it.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.service(ctx)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return r.writePlain("✗ Not logged in\nRun: spotboard auth login\n")
	}
	if err != nil {
		return err
	}

	profile, err := svc.UserProfile(ctx)
	if errors.Is(err, shared.ErrTokenExpired) {
		return r.writePlain("✗ Token expired\nRun: spotboard auth login\n")
	}
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}

	user := services.ToUser(*profile)
	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlain("✓ Logged in as %s\n", user.DisplayName)
	r.writePlain("   ID: %s\n", user.ID)
	if user.Country != "" {
		r.writePlain("   Country: %s\n", user.Country)
	}
	if user.Product != "" {
		r.writePlain("   Plan: %s\n", user.Product)
	}
	return nil
}

// AuthLogout forgets the persisted token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	store, err := r.tokenStore()
	if err != nil {
		return err
	}

	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	r.spotify = nil
	return r.writePlain("✓ Logged out\n")
}

// login performs the browser login and saves the token it yields.
func (r *Runner) login(ctx context.Context) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	token, err := r.doImplicitGrant(ctx)
	if err != nil {
		return err
	}

	store, err := r.tokenStore()
	if err != nil {
		return err
	}

	if err := store.Save(ctx, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// doImplicitGrant opens the Spotify consent page and waits for the local callback server to receive the token.
func (r *Runner) doImplicitGrant(ctx context.Context) (string, error) {
	spotify := r.config.Credentials.Spotify
	state := shared.GenerateID()

	authURL, err := auth.AuthorizeURL(spotify.ClientID, spotify.RedirectURI, spotify.Scopes, state)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	handler := server.NewImplicitGrantHandler(state, r.logger)
	router := server.NewCallbackRouter(handler, r.logger)

	serverAddr := r.config.Server.Addr()
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting login callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify login...\n")
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", loginTimeout)

	timeout := time.NewTimer(loginTimeout)
	defer timeout.Stop()

	var result server.TokenResult

	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return "", fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return "", fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, loginTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if err := result.Error(); err != nil {
		return "", fmt.Errorf("authorization failed: %w", err)
	}

	if result.Token == "" {
		return "", fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}
