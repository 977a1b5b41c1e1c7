package main

import (
	"context"
	"fmt"
	"time"

	"github.com/moodlist/moodlist/internal/server"
	"github.com/moodlist/moodlist/internal/session"
	"github.com/moodlist/moodlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin performs the implicit-grant authorization flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// persists the token delivered in the redirect fragment.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	store, err := r.initSession(ctx)
	if err != nil {
		return err
	}

	token, err := r.doImplicitGrant(ctx)
	if err != nil {
		return err
	}

	if err := store.InstallToken(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.writePlainln("✓ Authorization successful")
	if user := store.User(); user != nil {
		r.writePlain("✓ Signed in as %s\n\n", user.DisplayName)
	}
	r.writePlain("You can now use: moodlist generate \"your mood\" --save\n")

	return nil
}

// AuthStatus reports the current token lifecycle state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	store, err := r.initSession(ctx)
	if err != nil {
		return err
	}

	switch store.State() {
	case session.UserAuthorized:
		r.writePlain("✓ App authorization: active\n")
		if user := store.User(); user != nil {
			r.writePlain("✓ User session: %s (%s)\n", user.DisplayName, user.ID)
		} else {
			r.writePlain("✓ User session: active\n")
		}
	case session.AppAuthorized:
		r.writePlain("✓ App authorization: active\n")
		r.writePlain("✗ User session: not signed in (run 'moodlist auth login')\n")
	default:
		r.writePlain("✗ Not authorized\n")
	}

	return nil
}

// AuthLogout forgets the persisted user session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	store, err := r.tokenStore()
	if err != nil {
		return err
	}

	if err := store.Logout(); err != nil {
		return err
	}

	r.writePlain("✓ Signed out\n")
	return nil
}

// doImplicitGrant runs the browser round trip and returns the delivered token.
func (r *Runner) doImplicitGrant(ctx context.Context) (session.Token, error) {
	var token session.Token

	state := shared.GenerateID()
	handler := server.NewCallbackHandler(state)
	srv := server.New(r.config.Server.Host, r.config.Server.Port, server.Apply(handler, server.Logging(r.logger)))

	r.logger.Info("starting authorization callback server", "addr", srv.Addr())
	serverErrors := srv.Start()

	time.Sleep(100 * time.Millisecond)

	authURL := r.spotify.AuthURL(state)
	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-handler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return token, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return token, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return token, fmt.Errorf("authorization failed: %w", result.Error())
	}

	return result.Token, nil
}
