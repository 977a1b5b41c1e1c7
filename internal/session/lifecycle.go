package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/moodlist/moodlist/internal/services"
	"github.com/moodlist/moodlist/internal/shared"
)

// State enumerates the token lifecycle states.
type State int

const (
	// Anonymous means no token of any capability is held.
	Anonymous State = iota
	// AppAuthorized means the app-level client-credentials token is held;
	// search works but playlist operations require user login.
	AppAuthorized
	// UserAuthorized means a user token is installed alongside the app token.
	UserAuthorized
)

func (s State) String() string {
	switch s {
	case AppAuthorized:
		return "app_authorized"
	case UserAuthorized:
		return "user_authorized"
	default:
		return "anonymous"
	}
}

// Authenticator is the slice of the catalog service the lifecycle drives.
type Authenticator interface {
	Authenticate(ctx context.Context) error
	SetUserToken(accessToken, tokenType string)
	ClearUserToken()
	UserProfile(ctx context.Context) (*services.User, error)
}

// TokenStore owns the process-wide token lifecycle.
//
// Transitions: Anonymous → AppAuthorized via the client-credentials grant,
// Anonymous → UserAuthorized via callback parameters or a persisted token,
// UserAuthorized → AppAuthorized on logout. Expiry is not tracked; an
// expired token surfaces as a provider error on the next request.
type TokenStore struct {
	store   Store
	catalog Authenticator
	logger  *log.Logger
	state   State
	user    *services.User
}

// NewTokenStore creates a TokenStore over the given persistent store and catalog service.
func NewTokenStore(store Store, catalog Authenticator, logger *log.Logger) *TokenStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &TokenStore{
		store:   store,
		catalog: catalog,
		logger:  logger,
		state:   Anonymous,
	}
}

// Init performs the cold-start evaluation, once, in fixed priority order.
//
// The app-level exchange always runs first, independent of login state.
// Then: callback fragment parameters if supplied, else a persisted token,
// else the session stays app-only. A failure to restore the user session
// degrades to AppAuthorized instead of failing startup; only the app
// exchange itself is fatal.
func (t *TokenStore) Init(ctx context.Context, callbackFragment string) error {
	if err := t.catalog.Authenticate(ctx); err != nil {
		return fmt.Errorf("app authorization: %w", err)
	}
	t.state = AppAuthorized

	if callbackFragment != "" {
		token, err := TokenFromParams(ParseFragmentParams(callbackFragment))
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
		}
		if err := SaveToken(t.store, token); err != nil {
			return err
		}
		return t.installUserToken(ctx, token)
	}

	token, err := LoadToken(t.store)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil
		}
		return err
	}

	if err := t.installUserToken(ctx, token); err != nil {
		// Stale persisted tokens are expected; stay app-only.
		t.logger.Warn("failed to restore user session", "error", err)
		t.catalog.ClearUserToken()
		t.state = AppAuthorized
		t.user = nil
	}
	return nil
}

// InstallToken persists a freshly delivered token and activates the user session.
//
// Used after an interactive login completes, outside the cold-start path.
func (t *TokenStore) InstallToken(ctx context.Context, token Token) error {
	if err := SaveToken(t.store, token); err != nil {
		return err
	}
	return t.installUserToken(ctx, token)
}

// installUserToken applies a user token and fetches the owning profile.
func (t *TokenStore) installUserToken(ctx context.Context, token Token) error {
	t.catalog.SetUserToken(token.Value, token.TokenType)

	user, err := t.catalog.UserProfile(ctx)
	if err != nil {
		return err
	}

	t.user = user
	t.state = UserAuthorized
	t.logger.Info("user session active", "user", user.DisplayName)
	return nil
}

// Logout clears the persisted token fields and reverts to app-only capability.
func (t *TokenStore) Logout() error {
	if err := t.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	t.catalog.ClearUserToken()
	t.user = nil
	t.state = AppAuthorized
	return nil
}

// State returns the current lifecycle state.
func (t *TokenStore) State() State {
	return t.state
}

// User returns the authenticated user's profile, or nil while not UserAuthorized.
func (t *TokenStore) User() *services.User {
	return t.user
}
