package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/moodlist/moodlist/internal/repositories"
	"github.com/moodlist/moodlist/internal/services"
	"github.com/moodlist/moodlist/internal/session"
	"github.com/moodlist/moodlist/internal/shared"
	"github.com/moodlist/moodlist/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	recommender services.Recommender
	spotify     *services.SpotifyService
	logger      *log.Logger
	output      io.Writer
	engine      *tasks.Engine
	db          *sql.DB
	session     *session.TokenStore
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	Recommender services.Recommender
	Spotify     *services.SpotifyService
	Logger      *log.Logger
	Output      io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	var catalog services.Catalog
	if opts.Spotify != nil {
		catalog = opts.Spotify
	}

	return &Runner{
		config:      opts.Config,
		recommender: opts.Recommender,
		spotify:     opts.Spotify,
		logger:      opts.Logger,
		output:      opts.Output,
		engine:      tasks.NewEngine(opts.Recommender, catalog, opts.Logger),
	}
}

// SetLogger replaces the Runner's logger and the engine's logger with it.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger

	var catalog services.Catalog
	if r.spotify != nil {
		catalog = r.spotify
	}
	r.engine = tasks.NewEngine(r.recommender, catalog, logger)
}

// database lazily opens the configured sqlite database.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	r.db = db
	return db, nil
}

// tokenStore builds the session-backed token lifecycle over the database.
func (r *Runner) tokenStore() (*session.TokenStore, error) {
	if r.session != nil {
		return r.session, nil
	}
	if r.spotify == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	db, err := r.database()
	if err != nil {
		return nil, err
	}

	r.session = session.NewTokenStore(repositories.NewSessionRepository(db), r.spotify, r.logger)
	return r.session, nil
}

// initSession runs the cold-start token evaluation: app authorization plus
// restoring a persisted user session when one exists.
func (r *Runner) initSession(ctx context.Context) (*session.TokenStore, error) {
	store, err := r.tokenStore()
	if err != nil {
		return nil, err
	}

	if store.State() == session.Anonymous {
		if err := store.Init(ctx, ""); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}
	}

	return store, nil
}

// playlists returns the history repository.
func (r *Runner) playlists() (*repositories.PlaylistRepository, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return repositories.NewPlaylistRepository(db), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
