package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moodlist/moodlist/internal/models"
	"github.com/moodlist/moodlist/internal/session"
	"github.com/moodlist/moodlist/internal/shared"
	"github.com/moodlist/moodlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Generate runs the full mood → recommendations → tracks pipeline.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	mood := strings.TrimSpace(cmd.StringArg("mood"))
	count := cmd.Int("count")
	save := cmd.Bool("save")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if mood == "" {
		return fmt.Errorf("%w: a mood is required, e.g. moodlist generate \"rainy sunday morning\"", shared.ErrMissingArgument)
	}
	if count <= 0 {
		return fmt.Errorf("%w: count must be positive", shared.ErrInvalidArgument)
	}
	if r.recommender == nil {
		return fmt.Errorf("%w: OpenAI api_key must be set in config.toml", shared.ErrMissingCredentials)
	}

	store, err := r.initSession(ctx)
	if err != nil {
		return err
	}
	if save && store.State() != session.UserAuthorized {
		return fmt.Errorf("%w: run 'moodlist auth login' before saving playlists", shared.ErrNotAuthenticated)
	}

	r.logger.Info("starting generation", "mood", mood, "count", count)
	r.writePlain("Generating %d tracks for: %s\n\n", count, mood)

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.RequestCompletion:
				r.writePlain("💭 %s\n\n", update.Message)
			case tasks.TrackResolved:
				r.writePlain("   %s\n", update.Message)
			case tasks.LineSkipped:
				r.writePlain("   %s\n", update.Message)
			case tasks.CreatePlaylist:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.Generate(ctx, mood, count, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(result, pretty)
	}

	resolution := result.Resolution
	r.writePlain("\n")
	r.writePlainHeader("Generation Complete!")
	r.writePlain("Resolved: %d/%d recommendations\n", len(resolution.Tracks), resolution.TotalLines)

	for i, track := range resolution.Tracks {
		r.writePlain("%d. %s - %s (popularity %d)\n", i+1, track.Artist, track.Title, track.Popularity)
	}

	if len(resolution.Skipped) > 0 {
		r.writePlain("\nSkipped %d lines:\n", len(resolution.Skipped))
		for _, skipped := range resolution.Skipped {
			r.writePlain("  - %s (%s)\n", skipped.Line, skipped.Reason)
		}
	}

	if !save {
		return nil
	}

	return r.savePlaylist(ctx, cmd, mood, resolution.Tracks)
}

// savePlaylist pushes resolved tracks to Spotify and records them in history.
func (r *Runner) savePlaylist(ctx context.Context, cmd *cli.Command, mood string, tracks []models.Track) error {
	name := cmd.String("name")
	if name == "" {
		name = r.config.Playlist.Name
	}
	description := cmd.String("description")
	if description == "" {
		description = r.config.Playlist.Description
	}

	playlist, err := r.engine.SavePlaylist(ctx, name, description, r.config.Playlist.Public, tracks, nil)
	if err != nil {
		return err
	}

	r.writePlainln("✓ Playlist saved to Spotify")
	r.writePlain("  Name: %s\n", playlist.Name)
	r.writePlain("  Tracks: %d\n", playlist.TrackCount)

	repo, err := r.playlists()
	if err != nil {
		r.logger.Warn("history unavailable", "error", err)
		return nil
	}

	record := &models.GeneratedPlaylist{
		SpotifyID:   playlist.ID,
		Name:        name,
		Description: description,
		Prompt:      mood,
		CreatedAt:   time.Now().UTC(),
		Tracks:      tracks,
	}
	if err := repo.Create(record); err != nil {
		r.logger.Warn("failed to record playlist history", "error", err)
		return nil
	}

	r.writePlain("  History id: %s\n", record.ID)
	return nil
}
