package main

import (
	"context"
	"fmt"
	"os"

	"github.com/moodlist/moodlist/internal/formatter"
	"github.com/moodlist/moodlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistHistory lists previously generated playlists.
func (r *Runner) PlaylistHistory(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	repo, err := r.playlists()
	if err != nil {
		return err
	}

	playlists, err := repo.List(limit)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	if len(playlists) == 0 {
		r.writePlain("No generated playlists yet. Run 'moodlist generate \"your mood\" --save'\n")
		return nil
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Mood: %s\n", p.Prompt)
		r.writePlain("   Created: %s\n", p.CreatedAt.Format("2006-01-02 15:04"))
		if p.SpotifyID != "" {
			r.writePlain("   Spotify: %s\n", p.SpotifyID)
		}
		r.writePlain("\n")
	}

	return nil
}

// PlaylistShow prints one generated playlist with its tracks.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if id == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	repo, err := r.playlists()
	if err != nil {
		return err
	}

	playlist, err := repo.Get(id)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(playlist, pretty)
	}

	r.writePlain("Playlist: %s\n", playlist.Name)
	if playlist.Description != "" {
		r.writePlain("Description: %s\n", playlist.Description)
	}
	r.writePlain("Mood: %s\n", playlist.Prompt)
	r.writePlain("Tracks: %d\n\n", len(playlist.Tracks))

	for i, track := range playlist.Tracks {
		r.writePlain("%d. %s - %s\n", i+1, track.Artist, track.Title)
	}

	return nil
}

// PlaylistExport writes a generated playlist in the requested format.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	format := cmd.String("format")
	outputFile := cmd.String("output")

	if id == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	repo, err := r.playlists()
	if err != nil {
		return err
	}

	playlist, err := repo.Get(id)
	if err != nil {
		return err
	}

	data, err := formatter.Export(playlist, format)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	if outputFile == "" {
		return r.writePlain("%s", string(data))
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	r.logger.Infof("playlist exported to %v with %v tracks", outputFile, len(playlist.Tracks))
	r.writePlain("✓ Playlist exported to %s\n", outputFile)
	return nil
}

// PlaylistDelete removes a generated playlist from history.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	repo, err := r.playlists()
	if err != nil {
		return err
	}

	if err := repo.Delete(id); err != nil {
		return err
	}

	r.writePlain("✓ Playlist %s deleted\n", id)
	return nil
}
