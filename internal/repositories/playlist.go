package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/moodlist/moodlist/internal/models"
	"github.com/moodlist/moodlist/internal/shared"
)

// PlaylistRepository persists generated playlists and their resolved tracks.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a PlaylistRepository with the given database.
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a generated playlist and its tracks in one transaction.
//
// The playlist ID is generated when empty; track positions follow slice
// order so history playback matches the resolution order of the run.
func (r *PlaylistRepository) Create(playlist *models.GeneratedPlaylist) error {
	if playlist.ID == "" {
		playlist.ID = shared.GenerateID()
	}
	if playlist.CreatedAt.IsZero() {
		playlist.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO playlists (id, spotify_id, name, description, prompt, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		playlist.ID, playlist.SpotifyID, playlist.Name, playlist.Description, playlist.Prompt, playlist.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	for i, track := range playlist.Tracks {
		_, err = tx.Exec(
			"INSERT INTO playlist_tracks (playlist_id, position, track_id, title, artist, uri, popularity) VALUES (?, ?, ?, ?, ?, ?, ?)",
			playlist.ID, i, track.ID, track.Title, track.Artist, track.URI, track.Popularity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert track %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Get retrieves a generated playlist by ID, tracks included.
func (r *PlaylistRepository) Get(id string) (*models.GeneratedPlaylist, error) {
	var playlist models.GeneratedPlaylist
	err := r.db.QueryRow(
		"SELECT id, spotify_id, name, description, prompt, created_at FROM playlists WHERE id = ?", id,
	).Scan(&playlist.ID, &playlist.SpotifyID, &playlist.Name, &playlist.Description, &playlist.Prompt, &playlist.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}

	tracks, err := r.tracksFor(id)
	if err != nil {
		return nil, err
	}
	playlist.Tracks = tracks

	return &playlist, nil
}

// List returns generated playlists in reverse chronological order, without tracks.
func (r *PlaylistRepository) List(limit int) ([]models.GeneratedPlaylist, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(
		"SELECT id, spotify_id, name, description, prompt, created_at FROM playlists ORDER BY created_at DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.GeneratedPlaylist
	for rows.Next() {
		var p models.GeneratedPlaylist
		if err := rows.Scan(&p.ID, &p.SpotifyID, &p.Name, &p.Description, &p.Prompt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}

	return playlists, rows.Err()
}

// SetSpotifyID records the catalog playlist ID after a successful save.
func (r *PlaylistRepository) SetSpotifyID(id, spotifyID string) error {
	result, err := r.db.Exec("UPDATE playlists SET spotify_id = ? WHERE id = ?", spotifyID, id)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return nil
}

// Delete removes a playlist and, via cascade, its tracks.
func (r *PlaylistRepository) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM playlist_tracks WHERE playlist_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete playlist tracks: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM playlists WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return nil
}

func (r *PlaylistRepository) tracksFor(playlistID string) ([]models.Track, error) {
	rows, err := r.db.Query(
		"SELECT track_id, title, artist, uri, popularity FROM playlist_tracks WHERE playlist_id = ? ORDER BY position", playlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.ID, &t.Title, &t.Artist, &t.URI, &t.Popularity); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, t)
	}

	return tracks, rows.Err()
}
