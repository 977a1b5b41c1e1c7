package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/moodlist/moodlist/internal/models"
	"github.com/moodlist/moodlist/internal/session"
	"github.com/moodlist/moodlist/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// A pooled connection would get its own empty in-memory database.
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestSessionRepository(t *testing.T) {
	t.Run("get missing key", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		if _, err := repo.Get("access_token"); !errors.Is(err, session.ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("set and get", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		if err := repo.Set("access_token", "abc"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		value, err := repo.Get("access_token")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != "abc" {
			t.Errorf("expected abc, got %s", value)
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		repo.Set("access_token", "old")
		repo.Set("access_token", "new")

		value, err := repo.Get("access_token")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != "new" {
			t.Errorf("expected new, got %s", value)
		}
	})

	t.Run("remove and clear", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		repo.Set("access_token", "abc")
		repo.Set("token_type", "Bearer")

		if err := repo.Remove("access_token"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := repo.Get("access_token"); !errors.Is(err, session.ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}

		if err := repo.Remove("never-set"); err != nil {
			t.Errorf("removing an absent key should not error: %v", err)
		}

		if err := repo.Clear(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := repo.Get("token_type"); !errors.Is(err, session.ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("works as session store end to end", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		token := session.Token{Value: "abc", TokenType: "Bearer", ExpiresIn: 3600}

		if err := session.SaveToken(repo, token); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		loaded, err := session.LoadToken(repo)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded != token {
			t.Errorf("expected %+v, got %+v", token, loaded)
		}
	})
}

func TestPlaylistRepository(t *testing.T) {
	sample := func() *models.GeneratedPlaylist {
		return &models.GeneratedPlaylist{
			Name:        "My Awesome Playlist",
			Description: "generated",
			Prompt:      "rainy sunday morning",
			Tracks: []models.Track{
				{ID: "t1", Title: "One", Artist: "A", URI: "spotify:track:t1", Popularity: 80},
				{ID: "t2", Title: "Two", Artist: "B", URI: "spotify:track:t2", Popularity: 70},
			},
		}
	}

	t.Run("create assigns id and round trips", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		playlist := sample()

		if err := repo.Create(playlist); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if playlist.ID == "" {
			t.Fatal("expected an id to be assigned")
		}

		loaded, err := repo.Get(playlist.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded.Prompt != "rainy sunday morning" {
			t.Errorf("unexpected prompt: %s", loaded.Prompt)
		}
		if len(loaded.Tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(loaded.Tracks))
		}
		if loaded.Tracks[0].ID != "t1" || loaded.Tracks[1].ID != "t2" {
			t.Errorf("tracks out of order: %v", loaded.Tracks)
		}
	})

	t.Run("get missing playlist", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))

		if _, err := repo.Get("nope"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("list is reverse chronological", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))

		older := sample()
		older.Name = "older"
		older.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		newer := sample()
		newer.Name = "newer"
		newer.CreatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

		if err := repo.Create(older); err != nil {
			t.Fatal(err)
		}
		if err := repo.Create(newer); err != nil {
			t.Fatal(err)
		}

		playlists, err := repo.List(10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(playlists))
		}
		if playlists[0].Name != "newer" {
			t.Errorf("expected newer first, got %s", playlists[0].Name)
		}
	})

	t.Run("set spotify id", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		playlist := sample()
		if err := repo.Create(playlist); err != nil {
			t.Fatal(err)
		}

		if err := repo.SetSpotifyID(playlist.ID, "sp123"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		loaded, err := repo.Get(playlist.ID)
		if err != nil {
			t.Fatal(err)
		}
		if loaded.SpotifyID != "sp123" {
			t.Errorf("expected sp123, got %s", loaded.SpotifyID)
		}

		if err := repo.SetSpotifyID("nope", "sp123"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("delete removes playlist and tracks", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		playlist := sample()
		if err := repo.Create(playlist); err != nil {
			t.Fatal(err)
		}

		if err := repo.Delete(playlist.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := repo.Get(playlist.ID); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})
}
