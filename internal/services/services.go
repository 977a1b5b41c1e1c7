package services

import (
	"context"

	"github.com/moodlist/moodlist/internal/models"
)

// Recommender defines the chat completion provider contract.
//
// The provider returns one free-text completion; interpreting which lines
// are song recommendations is the caller's concern.
type Recommender interface {
	// Complete sends a single user message and returns the completion text.
	Complete(ctx context.Context, content string) (string, error)

	// Name returns the provider name (e.g. "OpenAI")
	Name() string
}

// Catalog defines the music catalog provider contract consumed by the
// resolution pipeline and playlist persistence.
type Catalog interface {
	// SearchTracks queries the catalog for up to limit tracks matching query.
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)

	// UserProfile retrieves the authenticated user's profile.
	UserProfile(ctx context.Context) (*User, error)

	// CreatePlaylist creates a playlist on the user's account.
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.Playlist, error)

	// AddTracks appends track URIs to an existing playlist.
	AddTracks(ctx context.Context, playlistID string, uris []string) error

	// Name returns the provider name (e.g. "Spotify")
	Name() string
}

// User represents a catalog user profile.
type User struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Images      []Image `json:"images"`
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}
