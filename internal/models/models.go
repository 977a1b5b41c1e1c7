package models

import "time"

// Track represents a catalog track referenced by the resolution pipeline.
//
// Tracks are owned by the catalog provider and referenced by ID only;
// Popularity is the provider-supplied ranking signal used for selection.
type Track struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Artist      string   `json:"artist"` // Primary artist name
	Artists     []string `json:"artists,omitempty"`
	Album       string   `json:"album,omitempty"`
	URI         string   `json:"uri"`
	Popularity  int      `json:"popularity"`
	ImageURL    string   `json:"image_url,omitempty"`
	ExternalURL string   `json:"external_url,omitempty"`
}

// Playlist represents a playlist on the catalog service.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// Guess is a (song, artist) pair parsed from one recommendation line.
type Guess struct {
	SongName   string
	ArtistName string
}

// GeneratedPlaylist is a persisted record of one resolution run.
//
// SpotifyID is empty until the playlist has been saved to the user's account.
type GeneratedPlaylist struct {
	ID          string    `json:"id"`
	SpotifyID   string    `json:"spotify_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Prompt      string    `json:"prompt"`
	CreatedAt   time.Time `json:"created_at"`
	Tracks      []Track   `json:"tracks,omitempty"`
}
