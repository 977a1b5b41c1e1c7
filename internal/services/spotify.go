// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/moodlist/moodlist/internal/models"
	"github.com/moodlist/moodlist/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// Scopes requested for the user authorization redirect.
var spotifyScopes = []string{"user-read-private", "user-read-email", "playlist-modify-public"}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
	URI    string  `json:"uri"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	Popularity   int             `json:"popularity"`
	URI          string          `json:"uri"`
	ExternalURLs externalURLs    `json:"external_urls"`
}

// Model converts the API representation into the domain [models.Track].
func (t SpotifyTrack) Model() models.Track {
	track := models.Track{
		ID:          t.ID,
		Title:       t.Name,
		Album:       t.Album.Name,
		URI:         t.URI,
		Popularity:  t.Popularity,
		ExternalURL: t.ExternalURLs.Spotify,
	}

	for _, artist := range t.Artists {
		track.Artists = append(track.Artists, artist.Name)
	}
	if len(track.Artists) > 0 {
		track.Artist = track.Artists[0]
	}
	if len(t.Album.Images) > 0 {
		track.ImageURL = t.Album.Images[0].URL
	}

	return track
}

// SpotifyService implements the [Catalog] interface for Spotify API interactions.
//
// Two bearer tokens are held: an app token from the client-credentials
// grant (search capability, always fetched on startup) and an optional
// user token from the authorization redirect (profile and playlist
// capability). The tokens are never conflated; playlist operations fail
// with [shared.ErrNotAuthenticated] while no user token is set.
type SpotifyService struct {
	clientID     string
	clientSecret string
	redirectURI  string
	baseURL      string
	authURL      string
	tokenURL     string
	httpClient   *http.Client
	appToken     *oauth2.Token
	userToken    *oauth2.Token
}

// NewSpotifyService creates a new Spotify service with the given credentials.
//
// Optional "api_base_url", "auth_url" and "token_url" entries override the
// production endpoints, which the tests use to point at a fake server.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	s := &SpotifyService{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		baseURL:      spotifyBaseURL,
		authURL:      spotifyAuthURL,
		tokenURL:     spotifyTokenURL,
		httpClient:   http.DefaultClient,
	}

	if v := credentials["api_base_url"]; v != "" {
		s.baseURL = v
	}
	if v := credentials["auth_url"]; v != "" {
		s.authURL = v
	}
	if v := credentials["token_url"]; v != "" {
		s.tokenURL = v
	}

	return s, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate performs the app-level client-credentials exchange.
//
// The resulting token carries search capability only and is independent of
// any user login.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	conf := &clientcredentials.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		TokenURL:     s.tokenURL,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := conf.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: client credentials exchange: %v", shared.ErrAuthFailed, err)
	}

	s.appToken = token
	return nil
}

// AuthURL returns the implicit-grant authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	params := url.Values{
		"response_type": {"token"},
		"client_id":     {s.clientID},
		"redirect_uri":  {s.redirectURI},
		"scope":         {strings.Join(spotifyScopes, " ")},
		"state":         {state},
	}
	return s.authURL + "?" + params.Encode()
}

// SetUserToken installs a user access token obtained from the redirect callback or restored from the session store.
func (s *SpotifyService) SetUserToken(accessToken, tokenType string) {
	s.userToken = &oauth2.Token{AccessToken: accessToken, TokenType: tokenType}
}

// ClearUserToken reverts the service to app-only capability.
func (s *SpotifyService) ClearUserToken() {
	s.userToken = nil
}

// HasUserToken reports whether a user token is installed.
func (s *SpotifyService) HasUserToken() bool {
	return s.userToken != nil
}

// bearer picks the token for a request. User-capability requests require
// the user token; search falls back from user to app token the way the
// original client reuses a logged-in session for search.
func (s *SpotifyService) bearer(needUser bool) (*oauth2.Token, error) {
	if needUser {
		if s.userToken == nil {
			return nil, fmt.Errorf("%w: user login required", shared.ErrNotAuthenticated)
		}
		return s.userToken, nil
	}

	if s.userToken != nil {
		return s.userToken, nil
	}
	if s.appToken == nil {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}
	return s.appToken, nil
}

// doRequest performs an authenticated HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, needUser bool, body, result any) error {
	token, err := s.bearer(needUser)
	if err != nil {
		return err
	}

	apiURL := s.baseURL + endpoint

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: spotify API status %d", shared.ErrTokenExpired, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SearchTracks queries the catalog for up to limit tracks matching query.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	params := url.Values{
		"q":     {query},
		"type":  {"track"},
		"limit": {strconv.Itoa(limit)},
	}

	var response struct {
		Tracks struct {
			Items []SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}

	if err := s.doRequest(ctx, http.MethodGet, "/search?"+params.Encode(), false, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, len(response.Tracks.Items))
	for i, item := range response.Tracks.Items {
		tracks[i] = item.Model()
	}

	return tracks, nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*User, error) {
	var user User
	if err := s.doRequest(ctx, http.MethodGet, "/me", true, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreatePlaylist creates a playlist on the user's account.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.Playlist, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var created struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Public      bool   `json:"public"`
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, true, body, &created); err != nil {
		return nil, err
	}

	return &models.Playlist{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
		Public:      created.Public,
	}, nil
}

// AddTracks appends track URIs to an existing playlist.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return fmt.Errorf("%w: no track URIs provided", shared.ErrInvalidArgument)
	}

	body := map[string]any{"uris": uris}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPost, endpoint, true, body, nil)
}
