// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/moodlist/moodlist/internal/models"
	"github.com/moodlist/moodlist/internal/services"
)

// MockCatalog is a configurable test double for [services.Catalog].
type MockCatalog struct {
	SearchResults map[string][]models.Track // keyed by query
	Profile       *services.User
	Created       *models.Playlist
	AddedURIs     []string
	SearchErr     error
	ProfileErr    error
	CreateErr     error
	AddErr        error
	SearchCalls   []string
}

func (m *MockCatalog) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	m.SearchCalls = append(m.SearchCalls, query)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.SearchResults[query], nil
}

func (m *MockCatalog) UserProfile(ctx context.Context) (*services.User, error) {
	if m.ProfileErr != nil {
		return nil, m.ProfileErr
	}
	return m.Profile, nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.Playlist, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Created != nil {
		return m.Created, nil
	}
	return &models.Playlist{ID: "created", Name: name, Description: description, Public: public}, nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.AddedURIs = append(m.AddedURIs, uris...)
	return nil
}

func (m *MockCatalog) Name() string { return "mock" }

// MockRecommender is a test double for [services.Recommender].
type MockRecommender struct {
	Completion string
	Err        error
	Prompts    []string
}

func (m *MockRecommender) Complete(ctx context.Context, content string) (string, error) {
	m.Prompts = append(m.Prompts, content)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Completion, nil
}

func (m *MockRecommender) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading a response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
