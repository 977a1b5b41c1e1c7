// package tasks implements the recommendation-to-catalog resolution pipeline.
//
// The core abstraction is Engine, which turns a mood prompt into an ordered,
// globally deduplicated list of catalog tracks and optionally persists the
// set as a playlist. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/moodlist/moodlist/internal/match"
	"github.com/moodlist/moodlist/internal/models"
	"github.com/moodlist/moodlist/internal/services"
	"github.com/moodlist/moodlist/internal/shared"
	"golang.org/x/time/rate"
)

// Catalog queries per second issued by a run.
const defaultRateLimit = 5.0

// SkippedLine records a recommendation line that produced no track.
type SkippedLine struct {
	Line   string // Raw recommendation line
	Reason string // Why the line yielded nothing
}

// ResolveResult contains the outcome of one resolution run.
//
// Tracks are ordered by input line, one entry per successfully resolved
// recommendation; no id appears twice.
type ResolveResult struct {
	RunID      string
	Tracks     []models.Track
	Skipped    []SkippedLine
	TotalLines int
}

// GenerateResult contains all data from a full mood-to-tracks run.
type GenerateResult struct {
	Prompt     string         // Full prompt sent to the completion provider
	Completion string         // Raw completion text
	Lines      []string       // Filtered candidate recommendation lines
	Resolution *ResolveResult // Per-line resolution outcome
}

// Engine orchestrates the recommendation, resolution and save operations.
type Engine struct {
	recommender services.Recommender
	catalog     services.Catalog
	limiter     *rate.Limiter
	logger      *log.Logger
}

// NewEngine creates an Engine with the provided providers.
func NewEngine(recommender services.Recommender, catalog services.Catalog, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Engine{
		recommender: recommender,
		catalog:     catalog,
		limiter:     rate.NewLimiter(rate.Limit(defaultRateLimit), 1),
		logger:      logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// BuildPrompt appends the recommendation instruction to the user's mood text.
//
// The instruction pins the response format the parser expects: a list of
// song names in double quotes followed by the artist name.
func BuildPrompt(mood string, count int) string {
	return fmt.Sprintf(
		"%s, recommend me %d songs to listen to, just respond with the list and format it as the song name in double quotation marks followed by the artist name",
		mood, count,
	)
}

// Generate performs a full mood → recommendations → tracks run.
//
// The completion provider is asked for count songs; its response is
// filtered to candidate lines and resolved against the catalog. An empty
// candidate list is an error, a partially resolvable one is not.
func (e *Engine) Generate(ctx context.Context, mood string, count int, progress chan<- ProgressUpdate) (*GenerateResult, error) {
	if e.recommender == nil {
		return nil, fmt.Errorf("%w: completion provider not initialized", shared.ErrServiceUnavailable)
	}

	runID := shared.GenerateID()
	prompt := BuildPrompt(mood, count)
	result := &GenerateResult{Prompt: prompt}

	e.sendProgress(progress, requestCompletionUpdate(runID, count))

	completion, err := e.recommender.Complete(ctx, prompt)
	if err != nil {
		e.sendProgress(progress, runFailedUpdate(runID, err))
		return nil, fmt.Errorf("completion request: %w", err)
	}

	result.Completion = completion
	result.Lines = match.FilterSongLines(completion)

	if len(result.Lines) == 0 {
		err := fmt.Errorf("%w", shared.ErrEmptyCompletion)
		e.sendProgress(progress, runFailedUpdate(runID, err))
		return result, err
	}

	resolution, err := e.resolve(ctx, runID, result.Lines, count, progress)
	result.Resolution = resolution
	if err != nil {
		return result, err
	}

	return result, nil
}

// Resolve runs the resolution pipeline over a batch of recommendation lines.
//
// Lines are processed sequentially in input order; each query is bounded
// by limit results. A line that cannot be parsed, matched, or selected is
// recorded as skipped and never halts the batch. Only a provider error
// aborts the run, returning the tracks resolved so far alongside the error.
func (e *Engine) Resolve(ctx context.Context, lines []string, limit int, progress chan<- ProgressUpdate) (*ResolveResult, error) {
	return e.resolve(ctx, shared.GenerateID(), lines, limit, progress)
}

func (e *Engine) resolve(ctx context.Context, runID string, lines []string, limit int, progress chan<- ProgressUpdate) (*ResolveResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}

	result := &ResolveResult{
		RunID:      runID,
		TotalLines: len(lines),
	}

	// Owned exclusively by this run; enforces global dedup across the batch.
	chosen := make(map[string]bool)
	total := len(lines)

	skip := func(step int, line, reason string) {
		result.Skipped = append(result.Skipped, SkippedLine{Line: line, Reason: reason})
		e.sendProgress(progress, lineSkippedUpdate(runID, step, total, line, reason))
	}

	for i, line := range lines {
		step := i + 1
		e.sendProgress(progress, resolveLineUpdate(runID, step, total, line))

		guess, err := match.ParseRecommendation(line)
		if err != nil {
			e.logger.Debug("skipping unparsable line", "line", line)
			skip(step, line, "unparsable")
			continue
		}

		if err := e.limiter.Wait(ctx); err != nil {
			e.sendProgress(progress, runFailedUpdate(runID, err))
			return result, fmt.Errorf("rate limiter: %w", err)
		}

		query := guess.SongName + " " + guess.ArtistName
		tracks, err := e.catalog.SearchTracks(ctx, query, limit)
		if err != nil {
			e.sendProgress(progress, runFailedUpdate(runID, err))
			return result, fmt.Errorf("catalog search %q: %w", query, err)
		}

		if len(tracks) == 0 {
			e.logger.Debug("no catalog results", "query", query)
			skip(step, line, "no results")
			continue
		}

		matches := match.MatchingTracks(tracks, guess.SongName, guess.ArtistName)
		selected := match.SelectTrack(matches, tracks, chosen)
		if selected == nil {
			e.logger.Debug("no selectable track", "query", query)
			skip(step, line, "already chosen")
			continue
		}

		chosen[selected.ID] = true
		result.Tracks = append(result.Tracks, *selected)
		e.sendProgress(progress, trackResolvedUpdate(runID, step, total, selected))
	}

	e.sendProgress(progress, runCompleteUpdate(runID, len(result.Tracks), total))
	return result, nil
}

// SavePlaylist creates a playlist on the user's account and adds the resolved tracks.
func (e *Engine) SavePlaylist(ctx context.Context, name, description string, public bool, tracks []models.Track, progress chan<- ProgressUpdate) (*models.Playlist, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks to save", shared.ErrInvalidArgument)
	}

	user, err := e.catalog.UserProfile(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	e.sendProgress(progress, createPlaylistUpdate(shared.GenerateID(), name))

	playlist, err := e.catalog.CreatePlaylist(ctx, user.ID, name, description, public)
	if err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}

	uris := make([]string, len(tracks))
	for i, track := range tracks {
		uris[i] = track.URI
	}

	if err := e.catalog.AddTracks(ctx, playlist.ID, uris); err != nil {
		return nil, fmt.Errorf("add tracks: %w", err)
	}

	playlist.TrackCount = len(tracks)
	return playlist, nil
}
