package tasks

import (
	"fmt"

	"github.com/moodlist/moodlist/internal/models"
)

// ProgressUpdate represents a progress event during a resolution run.
//
// Every event carries the id of the run that produced it so a consumer
// can drop late events from a superseded run; only one owner should apply
// events to a visible result list.
type ProgressUpdate struct {
	RunID   string        // Run that produced this event
	Phase   Phase         // Operation phase
	Step    int           // Current step number within phase
	Total   int           // Total steps in this phase
	Message string        // Human-readable message for display
	Track   *models.Track // Resolved track for TrackResolved events
}

// Operation phase enumeration
type Phase int

const (
	RequestCompletion Phase = iota
	ResolveLine
	TrackResolved
	LineSkipped
	CreatePlaylist
	RunComplete
	RunFailed
)

func (p Phase) String() string {
	switch p {
	case RequestCompletion:
		return "request_completion"
	case ResolveLine:
		return "resolve_line"
	case TrackResolved:
		return "track_resolved"
	case LineSkipped:
		return "line_skipped"
	case CreatePlaylist:
		return "create_playlist"
	case RunComplete:
		return "run_complete"
	case RunFailed:
		return "run_failed"
	default:
		return ""
	}
}

func requestCompletionUpdate(runID string, count int) ProgressUpdate {
	return ProgressUpdate{
		RunID:   runID,
		Phase:   RequestCompletion,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Asking for %d recommendations...", count),
	}
}

func resolveLineUpdate(runID string, step, total int, line string) ProgressUpdate {
	return ProgressUpdate{
		RunID:   runID,
		Phase:   ResolveLine,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Resolving %s", step, total, line),
	}
}

func trackResolvedUpdate(runID string, step, total int, track *models.Track) ProgressUpdate {
	return ProgressUpdate{
		RunID:   runID,
		Phase:   TrackResolved,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s - %s", step, total, track.Artist, track.Title),
		Track:   track,
	}
}

func lineSkippedUpdate(runID string, step, total int, line, reason string) ProgressUpdate {
	return ProgressUpdate{
		RunID:   runID,
		Phase:   LineSkipped,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s (%s)", step, total, line, reason),
	}
}

func createPlaylistUpdate(runID, name string) ProgressUpdate {
	return ProgressUpdate{
		RunID:   runID,
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist: %s", name),
	}
}

func runCompleteUpdate(runID string, resolved, total int) ProgressUpdate {
	return ProgressUpdate{
		RunID:   runID,
		Phase:   RunComplete,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Resolved %d of %d recommendations", resolved, total),
	}
}

func runFailedUpdate(runID string, err error) ProgressUpdate {
	return ProgressUpdate{
		RunID:   runID,
		Phase:   RunFailed,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Run failed: %v", err),
	}
}
