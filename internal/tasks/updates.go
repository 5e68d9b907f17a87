package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Err     error  // Set when the step failed and was skipped
}

// Operation phase enumeration
type Phase int

const (
	FetchPages Phase = iota
	FetchAlbumDetails
	ScoreAlbums
	FetchFeatures
)

func (p Phase) String() string {
	switch p {
	case FetchPages:
		return "fetch_pages"
	case FetchAlbumDetails:
		return "fetch_album_details"
	case ScoreAlbums:
		return "score_albums"
	case FetchFeatures:
		return "fetch_features"
	default:
		return ""
	}
}

func fetchPagesUpdate(step, total int, what string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching %s...", what),
	}
}

func albumFetchedUpdate(step, total int, album string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbumDetails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetched album %s", album),
	}
}

func albumSkippedUpdate(step, total int, trackID string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbumDetails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Skipped album for track %s", trackID),
		Err:     err,
	}
}

func scoreAlbumsUpdate(albums int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScoreAlbums,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Scoring %d albums...", albums),
	}
}

func fetchFeaturesUpdate(step, total, ids int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFeatures,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching audio features for %d tracks...", ids),
	}
}
