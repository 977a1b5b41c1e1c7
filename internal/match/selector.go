package match

import "github.com/moodlist/moodlist/internal/models"

// HighestPopularity returns the track with the maximum popularity value.
//
// Ties are broken by first occurrence in input order; returns nil on empty
// input.
func HighestPopularity(tracks []models.Track) *models.Track {
	var top *models.Track
	for i := range tracks {
		if top == nil || tracks[i].Popularity > top.Popularity {
			top = &tracks[i]
		}
	}
	return top
}

// UniqueTopTrack returns the most popular track after first-occurrence-per-id
// deduplication internal to the scan.
//
// A later entry sharing an id with an earlier one is skipped before the
// popularity comparison, so the first-seen entry represents its id. Ties
// are broken by first occurrence; returns nil on empty input. Exclusion of
// ids already chosen by a pipeline run is applied by the caller afterwards,
// via [SelectTrack].
func UniqueTopTrack(tracks []models.Track) *models.Track {
	seen := make(map[string]bool, len(tracks))
	var top *models.Track
	for i := range tracks {
		if seen[tracks[i].ID] {
			continue
		}
		seen[tracks[i].ID] = true
		if top == nil || tracks[i].Popularity > top.Popularity {
			top = &tracks[i]
		}
	}
	return top
}

// SelectTrack picks exactly one track for a recommendation, or nil.
//
// If the matcher produced candidates the unique top match wins, otherwise
// the most popular raw search result. When the winner's id is already in
// chosen, selection falls back to the first search result with an unchosen
// id; nil means nothing is selectable for this recommendation.
func SelectTrack(matches, results []models.Track, chosen map[string]bool) *models.Track {
	var top *models.Track
	if len(matches) > 0 {
		top = UniqueTopTrack(matches)
	} else {
		top = HighestPopularity(results)
	}

	if top == nil {
		return nil
	}
	if !chosen[top.ID] {
		return top
	}

	for i := range results {
		if !chosen[results[i].ID] {
			return &results[i]
		}
	}
	return nil
}
