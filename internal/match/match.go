// package match implements recommendation parsing and catalog track matching.
//
// A chat completion yields noisy "song by artist" lines; this package
// canonicalizes them and decides which catalog search results plausibly
// correspond to each line.
package match

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/moodlist/moodlist/internal/models"
)

// ErrParseFailure indicates a recommendation line could not be split into a song and artist.
var ErrParseFailure = fmt.Errorf("line has no parsable song and artist")

var (
	nonWordPattern    = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	ordinalPattern    = regexp.MustCompile(`^\d+\.\s`)
	separatorPattern  = regexp.MustCompile(` by |-`)
)

// Normalize canonicalizes a song or artist string for comparison.
//
// Lower-cases, strips every rune that is not a word character or
// whitespace, collapses whitespace runs, and trims. Idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = nonWordPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FilterSongLines extracts candidate recommendation lines from a raw completion.
//
// The completion is split on newlines, leading ordinal markers ("1. ") are
// stripped, and only lines that begin with a double quote survive; anything
// else is model commentary.
func FilterSongLines(completion string) []string {
	var lines []string
	for _, line := range strings.Split(completion, "\n") {
		line = ordinalPattern.ReplaceAllString(line, "")
		if strings.HasPrefix(line, `"`) {
			lines = append(lines, line)
		}
	}
	return lines
}

// ParseRecommendation splits one recommendation line into a song and artist guess.
//
// The line is split on the first occurrence of " by " or a bare hyphen;
// double quotes and surrounding whitespace are stripped from both halves.
// Returns [ErrParseFailure] when the separator is absent or either half is
// empty. Hyphenated titles ("Self-Control") mis-split by design: downstream
// matching tolerates partial strings.
func ParseRecommendation(line string) (models.Guess, error) {
	line = ordinalPattern.ReplaceAllString(line, "")

	loc := separatorPattern.FindStringIndex(line)
	if loc == nil {
		return models.Guess{}, fmt.Errorf("%w: %q", ErrParseFailure, line)
	}

	song := cleanSegment(line[:loc[0]])
	artist := cleanSegment(line[loc[1]:])

	if song == "" || artist == "" {
		return models.Guess{}, fmt.Errorf("%w: %q", ErrParseFailure, line)
	}

	return models.Guess{SongName: song, ArtistName: artist}, nil
}

func cleanSegment(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

// MatchingTracks filters search results down to plausible matches for a guess.
//
// A candidate matches when its normalized name and the target song name
// contain each other in either direction, and at least one of its artists
// has the same bidirectional substring relation with the target artist.
// The relation tolerates truncation and extra words on either side, e.g.
// "Levitating (feat. DaBaby)" matches "Levitating". Order is preserved;
// an empty result is not an error.
func MatchingTracks(tracks []models.Track, songName, artistName string) []models.Track {
	targetSong := Normalize(songName)
	targetArtist := Normalize(artistName)

	var matches []models.Track
	for _, track := range tracks {
		if !bidirectional(Normalize(track.Title), targetSong) {
			continue
		}

		artists := track.Artists
		if len(artists) == 0 && track.Artist != "" {
			artists = []string{track.Artist}
		}

		for _, artist := range artists {
			if bidirectional(Normalize(artist), targetArtist) {
				matches = append(matches, track)
				break
			}
		}
	}
	return matches
}

// bidirectional reports whether either normalized string contains the other.
func bidirectional(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
