package match

import (
	"errors"
	"testing"

	"github.com/moodlist/moodlist/internal/models"
)

func TestNormalize(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases and trims",
			input: "  Blinding Lights  ",
			want:  "blinding lights",
		},
		{
			name:  "strips punctuation",
			input: "Levitating (feat. DaBaby)!",
			want:  "levitating feat dababy",
		},
		{
			name:  "collapses whitespace",
			input: "A \t B",
			want:  "a b",
		},
		{
			name:  "strips accented characters rather than folding them",
			input: "Café!!  Song",
			want:  "caf song",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		once := Normalize("3. \"Don't Stop Me Now\" - Queen")
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent: %q != %q", once, twice)
		}
	})

	t.Run("case insensitive equivalence", func(t *testing.T) {
		if Normalize("A  B") != Normalize("a b") {
			t.Error("expected 'A  B' and 'a b' to normalize identically")
		}
	})
}

func TestFilterSongLines(t *testing.T) {
	completion := "Here are some songs:\n" +
		"1. \"Blinding Lights\" by The Weeknd\n" +
		"2. \"Levitating\" - Dua Lipa\n" +
		"Enjoy the playlist!\n"

	lines := FilterSongLines(completion)
	if len(lines) != 2 {
		t.Fatalf("expected 2 song lines, got %d: %v", len(lines), lines)
	}

	if lines[0] != `"Blinding Lights" by The Weeknd` {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if lines[1] != `"Levitating" - Dua Lipa` {
		t.Errorf("unexpected second line: %q", lines[1])
	}
}

func TestParseRecommendation(t *testing.T) {
	tc := []struct {
		name       string
		line       string
		wantSong   string
		wantArtist string
		wantErr    bool
	}{
		{
			name:       "quoted song with by separator",
			line:       `"Blinding Lights" by The Weeknd`,
			wantSong:   "Blinding Lights",
			wantArtist: "The Weeknd",
		},
		{
			name:       "ordinal prefix and hyphen separator",
			line:       `3. "Levitating" - Dua Lipa`,
			wantSong:   "Levitating",
			wantArtist: "Dua Lipa",
		},
		{
			name:    "no separator",
			line:    "not a song line",
			wantErr: true,
		},
		{
			name:    "empty artist segment",
			line:    `"Something" by `,
			wantErr: true,
		},
		{
			name:    "empty song segment",
			line:    ` - Dua Lipa`,
			wantErr: true,
		},
		{
			name: "hyphenated title splits on first hyphen",
			// Known mis-parse tolerated by bidirectional matching downstream.
			line:       `"Self-Control" by Frank Ocean`,
			wantSong:   "Self",
			wantArtist: "Control by Frank Ocean",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			guess, err := ParseRecommendation(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %+v", tt.line, guess)
				}
				if !errors.Is(err, ErrParseFailure) {
					t.Errorf("expected ErrParseFailure, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if guess.SongName != tt.wantSong {
				t.Errorf("song = %q, want %q", guess.SongName, tt.wantSong)
			}
			if guess.ArtistName != tt.wantArtist {
				t.Errorf("artist = %q, want %q", guess.ArtistName, tt.wantArtist)
			}
		})
	}
}

func TestMatchingTracks(t *testing.T) {
	tracks := []models.Track{
		{ID: "a", Title: "Levitating (feat. DaBaby)", Artists: []string{"Dua Lipa", "DaBaby"}},
		{ID: "b", Title: "Levitating", Artists: []string{"Some Cover Band"}},
		{ID: "c", Title: "Physical", Artists: []string{"Dua Lipa"}},
	}

	t.Run("bidirectional substring on song and artist", func(t *testing.T) {
		matches := MatchingTracks(tracks, "Levitating", "Dua Lipa")
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d", len(matches))
		}
		if matches[0].ID != "a" {
			t.Errorf("expected track a, got %s", matches[0].ID)
		}
	})

	t.Run("target containing candidate name matches", func(t *testing.T) {
		matches := MatchingTracks(tracks, "Levitating (Remix)", "Cover Band")
		if len(matches) != 1 || matches[0].ID != "b" {
			t.Fatalf("expected track b, got %v", matches)
		}
	})

	t.Run("no matches is empty not error", func(t *testing.T) {
		matches := MatchingTracks(tracks, "Houdini", "Eminem")
		if len(matches) != 0 {
			t.Errorf("expected no matches, got %d", len(matches))
		}
	})

	t.Run("order preserved", func(t *testing.T) {
		matches := MatchingTracks(tracks, "Levitating", "a")
		if len(matches) != 2 {
			t.Fatalf("expected 2 matches, got %d", len(matches))
		}
		if matches[0].ID != "a" || matches[1].ID != "b" {
			t.Errorf("expected input order a,b; got %s,%s", matches[0].ID, matches[1].ID)
		}
	})

	t.Run("primary artist fallback when artist list empty", func(t *testing.T) {
		solo := []models.Track{{ID: "d", Title: "Midnight", Artist: "M83"}}
		matches := MatchingTracks(solo, "Midnight (Remastered)", "M83")
		if len(matches) != 1 {
			t.Errorf("expected fallback to primary artist, got %d matches", len(matches))
		}
	})
}

func TestHighestPopularity(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		if got := HighestPopularity(nil); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("first of tied popularity wins", func(t *testing.T) {
		tracks := []models.Track{
			{ID: "a", Popularity: 1},
			{ID: "b", Popularity: 5},
			{ID: "c", Popularity: 5},
		}
		got := HighestPopularity(tracks)
		if got == nil || got.ID != "b" {
			t.Errorf("expected first track with popularity 5 (b), got %+v", got)
		}
	})
}

func TestUniqueTopTrack(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		if got := UniqueTopTrack(nil); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("first occurrence represents a duplicated id", func(t *testing.T) {
		tracks := []models.Track{
			{ID: "A", Popularity: 50},
			{ID: "B", Popularity: 90},
			{ID: "A", Popularity: 99},
		}
		got := UniqueTopTrack(tracks)
		if got == nil || got.ID != "B" {
			t.Errorf("expected B to win after dedup kept A at 50, got %+v", got)
		}
	})
}

func TestSelectTrack(t *testing.T) {
	results := []models.Track{
		{ID: "x", Popularity: 10},
		{ID: "y", Popularity: 80},
		{ID: "z", Popularity: 40},
	}

	t.Run("matched pool preferred over raw results", func(t *testing.T) {
		matches := []models.Track{{ID: "z", Popularity: 40}}
		got := SelectTrack(matches, results, map[string]bool{})
		if got == nil || got.ID != "z" {
			t.Errorf("expected z from matches, got %+v", got)
		}
	})

	t.Run("popularity fallback when nothing matched", func(t *testing.T) {
		got := SelectTrack(nil, results, map[string]bool{})
		if got == nil || got.ID != "y" {
			t.Errorf("expected most popular y, got %+v", got)
		}
	})

	t.Run("chosen id falls back to first unchosen result", func(t *testing.T) {
		got := SelectTrack(nil, results, map[string]bool{"y": true})
		if got == nil || got.ID != "x" {
			t.Errorf("expected fallback to x, got %+v", got)
		}
	})

	t.Run("nothing selectable", func(t *testing.T) {
		got := SelectTrack(nil, results, map[string]bool{"x": true, "y": true, "z": true})
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("empty results", func(t *testing.T) {
		if got := SelectTrack(nil, nil, map[string]bool{}); got != nil {
			t.Errorf("expected nil for empty results, got %+v", got)
		}
	})
}
