package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/moodlist/moodlist/internal/models"
	"github.com/moodlist/moodlist/internal/shared"
	tu "github.com/moodlist/moodlist/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			recommender := &tu.MockRecommender{}

			runner := NewRunner(RunnerOpts{
				Config:      config,
				Logger:      logger,
				Output:      output,
				Recommender: recommender,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.recommender != recommender {
				t.Error("expected recommender to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be built")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			if err := runner.writePlain("test"); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

func TestGenerateCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a mood argument", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Output:      &bytes.Buffer{},
			Recommender: &tu.MockRecommender{},
		})
		cmd := generateCommand(runner)

		err := cmd.Run(ctx, []string{"generate"})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("rejects non-positive count", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Output:      &bytes.Buffer{},
			Recommender: &tu.MockRecommender{},
		})
		cmd := generateCommand(runner)

		err := cmd.Run(ctx, []string{"generate", "--count", "0", "some mood"})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("requires a recommender", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		cmd := generateCommand(runner)

		err := cmd.Run(ctx, []string{"generate", "some mood"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestPlaylistCommands(t *testing.T) {
	ctx := context.Background()

	// setupRunner points the runner at a fresh temp database with migrations applied.
	setupRunner := func(t *testing.T) (*Runner, *bytes.Buffer) {
		t.Helper()

		config := shared.DefaultConfig()
		config.Database.Path = t.TempDir() + "/moodlist.db"

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output})

		db, err := runner.database()
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		t.Cleanup(func() { db.Close() })

		if err := shared.RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		return runner, output
	}

	seed := func(t *testing.T, runner *Runner) *models.GeneratedPlaylist {
		t.Helper()

		repo, err := runner.playlists()
		if err != nil {
			t.Fatal(err)
		}
		playlist := &models.GeneratedPlaylist{
			Name:   "Rainy Day",
			Prompt: "rainy sunday morning",
			Tracks: []models.Track{
				{ID: "t1", Title: "One", Artist: "A", URI: "spotify:track:t1", Popularity: 80},
			},
		}
		if err := repo.Create(playlist); err != nil {
			t.Fatal(err)
		}
		return playlist
	}

	t.Run("history with empty database", func(t *testing.T) {
		runner, output := setupRunner(t)
		cmd := playlistCommand(runner)

		if err := cmd.Run(ctx, []string{"playlist", "history"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "No generated playlists yet") {
			t.Errorf("unexpected output: %s", output.String())
		}
	})

	t.Run("history lists seeded playlist", func(t *testing.T) {
		runner, output := setupRunner(t)
		seed(t, runner)
		cmd := playlistCommand(runner)

		if err := cmd.Run(ctx, []string{"playlist", "history"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "Rainy Day") {
			t.Errorf("expected playlist name in output: %s", output.String())
		}
	})

	t.Run("show prints tracks", func(t *testing.T) {
		runner, output := setupRunner(t)
		playlist := seed(t, runner)
		cmd := playlistCommand(runner)

		if err := cmd.Run(ctx, []string{"playlist", "show", playlist.ID}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "1. A - One") {
			t.Errorf("expected track line in output: %s", output.String())
		}
	})

	t.Run("show missing playlist", func(t *testing.T) {
		runner, _ := setupRunner(t)
		cmd := playlistCommand(runner)

		err := cmd.Run(ctx, []string{"playlist", "show", "nope"})
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("export writes csv to stdout", func(t *testing.T) {
		runner, output := setupRunner(t)
		playlist := seed(t, runner)
		cmd := playlistCommand(runner)

		if err := cmd.Run(ctx, []string{"playlist", "export", "--format", "csv", playlist.ID}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "Position,ID,Title") {
			t.Errorf("expected csv header in output: %s", output.String())
		}
	})

	t.Run("export writes to file", func(t *testing.T) {
		runner, _ := setupRunner(t)
		playlist := seed(t, runner)
		cmd := playlistCommand(runner)

		path := t.TempDir() + "/out.md"
		if err := cmd.Run(ctx, []string{"playlist", "export", "--format", "md", "--output", path, playlist.ID}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tu.AssertFileExists(t, path)
		if !strings.Contains(tu.MustReadFile(t, path), "# Rainy Day") {
			t.Error("expected markdown heading in exported file")
		}
	})

	t.Run("delete removes from history", func(t *testing.T) {
		runner, output := setupRunner(t)
		playlist := seed(t, runner)
		cmd := playlistCommand(runner)

		if err := cmd.Run(ctx, []string{"playlist", "delete", playlist.ID}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "deleted") {
			t.Errorf("unexpected output: %s", output.String())
		}

		repo, _ := runner.playlists()
		if _, err := repo.Get(playlist.ID); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected playlist gone, got %v", err)
		}
	})
}

func TestSetLogger(t *testing.T) {
	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
	logger := shared.NewLogger(&bytes.Buffer{})

	runner.SetLogger(logger)

	if runner.logger != logger {
		t.Error("expected logger replaced")
	}
	if runner.engine == nil {
		t.Error("expected engine rebuilt")
	}
}
