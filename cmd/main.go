package main

import (
	"context"
	"errors"
	"os"

	"github.com/moodlist/moodlist/internal/services"
	"github.com/moodlist/moodlist/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	var recommender services.Recommender
	var spotifyService *services.SpotifyService

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	if config.Credentials.OpenAI.APIKey != "" {
		if svc, err := services.NewOpenAIService(config.Credentials.OpenAI.APIKey, config.Credentials.OpenAI.Model, ""); err == nil {
			recommender = svc
		}
	}

	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			spotifyService = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:      config,
		Recommender: recommender,
		Spotify:     spotifyService,
		Logger:      logger,
	})

	app := &cli.Command{
		Name:     "moodlist",
		Usage:    "Turn a mood into a Spotify playlist",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
