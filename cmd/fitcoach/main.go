// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dotsetgreg/fitcoach/pkg/coach"
	"github.com/dotsetgreg/fitcoach/pkg/config"
	"github.com/dotsetgreg/fitcoach/pkg/logger"
	"github.com/dotsetgreg/fitcoach/pkg/profile"
	"github.com/dotsetgreg/fitcoach/pkg/tone"
	"github.com/dotsetgreg/fitcoach/pkg/video"
	"github.com/dotsetgreg/fitcoach/pkg/weather"
)

var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

const appName = "fitcoach"

// formatVersion returns the version string with optional git commit
func formatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

// formatBuildInfo returns build time and go version info
func formatBuildInfo() (build string, goVer string) {
	if buildTime != "" {
		build = buildTime
	}
	goVer = goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	return
}

func printVersion() {
	fmt.Printf("🏃 %s %s\n", appName, formatVersion())
	build, goVer := formatBuildInfo()
	if build != "" {
		fmt.Printf("  Build: %s\n", build)
	}
	if goVer != "" {
		fmt.Printf("  Go: %s\n", goVer)
	}
}

func main() {
	if err := executeCLI(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getConfigPath() string {
	if p := strings.TrimSpace(os.Getenv("FITCOACH_CONFIG")); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".fitcoach", "config.json")
}

// loadConfig reads .env files, the JSON config and environment overrides,
// then applies the configured log level.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Log.Level != "" {
		logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (profile.Store, error) {
	path := cfg.StorePath()
	switch cfg.Store.Backend {
	case "sqlite":
		return profile.NewSQLiteStore(path)
	case "", "json":
		return profile.NewFileStore(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newWeatherProvider(cfg *config.Config) *weather.OpenWeatherMap {
	return weather.NewOpenWeatherMap(weather.OpenWeatherMapOptions{
		APIKey:  cfg.Weather.APIKey,
		APIBase: cfg.Weather.APIBase,
		Lang:    cfg.Weather.Lang,
		Timeout: cfg.WeatherTimeout(),
	})
}

// newVideoProvider uses YouTube search when a key is configured and the
// curated list otherwise.
func newVideoProvider(cfg *config.Config) video.Provider {
	if strings.TrimSpace(cfg.Video.APIKey) == "" {
		logger.InfoCF("video", "No video API key, using curated recommendations", nil)
		return video.NewStatic(nil)
	}
	return video.NewYouTube(video.YouTubeOptions{
		APIKey:     cfg.Video.APIKey,
		APIBase:    cfg.Video.APIBase,
		RegionCode: cfg.Video.RegionCode,
		MaxResults: cfg.Video.MaxResults,
		Timeout:    cfg.VideoTimeout(),
	})
}

func newController(cfg *config.Config, store profile.Store) *coach.Controller {
	return coach.NewController(store, newWeatherProvider(cfg), newVideoProvider(cfg), tone.NewRenderer(nil))
}
