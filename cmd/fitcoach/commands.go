// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dotsetgreg/fitcoach/pkg/config"
	"github.com/dotsetgreg/fitcoach/pkg/profile"
)

func onboard(in io.Reader, out io.Writer, force bool) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil && !force {
		fmt.Fprintf(out, "Config already exists at %s\n", configPath)
		fmt.Fprint(out, "Overwrite? (y/n): ")
		response, readErr := bufio.NewReader(in).ReadString('\n')
		if readErr != nil && response == "" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if err := config.SaveConfig(configPath, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(out, "%s is ready!\n", appName)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Add your OpenWeatherMap key to weather.api_key in", configPath)
	fmt.Fprintln(out, "     or set FITCOACH_WEATHER_API_KEY in .env")
	fmt.Fprintln(out, "  2. (Gateway mode) Add your Discord bot token to channels.discord.token")
	fmt.Fprintln(out, "  3. (Optional) Add a YouTube Data API key to video.api_key")
	fmt.Fprintln(out, "  4. Chat locally: fitcoach chat -m \"안녕\"")
	fmt.Fprintln(out, "  5. Run gateway: fitcoach gateway")
	return nil
}

func statusCmd(out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	configPath := getConfigPath()

	fmt.Fprintf(out, "%s Status\n", appName)
	fmt.Fprintf(out, "Version: %s\n", formatVersion())
	if build, _ := formatBuildInfo(); build != "" {
		fmt.Fprintf(out, "Build: %s\n", build)
	}
	fmt.Fprintln(out)

	mark := func(ok bool) string {
		if ok {
			return "✓"
		}
		return "✗"
	}
	_, statErr := os.Stat(configPath)
	fmt.Fprintln(out, "Config:", configPath, mark(statErr == nil))

	storePath := cfg.StorePath()
	if _, err := os.Stat(storePath); err == nil {
		fmt.Fprintf(out, "Store (%s): %s ✓\n", storeBackend(cfg), storePath)
	} else {
		fmt.Fprintf(out, "Store (%s): %s not initialized\n", storeBackend(cfg), storePath)
	}

	set := func(v string) string {
		if strings.TrimSpace(v) != "" {
			return "✓"
		}
		return "not set"
	}
	fmt.Fprintln(out, "Weather API:", set(cfg.Weather.APIKey))
	fmt.Fprintln(out, "Video API:", set(cfg.Video.APIKey))
	fmt.Fprintln(out, "Discord token:", set(cfg.Channels.Discord.Token))
	fmt.Fprintln(out, "Admin chat:", set(cfg.Admin.ChatID))
	fmt.Fprintln(out, "Chat ready:", mark(cfg.Validate(false) == nil))
	fmt.Fprintln(out, "Gateway ready:", mark(cfg.Validate(true) == nil))
	return nil
}

func storeBackend(cfg *config.Config) string {
	if cfg.Store.Backend == "" {
		return "json"
	}
	return cfg.Store.Backend
}

func withStore(fn func(ctx context.Context, store profile.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer store.Close()
	return fn(context.Background(), store)
}

func profileShow(ctx context.Context, store profile.Store, out io.Writer, userID string) error {
	p, err := store.Get(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, profile.Summary(p, time.Now()))
	return nil
}

func profileReset(ctx context.Context, store profile.Store, out io.Writer, userID string) error {
	p, err := store.Reset(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Profile %s reset\n\n", userID)
	fmt.Fprintln(out, profile.Summary(p, time.Now()))
	return nil
}

func profileList(ctx context.Context, store profile.Store, out io.Writer) error {
	all, err := store.All(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(out, "No profiles yet.")
		return nil
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := all[id]
		state := "complete"
		if !profile.Complete(p) {
			state = fmt.Sprintf("%d missing", len(profile.Missing(p)))
		}
		updated := "-"
		if p.UpdatedAt != nil {
			updated = *p.UpdatedAt
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", id, state, updated)
	}
	return nil
}
