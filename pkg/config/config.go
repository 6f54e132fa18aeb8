// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Channels ChannelsConfig `json:"channels"`
	Admin    AdminConfig    `json:"admin"`
	Weather  WeatherConfig  `json:"weather"`
	Video    VideoConfig    `json:"video"`
	Store    StoreConfig    `json:"store"`
	Gateway  GatewayConfig  `json:"gateway"`
	Log      LogConfig      `json:"log"`
	mu       sync.RWMutex
}

type ChannelsConfig struct {
	Discord DiscordConfig `json:"discord"`
}

type DiscordConfig struct {
	Token     string              `json:"token" env:"FITCOACH_CHANNELS_DISCORD_TOKEN"`
	AllowFrom FlexibleStringSlice `json:"allow_from" env:"FITCOACH_CHANNELS_DISCORD_ALLOW_FROM"`
}

// AdminConfig names the chat that receives user-count and lifecycle alerts.
type AdminConfig struct {
	Channel string `json:"channel" env:"FITCOACH_ADMIN_CHANNEL"`
	ChatID  string `json:"chat_id" env:"FITCOACH_ADMIN_CHAT_ID"`
}

type WeatherConfig struct {
	APIKey         string `json:"api_key" env:"FITCOACH_WEATHER_API_KEY"`
	APIBase        string `json:"api_base" env:"FITCOACH_WEATHER_API_BASE"`
	Lang           string `json:"lang" env:"FITCOACH_WEATHER_LANG"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"FITCOACH_WEATHER_TIMEOUT_SECONDS"`
}

type VideoConfig struct {
	APIKey         string `json:"api_key" env:"FITCOACH_VIDEO_API_KEY"`
	APIBase        string `json:"api_base" env:"FITCOACH_VIDEO_API_BASE"`
	RegionCode     string `json:"region_code" env:"FITCOACH_VIDEO_REGION_CODE"`
	MaxResults     int    `json:"max_results" env:"FITCOACH_VIDEO_MAX_RESULTS"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"FITCOACH_VIDEO_TIMEOUT_SECONDS"`
}

type StoreConfig struct {
	Backend string `json:"backend" env:"FITCOACH_STORE_BACKEND"` // "json" or "sqlite"
	Path    string `json:"path" env:"FITCOACH_STORE_PATH"`
}

type GatewayConfig struct {
	Host string `json:"host" env:"FITCOACH_GATEWAY_HOST"`
	Port int    `json:"port" env:"FITCOACH_GATEWAY_PORT"`
}

type LogConfig struct {
	Level string `json:"level" env:"FITCOACH_LOG_LEVEL"`
}

func DefaultConfig() *Config {
	return &Config{
		Channels: ChannelsConfig{
			Discord: DiscordConfig{
				Token:     "",
				AllowFrom: FlexibleStringSlice{},
			},
		},
		Admin: AdminConfig{
			Channel: "discord",
		},
		Weather: WeatherConfig{
			APIBase:        "https://api.openweathermap.org/data/2.5",
			Lang:           "kr",
			TimeoutSeconds: 5,
		},
		Video: VideoConfig{
			APIBase:        "https://www.googleapis.com/youtube/v3",
			RegionCode:     "KR",
			MaxResults:     15,
			TimeoutSeconds: 5,
		},
		Store: StoreConfig{
			Backend: "json",
			Path:    "~/.fitcoach/data/users.json",
		},
		Gateway: GatewayConfig{
			Host: "0.0.0.0",
			Port: 18790,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Validate reports the first missing required setting.
func (c *Config) Validate(requireDiscord bool) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if strings.TrimSpace(c.Weather.APIKey) == "" {
		return fmt.Errorf("weather.api_key is required (FITCOACH_WEATHER_API_KEY)")
	}
	if requireDiscord && strings.TrimSpace(c.Channels.Discord.Token) == "" {
		return fmt.Errorf("channels.discord.token is required (FITCOACH_CHANNELS_DISCORD_TOKEN)")
	}
	switch c.Store.Backend {
	case "", "json", "sqlite":
	default:
		return fmt.Errorf("store.backend must be json or sqlite, got %q", c.Store.Backend)
	}
	return nil
}

func (c *Config) StorePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Store.Path)
}

func (c *Config) WeatherTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return secondsOr(c.Weather.TimeoutSeconds, 5)
}

func (c *Config) VideoTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return secondsOr(c.Video.TimeoutSeconds, 5)
}

func (c *Config) ListenAddr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("%s:%d", c.Gateway.Host, c.Gateway.Port)
}

func secondsOr(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Second
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
