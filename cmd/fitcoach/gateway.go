// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dotsetgreg/fitcoach/pkg/agent"
	"github.com/dotsetgreg/fitcoach/pkg/bus"
	"github.com/dotsetgreg/fitcoach/pkg/channels"
	"github.com/dotsetgreg/fitcoach/pkg/config"
	"github.com/dotsetgreg/fitcoach/pkg/health"
	"github.com/dotsetgreg/fitcoach/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func gatewayCmd(debug bool) error {
	if debug {
		logger.SetLevel(logger.DEBUG)
		fmt.Println("🔍 Debug mode enabled")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if debug {
		logger.SetLevel(logger.DEBUG)
	}
	if err := cfg.Validate(true); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer store.Close()

	msgBus := bus.NewMessageBus()
	defer msgBus.Close()

	agentLoop := agent.NewLoop(msgBus, newController(cfg, store))

	channelManager, err := channels.NewManager(cfg, msgBus)
	if err != nil {
		return fmt.Errorf("create channel manager: %w", err)
	}

	monitor := health.NewMonitor(store, adminNotifier(cfg, channelManager))
	healthServer := health.NewServer(health.Options{
		Addr:    cfg.ListenAddr(),
		Version: formatVersion(),
		Secrets: configuredSecrets(cfg),
		Extra: func() map[string]any {
			return map[string]any{
				"processed": agentLoop.Processed(),
				"bus":       msgBus.Stats(),
				"channels":  channelManager.GetStatus(),
			}
		},
	}, monitor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := channelManager.StartAll(ctx); err != nil {
		return fmt.Errorf("start channels: %w", err)
	}
	fmt.Println("✓ Discord channel started")

	go func() {
		if err := healthServer.Start(); err != nil {
			logger.ErrorCF("health", "Health server error", map[string]any{"error": err.Error()})
		}
	}()
	fmt.Printf("✓ Health endpoints available at http://%s/health and /ready\n", cfg.ListenAddr())

	go func() {
		if err := agentLoop.Run(ctx); err != nil {
			logger.ErrorCF("agent", "Agent loop stopped", map[string]any{"error": err.Error()})
		}
	}()
	healthServer.SetBotRunning(true)

	stats, err := monitor.Prime(ctx)
	if err != nil {
		logger.WarnCF("health", "Could not read user count", map[string]any{"error": err.Error()})
	}
	_ = monitor.Alert(ctx, fmt.Sprintf("[FitCoach 알림]\n✅ FitCoach 봇이 시작됐어! (등록 유저 %d명)", stats.Registered))

	fmt.Println("Press Ctrl+C to stop")
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down...")
	healthServer.SetBotRunning(false)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	_ = monitor.Alert(stopCtx, "[FitCoach 알림]\n🛑 FitCoach 봇이 종료됐어.")

	cancel()
	agentLoop.Stop()
	if err := healthServer.Stop(stopCtx); err != nil {
		logger.WarnCF("health", "Health server shutdown failed", map[string]any{"error": err.Error()})
	}
	if err := channelManager.StopAll(stopCtx); err != nil {
		logger.WarnCF("channels", "Channel shutdown failed", map[string]any{"error": err.Error()})
	}
	fmt.Println("✓ Gateway stopped")
	return nil
}

// adminNotifier sends alerts to the configured admin chat, or returns nil
// when none is configured.
func adminNotifier(cfg *config.Config, manager *channels.Manager) health.Notifier {
	channel := strings.TrimSpace(cfg.Admin.Channel)
	chatID := strings.TrimSpace(cfg.Admin.ChatID)
	if channel == "" || chatID == "" {
		return nil
	}
	return func(ctx context.Context, text string) error {
		return manager.SendToChannel(ctx, channel, chatID, text)
	}
}

func configuredSecrets(cfg *config.Config) map[string]bool {
	return map[string]bool{
		"discord_token":   strings.TrimSpace(cfg.Channels.Discord.Token) != "",
		"weather_api_key": strings.TrimSpace(cfg.Weather.APIKey) != "",
		"video_api_key":   strings.TrimSpace(cfg.Video.APIKey) != "",
		"admin_chat_id":   strings.TrimSpace(cfg.Admin.ChatID) != "",
	}
}
