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
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dotsetgreg/fitcoach/pkg/agent"
	"github.com/dotsetgreg/fitcoach/pkg/bus"
	"github.com/dotsetgreg/fitcoach/pkg/logger"
	"github.com/dotsetgreg/fitcoach/pkg/profile"
)

type chatOptions struct {
	message  string
	userID   string
	inMemory bool
	debug    bool
}

func chatCmd(opts chatOptions) error {
	if opts.debug {
		logger.SetLevel(logger.DEBUG)
		fmt.Println("🔍 Debug mode enabled")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.debug {
		logger.SetLevel(logger.DEBUG)
	}
	if err := cfg.Validate(false); err != nil {
		// Profile commands still work without a weather key.
		fmt.Printf("⚠️  %v\n", err)
	}

	var store profile.Store
	if opts.inMemory {
		store = profile.NewMemoryStore()
	} else if store, err = openStore(cfg); err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer store.Close()

	msgBus := bus.NewMessageBus()
	defer msgBus.Close()
	agentLoop := agent.NewLoop(msgBus, newController(cfg, store))

	if opts.message != "" {
		out := agentLoop.ProcessDirect(context.Background(), opts.message, opts.userID)
		fmt.Printf("\n%s\n", renderOutbound(out))
		return nil
	}

	fmt.Printf("🏃 Interactive mode as %q (exit or Ctrl+C to quit)\n\n", opts.userID)
	interactiveMode(agentLoop, opts.userID)
	return nil
}

func interactiveMode(agentLoop *agent.Loop, userID string) {
	prompt := fmt.Sprintf("%s You: ", appName)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     filepath.Join(os.TempDir(), ".fitcoach_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("Error initializing readline: %v\n", err)
		fmt.Println("Falling back to simple input mode...")
		simpleInteractiveMode(agentLoop, userID, os.Stdin)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}
		if !replyTo(agentLoop, userID, line) {
			return
		}
	}
}

func simpleInteractiveMode(agentLoop *agent.Loop, userID string, in io.Reader) {
	reader := bufio.NewReader(in)
	for {
		fmt.Printf("%s You: ", appName)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}
		if !replyTo(agentLoop, userID, line) {
			return
		}
	}
}

// replyTo answers one input line and reports whether the session continues.
func replyTo(agentLoop *agent.Loop, userID, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}
	if input == "exit" || input == "quit" {
		fmt.Println("Goodbye!")
		return false
	}
	out := agentLoop.ProcessDirect(context.Background(), input, userID)
	fmt.Printf("\n%s\n\n", renderOutbound(out))
	return true
}

// renderOutbound flattens buttons and embeds into plain terminal text.
func renderOutbound(out bus.OutboundMessage) string {
	var sb strings.Builder
	sb.WriteString(out.Content)
	if len(out.QuickReplies) > 0 {
		labels := make([]string, 0, len(out.QuickReplies))
		for _, qr := range out.QuickReplies {
			labels = append(labels, "["+qr.Label+"]")
		}
		sb.WriteString("\n")
		sb.WriteString(strings.Join(labels, " "))
	}
	if out.Embed != nil {
		fmt.Fprintf(&sb, "\n🎬 %s\n%s", out.Embed.Title, out.Embed.URL)
	}
	return sb.String()
}
