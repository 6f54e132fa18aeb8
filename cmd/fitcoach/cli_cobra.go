// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dotsetgreg/fitcoach/pkg/profile"
	"github.com/spf13/cobra"
)

func executeCLI() error {
	root := buildRootCommand(true)
	if err := root.Execute(); err != nil {
		return err
	}
	return nil
}

func buildRootCommand(includeDocsCommand bool) *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "fitcoach",
		Short: "Weather-aware exercise coaching bot for Discord",
		Long: strings.TrimSpace(`fitcoach is a chat bot that remembers a small profile per user and
recommends indoor or outdoor exercise from the current weather.

Use CLI commands to onboard, chat locally, run the Discord gateway,
and inspect or reset stored profiles.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion()
				return nil
			}
			_ = cmd.Help()
			return fmt.Errorf("a subcommand is required")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Show build/version metadata")

	root.AddCommand(newOnboardCommand())
	root.AddCommand(newChatCommand())
	root.AddCommand(newGatewayCommand())
	root.AddCommand(newStatusCommand())
	root.AddCommand(newProfileCommand())
	root.AddCommand(newVersionCommand())

	if includeDocsCommand {
		docsCmd := newDocsCommand(func() *cobra.Command { return buildRootCommand(false) })
		root.AddCommand(docsCmd)
	}

	return root
}

func newOnboardCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "onboard",
		Short:   "Initialize ~/.fitcoach config",
		Long:    "Create the default configuration file for a new fitcoach installation.",
		Example: "  fitcoach onboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return onboard(cmd.InOrStdin(), cmd.OutOrStdout(), force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config without asking")
	return cmd
}

func newChatCommand() *cobra.Command {
	var opts chatOptions

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the coach locally (CLI mode)",
		Long:  "Run an interactive local session or send one-shot messages without Discord.",
		Example: strings.Join([]string{
			"  fitcoach chat",
			"  fitcoach chat --user local --memory",
			"  fitcoach chat --message \"오늘 운동 추천해줘\"",
		}, "\n"),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.message = strings.TrimSpace(opts.message)
			if strings.TrimSpace(opts.userID) == "" {
				return fmt.Errorf("--user must not be empty")
			}
			return chatCmd(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "One-shot message to send to the coach")
	cmd.Flags().StringVarP(&opts.userID, "user", "u", "local", "User id the profile is stored under")
	cmd.Flags().BoolVar(&opts.inMemory, "memory", false, "Keep profiles in memory instead of the configured store")
	cmd.Flags().BoolVarP(&opts.debug, "debug", "d", false, "Enable debug logging")

	return cmd
}

func newGatewayCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "gateway",
		Short:   "Run the Discord gateway + health server",
		Long:    "Start the Discord channel, the coaching loop, and the health/status HTTP server.",
		Example: "  fitcoach gateway --debug",
		RunE: func(cmd *cobra.Command, args []string) error {
			return gatewayCmd(debug)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show configuration, store, and runtime readiness",
		Example: "  fitcoach status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return statusCmd(cmd.OutOrStdout())
		},
	}
}

func newProfileCommand() *cobra.Command {
	profileRoot := &cobra.Command{
		Use:   "profile",
		Short: "Inspect and reset stored user profiles",
	}

	profileRoot.AddCommand(&cobra.Command{
		Use:     "list",
		Short:   "List stored profiles with their completeness",
		Example: "  fitcoach profile list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store profile.Store) error {
				return profileList(ctx, store, cmd.OutOrStdout())
			})
		},
	})

	profileRoot.AddCommand(&cobra.Command{
		Use:     "show <user_id>",
		Short:   "Show a profile summary",
		Args:    cobra.ExactArgs(1),
		Example: "  fitcoach profile show 1234567890",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store profile.Store) error {
				return profileShow(ctx, store, cmd.OutOrStdout(), args[0])
			})
		},
	})

	profileRoot.AddCommand(&cobra.Command{
		Use:     "reset <user_id>",
		Short:   "Clear every profile field of a user",
		Args:    cobra.ExactArgs(1),
		Example: "  fitcoach profile reset 1234567890",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store profile.Store) error {
				return profileReset(ctx, store, cmd.OutOrStdout(), args[0])
			})
		},
	})

	return profileRoot
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show build/version metadata",
		Example: "  fitcoach version",
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion()
			return nil
		},
	}
}
