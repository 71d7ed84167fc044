package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sniper-dashboard/app"
	"sniper-dashboard/config"
	"sniper-dashboard/logging"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command. Running it without a subcommand
// serves the dashboard.
func newRootCmd() *cobra.Command {
	// Load config from .env file and environment
	cfg := config.LoadFromEnv()

	var (
		backendURL   string
		port         string
		manual       bool
		pollInterval time.Duration
	)

	rootCmd := &cobra.Command{
		Use:   "sniper-dashboard",
		Short: "Sniper dashboard - polling and state-sync engine for trading signals",
		Long: `sniper-dashboard polls the decision service, keeps the simulated account in sync
and pushes every change to browsers over SSE and WebSocket.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Init(logging.Config{
				Level:      cfg.Log.Level,
				OutputFile: cfg.Log.File,
				MaxSizeMB:  cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("backend-url") {
				cfg.Backend.URL = backendURL
			}
			if flags.Changed("port") {
				cfg.APIPort = port
			}
			if flags.Changed("poll-interval") {
				cfg.Dashboard.PollInterval = pollInterval
			}
			if manual {
				cfg.Dashboard.InitialMode = "MANUAL"
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			defer logging.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Create and start app
			return app.New(cfg).Start(ctx)
		},
	}

	rootCmd.Flags().StringVar(&backendURL, "backend-url", cfg.Backend.URL, "Base URL of the decision/simulation service")
	rootCmd.Flags().StringVar(&port, "port", cfg.APIPort, "Local API port")
	rootCmd.Flags().BoolVar(&manual, "manual", false, "Start in MANUAL mode (no background polling)")
	rootCmd.Flags().DurationVar(&pollInterval, "poll-interval", cfg.Dashboard.PollInterval, "AUTO mode scan period")

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sniper-dashboard %s\n", version)
		},
	}
}
