package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "gumballctl",
		Short: "CLI tool for the gumball run API",
		Long: `gumballctl is a CLI tool for interacting with the gumball run JSON API.

It supports the full room lifecycle: creating rooms, visiting and joining
them, readying up, starting matches, submitting guesses and streaming
live room events.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load the saved visitor id if not provided via flag/env
			if err := cfg.LoadVisitorID(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: GUMBALL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.VisitorID, "visitor-id", cfg.VisitorID, "Visitor id (env: GUMBALL_VISITOR_ID)")
	rootCmd.PersistentFlags().StringVar(&cfg.VisitorFile, "visitor-file", cfg.VisitorFile, "Visitor id file path (env: GUMBALL_VISITOR_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
