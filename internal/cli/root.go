package cli

import (
	"errors"
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
		Use:   "guessctl",
		Short: "CLI tool for the number guessing game API",
		Long: `guessctl is a CLI tool for interacting with the guessing game JSON API.

It supports solo games, multiplayer rooms, statistics, leaderboards, and
achievement queries.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: GUESSNUM_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.UserID, "user", cfg.UserID, "Player identifier (env: GUESSNUM_USER)")
	rootCmd.PersistentFlags().StringVar(&cfg.DisplayName, "name", cfg.DisplayName, "Display name (env: GUESSNUM_NAME)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	// Add subcommands
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newGuessCmd())
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newAchievementsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// requireUser ensures a player identifier is configured
func requireUser() error {
	if cfg.UserID == "" {
		return errors.New("user id required: set --user or GUESSNUM_USER")
	}
	return nil
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
