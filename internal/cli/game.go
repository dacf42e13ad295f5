package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Solo game commands",
	}

	cmd.AddCommand(newGameStartCmd())

	return cmd
}

func newGameStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <level>",
		Short: "Start a solo game (easy, medium, or hard)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}

			req := map[string]string{
				"user_id":      cfg.UserID,
				"display_name": cfg.DisplayName,
				"level":        args[0],
			}

			var result Game
			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGuessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guess <number>",
		Short: "Submit a guess for your active game or room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}

			value, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}

			req := map[string]any{
				"user_id": cfg.UserID,
				"value":   value,
			}

			var result GuessResult
			if err := client.Post("/api/v1/guesses", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
