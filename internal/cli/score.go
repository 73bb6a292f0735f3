package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Global leaderboard commands",
	}

	cmd.AddCommand(newScoreSubmitCmd())
	cmd.AddCommand(newScoreTopCmd())
	cmd.AddCommand(newScoreBestCmd())

	return cmd
}

func newScoreSubmitCmd() *cobra.Command {
	var player string
	var score int64

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a score to the global leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"playerName": player, "score": score}
			msg, err := client.PostText("/api/scores", req)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Player name (defaults to Anonymous on the server)")
	cmd.Flags().Int64Var(&score, "score", 0, "Score (required)")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

func newScoreTopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "top",
		Short: "Show the global top scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []LeaderboardEntry
			if err := client.Get("/api/leaderboard", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newScoreBestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "best <player>",
		Short: "Show a player's best global score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result BestScore
			if err := client.Get(fmt.Sprintf("/api/scores/%s/best", segment(args[0])), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
