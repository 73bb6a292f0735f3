package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomToggleTriesCmd())
	cmd.AddCommand(newRoomHasPlayedCmd())
	cmd.AddCommand(newRoomSubmitCmd())
	cmd.AddCommand(newRoomLeaderboardCmd())
	cmd.AddCommand(newRoomOwnerActionCmd("reset", "Clear all scores in a room (owner only)", "reset"))
	cmd.AddCommand(newRoomOwnerActionCmd("destroy", "Destroy a room (owner only)", "destroy"))

	return cmd
}

func roomPath(passcode string, parts ...string) string {
	p := "/api/rooms/" + segment(passcode)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func newRoomCreateCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room owned by --user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CreateRoomResult
			if err := client.Post("/api/rooms", map[string]string{"username": user}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Owner username (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <passcode>",
		Short: "Check that a room is active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomStatus
			if err := client.Get(roomPath(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRoomToggleTriesCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "toggle-tries <passcode>",
		Short: "Toggle infinite tries (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ToggleTriesResult
			if err := client.Post(roomPath(args[0], "toggle-tries"), map[string]string{"username": user}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Requesting username (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newRoomHasPlayedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "has-played <passcode> <player>",
		Short: "Check whether a player has submitted in a room",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HasPlayedResult
			if err := client.Get(roomPath(args[0], "hasPlayed", segment(args[1])), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRoomSubmitCmd() *cobra.Command {
	var player string
	var score int64

	cmd := &cobra.Command{
		Use:   "submit <passcode>",
		Short: "Submit a score to a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"playerName": player, "score": score}
			outcome, err := client.PostText(roomPath(args[0], "scores"), req)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(outcome)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Player name (required)")
	cmd.Flags().Int64Var(&score, "score", 0, "Score (required)")
	_ = cmd.MarkFlagRequired("player")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

func newRoomLeaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard <passcode>",
		Short: "Show a room's top scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []LeaderboardEntry
			if err := client.Get(roomPath(args[0], "leaderboard"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

// newRoomOwnerActionCmd builds the owner-only commands that answer in plain text
func newRoomOwnerActionCmd(use, short, action string) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <passcode>", use),
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := client.PostText(roomPath(args[0], action), map[string]string{"username": user})
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Requesting username (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
