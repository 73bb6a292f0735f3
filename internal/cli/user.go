package cli

import (
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Profile commands",
	}

	cmd.AddCommand(newUserGetCmd())
	cmd.AddCommand(newUserSyncCmd())
	cmd.AddCommand(newUserGuestCmd())
	cmd.AddCommand(newUserAnonCmd())

	return cmd
}

func newUserGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <username>",
		Short: "Show a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Profile
			if err := client.Get("/api/users/"+segment(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newUserSyncCmd() *cobra.Command {
	var coins int64
	var hammers, achievements []string
	var equipped string

	cmd := &cobra.Command{
		Use:   "sync <username>",
		Short: "Replace a profile's progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"coins":                coins,
				"unlockedHammers":      hammers,
				"equippedHammer":       equipped,
				"unlockedAchievements": achievements,
			}
			msg, err := client.PatchText("/api/users/"+segment(args[0]), req)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(msg)
			return nil
		},
	}

	cmd.Flags().Int64Var(&coins, "coins", 0, "Coin balance")
	cmd.Flags().StringSliceVar(&hammers, "hammers", nil, "Unlocked hammers")
	cmd.Flags().StringVar(&equipped, "equipped", "", "Equipped hammer")
	cmd.Flags().StringSliceVar(&achievements, "achievements", nil, "Unlocked achievements")

	return cmd
}

func newUserGuestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guest <username>",
		Short: "Log in as a guest, creating the profile if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GuestLoginResult
			if err := client.Post("/api/guest-login", map[string]string{"username": args[0]}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newUserAnonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "anon",
		Short: "Create an anonymous profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result AnonymousResult
			if err := client.Get("/api/anonymous", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
