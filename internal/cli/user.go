package cli

import (
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	cmd.AddCommand(newUserListCmd())
	cmd.AddCommand(newUserUpdateCmd())

	return cmd
}

func newUserListCmd() *cobra.Command {
	var includeInactive bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/users"
			if includeInactive {
				path += "?include_inactive=true"
			}

			var result UserList
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeInactive, "include-inactive", false, "Include disabled accounts (admin only)")

	return cmd
}

func newUserUpdateCmd() *cobra.Command {
	var name, role, playerType string
	var disable, enable, archive bool

	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Update a user (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if name != "" {
				req["name"] = name
			}
			if role != "" {
				req["role"] = role
			}
			if playerType != "" {
				req["player_type"] = playerType
			}
			if disable {
				req["is_active"] = false
			}
			if enable {
				req["is_active"] = true
			}
			if archive {
				req["is_archived"] = true
			}

			var result User
			if err := client.Patch("/api/v1/users/"+args[0], req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&role, "role", "", "Role: ADMIN or PLAYER")
	cmd.Flags().StringVar(&playerType, "type", "", "Player type: TEAM or GUEST")
	cmd.Flags().BoolVar(&disable, "disable", false, "Disable the account")
	cmd.Flags().BoolVar(&enable, "enable", false, "Enable the account")
	cmd.Flags().BoolVar(&archive, "archive", false, "Archive the account")

	return cmd
}
