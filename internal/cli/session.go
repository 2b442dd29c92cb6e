package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session ledger commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionShowCmd())
	cmd.AddCommand(newSessionJoinCmd())
	cmd.AddCommand(newSessionLeaveCmd())
	cmd.AddCommand(newSessionBuyInCmd())
	cmd.AddCommand(newSessionRemoveBuyInCmd())
	cmd.AddCommand(newSessionSellCmd())
	cmd.AddCommand(newSessionCashOutCmd())
	cmd.AddCommand(newSessionUndoCashOutCmd())
	cmd.AddCommand(newSessionReverseCmd())
	cmd.AddCommand(newSessionCloseCmd())
	cmd.AddCommand(newSessionReopenCmd())
	cmd.AddCommand(newSessionNotesCmd())
	cmd.AddCommand(newSessionArchiveCmd())

	return cmd
}

// playerCommand sends a ledger command for one player and prints the
// updated session
func playerCommand(sessionID, playerID string, body map[string]any) error {
	var result Session
	path := fmt.Sprintf("/api/v1/sessions/%s/players/%s", sessionID, playerID)
	if err := client.Patch(path, body, &result); err != nil {
		return err
	}

	out := NewOutput(cfg.Output)
	out.Print(result)
	return nil
}

// sessionAction sends a session-level action and prints the result
func sessionAction(sessionID string, body map[string]any) error {
	var result Session
	if err := client.Patch("/api/v1/sessions/"+sessionID, body, &result); err != nil {
		return err
	}

	out := NewOutput(cfg.Output)
	out.Print(result)
	return nil
}

func newSessionCreateCmd() *cobra.Command {
	var date, notes string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{}
			if date != "" {
				req["date"] = date
			}
			if notes != "" {
				req["notes"] = notes
			}

			var result Session
			if err := client.Post("/api/v1/sessions", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Session date (RFC3339, defaults to now)")
	cmd.Flags().StringVar(&notes, "notes", "", "Session notes")

	return cmd
}

func newSessionListCmd() *cobra.Command {
	var status string
	var year int
	var includeArchived bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/sessions?"
			if status != "" {
				path += "status=" + status + "&"
			}
			if year != 0 {
				path += fmt.Sprintf("year=%d&", year)
			}
			if includeArchived {
				path += "include_archived=true&"
			}

			var result SessionList
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status: ACTIVE, CLOSED")
	cmd.Flags().IntVar(&year, "year", 0, "Filter by year")
	cmd.Flags().BoolVar(&includeArchived, "include-archived", false, "Include archived sessions")

	return cmd
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session with its log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SessionDetail
			if err := client.Get("/api/v1/sessions/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <session-id> <user-id>",
		Short: "Add a player to the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"user_id": args[1]}

			var result PlayerEntry
			path := fmt.Sprintf("/api/v1/sessions/%s/players", args[0])
			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <session-id> <user-id>",
		Short: "Remove a player who joined by mistake",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/sessions/%s/players/%s", args[0], args[1])
			if err := client.Delete(path); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("player removed")
			return nil
		},
	}
}

func newSessionBuyInCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy-in <session-id> <user-id>",
		Short: "Record a re-buy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerCommand(args[0], args[1], map[string]any{"command": "buy_in"})
		},
	}
}

func newSessionRemoveBuyInCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-buy-in <session-id> <user-id>",
		Short: "Remove a mistaken buy-in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerCommand(args[0], args[1], map[string]any{"command": "remove_buy_in"})
		},
	}
}

func newSessionSellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sell <session-id> <seller-id> <buyer-id>",
		Short: "Sell one buy-in of chips to another player",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerCommand(args[0], args[1], map[string]any{
				"command":  "sell_buy_in",
				"buyer_id": args[2],
			})
		},
	}
}

func newSessionCashOutCmd() *cobra.Command {
	var amount int

	cmd := &cobra.Command{
		Use:   "cash-out <session-id> <user-id>",
		Short: "Cash a player out",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerCommand(args[0], args[1], map[string]any{
				"command": "cash_out",
				"amount":  amount,
			})
		},
	}

	cmd.Flags().IntVar(&amount, "amount", 0, "Chips the player walks away with (required)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newSessionUndoCashOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo-cash-out <session-id> <user-id>",
		Short: "Undo a cash-out so the player can keep playing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerCommand(args[0], args[1], map[string]any{"command": "undo_cash_out"})
		},
	}
}

func newSessionReverseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reverse <session-id> <transaction-id>",
		Short: "Reverse a logged transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/sessions/%s/transactions/%s", args[0], args[1])
			if err := client.Delete(path); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("transaction reversed")
			return nil
		},
	}
}

func newSessionCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <session-id>",
		Short: "Close the session after the books balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sessionAction(args[0], map[string]any{"action": "close"})
		},
	}
}

func newSessionReopenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <session-id>",
		Short: "Reopen a closed session for corrections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sessionAction(args[0], map[string]any{"action": "reopen"})
		},
	}
}

func newSessionNotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notes <session-id> <notes>",
		Short: "Set session notes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sessionAction(args[0], map[string]any{
				"action": "notes",
				"notes":  args[1],
			})
		},
	}
}

func newSessionArchiveCmd() *cobra.Command {
	var unarchive bool

	cmd := &cobra.Command{
		Use:   "archive <session-id>",
		Short: "Archive or unarchive a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "archive"
			if unarchive {
				action = "unarchive"
			}
			return sessionAction(args[0], map[string]any{"action": action})
		},
	}

	cmd.Flags().BoolVar(&unarchive, "undo", false, "Unarchive instead")

	return cmd
}
