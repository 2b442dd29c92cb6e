package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hand",
		Short: "Special hand commands",
	}

	cmd.AddCommand(newHandRecordCmd())
	cmd.AddCommand(newHandListCmd())
	cmd.AddCommand(newHandDeleteCmd())

	return cmd
}

func newHandRecordCmd() *cobra.Command {
	var handType, cards, description string

	cmd := &cobra.Command{
		Use:   "record <session-id> <player-id>",
		Short: "Record a special hand for a player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"player_id":   args[1],
				"hand_type":   handType,
				"cards":       cards,
				"description": description,
			}

			var result SpecialHand
			path := fmt.Sprintf("/api/v1/sessions/%s/special-hands", args[0])
			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&handType, "type", "", "Hand type, e.g. ROYAL_FLUSH, FOUR_OF_A_KIND_ACES (required)")
	cmd.Flags().StringVar(&cards, "cards", "", "The cards, e.g. 'As Ks Qs Js Ts'")
	cmd.Flags().StringVar(&description, "desc", "", "Freeform description")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func newHandListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <session-id>",
		Short: "List a session's special hands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				SpecialHands []SpecialHand `json:"special_hands"`
			}
			path := fmt.Sprintf("/api/v1/sessions/%s/special-hands", args[0])
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			if cfg.Output == "json" {
				out.Print(result)
				return nil
			}
			for _, h := range result.SpecialHands {
				out.Print(h)
			}
			return nil
		},
	}
}

func newHandDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id> <hand-id>",
		Short: "Delete a mistakenly recorded hand",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/sessions/%s/special-hands/%s", args[0], args[1])
			if err := client.Delete(path); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("hand deleted")
			return nil
		},
	}
}
