package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Year-end statistics commands",
	}

	cmd.AddCommand(newStatsReportCmd())
	cmd.AddCommand(newStatsYearsCmd())
	cmd.AddCommand(newStatsPiggyBankCmd())

	return cmd
}

func newStatsReportCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the statistics report for a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Stats
			if err := client.Get(fmt.Sprintf("/api/v1/stats?year=%d", year), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Report year (required)")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}

func newStatsYearsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "List years that have closed sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Years
			if err := client.Get("/api/v1/stats/years", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newStatsPiggyBankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "piggy-bank",
		Short: "Show the all-time piggy bank total",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PiggyBank
			if err := client.Get("/api/v1/piggy-bank", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
