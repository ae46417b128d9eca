package main

import (
	"github.com/spf13/cobra"

	"peopledetect/internal/app"
	"peopledetect/internal/config"
)

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scans and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ShowHistory(cfg, limit, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to list, 0 for all")
	return cmd
}
