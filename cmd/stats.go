package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fanworks-lab/tagharvest/internal/database"
	"github.com/fanworks-lab/tagharvest/internal/stats"
)

func newStatsCmd() *cobra.Command {
	var (
		inputDB string
		topN    int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print corpus-level frequency tables and count distributions",
		RunE: func(cmd *cobra.Command, args []string) error {
			works, err := database.Load(inputDB)
			if err != nil {
				return err
			}

			stats.Compute(works).WriteText(os.Stdout, topN)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDB, "input-database", "i", "", "Database to report on (required)")
	cmd.Flags().IntVarP(&topN, "top", "n", 20, "Rows per frequency table (0 for all)")
	_ = cmd.MarkFlagRequired("input-database")

	return cmd
}
