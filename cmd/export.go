package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fanworks-lab/tagharvest/internal/database"
	"github.com/fanworks-lab/tagharvest/internal/export"
)

func newExportCmd() *cobra.Command {
	var (
		inputDB     string
		parquetFile string
		csvFile     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the work database for analysis tools",
		Long: `Export flattens the work database into Parquet and/or CSV so the analysis
layer can load the corpus without touching YAML.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if parquetFile == "" && csvFile == "" {
				return fmt.Errorf("nothing to do; set --parquet and/or --csv")
			}

			works, err := database.Load(inputDB)
			if err != nil {
				return err
			}

			if parquetFile != "" {
				if err := export.WriteParquet(parquetFile, works); err != nil {
					return err
				}
				slog.Info("wrote parquet export", "file", parquetFile, "works", len(works))
			}
			if csvFile != "" {
				if err := export.WriteCSV(csvFile, works); err != nil {
					return err
				}
				slog.Info("wrote CSV export", "file", csvFile, "works", len(works))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDB, "input-database", "i", "", "Database to export (required)")
	cmd.Flags().StringVar(&parquetFile, "parquet", "", "Parquet file to write")
	cmd.Flags().StringVar(&csvFile, "csv", "", "CSV file to write")
	_ = cmd.MarkFlagRequired("input-database")

	return cmd
}
