package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/fanworks-lab/tagharvest/internal/database"
	"github.com/fanworks-lab/tagharvest/internal/index"
)

func newParseCmd() *cobra.Command {
	var (
		inputDB  string
		outputDB string
	)

	cmd := &cobra.Command{
		Use:   "parse [flags] page.html...",
		Short: "Parse saved index pages into the work database",
		Long: `Parse reads saved works-index pages and extracts one record per work:
identity, tags, relationship explosions, and engagement counts. Records are
appended to the input database (when given) and written sorted by work id so
successive runs diff cleanly.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var works []database.Work
			if inputDB != "" {
				loaded, err := database.Load(inputDB)
				if err != nil {
					return err
				}
				works = loaded
				slog.Info("loaded existing database", "file", inputDB, "works", len(works))
			}

			parseDate := time.Now().Format(time.RFC3339)
			for _, filename := range args {
				parsed, err := index.ParseFile(filename)
				if err != nil {
					return err
				}
				for i := range parsed {
					parsed[i].Filename = filename
					parsed[i].ParseDate = parseDate
				}
				works = append(works, parsed...)
				slog.Info("parsed index page", "file", filename, "works", len(parsed))
			}

			if err := database.Save(outputDB, works); err != nil {
				return err
			}

			fmt.Printf("Wrote %d works to %s\n", len(works), outputDB)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDB, "input-database", "i", "", "Existing database to append to")
	cmd.Flags().StringVarP(&outputDB, "output-database", "o", "", "Database to create (required)")
	_ = cmd.MarkFlagRequired("output-database")

	return cmd
}
