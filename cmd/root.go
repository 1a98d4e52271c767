package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tagharvest",
		Short: "Fan-work metadata harvester with canonical character-name cleaning",
		Long: `Tagharvest collects works-index pages for a fandom tag from an Archive of
Our Own style site, parses them into a YAML work database, and cleans the
free-text character and relationship tags onto a curated canonical cast.

The pipeline runs as separate stages (collect, parse, clean, export, stats)
so each step can be replayed offline against saved pages.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newCollectCmd())
	cmd.AddCommand(newParseCmd())
	cmd.AddCommand(newCleanCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newSuggestCmd())

	return cmd
}
