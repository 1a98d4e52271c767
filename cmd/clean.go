package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fanworks-lab/tagharvest/internal/cast"
	"github.com/fanworks-lab/tagharvest/internal/database"
)

func newCleanCmd() *cobra.Command {
	var (
		inputDB    string
		outputDB   string
		rulesFile  string
		unseenFile string
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Normalize character and relationship names onto the canonical cast",
		Long: `Clean loads the rule tables and rewrites every work's character and
relationship fields onto the canonical cast list. The raw archive tags are
kept untouched: characters get a parallel charactersclean field, and only
the derived pax and pair fields are rewritten in place.

Names no rule recognizes are replaced with "non-cast" and written to the
unseen report, one per line, for the curator to classify and fold back into
the rule tables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			works, err := database.Load(inputDB)
			if err != nil {
				return err
			}

			rules, err := cast.LoadRules(rulesFile)
			if err != nil {
				return err
			}
			normalizer := cast.NewNormalizer(rules)

			cleanDate := time.Now().Format(time.RFC3339)
			for i := range works {
				w := &works[i]

				if w.Characters != nil {
					w.CharactersClean = normalizer.NormalizeNames(w.Characters)
				}

				// Relationships stays exactly as tagged on the archive; only
				// the derived fields are cleaned.
				if w.RelationshipsPax != nil {
					w.RelationshipsPax = normalizer.NormalizeNames(w.RelationshipsPax)
				}
				if w.RelationshipsPaxAmp != nil {
					w.RelationshipsPaxAmp = normalizer.NormalizeNames(w.RelationshipsPaxAmp)
				}
				if w.RelationshipsPaxSlash != nil {
					w.RelationshipsPaxSlash = normalizer.NormalizeNames(w.RelationshipsPaxSlash)
				}
				if w.RelationshipsPair != nil {
					w.RelationshipsPair = normalizer.NormalizePairs(w.RelationshipsPair)
				}
				if w.RelationshipsPairAmp != nil {
					w.RelationshipsPairAmp = normalizer.NormalizePairs(w.RelationshipsPairAmp)
				}
				if w.RelationshipsPairSlash != nil {
					w.RelationshipsPairSlash = normalizer.NormalizePairs(w.RelationshipsPairSlash)
				}

				w.CleanDate = cleanDate
			}

			if err := database.Save(outputDB, works); err != nil {
				return err
			}

			unseen := normalizer.Unseen()
			if unseenFile != "" {
				report := strings.Join(unseen, "\n")
				if len(unseen) > 0 {
					report += "\n"
				}
				if err := os.WriteFile(unseenFile, []byte(report), 0644); err != nil {
					return fmt.Errorf("failed to write unseen report: %w", err)
				}
			} else {
				for _, name := range unseen {
					fmt.Println(name)
				}
			}

			slog.Info("clean complete",
				"works", len(works),
				"altered", normalizer.Altered(),
				"unseen", len(unseen))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDB, "input-database", "i", "", "Database to clean (required)")
	cmd.Flags().StringVarP(&outputDB, "output-database", "o", "", "Database to create (required)")
	cmd.Flags().StringVarP(&rulesFile, "rules", "c", "rules/ds9.yaml", "Rule tables to clean with")
	cmd.Flags().StringVarP(&unseenFile, "unseen", "u", "", "File for the unseen-names report (default stdout)")
	_ = cmd.MarkFlagRequired("input-database")
	_ = cmd.MarkFlagRequired("output-database")

	return cmd
}
