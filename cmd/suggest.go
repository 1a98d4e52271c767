package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fanworks-lab/tagharvest/internal/cast"
	"github.com/fanworks-lab/tagharvest/internal/suggest"
)

func newSuggestCmd() *cobra.Command {
	var (
		unseenFile string
		rulesFile  string
		provider   string
		model      string
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Draft synonym-table entries for unseen names with an LLM",
		Long: `Suggest sends the unseen-names report from a clean run, together with the
canonical cast list, to an LLM and prints a draft YAML synonym snippet.

The draft is advisory only. Review it, fix it, and paste the entries you
agree with into the rules file yourself; nothing is ever applied
automatically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(unseenFile)
			if err != nil {
				return fmt.Errorf("failed to read unseen report: %w", err)
			}
			var unseen []string
			for _, line := range strings.Split(string(data), "\n") {
				if line = strings.TrimSpace(line); line != "" {
					unseen = append(unseen, line)
				}
			}

			rules, err := cast.LoadRules(rulesFile)
			if err != nil {
				return err
			}

			p, err := suggest.FromName(provider)
			if err != nil {
				return err
			}

			snippet, err := suggest.New(p, model).Suggest(cmd.Context(), unseen, rules.Cast)
			if err != nil {
				return err
			}

			fmt.Println(snippet)
			return nil
		},
	}

	cmd.Flags().StringVarP(&unseenFile, "unseen", "u", "", "Unseen-names report from a clean run (required)")
	cmd.Flags().StringVarP(&rulesFile, "rules", "c", "rules/ds9.yaml", "Rule tables holding the cast list")
	cmd.Flags().StringVarP(&provider, "provider", "p", "ollama", "LLM provider (gemini, ollama, openai)")
	cmd.Flags().StringVarP(&model, "model", "m", "llama3.2", "Model name for the provider")
	_ = cmd.MarkFlagRequired("unseen")

	return cmd
}
