// Package suggest drafts synonym-table additions for the unseen names a
// clean run reports.
//
// The draft comes from an LLM and is advisory only: the output is a YAML
// snippet printed for the curator to review, edit, and paste into the rules
// file by hand. Nothing here ever writes to the rule tables.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/fanworks-lab/tagharvest/internal/gemini"
	"github.com/fanworks-lab/tagharvest/internal/ollama"
	"github.com/fanworks-lab/tagharvest/internal/openai"
	"github.com/fanworks-lab/tagharvest/internal/providers"
)

// FromName returns the provider implementation for a name.
func FromName(name string) (providers.Provider, error) {
	switch strings.ToLower(name) {
	case "gemini":
		return gemini.New(), nil
	case "ollama":
		return ollama.New(), nil
	case "openai":
		return openai.New(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: gemini, ollama, openai)", name)
	}
}

// Suggester asks one provider to classify unseen names against a cast list.
type Suggester struct {
	provider    providers.Provider
	model       string
	temperature float64
}

// New creates a suggester for one provider and model.
func New(provider providers.Provider, model string) *Suggester {
	return &Suggester{
		provider: provider,
		model:    model,
		// Low temperature: this is classification, not creative writing.
		temperature: 0.1,
	}
}

// BuildPrompt renders the classification request sent to the provider.
func BuildPrompt(unseen, cast []string) string {
	var sb strings.Builder

	sb.WriteString("You are helping curate a table that maps fan-written character tags ")
	sb.WriteString("onto a fixed list of canonical character names.\n\n")

	sb.WriteString("Canonical names:\n")
	for _, name := range cast {
		sb.WriteString("- ")
		sb.WriteString(name)
		sb.WriteString("\n")
	}

	sb.WriteString("\nUnrecognized tags:\n")
	for _, name := range unseen {
		sb.WriteString("- ")
		sb.WriteString(name)
		sb.WriteString("\n")
	}

	sb.WriteString("\nFor each unrecognized tag, propose one YAML map entry of the form\n")
	sb.WriteString("  \"tag\": \"Canonical Name\"\n")
	sb.WriteString("mapping it to the single best canonical name, or to \"non-cast\" if it is ")
	sb.WriteString("not one of the canonical characters. Use only canonical names from the ")
	sb.WriteString("list above, spelled exactly. If you are unsure about a tag, map it to ")
	sb.WriteString("\"non-cast\" and add a YAML comment on that line saying why.\n")
	sb.WriteString("Output only the YAML map entries, one per line, no surrounding text.\n")

	return sb.String()
}

// Suggest returns a draft YAML synonym snippet covering the unseen names.
func (s *Suggester) Suggest(ctx context.Context, unseen, cast []string) (string, error) {
	if len(unseen) == 0 {
		return "", fmt.Errorf("no unseen names to classify")
	}

	resp, err := s.provider.Complete(ctx, providers.Config{
		Model:       s.model,
		Temperature: s.temperature,
		Prompt:      BuildPrompt(unseen, cast),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get suggestions: %w", err)
	}

	return strings.TrimSpace(resp), nil
}
