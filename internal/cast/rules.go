package cast

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NonCast is the sentinel canonical value for names that are recognized as
// not belonging to the tracked cast. It is a valid output in its own right,
// distinct from "we failed to recognize this name" (those land in the unseen
// set for operator review).
const NonCast = "non-cast"

// Override replaces an entire raw name when Pattern occurs anywhere within
// it. Overrides are checked before every other rule, in table order, first
// match wins. They exist for fully ambiguous tokens ("Original Character"
// markers and the like) that must never be handed to the deletion rules.
type Override struct {
	Pattern string `yaml:"pattern"`
	Name    string `yaml:"name"`
}

// Rules holds the four tables that drive name normalization for one fandom:
//
//   - Overrides: substring patterns that replace the whole name outright.
//   - Deletions: literal substrings removed from names wherever they occur.
//     Applied in table order, each on the output of the previous, followed
//     by a whitespace trim. Deletions are literal substrings, never
//     patterns: the tables are curator-maintained data.
//   - Synonyms: exact post-deletion string to canonical name.
//   - Cast: the reference list of canonical names.
//
// The tables are data owned by the study's domain curator. Known
// transcription warts in the shipped tables (concatenated deletion entries,
// synonyms pointing at misspelled targets) are theirs to fix, not ours.
type Rules struct {
	Overrides []Override        `yaml:"overrides"`
	Deletions []string          `yaml:"deletions"`
	Synonyms  map[string]string `yaml:"synonyms"`
	Cast      []string          `yaml:"cast"`
}

// LoadRules reads a rule-table file. See rules/ds9.yaml for the format.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	return rules, nil
}
