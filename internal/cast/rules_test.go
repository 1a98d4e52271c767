package cast

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRules(t *testing.T) {
	content := `overrides:
  - pattern: "Original Character"
    name: "non-cast"
deletions:
  - "Mirror "
synonyms:
  "Dukat": "Skrain Dukat"
cast:
  - "Skrain Dukat"
  - "Kira Nerys"
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}

	if len(rules.Overrides) != 1 || rules.Overrides[0].Pattern != "Original Character" || rules.Overrides[0].Name != NonCast {
		t.Errorf("unexpected overrides: %+v", rules.Overrides)
	}
	if len(rules.Deletions) != 1 || rules.Deletions[0] != "Mirror " {
		t.Errorf("unexpected deletions: %v", rules.Deletions)
	}
	if rules.Synonyms["Dukat"] != "Skrain Dukat" {
		t.Errorf("unexpected synonyms: %v", rules.Synonyms)
	}
	if len(rules.Cast) != 2 {
		t.Errorf("unexpected cast: %v", rules.Cast)
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRulesInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("cast: {not a list"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
