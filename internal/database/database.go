// Package database persists the corpus of harvested works as a YAML file.
//
// YAML rather than a real database is deliberate: the corpus for one fandom
// is tens of thousands of records at most, and keeping it as a flat text
// file sorted by work id means every pipeline stage produces output a plain
// diff can review.
package database

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Work is one fan work's metadata as scraped from an archive index page.
// Field names in the serialized form are all lowercase with no separators so
// downstream analysis tools can address them without quoting.
//
// The Relationships field keeps the tags exactly as the archive shows them.
// The exploded pax (participants) and pair variants are derived at parse
// time and are the fields the cleaning stage rewrites; see internal/index.
type Work struct {
	ID     int    `yaml:"id"`
	UserID int    `yaml:"userid"`
	Title  string `yaml:"title"`
	// Anonymous works carry no author.
	Author          string   `yaml:"author,omitempty"`
	Fandoms         []string `yaml:"fandoms"`
	Rating          string   `yaml:"rating"`
	Warnings        []string `yaml:"warnings"`
	Categories      []string `yaml:"categories"`
	Complete        bool     `yaml:"complete"`
	PublicationDate string   `yaml:"publicationdate"`

	Relationships          []string `yaml:"relationships,omitempty"`
	RelationshipsPax       []string `yaml:"relationshipspax,omitempty"`
	RelationshipsPaxAmp    []string `yaml:"relationshipspaxamp,omitempty"`
	RelationshipsPaxSlash  []string `yaml:"relationshipspaxslash,omitempty"`
	RelationshipsPair      []string `yaml:"relationshipspair,omitempty"`
	RelationshipsPairAmp   []string `yaml:"relationshipspairamp,omitempty"`
	RelationshipsPairSlash []string `yaml:"relationshipspairslash,omitempty"`

	Characters []string `yaml:"characters,omitempty"`
	// Canonical cast names for Characters, filled in by the clean stage.
	// Characters itself stays as tagged on the archive.
	CharactersClean []string `yaml:"charactersclean,omitempty"`
	Freeforms       []string `yaml:"freeforms,omitempty"`
	Summary         string   `yaml:"summary,omitempty"`

	// ISO 639 code, mapped from the archive's language label.
	Language  string `yaml:"language"`
	Words     int    `yaml:"words"`
	Comments  int    `yaml:"comments"`
	Kudos     int    `yaml:"kudos"`
	Bookmarks int    `yaml:"bookmarks"`
	Chapter   int    `yaml:"chapter"`
	// Zero when the archive shows "?" (total not yet known).
	Chapters int `yaml:"chapters,omitempty"`
	Hits     int `yaml:"hits"`

	// Provenance stamps.
	Filename  string `yaml:"filename,omitempty"`
	ParseDate string `yaml:"parsedate,omitempty"`
	CleanDate string `yaml:"cleandate,omitempty"`
}

// Load reads a work database from a YAML file.
func Load(path string) ([]Work, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read database: %w", err)
	}

	var works []Work
	if err := yaml.Unmarshal(data, &works); err != nil {
		return nil, fmt.Errorf("failed to parse database %s: %w", path, err)
	}

	return works, nil
}

// Save writes a work database to a YAML file, sorted ascending by work id so
// successive runs over the same corpus diff cleanly.
func Save(path string, works []Work) error {
	sort.Slice(works, func(i, j int) bool {
		return works[i].ID < works[j].ID
	})

	data, err := yaml.Marshal(works)
	if err != nil {
		return fmt.Errorf("failed to marshal database: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write database %s: %w", path, err)
	}

	return nil
}
