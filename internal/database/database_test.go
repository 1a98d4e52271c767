package database

import (
	"path/filepath"
	"testing"
)

func sampleWorks() []Work {
	return []Work{
		{
			ID:              39340149,
			UserID:          1320663,
			Title:           "How they all Find Out",
			Author:          "lovemelizards (tomfics)",
			Fandoms:         []string{"Star Trek: Deep Space Nine"},
			Rating:          "General Audiences",
			Warnings:        []string{"No Archive Warnings Apply"},
			Categories:      []string{"M/M"},
			Complete:        true,
			PublicationDate: "17 May 2022",
			Relationships:   []string{"Julian Bashir/Elim Garak"},
			Characters:      []string{"Elim Garak", "Julian Bashir"},
			Language:        "en",
			Words:           5243,
			Kudos:           120,
			Chapter:         1,
			Chapters:        1,
			Hits:            1893,
		},
		{
			ID:         39026430,
			UserID:     8795776,
			Title:      "Gods in Ruins",
			Author:     "Arati_Mhevet",
			Fandoms:    []string{"Star Trek: Deep Space Nine"},
			Rating:     "General Audiences",
			Warnings:   []string{"No Archive Warnings Apply"},
			Categories: []string{"Gen"},
			Complete:   true,
			Language:   "en",
			Words:      1200,
			Chapter:    2,
			Chapters:   2,
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "works.yaml")

	if err := Save(path, sampleWorks()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	works, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(works) != 2 {
		t.Fatalf("Load() returned %d works, want 2", len(works))
	}

	// Save sorts ascending by work id.
	if works[0].ID != 39026430 || works[1].ID != 39340149 {
		t.Errorf("works out of order: %d, %d", works[0].ID, works[1].ID)
	}

	w := works[1]
	if w.Title != "How they all Find Out" {
		t.Errorf("Title = %q", w.Title)
	}
	if w.Author != "lovemelizards (tomfics)" {
		t.Errorf("Author = %q", w.Author)
	}
	if !w.Complete {
		t.Error("Complete = false, want true")
	}
	if w.Words != 5243 {
		t.Errorf("Words = %d", w.Words)
	}
	if len(w.Relationships) != 1 || w.Relationships[0] != "Julian Bashir/Elim Garak" {
		t.Errorf("Relationships = %v", w.Relationships)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAnonymousWorkOmitsAuthor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "works.yaml")

	works := []Work{{ID: 1, Title: "Untitled", Language: "en"}}
	if err := Save(path, works); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded[0].Author != "" {
		t.Errorf("Author = %q, want empty", loaded[0].Author)
	}
}
