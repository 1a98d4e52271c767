package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/fanworks-lab/tagharvest/internal/database"
)

func sampleWorks() []database.Work {
	return []database.Work{
		{
			ID:                39026430,
			UserID:            8795776,
			Title:             "Gods in Ruins",
			Author:            "Arati_Mhevet",
			Fandoms:           []string{"Star Trek: Deep Space Nine"},
			Rating:            "General Audiences",
			Warnings:          []string{"No Archive Warnings Apply"},
			Categories:        []string{"Gen"},
			Complete:          true,
			PublicationDate:   "17 May 2022",
			Relationships:     []string{"Elim Garak & Martok"},
			RelationshipsPax:  []string{"Elim Garak", "Martok"},
			RelationshipsPair: []string{"Elim Garak & Martok"},
			Characters:        []string{"Elim Garak", "Martok"},
			CharactersClean:   []string{"Elim Garak", "Martok"},
			Language:          "en",
			Words:             1200,
			Kudos:             87,
			Chapter:           2,
			Chapters:          2,
			Hits:              950,
		},
		{
			ID:       39340149,
			UserID:   1320663,
			Title:    "How they all Find Out",
			Language: "en",
			Words:    5243,
			Chapter:  1,
		},
	}
}

func TestParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "works.parquet")

	if err := WriteParquet(path, sampleWorks()); err != nil {
		t.Fatalf("WriteParquet() error = %v", err)
	}

	rows, err := ReadParquet(path)
	if err != nil {
		t.Fatalf("ReadParquet() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ReadParquet() returned %d rows, want 2", len(rows))
	}

	r := rows[0]
	if r.ID != 39026430 {
		t.Errorf("ID = %d", r.ID)
	}
	if r.Title != "Gods in Ruins" {
		t.Errorf("Title = %q", r.Title)
	}
	if !r.Complete {
		t.Error("Complete = false, want true")
	}
	if !reflect.DeepEqual(r.CharactersClean, []string{"Elim Garak", "Martok"}) {
		t.Errorf("CharactersClean = %v", r.CharactersClean)
	}
	if r.Words != 1200 {
		t.Errorf("Words = %d", r.Words)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "works.csv")

	if err := WriteCSV(path, sampleWorks()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("CSV has %d rows, want header + 2", len(records))
	}
	if !reflect.DeepEqual(records[0], csvHeader) {
		t.Errorf("header = %v", records[0])
	}

	row := records[1]
	if row[0] != "39026430" {
		t.Errorf("id column = %q", row[0])
	}
	if row[2] != "Gods in Ruins" {
		t.Errorf("title column = %q", row[2])
	}
	if row[13] != "Elim Garak; Martok" {
		t.Errorf("characters column = %q", row[13])
	}
	if row[8] != "true" {
		t.Errorf("complete column = %q", row[8])
	}
}
