// Package export flattens the work database into Parquet and CSV files for
// the analysis tools downstream of this pipeline.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/fanworks-lab/tagharvest/internal/database"
)

// Row is the flattened export schema for one work. Multi-valued tag fields
// stay lists in Parquet; the CSV writer joins them instead.
type Row struct {
	ID                int      `parquet:"id"`
	UserID            int      `parquet:"userid"`
	Title             string   `parquet:"title"`
	Author            string   `parquet:"author"`
	Fandoms           []string `parquet:"fandoms,list"`
	Rating            string   `parquet:"rating"`
	Warnings          []string `parquet:"warnings,list"`
	Categories        []string `parquet:"categories,list"`
	Complete          bool     `parquet:"complete"`
	PublicationDate   string   `parquet:"publicationdate"`
	Relationships     []string `parquet:"relationships,list"`
	RelationshipsPax  []string `parquet:"relationshipspax,list"`
	RelationshipsPair []string `parquet:"relationshipspair,list"`
	Characters        []string `parquet:"characters,list"`
	CharactersClean   []string `parquet:"charactersclean,list"`
	Freeforms         []string `parquet:"freeforms,list"`
	Language          string   `parquet:"language"`
	Words             int      `parquet:"words"`
	Comments          int      `parquet:"comments"`
	Kudos             int      `parquet:"kudos"`
	Bookmarks         int      `parquet:"bookmarks"`
	Chapter           int      `parquet:"chapter"`
	Chapters          int      `parquet:"chapters"`
	Hits              int      `parquet:"hits"`
}

func rowFromWork(w database.Work) Row {
	return Row{
		ID:                w.ID,
		UserID:            w.UserID,
		Title:             w.Title,
		Author:            w.Author,
		Fandoms:           w.Fandoms,
		Rating:            w.Rating,
		Warnings:          w.Warnings,
		Categories:        w.Categories,
		Complete:          w.Complete,
		PublicationDate:   w.PublicationDate,
		Relationships:     w.Relationships,
		RelationshipsPax:  w.RelationshipsPax,
		RelationshipsPair: w.RelationshipsPair,
		Characters:        w.Characters,
		CharactersClean:   w.CharactersClean,
		Freeforms:         w.Freeforms,
		Language:          w.Language,
		Words:             w.Words,
		Comments:          w.Comments,
		Kudos:             w.Kudos,
		Bookmarks:         w.Bookmarks,
		Chapter:           w.Chapter,
		Chapters:          w.Chapters,
		Hits:              w.Hits,
	}
}

// WriteParquet writes the works to a Parquet file.
func WriteParquet(path string, works []database.Work) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}

	rows := make([]Row, 0, len(works))
	for _, w := range works {
		rows = append(rows, rowFromWork(w))
	}

	writer := parquet.NewGenericWriter[Row](f)
	if _, err := writer.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close parquet file: %w", err)
	}
	return nil
}

// ReadParquet reads back an exported Parquet file.
func ReadParquet(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	var rows []Row
	batch := make([]Row, 128)
	for {
		n, err := reader.Read(batch)
		if n > 0 {
			rows = append(rows, batch[:n]...)
		}
		if err != nil {
			break
		}
	}

	return rows, nil
}

var csvHeader = []string{
	"id", "userid", "title", "author", "fandoms", "rating", "warnings",
	"categories", "complete", "publicationdate", "relationships",
	"relationshipspax", "relationshipspair", "characters", "charactersclean",
	"freeforms", "language", "words", "comments", "kudos", "bookmarks",
	"chapter", "chapters", "hits",
}

// WriteCSV writes the works to a CSV file. Multi-valued fields are joined
// with "; " since CSV has no native lists.
func WriteCSV(path string, works []database.Work) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, work := range works {
		record := []string{
			strconv.Itoa(work.ID),
			strconv.Itoa(work.UserID),
			work.Title,
			work.Author,
			strings.Join(work.Fandoms, "; "),
			work.Rating,
			strings.Join(work.Warnings, "; "),
			strings.Join(work.Categories, "; "),
			strconv.FormatBool(work.Complete),
			work.PublicationDate,
			strings.Join(work.Relationships, "; "),
			strings.Join(work.RelationshipsPax, "; "),
			strings.Join(work.RelationshipsPair, "; "),
			strings.Join(work.Characters, "; "),
			strings.Join(work.CharactersClean, "; "),
			strings.Join(work.Freeforms, "; "),
			work.Language,
			strconv.Itoa(work.Words),
			strconv.Itoa(work.Comments),
			strconv.Itoa(work.Kudos),
			strconv.Itoa(work.Bookmarks),
			strconv.Itoa(work.Chapter),
			strconv.Itoa(work.Chapters),
			strconv.Itoa(work.Hits),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
