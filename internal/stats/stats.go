// Package stats aggregates corpus-level figures from the work database:
// who appears, who is paired with whom, and how the engagement counts are
// distributed.
package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fanworks-lab/tagharvest/internal/database"
)

// Freq is one row of a frequency table.
type Freq struct {
	Name  string
	Count int
}

// CountStats summarizes the distribution of one per-work counter.
type CountStats struct {
	Min    int
	Max    int
	Mean   float64
	Median float64
}

// Report holds every aggregate the stats command prints.
type Report struct {
	Works    int
	Complete int

	Languages  []Freq
	Characters []Freq
	Pairings   []Freq

	Words CountStats
	Kudos CountStats
	Hits  CountStats
}

// Compute builds a report over the whole database. Character frequencies
// come from the cleaned names when the clean stage has run, falling back to
// the raw archive tags so the command still works on an uncleaned corpus.
func Compute(works []database.Work) *Report {
	r := &Report{Works: len(works)}

	languages := make(map[string]int)
	characters := make(map[string]int)
	pairings := make(map[string]int)

	words := make([]int, 0, len(works))
	kudos := make([]int, 0, len(works))
	hits := make([]int, 0, len(works))

	for _, w := range works {
		if w.Complete {
			r.Complete++
		}
		if w.Language != "" {
			languages[w.Language]++
		}

		names := w.CharactersClean
		if names == nil {
			names = w.Characters
		}
		for _, name := range names {
			characters[name]++
		}
		for _, pair := range w.RelationshipsPair {
			pairings[pair]++
		}

		words = append(words, w.Words)
		kudos = append(kudos, w.Kudos)
		hits = append(hits, w.Hits)
	}

	r.Languages = freqTable(languages)
	r.Characters = freqTable(characters)
	r.Pairings = freqTable(pairings)

	r.Words = countStats(words)
	r.Kudos = countStats(kudos)
	r.Hits = countStats(hits)

	return r
}

// freqTable flattens a counter into rows sorted by descending count, then
// name, so equal counts print in a stable order.
func freqTable(counts map[string]int) []Freq {
	table := make([]Freq, 0, len(counts))
	for name, count := range counts {
		table = append(table, Freq{Name: name, Count: count})
	}
	sort.Slice(table, func(i, j int) bool {
		if table[i].Count != table[j].Count {
			return table[i].Count > table[j].Count
		}
		return table[i].Name < table[j].Name
	})
	return table
}

func countStats(values []int) CountStats {
	if len(values) == 0 {
		return CountStats{}
	}

	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	sum := 0
	for _, v := range sorted {
		sum += v
	}

	mid := len(sorted) / 2
	median := float64(sorted[mid])
	if len(sorted)%2 == 0 {
		median = float64(sorted[mid-1]+sorted[mid]) / 2
	}

	return CountStats{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   float64(sum) / float64(len(sorted)),
		Median: median,
	}
}

// WriteText prints the report. The frequency tables are truncated to topN
// rows each; topN <= 0 prints everything.
func (r *Report) WriteText(w io.Writer, topN int) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "CORPUS SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Works: %d\n", r.Works)
	fmt.Fprintf(w, "Complete: %d\n", r.Complete)
	fmt.Fprintln(w)

	printFreqTable(w, "LANGUAGES", r.Languages, topN)
	printFreqTable(w, "CHARACTERS", r.Characters, topN)
	printFreqTable(w, "PAIRINGS", r.Pairings, topN)

	fmt.Fprintln(w, "COUNTS")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	printCountStats(w, "Words", r.Words)
	printCountStats(w, "Kudos", r.Kudos)
	printCountStats(w, "Hits", r.Hits)
}

func printFreqTable(w io.Writer, title string, table []Freq, topN int) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for i, row := range table {
		if topN > 0 && i >= topN {
			fmt.Fprintf(w, "  ... and %d more\n", len(table)-topN)
			break
		}
		fmt.Fprintf(w, "  %6d  %s\n", row.Count, row.Name)
	}
	fmt.Fprintln(w)
}

func printCountStats(w io.Writer, name string, s CountStats) {
	fmt.Fprintf(w, "  %-6s min %d, median %.1f, mean %.1f, max %d\n",
		name, s.Min, s.Median, s.Mean, s.Max)
}
