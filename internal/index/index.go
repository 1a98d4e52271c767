// Package index parses saved archive works-index pages into work records.
package index

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fanworks-lab/tagharvest/internal/database"
)

// Archive language labels to ISO 639 codes. Some labels are right-to-left,
// some are complex scripts, and plenty of analysis tools cope with neither.
// ISO 639-1 where possible, then 639-2, then 639-3, with dialect extensions
// in lowercase and script extensions in Titlecase.
var langToISO = map[string]string{
	"한국어":                  "ko",
	"Čeština":              "cs",
	"Cymraeg":              "cy",
	"Deutsch":              "de",
	"English":              "en",
	"Español":              "es",
	"Français":             "fr",
	"Italiano":             "it",
	"Nederlands":           "nl",
	"Polski":               "pl",
	"Português brasileiro": "pt-br",
	"tlhIngan-Hol":         "tlh-Latn", // Klingon in Latin script
	"Русский":              "ru",
	"עברית":                "he",
	"中文-普通话 國語":            "zh-Hans",
	"日本語":                  "ja",
}

// LanguageCode maps an archive language label to its ISO 639 code. Labels
// missing from the table pass through unchanged so a new language on the
// archive degrades the corpus gracefully instead of aborting a parse run.
func LanguageCode(label string) string {
	if code, ok := langToISO[label]; ok {
		return code
	}
	return label
}

// ParseFile parses one saved index page into work records.
func ParseFile(path string) ([]database.Work, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index page: %w", err)
	}
	defer f.Close()

	works, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index page %s: %w", path, err)
	}
	return works, nil
}

// Parse extracts every work blurb from an archive works-index page. The list
// of works sits inside <ol class="work">, one <li class="work"> per work.
func Parse(r io.Reader) ([]database.Work, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var works []database.Work
	var parseErr error
	doc.Find("ol.work li.work").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		work, err := parseWork(s)
		if err != nil {
			parseErr = err
			return false
		}
		works = append(works, work)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return works, nil
}

// parseWork extracts one work's metadata from its <li class="work"> blurb.
func parseWork(s *goquery.Selection) (database.Work, error) {
	var w database.Work

	// Work and user ids ride in the class attribute:
	// <li class="work blurb group work-39340149 user-1320663">
	for _, c := range strings.Fields(s.AttrOr("class", "")) {
		if id, ok := strings.CutPrefix(c, "work-"); ok {
			n, err := strconv.Atoi(id)
			if err != nil {
				return w, fmt.Errorf("bad work id %q: %w", id, err)
			}
			w.ID = n
		} else if id, ok := strings.CutPrefix(c, "user-"); ok {
			n, err := strconv.Atoi(id)
			if err != nil {
				return w, fmt.Errorf("bad user id %q: %w", id, err)
			}
			w.UserID = n
		}
	}
	if w.ID == 0 {
		return w, fmt.Errorf("work blurb carries no work id in class %q", s.AttrOr("class", ""))
	}

	// The heading holds the title link and, except for anonymous works, the
	// author link.
	anchors := s.Find("h4.heading a")
	w.Title = strings.TrimSpace(anchors.Eq(0).Text())
	if anchors.Length() > 1 {
		w.Author = strings.TrimSpace(anchors.Eq(1).Text())
	}

	s.Find("h5.fandoms a").Each(func(_ int, a *goquery.Selection) {
		w.Fandoms = append(w.Fandoms, strings.TrimSpace(a.Text()))
	})
	sort.Strings(w.Fandoms)

	w.Rating = strings.TrimSpace(s.Find("span.rating span.text").Text())

	// Multiple warnings and categories are separated by commas, not by
	// markup.
	w.Warnings = splitCommaList(s.Find("span.warnings span.text").Text())
	w.Categories = splitCommaList(s.Find("span.category span.text").Text())

	w.Complete = strings.TrimSpace(s.Find("span.iswip span.text").Text()) == "Complete Work"
	w.PublicationDate = strings.TrimSpace(s.Find("p.datetime").Text())

	s.Find("li.relationships a.tag").Each(func(_ int, a *goquery.Selection) {
		w.Relationships = append(w.Relationships, strings.TrimSpace(a.Text()))
	})
	sort.Strings(w.Relationships)
	explodeRelationships(&w)

	s.Find("li.characters a.tag").Each(func(_ int, a *goquery.Selection) {
		w.Characters = append(w.Characters, strings.TrimSpace(a.Text()))
	})
	sort.Strings(w.Characters)

	s.Find("li.freeforms a.tag").Each(func(_ int, a *goquery.Selection) {
		w.Freeforms = append(w.Freeforms, strings.TrimSpace(a.Text()))
	})
	sort.Strings(w.Freeforms)

	w.Summary = strings.TrimSpace(s.Find("blockquote.summary p").First().Text())

	w.Language = LanguageCode(strings.TrimSpace(s.Find("dd.language").Text()))

	w.Words = parseCount(s.Find("dd.words").Text())
	w.Comments = parseCount(s.Find("dd.comments a").Text())
	w.Kudos = parseCount(s.Find("dd.kudos a").Text())
	w.Bookmarks = parseCount(s.Find("dd.bookmarks a").Text())
	w.Hits = parseCount(s.Find("dd.hits").Text())

	// Chapters render as "1/2" or "1/?" with the current chapter count
	// linked, so the text needs squashing before the split. "?" means the
	// total is not yet known and leaves Chapters at zero.
	chapters := strings.Join(strings.Fields(s.Find("dd.chapters").Text()), "")
	if cur, total, ok := strings.Cut(chapters, "/"); ok {
		w.Chapter = parseCount(cur)
		if total != "?" {
			w.Chapters = parseCount(total)
		}
	}

	return w, nil
}

// splitCommaList splits comma-separated tag text into a sorted list.
func splitCommaList(text string) []string {
	var out []string
	for _, s := range strings.Split(text, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// parseCount reads an integer stat that may carry thousands separators.
// Absent or empty stats count as zero.
func parseCount(text string) int {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return 0
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0
	}
	return n
}

// explodeRelationships disassembles relationship tags into flat variants
// that simple analysis tools can handle:
//
//	relationshipspax        every participant across all relationships
//	relationshipspaxamp     participants in "&" relationships only
//	relationshipspaxslash   participants in "/" relationships only
//	relationshipspair       each pairing with its sides in sorted order
//	relationshipspairamp    sorted pairings joined with " & "
//	relationshipspairslash  sorted pairings joined with "/"
//
// A "/" pairing and a "&" joint mention mean different things on the archive
// and are never conflated. The first operator found decides the style.
func explodeRelationships(w *database.Work) {
	pax := make(map[string]struct{})
	paxAmp := make(map[string]struct{})
	paxSlash := make(map[string]struct{})
	pairAll := make(map[string]struct{})
	pairAmp := make(map[string]struct{})
	pairSlash := make(map[string]struct{})

	for _, r := range w.Relationships {
		r = strings.ReplaceAll(r, "(implied)", "")
		r = strings.ReplaceAll(r, "(unrequited)", "")

		var style string
		switch {
		case strings.Contains(r, "&"):
			style = "amp"
		case strings.Contains(r, "/"):
			style = "slash"
		default:
			continue
		}

		var pair []string
		for _, p := range strings.FieldsFunc(r, func(c rune) bool {
			return c == '/' || c == '&'
		}) {
			if p = strings.TrimSpace(p); p != "" {
				pair = append(pair, p)
			}
		}
		if len(pair) < 2 {
			continue
		}
		sort.Strings(pair)

		for _, p := range pair {
			pax[p] = struct{}{}
			if style == "amp" {
				paxAmp[p] = struct{}{}
			} else {
				paxSlash[p] = struct{}{}
			}
		}
		if style == "amp" {
			joined := strings.Join(pair, " & ")
			pairAmp[joined] = struct{}{}
			pairAll[joined] = struct{}{}
		} else {
			joined := strings.Join(pair, "/")
			pairSlash[joined] = struct{}{}
			pairAll[joined] = struct{}{}
		}
	}

	w.RelationshipsPax = sortedOrNil(pax)
	w.RelationshipsPaxAmp = sortedOrNil(paxAmp)
	w.RelationshipsPaxSlash = sortedOrNil(paxSlash)
	w.RelationshipsPair = sortedOrNil(pairAll)
	w.RelationshipsPairAmp = sortedOrNil(pairAmp)
	w.RelationshipsPairSlash = sortedOrNil(pairSlash)
}

func sortedOrNil(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
