// Package cast normalizes free-text character and relationship names from
// archive tags onto a curated canonical cast list.
//
// Tag text is user-authored: the same character arrives as misspellings,
// nicknames, annotated variants ("Julian Bashir (mentioned)") and alternate
// titles ("Dr Bashir"). For the corpus statistics to mean anything, all of
// those have to collapse onto a single spelling. The engine applies three
// rule stages in strict order (override, deletion, synonym), then checks the
// cast list; anything still unrecognized becomes the NonCast sentinel and is
// remembered for operator review, so the rule tables can grow over time.
//
// Every operation is total: there is no input string, however malformed, for
// which normalization fails. The only failure signal is observational, the
// growth of the unseen set during a run.
package cast

import (
	"sort"
	"strings"
	"sync"
)

// Relationship operators. A "/" pairing and a "&" joint mention carry
// different meanings on the archive and are never conflated: only the order
// of the two names is canonicalized, never the operator.
const (
	opAmp   = "&"
	opSlash = "/"
)

// Normalizer maps raw tag names onto the canonical cast. The rule tables are
// read-only after construction and safe to share; the unseen accumulator is
// guarded so callers may normalize from multiple goroutines.
type Normalizer struct {
	rules Rules
	cast  map[string]struct{}

	mu      sync.Mutex
	unseen  map[string]struct{}
	altered int
}

// NewNormalizer builds an engine around one set of rule tables. The unseen
// set starts empty and lives exactly as long as the engine, so separate runs
// (and separate tests) never leak state into each other.
func NewNormalizer(rules Rules) *Normalizer {
	castSet := make(map[string]struct{}, len(rules.Cast))
	for _, name := range rules.Cast {
		castSet[name] = struct{}{}
	}

	return &Normalizer{
		rules:  rules,
		cast:   castSet,
		unseen: make(map[string]struct{}),
	}
}

// NormalizeName maps one raw name to a cast member or NonCast. The stages
// run in strict order, each on the output of the one before:
//
//  1. override patterns (substring match replaces the whole name)
//  2. deletions (every occurrence of every listed substring, then trim)
//  3. synonym lookup (exact match on the cleaned string)
//  4. cast check (miss records the cleaned string as unseen, yields NonCast)
func (n *Normalizer) NormalizeName(raw string) string {
	name := n.normalize(raw)
	if name != raw {
		n.mu.Lock()
		n.altered++
		n.mu.Unlock()
	}
	return name
}

func (n *Normalizer) normalize(raw string) string {
	// Already-normalized output stays put.
	if raw == NonCast {
		return NonCast
	}

	for _, o := range n.rules.Overrides {
		if strings.Contains(raw, o.Pattern) {
			return o.Name
		}
	}

	name := raw
	for _, d := range n.rules.Deletions {
		name = strings.TrimSpace(strings.ReplaceAll(name, d, ""))
	}

	if canonical, ok := n.rules.Synonyms[name]; ok {
		name = canonical
	}

	// A synonym ruling of "non-cast" is a recognition, not a miss. Keep the
	// sentinel out of the unseen set so that set stays purely names awaiting
	// a curator decision.
	if name == NonCast {
		return NonCast
	}

	if _, ok := n.cast[name]; !ok {
		n.mu.Lock()
		n.unseen[name] = struct{}{}
		n.mu.Unlock()
		name = NonCast
	}

	return name
}

// NormalizeNames normalizes a collection of raw names, collapsing variants
// that map to the same canonical value and returning the survivors in
// lexicographic order. The fixed order makes "the cast of a work" directly
// comparable across works regardless of tag order or duplicate mentions.
func (n *Normalizer) NormalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		canonical := n.NormalizeName(name)
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	sort.Strings(out)
	return out
}

// NormalizePair canonicalizes a relationship tag of the form "A & B" or
// "A/B": each side is normalized independently and the sides are re-sorted
// into lexicographic order, so "B/A" and "A/B" become the same pairing and
// are not double-counted. The operator found in the input is always the
// operator used in the output.
//
// Tags with neither operator are passed through with only a whitespace trim.
// Whether that is the right treatment or a coverage gap is an open question
// for the study owner; do not "fix" it here without a ruling.
func (n *Normalizer) NormalizePair(pair string) string {
	var op string
	switch {
	case strings.Contains(pair, opAmp):
		op = opAmp
	case strings.Contains(pair, opSlash):
		op = opSlash
	default:
		return strings.TrimSpace(pair)
	}

	parts := strings.FieldsFunc(pair, func(r rune) bool {
		return r == '&' || r == '/'
	})

	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		names = append(names, n.NormalizeName(p))
	}
	sort.Strings(names)

	if op == opAmp {
		return strings.Join(names, " & ")
	}
	return strings.Join(names, opSlash)
}

// NormalizePairs applies NormalizePair to a collection with the same
// dedup-and-sort contract as NormalizeNames.
func (n *Normalizer) NormalizePairs(pairs []string) []string {
	seen := make(map[string]struct{}, len(pairs))
	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		canonical := n.NormalizePair(pair)
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	sort.Strings(out)
	return out
}

// Unseen returns a sorted snapshot of every cleaned name that matched no
// rule and is absent from the cast list. Reading it does not reset it; the
// set only grows, and only a new engine starts empty. The intended consumer
// is a human deciding which table to extend.
func (n *Normalizer) Unseen() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]string, 0, len(n.unseen))
	for name := range n.unseen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Altered reports how many normalizations changed their input. Treating
// every change as potentially wrong gives an upper bound on the bias the
// cleaning step can introduce into the statistics.
func (n *Normalizer) Altered() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.altered
}
