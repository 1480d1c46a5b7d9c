// Package langtable builds and joins per-language article-title maps keyed
// by a bridge edition's titles.
//
// For every requested language L, a LanguageMap records which article title
// in L corresponds to each bridge-edition title ("arbor" in the Latin
// edition -> "Baum" in the German one). Merge then joins N such maps into a
// single correspondence table: one row per concept, one column per language,
// with the bridge column last.
//
// The package is purely in-memory and synchronous. All maps must be fully
// built before Merge runs; Merge itself is a pure function of its inputs, so
// identical inputs always produce an identical table.
package langtable

import (
	"fmt"
	"sort"
	"strings"
)

// Absent is the column value for a language that has no title for a row's
// bridge key. It only occurs under JoinOuter: extraction never yields empty
// titles, so an empty field unambiguously means "no correspondence".
const Absent = ""

// LinkPair is one observed correspondence extracted from a single language
// edition: the local article title and the bridge-edition title it links to.
// Both are opaque, case-sensitive Unicode strings.
type LinkPair struct {
	Local  string
	Bridge string
}

// LanguageMap indexes one language's link pairs by bridge title.
//
// Well-formed dumps map each bridge title to exactly one local title per
// language. Real dumps occasionally disagree with themselves; when the same
// bridge title arrives with a different local title, the first-seen value
// wins and Conflicts is incremented. Dump order is document order, so
// first-seen is reproducible across runs on the same dump.
type LanguageMap struct {
	Code      string            // language code, e.g. "ja"
	Titles    map[string]string // bridge title -> local title
	Conflicts int               // dropped conflicting pairs
}

// NewLanguageMap returns an empty map for the given language code.
func NewLanguageMap(code string) *LanguageMap {
	return &LanguageMap{
		Code:   code,
		Titles: make(map[string]string, 1<<16),
	}
}

// Add records one link pair. Pairs with an empty local or bridge title after
// normalization are ignored. Returns true when the pair was inserted, false
// when it was a duplicate, a conflict, or empty.
func (m *LanguageMap) Add(local, bridge string) bool {
	local = CleanTitle(local)
	bridge = NormalizeKey(bridge)
	if local == "" || bridge == "" {
		return false
	}
	if prev, ok := m.Titles[bridge]; ok {
		if prev != local {
			m.Conflicts++
		}
		return false
	}
	m.Titles[bridge] = local
	return true
}

// Len returns the number of distinct bridge titles in the map.
func (m *LanguageMap) Len() int { return len(m.Titles) }

// Build folds a pair sequence into a LanguageMap. It is a convenience over
// NewLanguageMap + Add for callers that already hold the pairs in memory.
func Build(code string, pairs []LinkPair) *LanguageMap {
	m := NewLanguageMap(code)
	for _, p := range pairs {
		m.Add(p.Local, p.Bridge)
	}
	return m
}

// Row maps a language code (including the bridge code) to that language's
// title for one concept.
type Row map[string]string

// Table is the joined correspondence table. Columns lists the requested
// language codes in CLI order with the bridge code last; Rows are sorted
// lexicographically by bridge title so repeated runs are byte-identical.
type Table struct {
	Columns []string
	Bridge  string
	Rows    []Row
}

// Stats summarizes a merge for diagnostics. Candidates is the size of the
// union of bridge titles across all maps; Keys and Conflicts are per
// language; Empty lists languages that contributed no keys at all
// (missing or empty dumps).
type Stats struct {
	Candidates int
	Emitted    int
	Keys       map[string]int
	Conflicts  map[string]int
	Empty      []string
}

// Merge joins the given language maps through their bridge titles.
//
// Under JoinInner only bridge titles present in every map survive; under
// JoinOuter every observed bridge title yields a row, with Absent in the
// columns that lack it. Rows are sorted by bridge title. An empty map is
// not an error here: it degrades to zero keys, which under JoinInner makes
// the intersection empty and surfaces as ErrNoCorrespondence.
func Merge(maps []*LanguageMap, bridge string, policy JoinPolicy) (*Table, *Stats, error) {
	codes := make([]string, 0, len(maps))
	for _, m := range maps {
		codes = append(codes, m.Code)
	}
	if err := ValidateConfig(codes, bridge, policy); err != nil {
		return nil, nil, err
	}

	stats := &Stats{
		Keys:      make(map[string]int, len(maps)),
		Conflicts: make(map[string]int, len(maps)),
	}
	for _, m := range maps {
		stats.Keys[m.Code] = m.Len()
		stats.Conflicts[m.Code] = m.Conflicts
		if m.Len() == 0 {
			stats.Empty = append(stats.Empty, m.Code)
		}
	}

	// Candidate set: union of all bridge titles.
	candidates := make(map[string]struct{}, maps[0].Len())
	for _, m := range maps {
		for key := range m.Titles {
			candidates[key] = struct{}{}
		}
	}
	stats.Candidates = len(candidates)

	keys := make([]string, 0, len(candidates))
	for key := range candidates {
		if policy == JoinInner {
			full := true
			for _, m := range maps {
				if _, ok := m.Titles[key]; !ok {
					full = false
					break
				}
			}
			if !full {
				continue
			}
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if policy == JoinInner && len(keys) == 0 {
		return nil, stats, fmt.Errorf("%w (candidates: %d, empty languages: %s)",
			ErrNoCorrespondence, stats.Candidates, joinOrNone(stats.Empty))
	}

	table := &Table{
		Columns: append(codes, bridge),
		Bridge:  bridge,
		Rows:    make([]Row, 0, len(keys)),
	}
	for _, key := range keys {
		row := make(Row, len(maps)+1)
		row[bridge] = key
		for _, m := range maps {
			if title, ok := m.Titles[key]; ok {
				row[m.Code] = title
			} else {
				row[m.Code] = Absent
			}
		}
		table.Rows = append(table.Rows, row)
	}
	stats.Emitted = len(table.Rows)

	return table, stats, nil
}

func joinOrNone(codes []string) string {
	if len(codes) == 0 {
		return "none"
	}
	return strings.Join(codes, ", ")
}
