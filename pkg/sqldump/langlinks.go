package sqldump

import (
	"fmt"
	"io"
)

// Extracting one language's link pairs takes two passes over two dumps:
//
//  1. langlinks: rows (ll_from, ll_lang, ll_title). Rows whose ll_lang is
//     the bridge code give page_id -> bridge title.
//  2. page: rows (page_id, page_namespace, page_title, ...). Article-space
//     rows (namespace 0) whose page_id appeared in pass 1 yield one
//     (local title, bridge title) pair.
//
// The langlinks table stores bridge titles with spaces, the page table
// stores local titles with underscores; the consumer owns normalization.

// articleNamespace is MediaWiki's main (article) namespace.
const articleNamespace = "0"

// ExtractStats describes one extraction run.
type ExtractStats struct {
	LangLinks ScanStats
	Pages     ScanStats
	Linked    int // page ids carrying a bridge-language link
	Pairs     int // emitted (local, bridge) pairs
}

// Extractor pulls (local, bridge) title pairs for one language edition.
type Extractor struct {
	// Bridge is the language code to select in ll_lang.
	Bridge string

	// Progress, when set, receives scan progress per phase
	// ("langlinks" or "page").
	Progress func(phase string, lines, tuples int)
}

// Extract scans the langlinks dump, then the page dump, and calls emit for
// every pair found. Pair order is dump (document) order, which downstream
// conflict resolution relies on.
func (e *Extractor) Extract(langlinks, pages io.Reader, emit func(local, bridge string) error) (*ExtractStats, error) {
	stats := &ExtractStats{}

	pageToBridge := make(map[string]string, 1<<16)

	ll := &InsertScanner{}
	if e.Progress != nil {
		ll.Progress = func(lines, tuples int) { e.Progress("langlinks", lines, tuples) }
	}
	err := ll.Scan(langlinks, func(values []string) error {
		if len(values) < 3 {
			return nil
		}
		if values[1] != e.Bridge || values[2] == "" {
			return nil
		}
		// ll_from may repeat when a page links the same edition twice;
		// keep the first occurrence, matching document order.
		if _, ok := pageToBridge[values[0]]; !ok {
			pageToBridge[values[0]] = values[2]
		}
		return nil
	})
	stats.LangLinks = ll.Stats
	if err != nil {
		return stats, fmt.Errorf("scan langlinks: %w", err)
	}
	stats.Linked = len(pageToBridge)

	if stats.Linked == 0 {
		// Nothing to join against; skip the page scan entirely.
		return stats, nil
	}

	pg := &InsertScanner{}
	if e.Progress != nil {
		pg.Progress = func(lines, tuples int) { e.Progress("page", lines, tuples) }
	}
	err = pg.Scan(pages, func(values []string) error {
		if len(values) < 3 {
			return nil
		}
		if values[1] != articleNamespace {
			return nil
		}
		bridge, ok := pageToBridge[values[0]]
		if !ok {
			return nil
		}
		stats.Pairs++
		return emit(values[2], bridge)
	})
	stats.Pages = pg.Stats
	if err != nil {
		return stats, fmt.Errorf("scan page: %w", err)
	}

	return stats, nil
}
