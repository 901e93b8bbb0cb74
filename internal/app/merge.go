package app

import (
	"fmt"
	"strings"

	"propharvest/internal/domain"
)

// Merge concatenates per-source tables into one dataset and drops duplicate
// listings. Empty or all-nil tables are discarded first; surviving tables keep
// their internal row order and interleave only at table granularity. The three
// dedup-key columns always exist in the output, even when no input carried
// them. Duplicates share an exact (street_address, city, unit) triple; the
// first-encountered row wins.
func Merge(tables ...domain.Table) domain.Table {
	kept := tables[:0:0]
	for _, t := range tables {
		if !t.Empty() {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return domain.Table{Columns: domain.DedupColumns()}
	}

	// Column union, first-seen order, dedup columns guaranteed.
	var cols []string
	seen := map[string]int{}
	addCol := func(c string) {
		if _, ok := seen[c]; !ok {
			seen[c] = len(cols)
			cols = append(cols, c)
		}
	}
	for _, t := range kept {
		for _, c := range t.Columns {
			addCol(c)
		}
	}
	for _, c := range domain.DedupColumns() {
		addCol(c)
	}

	out := domain.Table{Columns: cols}
	keys := map[string]struct{}{}
	for _, t := range kept {
		idx := make([]int, len(t.Columns))
		for i, c := range t.Columns {
			idx[i] = seen[c]
		}
		for _, row := range t.Rows {
			merged := make([]any, len(cols))
			for i, cell := range row {
				merged[idx[i]] = cell
			}
			key := dedupKey(merged, seen)
			if _, dup := keys[key]; dup {
				continue
			}
			keys[key] = struct{}{}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}

// dedupKey renders the address triple; nil cells get a marker distinct from
// any real value so (nil) and ("") never collide.
func dedupKey(row []any, seen map[string]int) string {
	parts := make([]string, 0, 3)
	for _, c := range domain.DedupColumns() {
		cell := row[seen[c]]
		if cell == nil {
			parts = append(parts, "\x00")
			continue
		}
		parts = append(parts, fmt.Sprintf("%v", cell))
	}
	return strings.Join(parts, "\x1f")
}
