// Package sortutil implements the multi-key BY comparator shared by PROC
// SORT and DATA-step MERGE BY (spec.md §4.6.3/§4.6.4).
package sortutil

import (
	"sort"
	"strings"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
)

// CompareCells orders two cells per spec §4.6.4: numeric-numeric compares by
// value, character-character byte-lexicographically, and a kind mismatch
// always orders numeric before string.
func CompareCells(a, b dataset.Cell) int {
	if a.Kind == dataset.Numeric && b.Kind == dataset.Numeric {
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		default:
			return 0
		}
	}
	if a.Kind == dataset.Character && b.Kind == dataset.Character {
		return strings.Compare(a.Str, b.Str)
	}
	if a.Kind == dataset.Numeric {
		return -1
	}
	return 1
}

// KeyIndexes resolves each BY key's name to a catalog column index.
func KeyIndexes(ds *dataset.Dataset, keys []ast.ByKey) []int {
	idxs := make([]int, len(keys))
	for i, k := range keys {
		idxs[i] = ds.FindColumn(k.Name)
	}
	return idxs
}

// CompareRows applies CompareCells key by key, falling through ties to the
// next key and honoring each key's DESCENDING modifier.
func CompareRows(a, b dataset.Row, idxs []int, keys []ast.ByKey) int {
	for i, idx := range idxs {
		if idx < 0 {
			continue
		}
		c := CompareCells(a[idx], b[idx])
		if keys[i].Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// ExtractKey reads row's BY-key values out in key order, used by DATA-step
// MERGE BY to compare datasets whose key columns may sit at different
// catalog positions (spec §4.6.3).
func ExtractKey(ds *dataset.Dataset, row dataset.Row, keys []ast.ByKey) []dataset.Cell {
	out := make([]dataset.Cell, len(keys))
	for i, k := range keys {
		if idx := ds.FindColumn(k.Name); idx >= 0 {
			out[i] = row[idx]
		} else {
			out[i] = dataset.MissingNumCell()
		}
	}
	return out
}

// CompareKeyCells compares two already-extracted key tuples, key by key,
// honoring each key's DESCENDING modifier and falling through ties.
func CompareKeyCells(a, b []dataset.Cell, keys []ast.ByKey) int {
	for i := range keys {
		c := CompareCells(a[i], b[i])
		if keys[i].Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// SortDataset returns a new Dataset with ds's rows stably sorted by keys.
func SortDataset(ds *dataset.Dataset, keys []ast.ByKey) *dataset.Dataset {
	out := dataset.New(ds.Libref, ds.Name)
	out.Catalog = append([]dataset.VariableDef{}, ds.Catalog...)
	out.RebuildIndex()
	rows := append([]dataset.Row{}, ds.Rows...)
	idxs := KeyIndexes(ds, keys)
	sort.SliceStable(rows, func(i, j int) bool {
		return CompareRows(rows[i], rows[j], idxs, keys) < 0
	})
	out.Rows = rows
	return out
}
