package proc

import (
	"fmt"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
	"github.com/sasds/sasds/internal/exec/sortutil"
)

// runSort implements PROC SORT (spec §4.7): sort by BY vars using the same
// comparator MERGE BY uses, optionally dropping all but the first occurrence
// of each key (NODUPKEY), and write to OUT= or back in place.
func (r *Runner) runSort(p *ast.Proc) error {
	if len(p.ByVars) == 0 {
		return fmt.Errorf("proc sort: BY statement is required")
	}
	lib, err := r.resolveLibrary(p.Data.Libref)
	if err != nil {
		return err
	}
	ds, err := lib.GetOrCreateDataset(p.Data.Name)
	if err != nil {
		return err
	}

	sorted := sortutil.SortDataset(ds, p.ByVars)
	if p.NoDupKey {
		sorted = dedupFirstPerKey(sorted, p.ByVars)
	}

	outRef := outputRef(p.Data, p.Out)
	outLib, err := r.resolveLibrary(outRef.Libref)
	if err != nil {
		return err
	}
	return outLib.SaveDataset(outRef.Name, sorted)
}

// dedupFirstPerKey keeps the first row of each run of equal BY-key values.
// ds is assumed already sorted on keys, so duplicates are adjacent.
func dedupFirstPerKey(ds *dataset.Dataset, keys []ast.ByKey) *dataset.Dataset {
	out := dataset.New(ds.Libref, ds.Name)
	out.Catalog = append([]dataset.VariableDef{}, ds.Catalog...)
	out.RebuildIndex()
	idxs := sortutil.KeyIndexes(ds, keys)
	var prev dataset.Row
	for i, row := range ds.Rows {
		if i > 0 && sortutil.CompareRows(row, prev, idxs, keys) == 0 {
			continue
		}
		out.AppendRow(row)
		prev = row
	}
	return out
}
