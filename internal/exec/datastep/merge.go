package datastep

import (
	"fmt"

	"github.com/sasds/sasds/internal/dataset"
	"github.com/sasds/sasds/internal/exec/sortutil"
	"github.com/sasds/sasds/internal/pdv"
)

// runMerge implements the MERGE ... BY row driver (spec §4.6.3): every input
// is sorted on the BY keys, then walked in lockstep. Each tick takes the
// smallest BY-key tuple among the datasets not yet exhausted, folds every
// row carrying that tuple into the PDV in MERGE statement order, and runs
// the step body once before moving on. Datasets that don't carry the
// current tuple simply sit out that tick, which is how unmatched trailing
// rows end up emitted on their own.
func (r *Runner) runMerge(step *Step, vec *pdv.Vector, ctx *RowCtx, staging *dataset.Dataset, explicit bool) error {
	if len(step.ByKeys) == 0 {
		return fmt.Errorf("datastep: MERGE requires a BY statement")
	}

	sorted := make([]*dataset.Dataset, len(step.MergeRefs))
	idxs := make([]int, len(step.MergeRefs))
	byNames := make(map[string]bool, len(step.ByKeys))
	for _, k := range step.ByKeys {
		byNames[canon(k.Name)] = true
	}

	for i, ref := range step.MergeRefs {
		lib, err := r.resolveLibrary(ref.Libref)
		if err != nil {
			return err
		}
		ds, err := lib.GetOrCreateDataset(ref.Name)
		if err != nil {
			return err
		}
		sorted[i] = sortutil.SortDataset(ds, step.ByKeys)
		vec.InitFromDataset(ds)
	}

	first := true
	for {
		var minKey []dataset.Cell
		any := false
		for d, ds := range sorted {
			if idxs[d] >= len(ds.Rows) {
				continue
			}
			any = true
			key := sortutil.ExtractKey(ds, ds.Rows[idxs[d]], step.ByKeys)
			if minKey == nil || sortutil.CompareKeyCells(key, minKey, step.ByKeys) < 0 {
				minKey = key
			}
		}
		if !any {
			break
		}

		if !first {
			vec.ResetNonRetained()
		}
		first = false

		for d, ds := range sorted {
			if idxs[d] >= len(ds.Rows) {
				continue
			}
			key := sortutil.ExtractKey(ds, ds.Rows[idxs[d]], step.ByKeys)
			if sortutil.CompareKeyCells(key, minKey, step.ByKeys) != 0 {
				continue
			}
			mergeRowInto(vec, ds, ds.Rows[idxs[d]], byNames)
			idxs[d]++
		}

		if err := r.execBody(step.RunBody, ctx); err != nil {
			return err
		}
		if !explicit || ctx.OutputFired {
			appendPdvRow(staging, vec)
		}
		ctx.OutputFired = false
	}
	return nil
}

// mergeRowInto overlays one input row's cells onto the PDV per spec
// §4.6.3's cell-overlay rule: BY variables are set from every contributing
// row (they're equal by construction), and a non-BY cell already holding a
// value from an earlier dataset in this tick is left alone unless the new
// cell is non-missing.
func mergeRowInto(vec *pdv.Vector, ds *dataset.Dataset, row dataset.Row, byNames map[string]bool) {
	for i, col := range ds.Catalog {
		idx := vec.FindIndex(col.Name)
		if idx < 0 {
			idx = vec.AddVariable(pdv.Var{Name: col.Name, IsNumeric: col.Kind == dataset.Numeric, Length: col.Length})
		}
		cell := row[i]
		if byNames[canon(col.Name)] {
			vec.Set(idx, cell)
			continue
		}
		if cell.IsMissing() {
			continue
		}
		vec.Set(idx, cell)
	}
}
