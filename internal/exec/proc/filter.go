package proc

import (
	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
	"github.com/sasds/sasds/internal/exec/datastep"
	"github.com/sasds/sasds/internal/exec/execlog"
	"github.com/sasds/sasds/internal/pdv"
)

// filterRows returns the subset of ds.Rows passing where, evaluated with the
// same expression engine a DATA step uses (spec §4.6.1's truthiness rule: a
// row passes when the numeric value of where is nonzero). A nil where
// passes every row.
func filterRows(ds *dataset.Dataset, where ast.Expression, log execlog.Logger) ([]dataset.Row, error) {
	if where == nil {
		return ds.Rows, nil
	}
	vec := pdv.New()
	vec.InitFromDataset(ds)
	ctx := &datastep.RowCtx{Pdv: vec, Arrays: map[string]*datastep.ArrayDef{}, Log: log}
	var out []dataset.Row
	for _, row := range ds.Rows {
		vec.LoadRow(ds, row)
		val, err := datastep.Eval(where, ctx)
		if err != nil {
			return nil, err
		}
		if datastep.ToBool(datastep.ToNumber(val)) {
			out = append(out, row)
		}
	}
	return out, nil
}
