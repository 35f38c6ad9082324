package proc

import (
	"fmt"
	"strings"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
)

// runPrint implements PROC PRINT (spec §4.7): emits formatted rows to the
// list sink, honoring OBS=, NOOBS, LABEL, VAR.
func (r *Runner) runPrint(p *ast.Proc) error {
	lib, err := r.resolveLibrary(p.Data.Libref)
	if err != nil {
		return err
	}
	ds, err := lib.GetOrCreateDataset(p.Data.Name)
	if err != nil {
		return err
	}
	rows, err := filterRows(ds, p.Where, r.Log)
	if err != nil {
		return err
	}
	if p.Obs > 0 && len(rows) > p.Obs {
		rows = rows[:p.Obs]
	}

	names := p.VarVariables
	if len(names) == 0 {
		names = ds.ColumnNames()
	}
	idxs := make([]int, len(names))
	headers := make([]string, len(names))
	for i, n := range names {
		idxs[i] = ds.FindColumn(n)
		headers[i] = n
		if p.Label {
			if idxs[i] >= 0 {
				if lbl := ds.Catalog[idxs[i]].Label; lbl != "" {
					headers[i] = lbl
				}
			}
		}
	}

	fmt.Fprintln(r.List)
	printTitle(r.List, r.Title)

	headerLine := headers
	if !p.NoObs {
		headerLine = append([]string{"Obs"}, headers...)
	}
	fmt.Fprintln(r.List, strings.Join(headerLine, "\t"))

	for i, row := range rows {
		var fields []string
		if !p.NoObs {
			fields = append(fields, fmt.Sprintf("%d", i+1))
		}
		for _, idx := range idxs {
			if idx < 0 {
				fields = append(fields, "")
				continue
			}
			fields = append(fields, formatCell(row[idx]))
		}
		fmt.Fprintln(r.List, strings.Join(fields, "\t"))
	}
	return nil
}

func formatCell(c dataset.Cell) string {
	if c.Kind == dataset.Character {
		return c.Str
	}
	if c.IsMissing() {
		return "."
	}
	return fmt.Sprintf("%g", c.Num)
}
