package proc

import (
	"fmt"
	"strings"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
	"github.com/sasds/sasds/internal/exec/sortutil"
)

// runSQL implements the minimal PROC SQL surface of spec §4.7: SELECT over
// a single table with WHERE/ORDER BY, and CREATE TABLE ... AS SELECT
// persisting the projected result under a new name.
func (r *Runner) runSQL(s *ast.SQLStatement) error {
	lib, err := r.resolveLibrary(s.From.Libref)
	if err != nil {
		return err
	}
	ds, err := lib.GetOrCreateDataset(s.From.Name)
	if err != nil {
		return err
	}
	rows, err := filterRows(ds, s.Where, r.Log)
	if err != nil {
		return err
	}

	cols := s.Columns
	if len(cols) == 1 && cols[0] == "*" {
		cols = ds.ColumnNames()
	}

	result := dataset.New(ds.Libref, "")
	for _, name := range cols {
		if idx := ds.FindColumn(name); idx >= 0 {
			result.AddColumn(ds.Catalog[idx])
		} else {
			return fmt.Errorf("proc sql: unknown column %s", name)
		}
	}
	idxs := make([]int, len(cols))
	for i, name := range cols {
		idxs[i] = ds.FindColumn(name)
	}
	for _, row := range rows {
		newRow := make(dataset.Row, len(idxs))
		for j, idx := range idxs {
			newRow[j] = row[idx]
		}
		result.AppendRow(newRow)
	}

	if len(s.OrderBy) > 0 {
		result = sortutil.SortDataset(result, s.OrderBy)
	}

	switch s.Kind {
	case ast.SQLCreateTable:
		target := s.TableName
		if target.Name == "" {
			target = s.Into
		}
		outLib, err := r.resolveLibrary(target.Libref)
		if err != nil {
			return err
		}
		return outLib.SaveDataset(target.Name, result)
	default:
		fmt.Fprintln(r.List)
		printTitle(r.List, r.Title)
		fmt.Fprintln(r.List, strings.Join(cols, "\t"))
		for _, row := range result.Rows {
			fields := make([]string, len(row))
			for i, c := range row {
				fields[i] = formatCell(c)
			}
			fmt.Fprintln(r.List, strings.Join(fields, "\t"))
		}
		return nil
	}
}
