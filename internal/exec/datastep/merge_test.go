package datastep

import (
	"testing"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
	"github.com/sasds/sasds/internal/exec/execlog"
)

func newTestLibs(t *testing.T) *dataset.LibraryManager {
	t.Helper()
	mgr := dataset.NewLibraryManager()
	mgr.DefineLibrary(dataset.NewLibrary("WORK", t.TempDir(), dataset.Temporary, nil))
	return mgr
}

func mustSave(t *testing.T, libs *dataset.LibraryManager, libref, name string, cols []dataset.VariableDef, rows []dataset.Row) {
	t.Helper()
	lib, ok := libs.GetLibrary(libref)
	if !ok {
		t.Fatalf("no library %s", libref)
	}
	ds := dataset.New(libref, name)
	ds.Catalog = cols
	ds.RebuildIndex()
	for _, r := range rows {
		ds.AppendRow(r)
	}
	if err := lib.SaveDataset(name, ds); err != nil {
		t.Fatal(err)
	}
}

func TestRunMergeOneToOne(t *testing.T) {
	libs := newTestLibs(t)
	mustSave(t, libs, "WORK", "LEFT",
		[]dataset.VariableDef{{Name: "ID", Kind: dataset.Numeric}, {Name: "NAME", Kind: dataset.Character}},
		[]dataset.Row{
			{dataset.NumCell(1), dataset.StrCell("alice")},
			{dataset.NumCell(2), dataset.StrCell("bob")},
		})
	mustSave(t, libs, "WORK", "RIGHT",
		[]dataset.VariableDef{{Name: "ID", Kind: dataset.Numeric}, {Name: "SCORE", Kind: dataset.Numeric}},
		[]dataset.Row{
			{dataset.NumCell(2), dataset.NumCell(90)},
			{dataset.NumCell(1), dataset.NumCell(70)},
		})

	runner := NewRunner(libs, execlog.Discard{})
	ds := &ast.DataStep{
		Outputs: []ast.DatasetRef{{Name: "BOTH"}},
		Body: []ast.Statement{
			&ast.MergeStatement{Datasets: []ast.DatasetRef{{Name: "LEFT"}, {Name: "RIGHT"}}},
			&ast.ByStatement{Keys: []ast.ByKey{{Name: "ID"}}},
		},
	}
	if err := runner.Run(ds); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lib, _ := libs.GetLibrary("WORK")
	out, err := lib.GetOrCreateDataset("BOTH")
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Rows) != 2 {
		t.Fatalf("expected 2 merged rows, got %d", len(out.Rows))
	}
	idIdx := out.FindColumn("ID")
	nameIdx := out.FindColumn("NAME")
	scoreIdx := out.FindColumn("SCORE")
	for _, row := range out.Rows {
		id := row[idIdx].Num
		if id == 1 {
			if row[nameIdx].Str != "alice" || row[scoreIdx].Num != 70 {
				t.Errorf("row id=1 mismatch: %+v", row)
			}
		} else if id == 2 {
			if row[nameIdx].Str != "bob" || row[scoreIdx].Num != 90 {
				t.Errorf("row id=2 mismatch: %+v", row)
			}
		}
	}
}

func TestRunMergeUnmatchedTrailing(t *testing.T) {
	libs := newTestLibs(t)
	mustSave(t, libs, "WORK", "LEFT",
		[]dataset.VariableDef{{Name: "ID", Kind: dataset.Numeric}, {Name: "NAME", Kind: dataset.Character}},
		[]dataset.Row{{dataset.NumCell(1), dataset.StrCell("alice")}})
	mustSave(t, libs, "WORK", "RIGHT",
		[]dataset.VariableDef{{Name: "ID", Kind: dataset.Numeric}, {Name: "SCORE", Kind: dataset.Numeric}},
		[]dataset.Row{
			{dataset.NumCell(1), dataset.NumCell(70)},
			{dataset.NumCell(2), dataset.NumCell(90)},
		})

	runner := NewRunner(libs, execlog.Discard{})
	ds := &ast.DataStep{
		Outputs: []ast.DatasetRef{{Name: "BOTH"}},
		Body: []ast.Statement{
			&ast.MergeStatement{Datasets: []ast.DatasetRef{{Name: "LEFT"}, {Name: "RIGHT"}}},
			&ast.ByStatement{Keys: []ast.ByKey{{Name: "ID"}}},
		},
	}
	if err := runner.Run(ds); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lib, _ := libs.GetLibrary("WORK")
	out, _ := lib.GetOrCreateDataset("BOTH")
	if len(out.Rows) != 2 {
		t.Fatalf("expected 2 rows (one matched, one unmatched), got %d", len(out.Rows))
	}
	nameIdx := out.FindColumn("NAME")
	idIdx := out.FindColumn("ID")
	for _, row := range out.Rows {
		if row[idIdx].Num == 2 && !row[nameIdx].IsMissing() {
			t.Errorf("unmatched row should have missing NAME, got %q", row[nameIdx].Str)
		}
	}
}
