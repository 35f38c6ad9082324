package proc

import (
	"bytes"
	"strings"
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

func saveDataset(t *testing.T, libs *dataset.LibraryManager, name string, cols []dataset.VariableDef, rows []dataset.Row) {
	t.Helper()
	lib, _ := libs.GetLibrary("WORK")
	ds := dataset.New("WORK", name)
	ds.Catalog = cols
	ds.RebuildIndex()
	for _, r := range rows {
		ds.AppendRow(r)
	}
	if err := lib.SaveDataset(name, ds); err != nil {
		t.Fatal(err)
	}
}

func TestRunSortNoDupKey(t *testing.T) {
	libs := newTestLibs(t)
	saveDataset(t, libs, "IN",
		[]dataset.VariableDef{{Name: "ID", Kind: dataset.Numeric}},
		[]dataset.Row{{dataset.NumCell(2)}, {dataset.NumCell(1)}, {dataset.NumCell(1)}})

	r := NewRunner(libs, execlog.Discard{}, &bytes.Buffer{})
	p := &ast.Proc{Kind: ast.ProcSort, Data: ast.DatasetRef{Name: "IN"}, Out: ast.DatasetRef{Name: "OUT"},
		ByVars: []ast.ByKey{{Name: "ID"}}, NoDupKey: true}
	if err := r.runSort(p); err != nil {
		t.Fatal(err)
	}
	lib, _ := libs.GetLibrary("WORK")
	out, _ := lib.GetOrCreateDataset("OUT")
	if len(out.Rows) != 2 {
		t.Fatalf("expected 2 deduped rows, got %d", len(out.Rows))
	}
	if out.Rows[0][0].Num != 1 || out.Rows[1][0].Num != 2 {
		t.Fatalf("unexpected sort order: %+v", out.Rows)
	}
}

func TestRunMeansFallsBackToAllNumeric(t *testing.T) {
	libs := newTestLibs(t)
	saveDataset(t, libs, "IN",
		[]dataset.VariableDef{{Name: "X", Kind: dataset.Numeric}, {Name: "NAME", Kind: dataset.Character}},
		[]dataset.Row{
			{dataset.NumCell(1), dataset.StrCell("a")},
			{dataset.NumCell(3), dataset.StrCell("b")},
		})
	var list bytes.Buffer
	r := NewRunner(libs, execlog.Discard{}, &list)
	p := &ast.Proc{Kind: ast.ProcMeans, Data: ast.DatasetRef{Name: "IN"}, Out: ast.DatasetRef{Name: "STATS"}}
	if err := r.runMeans(p); err != nil {
		t.Fatal(err)
	}
	lib, _ := libs.GetLibrary("WORK")
	out, _ := lib.GetOrCreateDataset("STATS")
	if len(out.Rows) != 1 {
		t.Fatalf("expected one row for the single numeric var, got %d", len(out.Rows))
	}
	nIdx := out.FindColumn("N")
	meanIdx := out.FindColumn("MEAN")
	if out.Rows[0][nIdx].Num != 2 || out.Rows[0][meanIdx].Num != 2 {
		t.Fatalf("unexpected stats row: %+v", out.Rows[0])
	}
}

func TestRunPrintHonorsObsAndNoObs(t *testing.T) {
	libs := newTestLibs(t)
	saveDataset(t, libs, "IN",
		[]dataset.VariableDef{{Name: "X", Kind: dataset.Numeric}},
		[]dataset.Row{{dataset.NumCell(1)}, {dataset.NumCell(2)}, {dataset.NumCell(3)}})
	var list bytes.Buffer
	r := NewRunner(libs, execlog.Discard{}, &list)
	p := &ast.Proc{Kind: ast.ProcPrint, Data: ast.DatasetRef{Name: "IN"}, Obs: 2, NoObs: true}
	if err := r.runPrint(p); err != nil {
		t.Fatal(err)
	}
	out := list.String()
	if strings.Count(out, "\n") < 3 {
		t.Fatalf("expected a header + 2 data lines, got %q", out)
	}
	if strings.Contains(out, "Obs") {
		t.Errorf("NOOBS should suppress the Obs column, got %q", out)
	}
}

func TestRunSQLSelectWhereOrderBy(t *testing.T) {
	libs := newTestLibs(t)
	saveDataset(t, libs, "IN",
		[]dataset.VariableDef{{Name: "ID", Kind: dataset.Numeric}, {Name: "NAME", Kind: dataset.Character}},
		[]dataset.Row{
			{dataset.NumCell(3), dataset.StrCell("c")},
			{dataset.NumCell(1), dataset.StrCell("a")},
			{dataset.NumCell(2), dataset.StrCell("b")},
		})
	var list bytes.Buffer
	r := NewRunner(libs, execlog.Discard{}, &list)
	stmt := &ast.SQLStatement{
		Kind:    ast.SQLSelect,
		Columns: []string{"ID", "NAME"},
		From:    ast.DatasetRef{Name: "IN"},
		OrderBy: []ast.ByKey{{Name: "ID"}},
	}
	if err := r.runSQL(stmt); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(list.String()), "\n")
	last := lines[len(lines)-1]
	if !strings.HasPrefix(last, "3\tc") {
		t.Fatalf("expected last row to be id=3 after ORDER BY, got %q (all: %v)", last, lines)
	}
}

func TestRunSQLCreateTableAsSelect(t *testing.T) {
	libs := newTestLibs(t)
	saveDataset(t, libs, "IN",
		[]dataset.VariableDef{{Name: "ID", Kind: dataset.Numeric}},
		[]dataset.Row{{dataset.NumCell(1)}, {dataset.NumCell(2)}})
	r := NewRunner(libs, execlog.Discard{}, &bytes.Buffer{})
	stmt := &ast.SQLStatement{
		Kind:      ast.SQLCreateTable,
		Columns:   []string{"*"},
		From:      ast.DatasetRef{Name: "IN"},
		TableName: ast.DatasetRef{Name: "COPY"},
	}
	if err := r.runSQL(stmt); err != nil {
		t.Fatal(err)
	}
	lib, _ := libs.GetLibrary("WORK")
	out, _ := lib.GetOrCreateDataset("COPY")
	if len(out.Rows) != 2 {
		t.Fatalf("expected 2 rows copied, got %d", len(out.Rows))
	}
}

func TestRunFreqOneWay(t *testing.T) {
	libs := newTestLibs(t)
	saveDataset(t, libs, "IN",
		[]dataset.VariableDef{{Name: "GRP", Kind: dataset.Character}},
		[]dataset.Row{{dataset.StrCell("a")}, {dataset.StrCell("b")}, {dataset.StrCell("a")}})
	var list bytes.Buffer
	r := NewRunner(libs, execlog.Discard{}, &list)
	p := &ast.Proc{Kind: ast.ProcFreq, Data: ast.DatasetRef{Name: "IN"}, FreqPairs: [][2]string{{"GRP", ""}}}
	if err := r.runFreq(p); err != nil {
		t.Fatal(err)
	}
	out := list.String()
	if !strings.Contains(out, "a\t2") {
		t.Fatalf("expected a frequency of 2 for group a, got %q", out)
	}
}
