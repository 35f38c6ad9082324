package proc

import (
	"bytes"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
	"github.com/sasds/sasds/internal/exec/execlog"
)

// TestRunPrintSnapshot snapshot-tests PROC PRINT's list-sink rendering, the
// same way the corpus's interpreter tests snapshot their stdout transcripts.
func TestRunPrintSnapshot(t *testing.T) {
	libs := newTestLibs(t)
	saveDataset(t, libs, "CLASS",
		[]dataset.VariableDef{
			{Name: "NAME", Kind: dataset.Character},
			{Name: "AGE", Kind: dataset.Numeric},
		},
		[]dataset.Row{
			{dataset.StrCell("alice"), dataset.NumCell(14)},
			{dataset.StrCell("bob"), dataset.NumCell(15)},
		})

	var list bytes.Buffer
	r := NewRunner(libs, execlog.Discard{}, &list)
	r.Title = "Class Roster"
	p := &ast.Proc{Kind: ast.ProcPrint, Data: ast.DatasetRef{Name: "CLASS"}}
	if err := r.runPrint(p); err != nil {
		t.Fatal(err)
	}

	snaps.MatchSnapshot(t, "print_class_roster", list.String())
}
