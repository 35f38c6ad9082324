package datastep

import (
	"testing"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
	"github.com/sasds/sasds/internal/exec/execlog"
)

func TestRunDoToLoopAccumulatesIntoRetainedVar(t *testing.T) {
	libs := newTestLibs(t)
	runner := NewRunner(libs, execlog.Discard{})

	ds := &ast.DataStep{
		Outputs: []ast.DatasetRef{{Name: "TOTALS"}},
		Body: []ast.Statement{
			&ast.RetainStatement{Names: []string{"TOTAL"}, Inits: []ast.Expression{&ast.NumberLiteral{Value: 0}}},
			&ast.DoStatement{
				Kind:  ast.DoTo,
				Var:   "I",
				Start: &ast.NumberLiteral{Value: 1},
				End:   &ast.NumberLiteral{Value: 5},
				Body: &ast.BlockStatement{Statements: []ast.Statement{
					&ast.AssignStatement{
						Target: "TOTAL",
						Value: &ast.BinaryExpression{
							Left:     &ast.Identifier{Value: "TOTAL"},
							Operator: "+",
							Right:    &ast.Identifier{Value: "I"},
						},
					},
				}},
			},
			&ast.OutputStatement{},
		},
	}

	if err := runner.Run(ds); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lib, _ := libs.GetLibrary("WORK")
	out, err := lib.GetOrCreateDataset("TOTALS")
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Rows) != 1 {
		t.Fatalf("expected a single explicit OUTPUT row, got %d", len(out.Rows))
	}
	totalIdx := out.FindColumn("TOTAL")
	if out.Rows[0][totalIdx].Num != 15 {
		t.Fatalf("expected TOTAL=15 (1+2+3+4+5), got %+v", out.Rows[0][totalIdx])
	}
}

func TestRunIfElseBranchesAssignDifferentValues(t *testing.T) {
	libs := newTestLibs(t)
	mustSave(t, libs, "WORK", "IN",
		[]dataset.VariableDef{{Name: "SCORE", Kind: dataset.Numeric}},
		[]dataset.Row{{dataset.NumCell(90)}, {dataset.NumCell(40)}})

	runner := NewRunner(libs, execlog.Discard{})
	ds := &ast.DataStep{
		Outputs: []ast.DatasetRef{{Name: "GRADED"}},
		Body: []ast.Statement{
			&ast.SetStatement{Dataset: ast.DatasetRef{Name: "IN"}},
			&ast.IfStatement{
				Condition: &ast.BinaryExpression{
					Left:     &ast.Identifier{Value: "SCORE"},
					Operator: ">=",
					Right:    &ast.NumberLiteral{Value: 60},
				},
				Consequence: &ast.AssignStatement{Target: "GRADE", Value: &ast.StringLiteral{Value: "PASS"}},
				Alternative: &ast.AssignStatement{Target: "GRADE", Value: &ast.StringLiteral{Value: "FAIL"}},
			},
		},
	}
	if err := runner.Run(ds); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lib, _ := libs.GetLibrary("WORK")
	out, _ := lib.GetOrCreateDataset("GRADED")
	gradeIdx := out.FindColumn("GRADE")
	if out.Rows[0][gradeIdx].Str != "PASS" {
		t.Errorf("row 0: want PASS, got %q", out.Rows[0][gradeIdx].Str)
	}
	if out.Rows[1][gradeIdx].Str != "FAIL" {
		t.Errorf("row 1: want FAIL, got %q", out.Rows[1][gradeIdx].Str)
	}
}

func TestRunDatalinesNoInputRunsOncePerLine(t *testing.T) {
	libs := newTestLibs(t)
	runner := NewRunner(libs, execlog.Discard{})

	ds := &ast.DataStep{
		Outputs: []ast.DatasetRef{{Name: "D"}},
		Body: []ast.Statement{
			&ast.InputStatement{Decls: []ast.InputDecl{{Name: "NAME", IsString: true}, {Name: "AGE"}}},
			&ast.DatalinesStatement{Lines: []string{"ada 36", "bob 41"}},
		},
	}
	if err := runner.Run(ds); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lib, _ := libs.GetLibrary("WORK")
	out, _ := lib.GetOrCreateDataset("D")
	if len(out.Rows) != 2 {
		t.Fatalf("expected 2 rows from 2 datalines, got %d", len(out.Rows))
	}
	nameIdx, ageIdx := out.FindColumn("NAME"), out.FindColumn("AGE")
	if out.Rows[0][nameIdx].Str != "ada" || out.Rows[0][ageIdx].Num != 36 {
		t.Errorf("row 0 mismatch: %+v", out.Rows[0])
	}
	if out.Rows[1][nameIdx].Str != "bob" || out.Rows[1][ageIdx].Num != 41 {
		t.Errorf("row 1 mismatch: %+v", out.Rows[1])
	}
}

func TestRunNoInputNoDatalinesRunsBodyOnce(t *testing.T) {
	libs := newTestLibs(t)
	runner := NewRunner(libs, execlog.Discard{})

	ds := &ast.DataStep{
		Outputs: []ast.DatasetRef{{Name: "ONESHOT"}},
		Body: []ast.Statement{
			&ast.AssignStatement{Target: "X", Value: &ast.NumberLiteral{Value: 7}},
		},
	}
	if err := runner.Run(ds); err != nil {
		t.Fatalf("Run: %v", err)
	}
	lib, _ := libs.GetLibrary("WORK")
	out, _ := lib.GetOrCreateDataset("ONESHOT")
	if len(out.Rows) != 1 {
		t.Fatalf("expected exactly one row from the single implicit pass, got %d", len(out.Rows))
	}
}
