package sortutil

import (
	"testing"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
)

func TestCompareCellsNumericBeforeString(t *testing.T) {
	if CompareCells(dataset.NumCell(1), dataset.StrCell("a")) >= 0 {
		t.Error("numeric should sort before string on a kind mismatch")
	}
	if CompareCells(dataset.StrCell("a"), dataset.NumCell(1)) <= 0 {
		t.Error("string should sort after numeric on a kind mismatch")
	}
}

func TestSortDatasetDescendingKey(t *testing.T) {
	ds := dataset.New("WORK", "X")
	ds.AddColumn(dataset.VariableDef{Name: "ID", Kind: dataset.Numeric})
	ds.AppendRow(dataset.Row{dataset.NumCell(1)})
	ds.AppendRow(dataset.Row{dataset.NumCell(3)})
	ds.AppendRow(dataset.Row{dataset.NumCell(2)})

	sorted := SortDataset(ds, []ast.ByKey{{Name: "ID", Descending: true}})
	want := []float64{3, 2, 1}
	for i, row := range sorted.Rows {
		if row[0].Num != want[i] {
			t.Fatalf("row %d: want %v, got %v", i, want[i], row[0].Num)
		}
	}
}

func TestSortDatasetIsStable(t *testing.T) {
	ds := dataset.New("WORK", "X")
	ds.AddColumn(dataset.VariableDef{Name: "K", Kind: dataset.Numeric})
	ds.AddColumn(dataset.VariableDef{Name: "SEQ", Kind: dataset.Numeric})
	ds.AppendRow(dataset.Row{dataset.NumCell(1), dataset.NumCell(1)})
	ds.AppendRow(dataset.Row{dataset.NumCell(1), dataset.NumCell(2)})
	ds.AppendRow(dataset.Row{dataset.NumCell(0), dataset.NumCell(3)})

	sorted := SortDataset(ds, []ast.ByKey{{Name: "K"}})
	if sorted.Rows[0][1].Num != 3 {
		t.Fatalf("expected K=0 row first, got %+v", sorted.Rows[0])
	}
	if sorted.Rows[1][1].Num != 1 || sorted.Rows[2][1].Num != 2 {
		t.Fatalf("expected ties to keep original order, got %+v", sorted.Rows)
	}
}

func TestExtractKeyAndCompareKeyCells(t *testing.T) {
	ds := dataset.New("WORK", "X")
	ds.AddColumn(dataset.VariableDef{Name: "A", Kind: dataset.Numeric})
	ds.AddColumn(dataset.VariableDef{Name: "B", Kind: dataset.Numeric})
	row := dataset.Row{dataset.NumCell(5), dataset.NumCell(9)}
	keys := []ast.ByKey{{Name: "B"}, {Name: "A"}}
	got := ExtractKey(ds, row, keys)
	if got[0].Num != 9 || got[1].Num != 5 {
		t.Fatalf("expected key order [B,A] = [9,5], got %+v", got)
	}
	if CompareKeyCells(got, got, keys) != 0 {
		t.Error("a tuple should compare equal to itself")
	}
}
