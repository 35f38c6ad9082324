package dataset

import "strings"

// VariableDef is one column of a dataset's catalog (spec §3).
type VariableDef struct {
	Name     string // first-seen casing
	Kind     Kind
	Length   int // byte length: numeric defaults to 8, character grows to longest value
	Label    string
	Format   string
	Decimals int
	Retained bool
}

// Row is an ordered list of cells aligned to a Dataset's catalog.
type Row []Cell

// Dataset is a named, typed, ordered row store (spec §3).
type Dataset struct {
	Libref string
	Name   string

	Catalog []VariableDef
	Rows    []Row

	index map[string]int // canon(name) -> catalog position
}

// New creates an empty dataset bound to libref.name.
func New(libref, name string) *Dataset {
	return &Dataset{Libref: libref, Name: name, index: map[string]int{}}
}

func canon(name string) string { return strings.ToUpper(name) }

// FindColumn returns the catalog index of name, or -1 if absent.
func (d *Dataset) FindColumn(name string) int {
	if d.index == nil {
		d.rebuildIndex()
	}
	if i, ok := d.index[canon(name)]; ok {
		return i
	}
	return -1
}

func (d *Dataset) rebuildIndex() {
	d.index = make(map[string]int, len(d.Catalog))
	for i, v := range d.Catalog {
		d.index[canon(v.Name)] = i
	}
}

// RebuildIndex recomputes the name index from the current catalog. Callers
// outside this package that replace Catalog wholesale (codec loaders, the
// sort/merge helpers building a fresh Dataset) must call this before the
// first FindColumn/AddColumn.
func (d *Dataset) RebuildIndex() { d.rebuildIndex() }

// AddColumn appends a new column to the catalog and widens every existing
// row with a missing cell of the appropriate kind. Idempotent by
// case-insensitive name: an existing column's metadata wins.
func (d *Dataset) AddColumn(v VariableDef) int {
	if i := d.FindColumn(v.Name); i >= 0 {
		return i
	}
	idx := len(d.Catalog)
	d.Catalog = append(d.Catalog, v)
	if d.index == nil {
		d.index = map[string]int{}
	}
	d.index[canon(v.Name)] = idx
	var fill Cell
	if v.Kind == Character {
		fill = StrCell("")
	} else {
		fill = MissingNumCell()
	}
	for i := range d.Rows {
		d.Rows[i] = append(d.Rows[i], fill)
	}
	return idx
}

// WidenLength bumps a character column's declared length if v is longer
// (spec §3 invariant 5: string widening is monotonic within a step).
func (d *Dataset) WidenLength(idx int, n int) {
	if n > d.Catalog[idx].Length {
		d.Catalog[idx].Length = n
	}
}

// AppendRow appends row as-is; callers are responsible for aligning it to
// the catalog (spec §3 invariant 3).
func (d *Dataset) AppendRow(row Row) {
	d.Rows = append(d.Rows, row)
}

// ColumnNames returns the catalog's variable names in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Catalog))
	for i, v := range d.Catalog {
		names[i] = v.Name
	}
	return names
}

// Project returns a new Dataset containing only the named columns, in the
// order given, used by DROP/KEEP filtering at step end and by PROC MEANS'
// tidy result construction.
func (d *Dataset) Project(names []string) *Dataset {
	out := New(d.Libref, d.Name)
	idxs := make([]int, 0, len(names))
	for _, n := range names {
		if i := d.FindColumn(n); i >= 0 {
			idxs = append(idxs, i)
			out.Catalog = append(out.Catalog, d.Catalog[i])
		}
	}
	out.rebuildIndex()
	for _, row := range d.Rows {
		newRow := make(Row, len(idxs))
		for j, i := range idxs {
			newRow[j] = row[i]
		}
		out.AppendRow(newRow)
	}
	return out
}
