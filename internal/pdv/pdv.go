// Package pdv implements the Program Data Vector (spec §3/§4.5): the
// per-row working storage a DATA step reads and writes as it executes,
// distinct from the dataset rows it is initialized from or flushed to.
package pdv

import (
	"strings"

	"github.com/sasds/sasds/internal/dataset"
)

// Var is one slot of the vector.
type Var struct {
	Name      string
	IsNumeric bool
	Length    int
	Label     string
	Format    string
	Decimals  int
	Retained  bool
}

// Vector is the PDV itself: an ordered list of variables plus their
// current values, addressable by name or by index.
type Vector struct {
	vars   []Var
	values []dataset.Cell
	index  map[string]int
}

// New returns an empty PDV.
func New() *Vector {
	return &Vector{index: map[string]int{}}
}

func canon(name string) string { return strings.ToUpper(name) }

// AddVariable adds name to the vector if not already present (case
// insensitive) and returns its index. An existing variable's metadata is
// left untouched; only its length may widen, when Set stores a longer string.
func (v *Vector) AddVariable(va Var) int {
	if i, ok := v.index[canon(va.Name)]; ok {
		return i
	}
	idx := len(v.vars)
	v.vars = append(v.vars, va)
	var zero dataset.Cell
	if va.IsNumeric {
		zero = dataset.MissingNumCell()
	} else {
		zero = dataset.StrCell("")
	}
	v.values = append(v.values, zero)
	v.index[canon(va.Name)] = idx
	return idx
}

// FindIndex returns the index of name, or -1 if the PDV has no such
// variable.
func (v *Vector) FindIndex(name string) int {
	if i, ok := v.index[canon(name)]; ok {
		return i
	}
	return -1
}

// Len reports the number of variables in the vector.
func (v *Vector) Len() int { return len(v.vars) }

// VarAt returns the variable metadata at idx.
func (v *Vector) VarAt(idx int) Var { return v.vars[idx] }

// Names returns variable names in vector order.
func (v *Vector) Names() []string {
	names := make([]string, len(v.vars))
	for i, va := range v.vars {
		names[i] = va.Name
	}
	return names
}

// Get returns the current value at idx.
func (v *Vector) Get(idx int) dataset.Cell { return v.values[idx] }

// GetByName returns the current value of name, or a missing cell if
// undefined.
func (v *Vector) GetByName(name string) dataset.Cell {
	if i := v.FindIndex(name); i >= 0 {
		return v.values[i]
	}
	return dataset.MissingNumCell()
}

// Set writes val at idx, widening the declared character length if val is
// a longer string (spec §3 invariant 5).
func (v *Vector) Set(idx int, val dataset.Cell) {
	if !val.IsMissing() && !v.vars[idx].IsNumeric && len(val.Str) > v.vars[idx].Length {
		v.vars[idx].Length = len(val.Str)
	}
	v.values[idx] = val
}

// SetByName sets the value of name, auto-vivifying the variable (numeric
// by default, or character if val is a string cell) when it doesn't exist
// yet. This matches a DATA step's implicit variable declaration on first
// assignment.
func (v *Vector) SetByName(name string, val dataset.Cell) int {
	idx := v.FindIndex(name)
	if idx < 0 {
		length := 8
		if val.Kind == dataset.Character {
			length = len(val.Str)
			if length == 0 {
				length = 1
			}
		}
		idx = v.AddVariable(Var{Name: name, IsNumeric: val.Kind == dataset.Numeric, Length: length})
	}
	v.Set(idx, val)
	return idx
}

// SetRetainFlag marks idx as retained, exempting it from ResetNonRetained.
func (v *Vector) SetRetainFlag(idx int, retained bool) {
	v.vars[idx].Retained = retained
}

// ResetNonRetained sets every non-retained variable back to its missing
// value at the top of each iteration (spec §4.5): numeric to -Inf,
// character to "". RETAIN'd and automatic variables (handled by the
// caller before invoking this) are left untouched.
func (v *Vector) ResetNonRetained() {
	for i, va := range v.vars {
		if va.Retained {
			continue
		}
		if va.IsNumeric {
			v.values[i] = dataset.MissingNumCell()
		} else {
			v.values[i] = dataset.StrCell("")
		}
	}
}

// InitFromDataset aligns the vector to ds's catalog, adding any columns
// the PDV doesn't already carry (used when a SET/MERGE statement first
// binds an input dataset).
func (v *Vector) InitFromDataset(ds *dataset.Dataset) {
	for _, col := range ds.Catalog {
		v.AddVariable(Var{
			Name: col.Name, IsNumeric: col.Kind == dataset.Numeric, Length: col.Length,
			Label: col.Label, Format: col.Format, Decimals: col.Decimals,
		})
	}
}

// LoadRow copies row (aligned to ds's catalog) into the PDV slots for the
// same-named variables, widening lengths as needed.
func (v *Vector) LoadRow(ds *dataset.Dataset, row dataset.Row) {
	for i, col := range ds.Catalog {
		idx := v.FindIndex(col.Name)
		if idx < 0 {
			idx = v.AddVariable(Var{Name: col.Name, IsNumeric: col.Kind == dataset.Numeric, Length: col.Length})
		}
		v.Set(idx, row[i])
	}
}

// ToRow materializes the PDV's current values as a Dataset row in the
// order given by names.
func (v *Vector) ToRow(names []string) dataset.Row {
	row := make(dataset.Row, len(names))
	for i, n := range names {
		row[i] = v.GetByName(n)
	}
	return row
}

// Snapshot copies every current value, for implementing a temporary
// save/restore (e.g. around a macro-like sub-block) without disturbing
// variable metadata.
func (v *Vector) Snapshot() []dataset.Cell {
	out := make([]dataset.Cell, len(v.values))
	copy(out, v.values)
	return out
}

// Restore replaces current values with a prior Snapshot.
func (v *Vector) Restore(snap []dataset.Cell) {
	copy(v.values, snap)
}
