// Package dataset implements the library/dataset store of spec.md §3/§4.4:
// typed columns, row storage, and the persisted on-disk backend that the
// core engine treats as an opaque reader/writer (spec §6).
package dataset

import "math"

// Missing is the sentinel for a numeric missing value (spec §3/§9: the
// source uses -∞). It participates in arithmetic as -∞ and compares
// unordered against NaN.
var Missing = math.Inf(-1)

// IsMissingNumber reports whether v is the numeric-missing sentinel.
func IsMissingNumber(v float64) bool { return math.IsInf(v, -1) }

// Kind identifies a Cell's or VariableDef's declared type.
type Kind int

const (
	Numeric Kind = iota
	Character
)

func (k Kind) String() string {
	if k == Character {
		return "character"
	}
	return "numeric"
}

// Cell is a tagged value: either a numeric reading (with Missing reserved
// for numeric-missing) or a string.
type Cell struct {
	Kind Kind
	Num  float64
	Str  string
}

// NumCell builds a numeric cell.
func NumCell(v float64) Cell { return Cell{Kind: Numeric, Num: v} }

// StrCell builds a character cell.
func StrCell(v string) Cell { return Cell{Kind: Character, Str: v} }

// MissingNumCell is the numeric-missing cell.
func MissingNumCell() Cell { return Cell{Kind: Numeric, Num: Missing} }

// IsMissing reports whether the cell holds a missing value for its kind:
// -∞ for numeric, "" for character.
func (c Cell) IsMissing() bool {
	if c.Kind == Numeric {
		return IsMissingNumber(c.Num)
	}
	return c.Str == ""
}
