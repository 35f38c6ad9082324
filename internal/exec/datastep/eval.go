package datastep

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
	"github.com/sasds/sasds/internal/exec/execlog"
	"github.com/sasds/sasds/internal/exec/sortutil"
	"github.com/sasds/sasds/internal/pdv"
)

// RowCtx is the state threaded through per-row statement execution and
// expression evaluation: the PDV under construction, the step's array
// table, and whether OUTPUT has fired for the current row.
type RowCtx struct {
	Pdv         *pdv.Vector
	Arrays      map[string]*ArrayDef
	OutputFired bool
	Log         execlog.Logger
}

// ToNumber applies spec §4.6.1's numeric conversion rule: numeric cells pass
// through, character cells parse as a float (0.0 on failure).
func ToNumber(c dataset.Cell) float64 {
	if c.Kind == dataset.Numeric {
		return c.Num
	}
	v, err := strconv.ParseFloat(c.Str, 64)
	if err != nil {
		return 0.0
	}
	return v
}

// ToBool applies spec §4.6.1's boolean conversion rule: true iff the
// numeric value is nonzero. Note that numeric-missing (-Inf) is nonzero and
// therefore true, matching the rule literally.
func ToBool(v float64) bool { return v != 0 }

func boolCell(b bool) dataset.Cell {
	if b {
		return dataset.NumCell(1)
	}
	return dataset.NumCell(0)
}

// Eval evaluates expr against ctx's PDV and array table.
func Eval(expr ast.Expression, ctx *RowCtx) (dataset.Cell, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return dataset.NumCell(e.Value), nil
	case *ast.StringLiteral:
		return dataset.StrCell(e.Value), nil
	case *ast.GroupedExpression:
		return Eval(e.Expression, ctx)
	case *ast.Identifier:
		if ctx.Pdv.FindIndex(e.Value) < 0 {
			ctx.Log.Warnf("unknown variable %s, treated as missing", e.Value)
			return dataset.MissingNumCell(), nil
		}
		return ctx.Pdv.GetByName(e.Value), nil
	case *ast.UnaryExpression:
		right, err := Eval(e.Right, ctx)
		if err != nil {
			return dataset.Cell{}, err
		}
		n := ToNumber(right)
		if e.Operator == "-" {
			n = -n
		}
		return dataset.NumCell(n), nil
	case *ast.BinaryExpression:
		return evalBinary(e, ctx)
	case *ast.CallExpression:
		return evalCall(e, ctx)
	case *ast.IndexExpression:
		return evalIndex(e, ctx)
	default:
		return dataset.Cell{}, fmt.Errorf("datastep: unsupported expression %T", expr)
	}
}

func evalBinary(e *ast.BinaryExpression, ctx *RowCtx) (dataset.Cell, error) {
	left, err := Eval(e.Left, ctx)
	if err != nil {
		return dataset.Cell{}, err
	}
	right, err := Eval(e.Right, ctx)
	if err != nil {
		return dataset.Cell{}, err
	}

	switch e.Operator {
	case "or":
		return boolCell(ToBool(ToNumber(left)) || ToBool(ToNumber(right))), nil
	case "and":
		return boolCell(ToBool(ToNumber(left)) && ToBool(ToNumber(right))), nil
	case "+", "-", "*", "/", "**":
		a, b := ToNumber(left), ToNumber(right)
		return dataset.NumCell(arith(e.Operator, a, b)), nil
	case "=", "==", "!=", "<", "<=", ">", ">=":
		return boolCell(compare(e.Operator, left, right)), nil
	default:
		return dataset.Cell{}, fmt.Errorf("datastep: unknown operator %q", e.Operator)
	}
}

func arith(op string, a, b float64) float64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		if b == 0 {
			return math.NaN()
		}
		return a / b
	case "**":
		return math.Pow(a, b)
	}
	return math.NaN()
}

// compare implements spec §4.6: numeric compare if both numeric, string
// compare if both string, else numeric-before-string (§4.6.4); NaN compares
// false against everything.
func compare(op string, left, right dataset.Cell) bool {
	if left.Kind == dataset.Numeric && right.Kind == dataset.Numeric {
		if math.IsNaN(left.Num) || math.IsNaN(right.Num) {
			return false
		}
	}
	c := sortutil.CompareCells(left, right)
	switch op {
	case "=", "==":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}

func evalIndex(ix *ast.IndexExpression, ctx *RowCtx) (dataset.Cell, error) {
	arr, ok := ctx.Arrays[canon(ix.Array)]
	if !ok {
		return dataset.Cell{}, &FunctionError{Name: ix.Array, Msg: "not an array"}
	}
	idxCell, err := Eval(ix.Index, ctx)
	if err != nil {
		return dataset.Cell{}, err
	}
	i := int(ToNumber(idxCell))
	if i < 1 || i > len(arr.Vars) {
		return dataset.Cell{}, &ArrayBoundsError{Name: arr.Name, Index: i}
	}
	return ctx.Pdv.GetByName(arr.Vars[i-1]), nil
}

// resolveArrayTarget maps arr[i] to the underlying PDV variable name for an
// assignment target (spec §4.6.2).
func resolveArrayTarget(arrName string, idx ast.Expression, ctx *RowCtx) (string, error) {
	arr, ok := ctx.Arrays[canon(arrName)]
	if !ok {
		return "", &FunctionError{Name: arrName, Msg: "not an array"}
	}
	idxCell, err := Eval(idx, ctx)
	if err != nil {
		return "", err
	}
	i := int(ToNumber(idxCell))
	if i < 1 || i > len(arr.Vars) {
		return "", &ArrayBoundsError{Name: arr.Name, Index: i}
	}
	return arr.Vars[i-1], nil
}
