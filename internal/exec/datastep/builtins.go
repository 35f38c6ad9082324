package datastep

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
)

// normalize runs s through Unicode NFC normalization before whitespace/case
// built-ins touch it, so combining-character variants of otherwise-identical
// text compare and trim consistently. It is a no-op on plain ASCII.
func normalize(s string) string { return norm.NFC.String(s) }

func evalCall(c *ast.CallExpression, ctx *RowCtx) (dataset.Cell, error) {
	args := make([]dataset.Cell, len(c.Arguments))
	for i, a := range c.Arguments {
		v, err := Eval(a, ctx)
		if err != nil {
			return dataset.Cell{}, err
		}
		args[i] = v
	}

	name := strings.ToUpper(c.Function)
	switch name {
	case "SUBSTR":
		return callSubstr(name, args)
	case "TRIM":
		return str1(name, args, func(s string) string { return strings.TrimSpace(normalize(s)) })
	case "LEFT":
		return str1(name, args, func(s string) string { return strings.TrimLeft(normalize(s), " \t") })
	case "RIGHT":
		return str1(name, args, func(s string) string { return strings.TrimRight(normalize(s), " \t") })
	case "UPCASE":
		return str1(name, args, func(s string) string { return strings.ToUpper(normalize(s)) })
	case "LOWCASE":
		return str1(name, args, func(s string) string { return strings.ToLower(normalize(s)) })
	case "SQRT":
		return num1(name, args, func(x float64) float64 {
			if x < 0 {
				ctx.Log.Warnf("sqrt() of negative argument %g", x)
				return math.NaN()
			}
			return math.Sqrt(x)
		})
	case "LOG":
		return num1(name, args, func(x float64) float64 {
			if x <= 0 {
				ctx.Log.Warnf("log() of non-positive argument %g", x)
				return math.NaN()
			}
			return math.Log(x)
		})
	case "LOG10":
		return num1(name, args, func(x float64) float64 {
			if x <= 0 {
				ctx.Log.Warnf("log10() of non-positive argument %g", x)
				return math.NaN()
			}
			return math.Log10(x)
		})
	case "ABS":
		return num1(name, args, math.Abs)
	case "EXP":
		return num1(name, args, math.Exp)
	case "CEIL":
		return num1(name, args, math.Ceil)
	case "FLOOR":
		return num1(name, args, math.Floor)
	case "ROUND":
		return callRound(name, args)
	case "TODAY":
		if len(args) != 0 {
			return dataset.Cell{}, &FunctionError{Name: name, Msg: "expects 0 arguments"}
		}
		y, m, d := time.Now().Date()
		return dataset.NumCell(float64(y*10000 + int(m)*100 + d)), nil
	case "INTCK":
		return callIntck(name, args)
	case "INTNX":
		return callIntnx(name, args)
	default:
		return dataset.Cell{}, &FunctionError{Name: name, Msg: "unknown function"}
	}
}

func str1(name string, args []dataset.Cell, f func(string) string) (dataset.Cell, error) {
	if len(args) != 1 {
		return dataset.Cell{}, &FunctionError{Name: name, Msg: "expects 1 argument"}
	}
	return dataset.StrCell(f(args[0].Str)), nil
}

func num1(name string, args []dataset.Cell, f func(float64) float64) (dataset.Cell, error) {
	if len(args) != 1 {
		return dataset.Cell{}, &FunctionError{Name: name, Msg: "expects 1 argument"}
	}
	return dataset.NumCell(f(ToNumber(args[0]))), nil
}

func callSubstr(name string, args []dataset.Cell) (dataset.Cell, error) {
	if len(args) < 2 || len(args) > 3 {
		return dataset.Cell{}, &FunctionError{Name: name, Msg: "expects 2 or 3 arguments"}
	}
	s := args[0].Str
	pos := int(ToNumber(args[1]))
	if pos < 1 || pos > len(s) {
		return dataset.StrCell(""), nil
	}
	n := len(s) - pos + 1
	if len(args) == 3 {
		if want := int(ToNumber(args[2])); want < n {
			n = want
		}
	}
	if n < 0 {
		n = 0
	}
	end := pos - 1 + n
	if end > len(s) {
		end = len(s)
	}
	return dataset.StrCell(s[pos-1 : end]), nil
}

func callRound(name string, args []dataset.Cell) (dataset.Cell, error) {
	if len(args) < 1 || len(args) > 2 {
		return dataset.Cell{}, &FunctionError{Name: name, Msg: "expects 1 or 2 arguments"}
	}
	x := ToNumber(args[0])
	d := 0
	if len(args) == 2 {
		d = int(ToNumber(args[1]))
	}
	scale := math.Pow(10, float64(d))
	return dataset.NumCell(math.Round(x*scale) / scale), nil
}

func callIntck(name string, args []dataset.Cell) (dataset.Cell, error) {
	if len(args) != 3 {
		return dataset.Cell{}, &FunctionError{Name: name, Msg: "expects 3 arguments"}
	}
	if !strings.EqualFold(args[0].Str, "day") {
		return dataset.Cell{}, &FunctionError{Name: name, Msg: "only the 'day' interval is supported"}
	}
	return dataset.NumCell(ToNumber(args[2]) - ToNumber(args[1])), nil
}

func callIntnx(name string, args []dataset.Cell) (dataset.Cell, error) {
	if len(args) < 3 || len(args) > 4 {
		return dataset.Cell{}, &FunctionError{Name: name, Msg: "expects 3 or 4 arguments"}
	}
	if !strings.EqualFold(args[0].Str, "day") {
		return dataset.Cell{}, &FunctionError{Name: name, Msg: "only the 'day' interval is supported"}
	}
	return dataset.NumCell(ToNumber(args[1]) + ToNumber(args[2])), nil
}
