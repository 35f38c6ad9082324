package datastep

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
	"github.com/sasds/sasds/internal/exec/execlog"
	"github.com/sasds/sasds/internal/pdv"
)

const maxLoopIterations = 1000

// Runner executes compiled DATA steps against a library manager.
type Runner struct {
	Libs *dataset.LibraryManager
	Log  execlog.Logger
}

// NewRunner builds a Runner over libs, logging through log.
func NewRunner(libs *dataset.LibraryManager, log execlog.Logger) *Runner {
	return &Runner{Libs: libs, Log: log}
}

func (r *Runner) resolveLibrary(libref string) (*dataset.Library, error) {
	if libref == "" {
		libref = "WORK"
	}
	lib, ok := r.Libs.GetLibrary(libref)
	if !ok {
		return nil, fmt.Errorf("undefined libref %s", strings.ToUpper(libref))
	}
	return lib, nil
}

// Run compiles and executes a DATA step (spec §4.6).
func (r *Runner) Run(ds *ast.DataStep) error {
	step := Compile(ds)
	return r.runStep(step)
}

func kindOf(isNumeric bool) dataset.Kind {
	if isNumeric {
		return dataset.Numeric
	}
	return dataset.Character
}

func appendPdvRow(ds *dataset.Dataset, vec *pdv.Vector) {
	for i := 0; i < vec.Len(); i++ {
		v := vec.VarAt(i)
		idx := ds.FindColumn(v.Name)
		if idx < 0 {
			ds.AddColumn(dataset.VariableDef{
				Name: v.Name, Kind: kindOf(v.IsNumeric), Length: v.Length,
				Label: v.Label, Format: v.Format, Decimals: v.Decimals, Retained: v.Retained,
			})
		} else if !v.IsNumeric {
			ds.WidenLength(idx, v.Length)
		}
	}
	row := make(dataset.Row, len(ds.Catalog))
	for i, col := range ds.Catalog {
		row[i] = vec.GetByName(col.Name)
	}
	ds.AppendRow(row)
}

// applyDropKeep projects ds's columns per spec §4.6's "KEEP is the
// whitelist, DROP removes, intersection KEEP-DROP wins when both given".
func applyDropKeep(ds *dataset.Dataset, step *Step) *dataset.Dataset {
	if len(step.DropNames) == 0 && len(step.KeepNames) == 0 {
		return ds
	}
	keep := step.KeepNames
	if len(keep) == 0 {
		keep = ds.ColumnNames()
	}
	dropSet := map[string]bool{}
	for _, n := range step.DropNames {
		dropSet[canon(n)] = true
	}
	var final []string
	for _, n := range keep {
		if !dropSet[canon(n)] {
			final = append(final, n)
		}
	}
	return ds.Project(final)
}

func (r *Runner) applyRetain(vec *pdv.Vector, step *Step, ctx *RowCtx) error {
	for _, name := range step.RetainNames {
		init, hasInit := step.RetainInits[canon(name)]
		isNumeric := true
		var initVal dataset.Cell
		if hasInit {
			v, err := Eval(init, ctx)
			if err != nil {
				return err
			}
			initVal = v
			isNumeric = v.Kind == dataset.Numeric
		} else {
			initVal = dataset.MissingNumCell()
		}
		length := 8
		if !isNumeric {
			length = len(initVal.Str)
		}
		idx := vec.AddVariable(pdv.Var{Name: name, IsNumeric: isNumeric, Length: length})
		vec.SetRetainFlag(idx, true)
		vec.Set(idx, initVal)
	}
	return nil
}

func (r *Runner) runStep(step *Step) error {
	if len(step.Outputs) == 0 {
		return fmt.Errorf("datastep: no output dataset declared")
	}
	vec := pdv.New()
	ctx := &RowCtx{Pdv: vec, Arrays: step.Arrays, Log: r.Log}
	if err := r.applyRetain(vec, step, ctx); err != nil {
		return err
	}

	primary := step.Outputs[0]
	outLib, err := r.resolveLibrary(primary.Libref)
	if err != nil {
		return err
	}
	staging := dataset.New(outLib.Libref, primary.Name)
	explicit := hasExplicitOutput(step.RunBody)

	emitIfDue := func() error {
		if !explicit || ctx.OutputFired {
			appendPdvRow(staging, vec)
		}
		ctx.OutputFired = false
		return nil
	}

	switch {
	case len(step.MergeRefs) > 0:
		if err := r.runMerge(step, vec, ctx, staging, explicit); err != nil {
			return err
		}
	case step.SetRef != nil:
		lib, err := r.resolveLibrary(step.SetRef.Libref)
		if err != nil {
			return err
		}
		inDs, err := lib.GetOrCreateDataset(step.SetRef.Name)
		if err != nil {
			return err
		}
		vec.InitFromDataset(inDs)
		for i, row := range inDs.Rows {
			if i > 0 {
				vec.ResetNonRetained()
			}
			vec.LoadRow(inDs, row)
			if err := r.execBody(step.RunBody, ctx); err != nil {
				return err
			}
			if err := emitIfDue(); err != nil {
				return err
			}
		}
	case step.HasDatalines:
		if err := r.runDatalines(step, vec, ctx, emitIfDue); err != nil {
			return err
		}
	default:
		// No input, no datalines: run the body once (spec §9 open question
		// 1, resolved here in favor of a single pass — otherwise a
		// standalone step that builds an output purely from ARRAY/DO/OUTPUT
		// logic, like spec §8's array scenario, would never emit a row).
		if err := r.execBody(step.RunBody, ctx); err != nil {
			return err
		}
		if err := emitIfDue(); err != nil {
			return err
		}
	}

	final := applyDropKeep(staging, step)
	for _, ref := range step.Outputs {
		lib, err := r.resolveLibrary(ref.Libref)
		if err != nil {
			return err
		}
		if err := lib.SaveDataset(ref.Name, final); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runDatalines(step *Step, vec *pdv.Vector, ctx *RowCtx, emitIfDue func() error) error {
	for _, line := range step.DatalinesLines {
		fields := strings.Fields(line)
		for i, decl := range step.InputVars {
			var cell dataset.Cell
			if i >= len(fields) {
				cell = blankFor(decl.IsString)
			} else if decl.IsString {
				cell = dataset.StrCell(fields[i])
			} else if n, err := strconv.ParseFloat(fields[i], 64); err == nil {
				cell = dataset.NumCell(n)
			} else {
				cell = dataset.MissingNumCell()
			}
			length := 8
			if decl.IsString {
				length = len(cell.Str)
				if length == 0 {
					length = 1
				}
			}
			idx := vec.AddVariable(pdv.Var{Name: decl.Name, IsNumeric: !decl.IsString, Length: length})
			vec.Set(idx, cell)
		}
		if err := r.execBody(step.RunBody, ctx); err != nil {
			return err
		}
		if err := emitIfDue(); err != nil {
			return err
		}
		vec.ResetNonRetained()
	}
	return nil
}

func blankFor(isString bool) dataset.Cell {
	if isString {
		return dataset.StrCell("")
	}
	return dataset.MissingNumCell()
}

func (r *Runner) execBody(body []ast.Statement, ctx *RowCtx) error {
	for _, stmt := range body {
		if err := r.execStmt(stmt, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) execStmt(stmt ast.Statement, ctx *RowCtx) error {
	switch s := stmt.(type) {
	case *ast.AssignStatement:
		return r.execAssign(s, ctx)
	case *ast.OutputStatement:
		ctx.OutputFired = true
		return nil
	case *ast.IfStatement:
		return r.execIf(s, ctx)
	case *ast.BlockStatement:
		return r.execBody(s.Statements, ctx)
	case *ast.DoStatement:
		return r.execDo(s, ctx)
	case *ast.ExpressionStatement:
		_, err := Eval(s.Expression, ctx)
		return err
	case *ast.DropStatement, *ast.KeepStatement, *ast.RetainStatement,
		*ast.ArrayStatement, *ast.SetStatement, *ast.MergeStatement, *ast.ByStatement:
		// Consumed entirely during compilation; nothing to do per row.
		return nil
	default:
		return fmt.Errorf("datastep: unsupported statement %T", stmt)
	}
}

func (r *Runner) execAssign(s *ast.AssignStatement, ctx *RowCtx) error {
	val, err := Eval(s.Value, ctx)
	if err != nil {
		return err
	}
	if s.ArrayIndex != nil {
		target, err := resolveArrayTarget(s.Target, s.ArrayIndex, ctx)
		if err != nil {
			return err
		}
		ctx.Pdv.SetByName(target, val)
		return nil
	}
	ctx.Pdv.SetByName(s.Target, val)
	return nil
}

func (r *Runner) execIf(s *ast.IfStatement, ctx *RowCtx) error {
	cond, err := Eval(s.Condition, ctx)
	if err != nil {
		return err
	}
	if ToBool(ToNumber(cond)) {
		return r.execStmt(s.Consequence, ctx)
	}
	for _, ei := range s.ElseIfs {
		eiCond, err := Eval(ei.Condition, ctx)
		if err != nil {
			return err
		}
		if ToBool(ToNumber(eiCond)) {
			return r.execStmt(ei.Body, ctx)
		}
	}
	if s.Alternative != nil {
		return r.execStmt(s.Alternative, ctx)
	}
	return nil
}

func (r *Runner) execDo(s *ast.DoStatement, ctx *RowCtx) error {
	switch s.Kind {
	case ast.DoWhile:
		for i := 0; ; i++ {
			if i >= maxLoopIterations {
				ctx.Log.Warnf("DO WHILE loop exceeded %d iterations, breaking", maxLoopIterations)
				break
			}
			cond, err := Eval(s.Condition, ctx)
			if err != nil {
				return err
			}
			if !ToBool(ToNumber(cond)) {
				break
			}
			if err := r.execBody(s.Body.Statements, ctx); err != nil {
				return err
			}
		}
		return nil
	case ast.DoUntil:
		for i := 0; ; i++ {
			if i >= maxLoopIterations {
				ctx.Log.Warnf("DO UNTIL loop exceeded %d iterations, breaking", maxLoopIterations)
				break
			}
			if err := r.execBody(s.Body.Statements, ctx); err != nil {
				return err
			}
			cond, err := Eval(s.Condition, ctx)
			if err != nil {
				return err
			}
			if ToBool(ToNumber(cond)) {
				break
			}
		}
		return nil
	default: // ast.DoTo
		startCell, err := Eval(s.Start, ctx)
		if err != nil {
			return err
		}
		endCell, err := Eval(s.End, ctx)
		if err != nil {
			return err
		}
		step := 1.0
		if s.Step != nil {
			stepCell, err := Eval(s.Step, ctx)
			if err != nil {
				return err
			}
			step = ToNumber(stepCell)
		}
		if step == 0 {
			return &DoStepZeroError{}
		}
		start, end := ToNumber(startCell), ToNumber(endCell)
		idx := ctx.Pdv.SetByName(s.Var, dataset.NumCell(start))
		for i := 0; ; i++ {
			v := ctx.Pdv.Get(idx)
			cur := ToNumber(v)
			if step > 0 && cur > end {
				break
			}
			if step < 0 && cur < end {
				break
			}
			if i >= maxLoopIterations {
				ctx.Log.Warnf("DO loop exceeded %d iterations, breaking", maxLoopIterations)
				break
			}
			if err := r.execBody(s.Body.Statements, ctx); err != nil {
				return err
			}
			cur = ToNumber(ctx.Pdv.Get(idx))
			ctx.Pdv.Set(idx, dataset.NumCell(cur+step))
		}
		return nil
	}
}
