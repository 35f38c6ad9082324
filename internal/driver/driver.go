// Package driver implements the interpreter driver of spec.md §4.8: it owns
// the DataEnvironment (library manager, OPTIONS, TITLE, macro state), runs
// the macro/lex/parse pipeline over a source buffer, and dispatches each
// top-level statement to the DATA-step or PROC executor, catching runtime
// errors per statement so one bad step never aborts the program (spec §7).
package driver

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/tidwall/sjson"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
	"github.com/sasds/sasds/internal/exec/datastep"
	"github.com/sasds/sasds/internal/exec/proc"
	"github.com/sasds/sasds/internal/lexer"
	"github.com/sasds/sasds/internal/macro"
	"github.com/sasds/sasds/internal/parser"
)

// Exit codes per spec §6.
const (
	ExitOK           = 0
	ExitParseError   = 1
	ExitRuntimeError = 2
)

// Driver is the DataEnvironment of spec §4.8.
type Driver struct {
	Libs    *dataset.LibraryManager
	Macro   *macro.Processor
	Options map[string]string
	Title   string

	LogOut  io.Writer
	ListOut io.Writer
	JSONLog bool

	workDir string

	dsRunner   *datastep.Runner
	procRunner *proc.Runner

	hadParseError   bool
	hadRuntimeError bool
}

// New constructs a Driver with a fresh WORK library backed by a temp
// directory (spec §5: "created at interpreter construction").
func New(logOut, listOut io.Writer) (*Driver, error) {
	workDir, err := os.MkdirTemp("", "sasds-work-")
	if err != nil {
		return nil, fmt.Errorf("driver: cannot create WORK directory: %w", err)
	}
	libs := dataset.NewLibraryManager()
	libs.DefineLibrary(dataset.NewLibrary("WORK", workDir, dataset.Temporary, nil))

	d := &Driver{
		Libs:    libs,
		Macro:   macro.New(),
		Options: map[string]string{},
		LogOut:  logOut,
		ListOut: listOut,
		workDir: workDir,
	}
	d.dsRunner = datastep.NewRunner(libs, d)
	d.procRunner = proc.NewRunner(libs, d, listOut)
	return d, nil
}

// Close removes the WORK directory. Best-effort: failures are logged, never
// returned, so shutdown never fails (spec §5).
func (d *Driver) Close() {
	if d.workDir == "" {
		return
	}
	if err := os.RemoveAll(d.workDir); err != nil {
		d.Warnf("could not remove WORK directory %s: %v", d.workDir, err)
	}
}

// Notef, Warnf, and Errorf implement execlog.Logger, routing every
// executor-level diagnostic through the same log sink as parse errors.
func (d *Driver) Notef(format string, args ...any) { d.writeLog("NOTE", format, args...) }
func (d *Driver) Warnf(format string, args ...any) { d.writeLog("WARN", format, args...) }
func (d *Driver) Errorf(format string, args ...any) {
	d.writeLog("ERROR", format, args...)
	d.hadRuntimeError = true
}

func (d *Driver) writeLog(level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if d.JSONLog {
		b, _ := sjson.SetBytes(nil, "level", level)
		b, _ = sjson.SetBytes(b, "message", msg)
		fmt.Fprintln(d.LogOut, string(b))
		return
	}
	fmt.Fprintf(d.LogOut, "%s: %s\n", level, msg)
}

// timeStep returns a closure that logs the elapsed wall time when called,
// the RAII-style step timer of spec §5: "brackets a DATA/PROC execution...
// regardless of the exit path".
func (d *Driver) timeStep(label string) func() {
	start := time.Now()
	return func() {
		d.Notef("%s elapsed %s", label, time.Since(start).Round(time.Microsecond))
	}
}

func stepLabel(stmt ast.Statement) string {
	switch s := stmt.(type) {
	case *ast.DataStep:
		if len(s.Outputs) > 0 {
			return "data " + s.Outputs[0].String()
		}
		return "data step"
	case *ast.Proc:
		return s.String()
	case *ast.SQLStatement:
		return "proc sql"
	default:
		return fmt.Sprintf("%T", stmt)
	}
}

// RunSource expands macros, parses, and executes every top-level statement
// of source, returning the driver's exit code (spec §6).
func (d *Driver) RunSource(source, filename string) int {
	expanded, err := d.Macro.Expand(source)
	if err != nil {
		d.Errorf("macro: %v", err)
		return ExitParseError
	}
	return d.RunExpanded(expanded, filename)
}

// ExpandOnly runs the macro pass alone, for callers (e.g. a --dump-ast CLI
// flag) that need the post-expansion source without also executing it.
// Expanding the same source twice would re-register %macro definitions and
// trip the redefinition error (spec §4.3), so any caller that expands
// source itself must continue on to RunExpanded rather than calling
// RunSource a second time.
func (d *Driver) ExpandOnly(source string) (string, error) {
	return d.Macro.Expand(source)
}

// RunExpanded parses and executes every top-level statement of an
// already-macro-expanded source, returning the driver's exit code.
func (d *Driver) RunExpanded(expanded, filename string) int {
	l := lexer.New(expanded)
	p := parser.New(l)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			d.writeLog("ERROR", "%s: %s", filename, e)
		}
		d.hadParseError = true
	}

	for _, stmt := range prog.Statements {
		d.dispatch(stmt)
	}

	switch {
	case d.hadParseError:
		return ExitParseError
	case d.hadRuntimeError:
		return ExitRuntimeError
	default:
		return ExitOK
	}
}

// dispatch routes one top-level statement per spec §4.8 and catches any
// runtime error so it doesn't abort the remaining program (spec §7).
func (d *Driver) dispatch(stmt ast.Statement) {
	done := d.timeStep(stepLabel(stmt))
	defer done()

	var err error
	switch s := stmt.(type) {
	case *ast.DataStep:
		err = d.dsRunner.Run(s)
	case *ast.Proc:
		d.procRunner.Title = d.Title
		err = d.procRunner.Run(s)
	case *ast.SQLStatement:
		d.procRunner.Title = d.Title
		err = d.procRunner.Run(s)
	case *ast.UnsupportedSQL:
		err = d.procRunner.Run(s)
	case *ast.OptionsStatement:
		d.applyOptions(s)
	case *ast.LibnameStatement:
		err = d.defineLibrary(s)
	case *ast.TitleStatement:
		d.Title = s.Text
	case *ast.MacroLet, *ast.MacroDefinition, *ast.MacroCall:
		// Macro expansion already ran over the raw source before lexing;
		// these nodes only exist for --dump-ast inspection.
	default:
		err = fmt.Errorf("unsupported top-level statement %T", stmt)
	}
	if err != nil {
		d.Errorf("%v", err)
	}
}

func (d *Driver) applyOptions(s *ast.OptionsStatement) {
	for k, v := range s.Options {
		d.Options[strings.ToUpper(k)] = v
	}
}

// defineLibrary implements LIBNAME (spec §4.4): it succeeds iff Path
// exists on disk.
func (d *Driver) defineLibrary(s *ast.LibnameStatement) error {
	info, err := os.Stat(s.Path)
	if err != nil {
		return fmt.Errorf("libname %s: %w", strings.ToUpper(s.Libref), err)
	}
	if !info.IsDir() {
		return fmt.Errorf("libname %s: %s is not a directory", strings.ToUpper(s.Libref), s.Path)
	}
	access := dataset.ReadWrite
	if strings.Contains(strings.ToUpper(s.Access), "READ") {
		access = dataset.ReadOnly
	}
	d.Libs.DefineLibrary(dataset.NewLibrary(s.Libref, s.Path, access, nil))
	d.Notef("libref %s defined as %s (%s)", strings.ToUpper(s.Libref), s.Path, access)
	return nil
}
