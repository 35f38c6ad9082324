// Package proc implements the whole-table PROC executors of spec.md §4.7:
// SORT, MEANS, FREQ, PRINT, and a minimal SQL SELECT/CREATE TABLE. Every
// PROC reduces to a straightforward pass over the same Dataset/Cell model
// the DATA-step executor uses, so this package leans directly on
// internal/exec/sortutil and internal/exec/datastep rather than
// reimplementing expression evaluation or row comparison.
package proc

import (
	"fmt"
	"io"
	"strings"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/dataset"
	"github.com/sasds/sasds/internal/exec/execlog"
)

// Runner executes PROC statements against a library manager, writing
// PRINT/MEANS/FREQ reports to a list sink distinct from the log sink (spec
// §6: "Two sinks... both line-oriented text").
type Runner struct {
	Libs *dataset.LibraryManager
	Log  execlog.Logger
	List io.Writer

	// Title is the most recent TITLE statement's text; the driver updates
	// it before invoking Run so PRINT/MEANS/FREQ reports can headline it.
	Title string
}

// NewRunner builds a Runner over libs, logging through log and writing
// report output to list.
func NewRunner(libs *dataset.LibraryManager, log execlog.Logger, list io.Writer) *Runner {
	return &Runner{Libs: libs, Log: log, List: list}
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

// Run dispatches a top-level Proc or SQLStatement node (spec §4.7). An
// UnsupportedSQL node logs a warning and is otherwise a no-op, matching
// the DATA-step convention that one bad construct doesn't abort the
// program (spec §7).
func (r *Runner) Run(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.Proc:
		switch s.Kind {
		case ast.ProcSort:
			return r.runSort(s)
		case ast.ProcMeans:
			return r.runMeans(s)
		case ast.ProcFreq:
			return r.runFreq(s)
		case ast.ProcPrint:
			return r.runPrint(s)
		default:
			return fmt.Errorf("proc: unsupported proc kind %v", s.Kind)
		}
	case *ast.SQLStatement:
		return r.runSQL(s)
	case *ast.UnsupportedSQL:
		r.Log.Warnf("unsupported SQL construct ignored: %s", s.Reason)
		return nil
	default:
		return fmt.Errorf("proc: unsupported statement %T", stmt)
	}
}

func outputRef(data, out ast.DatasetRef) ast.DatasetRef {
	if out.Name == "" {
		return data
	}
	return out
}

func printTitle(w io.Writer, title string) {
	if title != "" {
		fmt.Fprintln(w, title)
	}
}
