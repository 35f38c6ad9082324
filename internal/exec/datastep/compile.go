// Package datastep implements the DATA-step executor of spec.md §4.6: a
// pre-scan compilation pass over a parsed DataStep followed by one of two
// row drivers (Mode A over a SET/MERGE input, Mode B over DATALINES).
package datastep

import (
	"strings"

	"github.com/sasds/sasds/internal/ast"
)

func canon(name string) string { return strings.ToUpper(name) }

// ArrayDef is a step-local ARRAY binding (spec §4.6.2): a 1-based subscript
// mapping to underlying PDV variable names.
type ArrayDef struct {
	Name string
	Vars []string
}

// Step is the compiled form of a DataStep, separating the one-time pre-scan
// (spec §4.6 "Compilation") from the per-row program.
type Step struct {
	Outputs []ast.DatasetRef

	InputVars       []ast.InputDecl
	DatalinesLines  []string
	HasDatalines    bool

	DropNames []string
	KeepNames []string

	Arrays map[string]*ArrayDef // canon(name) -> def

	RetainNames []string
	RetainInits map[string]ast.Expression // canon(name) -> initial value expr, nil if none given

	SetRef    *ast.DatasetRef
	MergeRefs []ast.DatasetRef
	ByKeys    []ast.ByKey

	// RunBody is every statement that isn't consumed by the pre-scan:
	// assignments, IF/ELSE, OUTPUT, DO loops.
	RunBody []ast.Statement
}

// Compile pre-scans ds's body per spec §4.6's six-step compilation list.
func Compile(ds *ast.DataStep) *Step {
	step := &Step{
		Outputs:     ds.Outputs,
		Arrays:      map[string]*ArrayDef{},
		RetainInits: map[string]ast.Expression{},
	}
	for _, stmt := range ds.Body {
		switch s := stmt.(type) {
		case *ast.InputStatement:
			step.InputVars = append(step.InputVars, s.Decls...)
		case *ast.DatalinesStatement:
			step.DatalinesLines = append(step.DatalinesLines, s.Lines...)
			step.HasDatalines = true
		case *ast.DropStatement:
			step.DropNames = append(step.DropNames, s.Names...)
		case *ast.KeepStatement:
			step.KeepNames = append(step.KeepNames, s.Names...)
		case *ast.ArrayStatement:
			step.Arrays[canon(s.Name)] = &ArrayDef{Name: s.Name, Vars: s.Variables}
		case *ast.RetainStatement:
			for i, n := range s.Names {
				step.RetainNames = append(step.RetainNames, n)
				if i < len(s.Inits) && s.Inits[i] != nil {
					step.RetainInits[canon(n)] = s.Inits[i]
				}
			}
		case *ast.SetStatement:
			ref := s.Dataset
			step.SetRef = &ref
		case *ast.MergeStatement:
			step.MergeRefs = append(step.MergeRefs, s.Datasets...)
		case *ast.ByStatement:
			step.ByKeys = append(step.ByKeys, s.Keys...)
		default:
			step.RunBody = append(step.RunBody, stmt)
		}
	}
	return step
}

// hasExplicitOutput reports whether any OUTPUT statement occurs anywhere in
// body, including nested inside IF/DO blocks (spec §4.6: "If the step has
// no explicit OUTPUT statements, append at end-of-row; if it has explicit
// OUTPUTs, append only when one fires").
func hasExplicitOutput(body []ast.Statement) bool {
	for _, stmt := range body {
		if statementHasOutput(stmt) {
			return true
		}
	}
	return false
}

func statementHasOutput(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.OutputStatement:
		return true
	case *ast.IfStatement:
		if statementHasOutput(s.Consequence) {
			return true
		}
		for _, ei := range s.ElseIfs {
			if statementHasOutput(ei.Body) {
				return true
			}
		}
		if s.Alternative != nil && statementHasOutput(s.Alternative) {
			return true
		}
	case *ast.BlockStatement:
		return hasExplicitOutput(s.Statements)
	case *ast.DoStatement:
		if s.Body != nil && hasExplicitOutput(s.Body.Statements) {
			return true
		}
	}
	return false
}
