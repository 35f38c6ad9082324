// Package errors formats diagnostics the way spec.md §7 requires: every
// error carries a category, a message, and (when available) a source
// position rendered with a caret under the offending column. No stack
// traces are ever included.
package errors

import (
	"fmt"
	"strings"

	"github.com/sasds/sasds/internal/lexer"
)

// Category is the contract-level error taxonomy of spec.md §7.
type Category string

const (
	Lexical  Category = "Lexical"
	Syntax   Category = "Syntactic"
	Semantic Category = "Semantic"
	Macro    Category = "Macro"
	IO       Category = "I/O"
	Runtime  Category = "Runtime"
)

// Diagnostic is a single error or warning with optional source context.
type Diagnostic struct {
	Category Category
	Message  string
	Pos      lexer.Position
	HasPos   bool
	Source   string
	File     string
	Warning  bool
}

func NewError(cat Category, pos lexer.Position, msg, source, file string) *Diagnostic {
	return &Diagnostic{Category: cat, Message: msg, Pos: pos, HasPos: true, Source: source, File: file}
}

func NewErrorNoPos(cat Category, msg string) *Diagnostic {
	return &Diagnostic{Category: cat, Message: msg}
}

func NewWarning(cat Category, pos lexer.Position, msg, source, file string) *Diagnostic {
	return &Diagnostic{Category: cat, Message: msg, Pos: pos, HasPos: true, Source: source, File: file, Warning: true}
}

// Error implements the error interface.
func (d *Diagnostic) Error() string { return d.Format() }

// Format renders the diagnostic as a log-sink line: severity/category
// header, a source line with a caret, and the message.
func (d *Diagnostic) Format() string {
	var sb strings.Builder

	severity := "ERROR"
	if d.Warning {
		severity = "WARN"
	}

	if d.HasPos {
		if d.File != "" {
			fmt.Fprintf(&sb, "%s [%s] %s:%d:%d: %s\n", severity, d.Category, d.File, d.Pos.Line, d.Pos.Column, d.Message)
		} else {
			fmt.Fprintf(&sb, "%s [%s] line %d:%d: %s\n", severity, d.Category, d.Pos.Line, d.Pos.Column, d.Message)
		}
		if line := sourceLine(d.Source, d.Pos.Line); line != "" {
			prefix := fmt.Sprintf("%4d | ", d.Pos.Line)
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteString("\n")
			col := d.Pos.Column
			if col < 1 {
				col = 1
			}
			sb.WriteString(strings.Repeat(" ", len(prefix)+col-1))
			sb.WriteString("^")
			return sb.String()
		}
		return strings.TrimRight(sb.String(), "\n")
	}

	fmt.Fprintf(&sb, "%s [%s] %s", severity, d.Category, d.Message)
	return sb.String()
}

func sourceLine(source string, line int) string {
	if source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// FormatAll renders a batch of diagnostics, one per blank-line-separated
// block, in the order given.
func FormatAll(diags []*Diagnostic) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = d.Format()
	}
	return strings.Join(parts, "\n\n")
}
