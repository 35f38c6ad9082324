package errors

import (
	"strings"
	"testing"

	"github.com/sasds/sasds/internal/lexer"
)

func TestDiagnosticFormatWithSource(t *testing.T) {
	d := NewError(Syntax, lexer.Position{Line: 2, Column: 5}, "expected ';'", "data out;\nset in\nrun;", "prog.sas")
	got := d.Format()
	for _, want := range []string{"ERROR", "Syntactic", "prog.sas:2:5", "set in", "^", "expected ';'"} {
		if !strings.Contains(got, want) {
			t.Fatalf("Format() missing %q in:\n%s", want, got)
		}
	}
}

func TestDiagnosticWarningNoPos(t *testing.T) {
	d := NewWarning(Semantic, lexer.Position{}, "unknown variable", "", "")
	got := d.Format()
	if !strings.Contains(got, "WARN") {
		t.Fatalf("expected WARN severity, got %q", got)
	}
}

func TestDiagnosticNoSourceFallback(t *testing.T) {
	d := NewErrorNoPos(IO, "path not found")
	got := d.Format()
	if !strings.Contains(got, "I/O") || !strings.Contains(got, "path not found") {
		t.Fatalf("unexpected format: %q", got)
	}
}
