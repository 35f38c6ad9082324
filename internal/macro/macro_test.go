package macro

import "testing"

func TestLetAndReference(t *testing.T) {
	p := New()
	out, err := p.Expand("%let x = foo; data out; y = &x; run;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := " data out; y = foo; run;"
	if out != want {
		t.Fatalf("want %q, got %q", want, out)
	}
}

// In SAS, single quotes suppress macro resolution; only bare references
// (or double-quoted strings, which this dialect does not support) expand.
func TestLetReferenceInsideSingleQuotesNotExpanded(t *testing.T) {
	p := New()
	out, err := p.Expand("%let x = foo; y = '&x';")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := " y = '&x';"
	if out != want {
		t.Fatalf("want %q, got %q", want, out)
	}
}

func TestGreedyLongestIdentifier(t *testing.T) {
	p := New()
	p.SetVar("abc", "VAL")
	out, err := p.Expand("&abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "VAL" {
		t.Fatalf("want VAL, got %q", out)
	}
}

func TestDotTerminator(t *testing.T) {
	p := New()
	p.SetVar("x", "foo")
	out, err := p.Expand("&x.bar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "foobar" {
		t.Fatalf("want foobar, got %q", out)
	}
}

func TestUnresolvedReferenceIsError(t *testing.T) {
	p := New()
	_, err := p.Expand("&nope")
	if err == nil {
		t.Fatalf("expected an error for unresolved macro variable")
	}
	var macroErr *MacroError
	if !asMacroError(err, &macroErr) {
		t.Fatalf("expected MacroError, got %T: %v", err, err)
	}
}

func asMacroError(err error, target **MacroError) bool {
	if me, ok := err.(*MacroError); ok {
		*target = me
		return true
	}
	return false
}

func TestMacroDefinitionAndCall(t *testing.T) {
	p := New()
	src := "%macro greet(who); x = &who; %mend; %greet(World);"
	out, err := p.Expand(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := " x = World; "
	if out != want {
		t.Fatalf("want %q, got %q", want, out)
	}
}

func TestMacroRedefinitionIsError(t *testing.T) {
	p := New()
	_, err := p.Expand("%macro m(); %mend; %macro m(); %mend;")
	if err == nil {
		t.Fatalf("expected redefinition error")
	}
	if _, ok := err.(*DefinitionError); !ok {
		t.Fatalf("expected DefinitionError, got %T", err)
	}
}

func TestMacroArityMismatch(t *testing.T) {
	p := New()
	_, err := p.Expand("%macro m(a,b); %mend; %m(1);")
	if err == nil {
		t.Fatalf("expected arity error")
	}
	if _, ok := err.(*ArityError); !ok {
		t.Fatalf("expected ArityError, got %T", err)
	}
}

func TestMacroVarsRestoredAfterCall(t *testing.T) {
	p := New()
	p.SetVar("x", "outer")
	_, err := p.Expand("%macro m(x); %mend; %m(inner);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := p.GetVar("x")
	if v != "outer" {
		t.Fatalf("expected macro-local binding to be restored, got %q", v)
	}
}

func TestStringLiteralNotExpanded(t *testing.T) {
	p := New()
	out, err := p.Expand("x = '&notavar';")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "x = '&notavar';" {
		t.Fatalf("expected string literal to pass through unexpanded, got %q", out)
	}
}

func TestDatalinesBlockNotExpanded(t *testing.T) {
	p := New()
	src := "input x $;\ndatalines;\n&notavar 1\n;\nrun;"
	out, err := p.Expand(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != src {
		t.Fatalf("expected datalines block to pass through verbatim:\nwant=%q\ngot=%q", src, out)
	}
}
