package driver

import (
	"bytes"
	"strings"
	"testing"
)

func newTestDriver(t *testing.T) (*Driver, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var logBuf, listBuf bytes.Buffer
	d, err := New(&logBuf, &listBuf)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(d.Close)
	return d, &logBuf, &listBuf
}

func TestRunSourceDataStepAndPrint(t *testing.T) {
	d, _, list := newTestDriver(t)
	src := `
data out;
  input x y;
  z = x + y;
  datalines;
1 2
3 4
;
run;

proc print data=out;
run;
`
	code := d.RunSource(src, "<test>")
	if code != ExitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(list.String(), "z") && !strings.Contains(list.String(), "Z") {
		t.Errorf("expected PRINT output to mention column Z, got %q", list.String())
	}
}

func TestRunSourceParseErrorExitsOne(t *testing.T) {
	d, _, _ := newTestDriver(t)
	code := d.RunSource("data ; this is not valid !!! run;", "<test>")
	if code != ExitParseError {
		t.Fatalf("expected exit 1 for a parse error, got %d", code)
	}
}

func TestRunSourceRuntimeErrorExitsTwo(t *testing.T) {
	d, _, _ := newTestDriver(t)
	code := d.RunSource("libname nope '/no/such/path/at/all';", "<test>")
	if code != ExitRuntimeError {
		t.Fatalf("expected exit 2 for an undefined libname path, got %d", code)
	}
}

func TestOptionsAndTitleUpdateEnvironment(t *testing.T) {
	d, _, _ := newTestDriver(t)
	code := d.RunSource("options foo=bar; title 'Report';", "<test>")
	if code != ExitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if d.Options["FOO"] != "bar" {
		t.Errorf("expected OPTIONS to set FOO=bar, got %+v", d.Options)
	}
	if d.Title != "Report" {
		t.Errorf("expected TITLE to be set, got %q", d.Title)
	}
}
