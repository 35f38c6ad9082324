// Package execlog declares the minimal logging surface the DATA-step and
// PROC executors need, so they stay decoupled from the driver's concrete
// log-sink implementation (spec.md §4.8/§6: NOTE/INFO/WARN/ERROR diagnostics).
package execlog

// Logger receives diagnostics emitted during step execution. Implementations
// live in internal/driver (plus Discard below).
type Logger interface {
	Notef(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Discard is a Logger that drops everything, used by tests that don't care
// about log output.
type Discard struct{}

func (Discard) Notef(string, ...any)  {}
func (Discard) Warnf(string, ...any)  {}
func (Discard) Errorf(string, ...any) {}
