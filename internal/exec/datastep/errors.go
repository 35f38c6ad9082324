package datastep

import "fmt"

// ArrayBoundsError is raised by an out-of-range arr[i] reference (spec §4.6.2).
// Per spec §7 it aborts the step.
type ArrayBoundsError struct {
	Name  string
	Index int
}

func (e *ArrayBoundsError) Error() string {
	return fmt.Sprintf("array %s: subscript %d out of bounds", e.Name, e.Index)
}

// FunctionError covers an unknown function name or a wrong argument count
// (spec §4.6.1 "unknown functions raise FunctionError"). Per spec §7 it
// aborts the step.
type FunctionError struct {
	Name string
	Msg  string
}

func (e *FunctionError) Error() string { return fmt.Sprintf("function %s: %s", e.Name, e.Msg) }

// DoStepZeroError is raised by a DO loop with an explicit BY 0 (spec §4.6.1).
type DoStepZeroError struct{}

func (e *DoStepZeroError) Error() string { return "DO loop step must not be zero" }

// RunawayLoopWarning describes a loop that hit the 1000-iteration guard.
// The executor does not return it: the DO, DO WHILE and DO UNTIL guards in
// exec.go log a warning through ctx.Log and break out of the loop.
type RunawayLoopWarning struct{}

func (e *RunawayLoopWarning) Error() string { return "loop exceeded 1000 iterations, breaking" }
