package kernel

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	// ErrEmptyOperand is returned when a boolean operation receives a solid without faces.
	ErrEmptyOperand = errors.New("empty operand")
	// ErrEmptyResult is returned when a boolean operation removes every face.
	ErrEmptyResult = errors.New("result is empty")
	// ErrNoFaces is returned when no valid face can be built from the input.
	ErrNoFaces = errors.New("no valid faces")
	// ErrTriangulate is returned when a non-convex face loop has no ear to clip.
	ErrTriangulate = errors.New("face loop cannot be triangulated")
)

// OpError reports a failed boolean operation.
type OpError struct {
	Op    string // "union", "difference" or "intersection"
	Err   error
	stack []byte
}

func (e *OpError) Error() string {
	return "boolean " + e.Op + " operation failed: " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

// Stack returns the goroutine stack captured when the operation panicked,
// or nil if it failed without panicking.
func (e *OpError) Stack() []byte { return e.stack }

// guard converts a panic during op into an *OpError stored in err.
func guard(op string, err *error) {
	a := recover()
	if a == nil {
		return
	}
	perr, ok := a.(error)
	if !ok {
		perr = fmt.Errorf("%v", a)
	}
	*err = &OpError{Op: op, Err: perr, stack: debug.Stack()}
}
