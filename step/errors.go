package step

import (
	"errors"
	"fmt"
)

// Status is the outcome of reading a STEP file. The numeric values follow
// the return codes reported by common STEP translators.
type Status int

const (
	StatusVoid      Status = iota // nothing read: file missing or empty
	StatusDone                    // read succeeded
	StatusMalformed               // syntax or data error in the file
	StatusFail                    // file read but no supported shape found
	StatusStop                    // reading interrupted
)

func (s Status) String() string {
	switch s {
	case StatusVoid:
		return "void"
	case StatusDone:
		return "done"
	case StatusMalformed:
		return "error"
	case StatusFail:
		return "fail"
	case StatusStop:
		return "stop"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// StatusError is returned by Load when a file can not be turned into faces.
type StatusError struct {
	Path   string
	Status Status
	Err    error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("error reading STEP file: %s, status: %d", e.Path, int(e.Status))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StatusError) Unwrap() error { return e.Err }

var (
	// ErrNoShell is returned when a file holds no CLOSED_SHELL.
	ErrNoShell = errors.New("no closed shell found")
	// ErrUnsupported is wrapped by errors about geometry outside the planar
	// faceted subset.
	ErrUnsupported = errors.New("unsupported geometry")
)

// SyntaxError reports malformed Part 21 text.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}
