package lmp91000

import "errors"

// Errors returned by the driver. Transport and pin failures are wrapped so
// that errors.Is matches both the class below and the underlying cause.
var (
	ErrArgument = errors.New("lmp91000: invalid argument")
	ErrBus      = errors.New("lmp91000: bus error")
	ErrNotReady = errors.New("lmp91000: not ready")
	ErrPin      = errors.New("lmp91000: MENB pin error")
)

// RegError records a failed bus transaction against one register.
type RegError struct {
	Op  string // "select", "read" or "write"
	Reg Register
	Err error
}

func (e *RegError) Error() string {
	return "lmp91000: " + e.Op + " " + e.Reg.String() + ": " + e.Err.Error()
}

func (e *RegError) Unwrap() []error { return []error{ErrBus, e.Err} }

// PinError records a failed MENB operation.
type PinError struct {
	Op  string // "configure" or "set"
	Err error
}

func (e *PinError) Error() string { return "lmp91000: menb " + e.Op + ": " + e.Err.Error() }

func (e *PinError) Unwrap() []error { return []error{ErrPin, e.Err} }

type argError struct{ msg string }

func (e *argError) Error() string        { return "lmp91000: " + e.msg }
func (e *argError) Is(target error) bool { return target == ErrArgument }
