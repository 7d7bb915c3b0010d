package lasbounds

import (
	"errors"
	"fmt"
)

// Kind classifies a run failure so callers can branch on its category.
type Kind int

const (
	// KindIO covers unreadable directories, uncreatable outputs and dump
	// write failures.
	KindIO Kind = iota + 1
	// KindFormat is an input that cannot be parsed as a LAS file.
	KindFormat
	// KindDriver is a failure of the vector output backend, including an
	// unresolvable spatial reference.
	KindDriver
	// KindValidation is a value that cannot be derived from the inputs, such
	// as the base name of a path, or an invalid option.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "I/O"
	case KindFormat:
		return "format"
	case KindDriver:
		return "output-driver"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error carries the failing stage, the file involved and the category.
type Error struct {
	Kind Kind
	Op   string // scan, read, write, dump, srs, preview, config
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s error: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the category of err, or 0 if err does not carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func ioErr(op, path string, err error) error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}

func formatErr(op, path string, err error) error {
	return &Error{Kind: KindFormat, Op: op, Path: path, Err: err}
}

func driverErr(op, path string, err error) error {
	return &Error{Kind: KindDriver, Op: op, Path: path, Err: err}
}

func validationErr(op, path string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Path: path, Err: err}
}
