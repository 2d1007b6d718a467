package convert

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Kind classifies a conversion failure.
type Kind int

const (
	KindInvalidArgument Kind = iota + 1
	KindNotFound
	KindIO
	KindLibrary
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindNotFound:
		return "not found"
	case KindIO:
		return "i/o failure"
	case KindLibrary:
		return "pdf library failure"
	default:
		return "unknown"
	}
}

// ConversionError is the single error type crossing the engine boundary.
// The wrapped cause carries a stack trace, so printing with %+v yields a
// full diagnostic trace.
type ConversionError struct {
	Kind Kind
	Op   string // "impose", "merge", ...
	Path string // offending file or directory, if any
	Err  error
}

func (e *ConversionError) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') && e.Err != nil {
			fmt.Fprintf(s, "%s: %s", e.Op, e.Kind)
			if e.Path != "" {
				fmt.Fprintf(s, ": %s", e.Path)
			}
			fmt.Fprintf(s, ": %+v", e.Err)
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// KindOf reports the Kind of err, or 0 if err is not a ConversionError.
func KindOf(err error) Kind {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func invalidArgf(op, format string, args ...interface{}) error {
	return &ConversionError{Kind: KindInvalidArgument, Op: op, Err: errors.Errorf(format, args...)}
}

func notFoundErr(op, path string, cause error) error {
	return &ConversionError{Kind: KindNotFound, Op: op, Path: path, Err: errors.WithStack(cause)}
}

func ioErr(op, path string, cause error) error {
	return &ConversionError{Kind: KindIO, Op: op, Path: path, Err: errors.WithStack(cause)}
}

func libErr(op, path string, cause error) error {
	return &ConversionError{Kind: KindLibrary, Op: op, Path: path, Err: errors.WithStack(cause)}
}
