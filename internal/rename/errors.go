package rename

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a rename failure. The set is closed.
type ErrorKind int

const (
	// KindExecuted: Execute was called on an operation that already ran.
	KindExecuted ErrorKind = iota + 1
	// KindSourceNotFound: preflight found missing sources.
	KindSourceNotFound
	// KindTargetExists: a target exists under ModeError.
	KindTargetExists
	// KindTargetDirNotWritable: no placeholder could be created in the target's directory.
	KindTargetDirNotWritable
	// KindIO: any other filesystem failure during staging or commit.
	KindIO
	// KindIllegalOperation: a path has no file name or no parent directory.
	KindIllegalOperation
)

var (
	// ErrExecuted indicates the operation has already been executed.
	ErrExecuted = errors.New("already executed")

	// ErrSourceNotFound indicates one or more sources do not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrTargetExists indicates a target path is already taken.
	ErrTargetExists = errors.New("target already exists")

	// ErrTargetDirNotWritable indicates the target directory rejected the staging placeholder.
	ErrTargetDirNotWritable = errors.New("target directory not writable")

	// ErrIO indicates a filesystem failure while moving an entry.
	ErrIO = errors.New("io error")

	// ErrIllegalOperation indicates a structurally invalid path.
	ErrIllegalOperation = errors.New("illegal operation")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindExecuted:
		return ErrExecuted
	case KindSourceNotFound:
		return ErrSourceNotFound
	case KindTargetExists:
		return ErrTargetExists
	case KindTargetDirNotWritable:
		return ErrTargetDirNotWritable
	case KindIO:
		return ErrIO
	case KindIllegalOperation:
		return ErrIllegalOperation
	default:
		return nil
	}
}

func (k ErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the error returned by every rename operation.
//
// Pair is the offending pair for per-pair kinds. Missing lists every absent
// source for KindSourceNotFound. Err is the underlying OS error, if any.
type Error struct {
	Kind    ErrorKind
	Pair    Pair
	Missing []Pair
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindSourceNotFound:
		sources := make([]string, len(e.Missing))
		for i, p := range e.Missing {
			sources[i] = p.Source
		}
		return fmt.Sprintf("%s: %s", ErrSourceNotFound, strings.Join(sources, ", "))
	case KindTargetExists:
		return fmt.Sprintf("%s: %s", ErrTargetExists, e.Pair.Target)
	case KindTargetDirNotWritable:
		return fmt.Sprintf("%s: %s: %v", ErrTargetDirNotWritable, e.Pair.Target, e.Err)
	case KindIO:
		return fmt.Sprintf("%s: %s -> %s: %v", ErrIO, e.Pair.Source, e.Pair.Target, e.Err)
	case KindIllegalOperation:
		if e.Pair.Target != "" {
			return fmt.Sprintf("%s: %q", ErrIllegalOperation, e.Pair.Target)
		}
		return ErrIllegalOperation.Error()
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying OS error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func newError(kind ErrorKind, pair Pair, err error) *Error {
	return &Error{Kind: kind, Pair: pair, Err: err}
}
