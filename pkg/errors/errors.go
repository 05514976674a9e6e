// Package errors defines the failure kinds a preprocessing run reports.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindFileNotFound Kind = "FILE_NOT_FOUND"
	KindLoadFailure  Kind = "LOAD_FAILURE"
	KindMissingCols  Kind = "MISSING_COLUMNS"
	KindSplitFailure Kind = "SPLIT_FAILURE"
	KindWriteFailure Kind = "WRITE_FAILURE"

	// KindUnrecognizedTarget is only ever logged as a warning.
	KindUnrecognizedTarget Kind = "UNRECOGNIZED_TARGET_TYPE"
)

// Error is a classified pipeline failure naming the offending path or columns.
type Error struct {
	Kind    Kind
	Path    string
	Columns []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " ")))
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if len(e.Columns) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Columns, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func FileNotFound(path string, err error) *Error {
	return &Error{Kind: KindFileNotFound, Path: path, Err: err}
}

func LoadFailure(path string, err error) *Error {
	return &Error{Kind: KindLoadFailure, Path: path, Err: err}
}

// MissingColumns names every absent column.
func MissingColumns(cols []string) *Error {
	return &Error{Kind: KindMissingCols, Columns: append([]string(nil), cols...)}
}

func SplitFailure(err error) *Error {
	return &Error{Kind: KindSplitFailure, Err: err}
}

func WriteFailure(path string, err error) *Error {
	return &Error{Kind: KindWriteFailure, Path: path, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool { return KindOf(err) == k }
