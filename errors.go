package avro

import (
	"fmt"
	"strings"
)

// SerializationError is the error interface returned by everything in the
// encode path (spec §7). It is implemented by *MismatchError and
// *CustomError; Compile's *SchemaError is a plain error outside this
// interface, since it never travels through a path-decorated encode. I/O
// errors from the sink are returned unwrapped, exactly
// as spec §7 specifies ("I/O errors propagate unwrapped").
type SerializationError interface {
	error
	// path returns this error's current breadcrumb trail, root to leaf.
	path() []string
	// withPath returns a copy of this error with (typeName, field) pushed to
	// the front of its path, implementing spec §4.4's path-tracked wrapping.
	withPath(typeName, field string) SerializationError
}

// MismatchError reports that no union variant matched, and the cursor's own
// kind disagreed with the observed event kind (spec §7 "SchemaMismatch").
type MismatchError struct {
	Expected SSchema
	Found    SchemaKind
	Path     []string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("avro: expected %s, found %s (path: %s)",
		e.Expected.Kind(), e.Found, formatPath(e.Path))
}

func (e *MismatchError) path() []string { return e.Path }

func (e *MismatchError) withPath(typeName, field string) SerializationError {
	return &MismatchError{Expected: e.Expected, Found: e.Found, Path: prependPath(e.Path, typeName, field)}
}

// CustomError is a free-form producer- or encoder-raised error (spec §7
// "Custom"): ambiguous unions, unknown enum symbols, fixed-size mismatches,
// out-of-order/missing/extra struct fields, non-string map keys, sequences
// without a declared length, malformed tag envelopes.
type CustomError struct {
	Message string
	Path    []string
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%s (path: %s)", e.Message, formatPath(e.Path))
}

func (e *CustomError) path() []string { return e.Path }

func (e *CustomError) withPath(typeName, field string) SerializationError {
	return &CustomError{Message: e.Message, Path: prependPath(e.Path, typeName, field)}
}

// customf builds a *CustomError with a printf-formatted message and an empty
// path; withPath fills the path in as the error propagates outward.
func customf(format string, args ...interface{}) *CustomError {
	return &CustomError{Message: fmt.Sprintf(format, args...)}
}

func formatPath(path []string) string {
	return "[" + strings.Join(path, " ") + "]"
}

// prependPath implements spec §4.4: push field (if non-empty) then typeName
// to the front of path, in that order, so the trail reads root-to-leaf.
func prependPath(path []string, typeName, field string) []string {
	next := make([]string, 0, len(path)+2)
	if field != "" {
		next = append(next, typeName, field)
	} else {
		next = append(next, typeName)
	}
	return append(next, path...)
}

// withPath wraps err, if it is a SerializationError, with (typeName, field)
// pushed to the front of its path (spec §4.4). Any other error (notably an
// I/O error from the sink) passes through unchanged, matching spec §7's
// "I/O errors propagate unwrapped".
func withPath(err error, typeName, field string) error {
	if err == nil {
		return nil
	}
	if serr, ok := err.(SerializationError); ok {
		return serr.withPath(typeName, field)
	}
	return err
}
