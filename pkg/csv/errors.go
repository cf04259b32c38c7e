// Package csv reads and writes delimited text records under fully
// configurable dialects.
package csv

import (
	"errors"
	"fmt"

	"github.com/fieldline/dialect-csv/internal/lexer"
)

// DialectError reports an invalid dialect configuration. It is only ever
// returned by Builder.Build, never during streaming.
type DialectError struct {
	Option  string
	Message string
}

func (e *DialectError) Error() string {
	return "csv: invalid " + e.Option + ": " + e.Message
}

// Format errors raised while reading or writing.
var (
	// ErrUnterminatedQuote indicates a quoted field still open at EOF.
	ErrUnterminatedQuote = lexer.ErrUnterminatedQuote

	// ErrFieldCount indicates a record whose length disagrees with the
	// fixed record length under strict mode.
	ErrFieldCount = errors.New("wrong number of fields")

	// ErrDuplicateHeader indicates a repeated header name under the
	// fail-fast duplicate policy.
	ErrDuplicateHeader = errors.New("duplicate header name")
)

// ParseError is a read-path failure annotated with the record number and
// the position at which the offending construct started.
type ParseError struct {
	// Record is the 1-based number of the record being assembled.
	Record int64
	// Line and Column locate the error in the input (1-based).
	Line   int
	Column int
	// Err is the underlying error.
	Err error
}

func (e *ParseError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("csv: record %d: parse error on line %d, column %d: %v", e.Record, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("csv: record %d: parse error on line %d: %v", e.Record, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
