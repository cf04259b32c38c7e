// Package rows is the seam between tabular data sources and the csv
// printer: ordered column names plus a lazy sequence of ordered nullable
// field sequences. Database clients stay outside the codec; anything with
// a cursor can be adapted to Rows.
package rows

// Rows walks a tabular result set.
//
// Next advances to the next row and reports whether one is available.
// Scan returns the current row's values; a nil element is a null field.
// Columns returns the ordered column names.
// Err reports the first error encountered while iterating.
type Rows interface {
	Next() bool
	Scan() ([]any, error)
	Columns() ([]string, error)
	Err() error
}
