package rows

// sliceRows serves an in-memory table. It backs tests and small exports
// where the data is already materialized.
type sliceRows struct {
	columns []string
	data    [][]any
	index   int
}

// FromSlice wraps column names and row data. Rows may be ragged; nil
// elements are null fields.
func FromSlice(columns []string, data [][]any) Rows {
	return &sliceRows{columns: columns, data: data, index: -1}
}

func (s *sliceRows) Next() bool {
	if s.index+1 >= len(s.data) {
		return false
	}
	s.index++
	return true
}

func (s *sliceRows) Scan() ([]any, error) {
	return s.data[s.index], nil
}

func (s *sliceRows) Columns() ([]string, error) {
	return s.columns, nil
}

func (s *sliceRows) Err() error {
	return nil
}
