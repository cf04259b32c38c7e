package rows

import "database/sql"

// sqlRows adapts a *sql.Rows result set to the Rows interface, scanning
// every column into an untyped slot so null columns surface as nil.
type sqlRows struct {
	rows    *sql.Rows
	columns []string
	values  []any
	ptrs    []any
}

// FromSQL wraps a database/sql result set.
func FromSQL(rs *sql.Rows) Rows {
	return &sqlRows{rows: rs}
}

func (s *sqlRows) Next() bool {
	return s.rows.Next()
}

func (s *sqlRows) Columns() ([]string, error) {
	if s.columns != nil {
		return s.columns, nil
	}
	cols, err := s.rows.Columns()
	if err != nil {
		return nil, err
	}
	s.columns = cols
	return s.columns, nil
}

func (s *sqlRows) Scan() ([]any, error) {
	cols, err := s.Columns()
	if err != nil {
		return nil, err
	}
	if s.values == nil {
		s.values = make([]any, len(cols))
		s.ptrs = make([]any, len(cols))
	}
	for i := range s.values {
		s.values[i] = nil
		s.ptrs[i] = &s.values[i]
	}
	if err := s.rows.Scan(s.ptrs...); err != nil {
		return nil, err
	}
	return s.values, nil
}

func (s *sqlRows) Err() error {
	return s.rows.Err()
}
