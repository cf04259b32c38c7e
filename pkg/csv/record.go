package csv

// Record is one parsed row: an ordered sequence of nullable text fields,
// optionally resolvable by header name. Records are plain values; they
// stay valid after further Read calls.
type Record struct {
	fields  []*string
	header  map[string]int
	number  int64
	line    int
	charPos int64
	bytePos int64
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Get returns the field at index i, with the empty string standing in for
// null or an out-of-range index.
func (r *Record) Get(i int) string {
	if f := r.Field(i); f != nil {
		return *f
	}
	return ""
}

// Field returns a pointer to the field at index i, nil for a null field or
// an out-of-range index.
func (r *Record) Field(i int) *string {
	if i < 0 || i >= len(r.fields) {
		return nil
	}
	return r.fields[i]
}

// IsNull reports whether the field at index i is null. Out-of-range
// indexes report false.
func (r *Record) IsNull(i int) bool {
	return i >= 0 && i < len(r.fields) && r.fields[i] == nil
}

// ByName returns the field under the given header name. The second result
// is false when no header is mapped, the name is unknown, or the record is
// too short for the mapped index.
func (r *Record) ByName(name string) (string, bool) {
	i, ok := r.header[name]
	if !ok || i >= len(r.fields) {
		return "", false
	}
	if r.fields[i] == nil {
		return "", true
	}
	return *r.fields[i], true
}

// Values returns a copy of the fields with nulls preserved.
func (r *Record) Values() []*string {
	out := make([]*string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Strings returns a copy of the fields with nulls flattened to empty
// strings.
func (r *Record) Strings() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		if f != nil {
			out[i] = *f
		}
	}
	return out
}

// Number returns the 1-based record number, counting a skipped header
// record but not comment lines.
func (r *Record) Number() int64 {
	return r.number
}

// Line returns the 1-based physical line on which the record started,
// counting every line: data, header, comments, and skipped empty lines.
func (r *Record) Line() int {
	return r.line
}

// CharPos returns the character offset at which the record started, or -1
// when position tracking is disabled.
func (r *Record) CharPos() int64 {
	return r.charPos
}

// BytePos returns the encoded byte offset at which the record started, or
// -1 when position tracking is disabled.
func (r *Record) BytePos() int64 {
	return r.bytePos
}
