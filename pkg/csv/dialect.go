package csv

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// QuotePolicy decides when the writer wraps a field in the quote character.
type QuotePolicy int

const (
	// QuoteMinimal quotes only fields that would otherwise be ambiguous:
	// those containing the delimiter, the quote character, CR or LF, fields
	// starting with the comment marker, and fields whose surrounding
	// whitespace would not survive a trimming reader.
	QuoteMinimal QuotePolicy = iota
	// QuoteAll quotes every non-null field.
	QuoteAll
	// QuoteNonNumeric quotes every field that is not lexically a number.
	QuoteNonNumeric
	// QuoteNone never quotes; special characters are escaped instead.
	QuoteNone
	// QuoteAllNonNull quotes every field that is not null, including empty
	// strings, so that null and empty remain distinguishable.
	QuoteAllNonNull
)

// String returns the policy name.
func (p QuotePolicy) String() string {
	switch p {
	case QuoteMinimal:
		return "minimal"
	case QuoteAll:
		return "all"
	case QuoteNonNumeric:
		return "non-numeric"
	case QuoteNone:
		return "none"
	case QuoteAllNonNull:
		return "all-non-null"
	default:
		return "QuotePolicy(?)"
	}
}

// Dialect is an immutable description of a delimited-text format: which
// characters structure the stream and how fields are quoted, escaped,
// trimmed, and mapped to null. A Dialect is constructed once through a
// Builder, is safe to share between any number of Parsers and Printers,
// and is compared by value with Equal.
type Dialect struct {
	delimiter        string
	quote            rune
	escape           rune
	comment          rune
	recordSeparator  string
	policy           QuotePolicy
	nullString       string
	hasNullString    bool
	header           []string
	hasHeader        bool
	skipHeaderRecord bool
	trim             bool
	ignoreSpaces     bool
	ignoreEmptyLines bool
	allowDupHeaders  bool
	quotedNullString bool
}

// Delimiter returns the field separator sequence.
func (d Dialect) Delimiter() string { return d.delimiter }

// Quote returns the quote character and whether quoting is enabled.
func (d Dialect) Quote() (rune, bool) { return d.quote, d.quote != 0 }

// Escape returns the escape character and whether escaping is enabled.
func (d Dialect) Escape() (rune, bool) { return d.escape, d.escape != 0 }

// Comment returns the comment marker and whether comments are enabled.
func (d Dialect) Comment() (rune, bool) { return d.comment, d.comment != 0 }

// RecordSeparator returns the separator written after each record.
func (d Dialect) RecordSeparator() string { return d.recordSeparator }

// QuotePolicy returns the write-side quoting policy.
func (d Dialect) QuotePolicy() QuotePolicy { return d.policy }

// NullString returns the null sentinel and whether one is configured.
func (d Dialect) NullString() (string, bool) { return d.nullString, d.hasNullString }

// Header returns a copy of the declared column names and whether a header
// is configured at all. A configured header with no names means the first
// record of the input supplies the names.
func (d Dialect) Header() ([]string, bool) {
	if !d.hasHeader {
		return nil, false
	}
	out := make([]string, len(d.header))
	copy(out, d.header)
	return out, true
}

// SkipHeaderRecord reports whether the first record is consumed as the
// header instead of being surfaced.
func (d Dialect) SkipHeaderRecord() bool { return d.skipHeaderRecord }

// Trim reports whether unquoted field values are trimmed on read.
func (d Dialect) Trim() bool { return d.trim }

// IgnoreSurroundingSpaces reports whether whitespace around unquoted
// fields is discarded while lexing.
func (d Dialect) IgnoreSurroundingSpaces() bool { return d.ignoreSpaces }

// IgnoreEmptyLines reports whether lines holding only a terminator are
// skipped on read.
func (d Dialect) IgnoreEmptyLines() bool { return d.ignoreEmptyLines }

// AllowDuplicateHeaderNames reports the duplicate-header policy:
// last-wins when true, fail-fast when false.
func (d Dialect) AllowDuplicateHeaderNames() bool { return d.allowDupHeaders }

// QuotedNullString reports whether a field that was quoted in the input
// may still match the null sentinel.
func (d Dialect) QuotedNullString() bool { return d.quotedNullString }

// String returns a one-line debug form of the dialect.
func (d Dialect) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "delimiter=%q", d.delimiter)
	if d.quote != 0 {
		fmt.Fprintf(&sb, " quote=%q", d.quote)
	}
	if d.escape != 0 {
		fmt.Fprintf(&sb, " escape=%q", d.escape)
	}
	if d.comment != 0 {
		fmt.Fprintf(&sb, " comment=%q", d.comment)
	}
	fmt.Fprintf(&sb, " separator=%q policy=%s", d.recordSeparator, d.policy)
	if d.hasNullString {
		fmt.Fprintf(&sb, " null=%q", d.nullString)
	}
	return sb.String()
}

// Equal reports value equality of two dialects.
func (d Dialect) Equal(o Dialect) bool {
	if d.delimiter != o.delimiter ||
		d.quote != o.quote ||
		d.escape != o.escape ||
		d.comment != o.comment ||
		d.recordSeparator != o.recordSeparator ||
		d.policy != o.policy ||
		d.nullString != o.nullString ||
		d.hasNullString != o.hasNullString ||
		d.hasHeader != o.hasHeader ||
		d.skipHeaderRecord != o.skipHeaderRecord ||
		d.trim != o.trim ||
		d.ignoreSpaces != o.ignoreSpaces ||
		d.ignoreEmptyLines != o.ignoreEmptyLines ||
		d.allowDupHeaders != o.allowDupHeaders ||
		d.quotedNullString != o.quotedNullString {
		return false
	}
	if len(d.header) != len(o.header) {
		return false
	}
	for i := range d.header {
		if d.header[i] != o.header[i] {
			return false
		}
	}
	return true
}

// Builder constructs Dialect values. Methods return the Builder for
// chaining; Build validates the combination and returns the immutable
// result.
type Builder struct {
	d Dialect
}

// NewBuilder starts from the default dialect: comma delimiter, double
// quote, CRLF separator, minimal quoting, empty lines ignored.
func NewBuilder() *Builder {
	return &Builder{d: Dialect{
		delimiter:        ",",
		quote:            '"',
		recordSeparator:  "\r\n",
		policy:           QuoteMinimal,
		ignoreEmptyLines: true,
		allowDupHeaders:  true,
		quotedNullString: true,
	}}
}

// Builder returns a Builder seeded with this dialect, for deriving
// variants of presets.
func (d Dialect) Builder() *Builder {
	b := &Builder{d: d}
	if d.hasHeader {
		b.d.header = make([]string, len(d.header))
		copy(b.d.header, d.header)
	}
	return b
}

// Delimiter sets the field separator sequence.
func (b *Builder) Delimiter(s string) *Builder { b.d.delimiter = s; return b }

// Quote sets the quote character.
func (b *Builder) Quote(r rune) *Builder { b.d.quote = r; return b }

// NoQuote disables quoting entirely.
func (b *Builder) NoQuote() *Builder { b.d.quote = 0; return b }

// Escape sets the escape character.
func (b *Builder) Escape(r rune) *Builder { b.d.escape = r; return b }

// NoEscape disables the escape character.
func (b *Builder) NoEscape() *Builder { b.d.escape = 0; return b }

// Comment sets the comment marker.
func (b *Builder) Comment(r rune) *Builder { b.d.comment = r; return b }

// RecordSeparator sets the separator written after each record.
func (b *Builder) RecordSeparator(s string) *Builder { b.d.recordSeparator = s; return b }

// QuotePolicy sets the write-side quoting policy.
func (b *Builder) QuotePolicy(p QuotePolicy) *Builder { b.d.policy = p; return b }

// NullString sets the null sentinel.
func (b *Builder) NullString(s string) *Builder {
	b.d.nullString = s
	b.d.hasNullString = true
	return b
}

// NoNullString removes the null sentinel.
func (b *Builder) NoNullString() *Builder {
	b.d.nullString = ""
	b.d.hasNullString = false
	return b
}

// Header declares column names. Declaring a header with no names makes the
// first record of the input supply them.
func (b *Builder) Header(names ...string) *Builder {
	b.d.header = append([]string(nil), names...)
	b.d.hasHeader = true
	return b
}

// SkipHeaderRecord controls whether the first record is consumed as the
// header instead of being surfaced to the caller.
func (b *Builder) SkipHeaderRecord(skip bool) *Builder { b.d.skipHeaderRecord = skip; return b }

// Trim controls read-side trimming of unquoted field values.
func (b *Builder) Trim(trim bool) *Builder { b.d.trim = trim; return b }

// IgnoreSurroundingSpaces controls whitespace handling around unquoted
// fields while lexing.
func (b *Builder) IgnoreSurroundingSpaces(ignore bool) *Builder { b.d.ignoreSpaces = ignore; return b }

// IgnoreEmptyLines controls whether terminator-only lines are skipped.
func (b *Builder) IgnoreEmptyLines(ignore bool) *Builder { b.d.ignoreEmptyLines = ignore; return b }

// AllowDuplicateHeaderNames selects last-wins (true) or fail-fast (false)
// handling of repeated header names.
func (b *Builder) AllowDuplicateHeaderNames(allow bool) *Builder { b.d.allowDupHeaders = allow; return b }

// QuotedNullString controls whether quoted fields may match the null
// sentinel. PostgreSQL's CSV form needs this off so that a quoted empty
// string stays a string.
func (b *Builder) QuotedNullString(match bool) *Builder { b.d.quotedNullString = match; return b }

// Build validates the configuration and returns the dialect.
func (b *Builder) Build() (Dialect, error) {
	d := b.d

	if d.delimiter == "" {
		return Dialect{}, &DialectError{Option: "delimiter", Message: "must not be empty"}
	}
	if strings.ContainsAny(d.delimiter, "\r\n") {
		return Dialect{}, &DialectError{Option: "delimiter", Message: "must not contain CR or LF"}
	}
	for _, spec := range []struct {
		name string
		r    rune
	}{{"quote", d.quote}, {"escape", d.escape}, {"comment", d.comment}} {
		if spec.r == 0 {
			continue
		}
		if spec.r == '\r' || spec.r == '\n' {
			return Dialect{}, &DialectError{Option: spec.name, Message: "must not be CR or LF"}
		}
		if !utf8.ValidRune(spec.r) || spec.r == utf8.RuneError {
			return Dialect{}, &DialectError{Option: spec.name, Message: "not a valid character"}
		}
		if strings.ContainsRune(d.delimiter, spec.r) {
			return Dialect{}, &DialectError{Option: spec.name, Message: "clashes with the delimiter"}
		}
	}
	// The escape may equal the quote (doubling and escaping coincide), but
	// the comment marker must stay distinct from both.
	if d.comment != 0 && d.comment == d.quote {
		return Dialect{}, &DialectError{Option: "comment", Message: "clashes with the quote character"}
	}
	if d.comment != 0 && d.comment == d.escape {
		return Dialect{}, &DialectError{Option: "comment", Message: "clashes with the escape character"}
	}
	if strings.Contains(d.recordSeparator, d.delimiter) {
		return Dialect{}, &DialectError{Option: "recordSeparator", Message: "must not contain the delimiter"}
	}
	if !d.allowDupHeaders && d.hasHeader {
		seen := make(map[string]struct{}, len(d.header))
		for _, name := range d.header {
			if _, dup := seen[name]; dup {
				return Dialect{}, &DialectError{Option: "header", Message: "duplicate name " + name}
			}
			seen[name] = struct{}{}
		}
	}

	if d.hasHeader {
		h := make([]string, len(d.header))
		copy(h, d.header)
		d.header = h
	}
	return d, nil
}
