package csv

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fieldline/dialect-csv/pkg/rows"
)

// PrinterOption configures one Printer instance.
type PrinterOption func(*Printer)

// WithStrictColumnCount makes the printer reject records whose length
// disagrees with the declared header, or with the first record printed
// when no header names are declared.
func WithStrictColumnCount() PrinterOption {
	return func(p *Printer) { p.strict = true }
}

// Printer encodes records under a dialect and writes them to a sink. It
// buffers output; call Flush or Close to drain. A Printer is single-use,
// confined to one stream, and not safe for concurrent use. The first
// write error sticks and fails every later call.
type Printer struct {
	w       *bufio.Writer
	dialect Dialect

	strict   bool
	expected int

	records   int64
	fieldsOut int
	open      bool
	closed    bool
	err       error
}

// NewPrinter builds a Printer over w. When the dialect declares header
// names and does not skip the header record, the header is printed
// immediately and counts as a record.
func NewPrinter(w io.Writer, d Dialect, opts ...PrinterOption) (*Printer, error) {
	if d.delimiter == "" {
		return nil, &DialectError{Option: "delimiter", Message: "dialect not built; use Builder"}
	}
	p := &Printer{
		w:       bufio.NewWriter(w),
		dialect: d,
	}
	for _, opt := range opts {
		opt(p)
	}
	if header, ok := d.Header(); ok && len(header) > 0 {
		if p.strict {
			p.expected = len(header)
		}
		if !d.skipHeaderRecord {
			vals := make([]any, len(header))
			for i, h := range header {
				vals[i] = h
			}
			if err := p.PrintRecord(vals...); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

// Print encodes one field of the current record. The record stays open
// until EndRecord.
func (p *Printer) Print(value any) error {
	if err := p.usable(); err != nil {
		return err
	}
	if p.fieldsOut > 0 {
		p.writeString(p.dialect.delimiter)
	}
	p.open = true
	p.printField(value, p.fieldsOut == 0)
	p.fieldsOut++
	return p.err
}

// EndRecord terminates the current record with the record separator and
// increments the record counter.
func (p *Printer) EndRecord() error {
	if err := p.usable(); err != nil {
		return err
	}
	n := p.fieldsOut
	p.fieldsOut = 0
	p.open = false
	if p.strict {
		if p.expected == 0 {
			p.expected = n
		} else if n != p.expected {
			return fmt.Errorf("csv: record %d: %w (got %d, want %d)", p.records+1, ErrFieldCount, n, p.expected)
		}
	}
	p.writeString(p.dialect.recordSeparator)
	if p.err == nil {
		p.records++
	}
	return p.err
}

// PrintRecord encodes a full record: each value as one field, then the
// record separator.
func (p *Printer) PrintRecord(values ...any) error {
	for _, v := range values {
		if err := p.Print(v); err != nil {
			return err
		}
	}
	return p.EndRecord()
}

// PrintAll encodes a sequence of records.
func (p *Printer) PrintAll(records [][]any) error {
	for _, rec := range records {
		if err := p.PrintRecord(rec...); err != nil {
			return err
		}
	}
	return nil
}

// PrintStrings encodes a record of plain string fields.
func (p *Printer) PrintStrings(fields ...string) error {
	for _, f := range fields {
		if err := p.Print(f); err != nil {
			return err
		}
	}
	return p.EndRecord()
}

// PrintComment writes text as comment lines: each input line (split on
// CR, LF, or CRLF) becomes marker, space, line, separator. A record left
// open by Print is terminated first so the comment starts on a fresh
// line. Without a configured comment marker this is a no-op. Comments
// never touch the record counter.
func (p *Printer) PrintComment(text string) error {
	if err := p.usable(); err != nil {
		return err
	}
	marker, ok := p.dialect.Comment()
	if !ok {
		return nil
	}
	if p.open {
		p.writeString(p.dialect.recordSeparator)
		p.fieldsOut = 0
		p.open = false
	}
	for _, line := range splitLines(text) {
		p.writeRune(marker)
		p.writeRune(' ')
		p.writeString(line)
		p.writeString(p.dialect.recordSeparator)
	}
	return p.err
}

// PrintRows drains a tabular source into the output, one record per row.
func (p *Printer) PrintRows(rs rows.Rows) error {
	return p.printRows(rs, false)
}

// PrintRowsWithHeader is PrintRows preceded by a record of the source's
// column names.
func (p *Printer) PrintRowsWithHeader(rs rows.Rows) error {
	return p.printRows(rs, true)
}

func (p *Printer) printRows(rs rows.Rows, withHeader bool) error {
	if withHeader {
		cols, err := rs.Columns()
		if err != nil {
			return err
		}
		vals := make([]any, len(cols))
		for i, c := range cols {
			vals[i] = c
		}
		if err := p.PrintRecord(vals...); err != nil {
			return err
		}
	}
	for rs.Next() {
		vals, err := rs.Scan()
		if err != nil {
			return err
		}
		if err := p.PrintRecord(vals...); err != nil {
			return err
		}
	}
	return rs.Err()
}

// RecordCount returns the number of completed records, the printed header
// included, comments excluded.
func (p *Printer) RecordCount() int64 {
	return p.records
}

// Flush drains buffered output to the sink.
func (p *Printer) Flush() error {
	if p.err != nil {
		return p.err
	}
	if err := p.w.Flush(); err != nil {
		p.err = err
	}
	return p.err
}

// Error returns the sticky write error, if any.
func (p *Printer) Error() error {
	return p.err
}

// Close flushes and retires the printer. Closing twice is a no-op.
func (p *Printer) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.Flush()
}

func (p *Printer) usable() error {
	if p.err != nil {
		return p.err
	}
	if p.closed {
		return fmt.Errorf("csv: printer is closed")
	}
	return nil
}

// printField runs the §4.1 decision ladder for a single value.
func (p *Printer) printField(value any, first bool) {
	d := p.dialect
	s, isNull := toText(value)

	if isNull {
		// The sentinel is emitted raw so that it round-trips through the
		// matching read-side substitution; only QuoteAll wraps it.
		if !d.hasNullString {
			return
		}
		if d.policy == QuoteAll && d.quote != 0 {
			p.writeQuoted(d.nullString)
		} else {
			p.writeString(d.nullString)
		}
		return
	}

	if d.trim {
		s = strings.TrimSpace(s)
	}

	if d.quote == 0 {
		p.writeEscaped(s)
		return
	}

	switch d.policy {
	case QuoteAll, QuoteAllNonNull:
		p.writeQuoted(s)
	case QuoteNonNumeric:
		if isNumeric(s) {
			p.writeString(s)
		} else {
			p.writeQuoted(s)
		}
	case QuoteNone:
		p.writeEscaped(s)
	default: // QuoteMinimal
		if p.needsQuote(s, first) {
			p.writeQuoted(s)
		} else {
			p.writeString(s)
		}
	}
}

// needsQuote implements the minimal policy: quote exactly the values an
// unquoted rendering could corrupt.
func (p *Printer) needsQuote(s string, first bool) bool {
	d := p.dialect
	if s == "" {
		// A lone empty first field would render as an empty line.
		return first
	}
	if strings.Contains(s, d.delimiter) || strings.ContainsAny(s, "\r\n") || strings.ContainsRune(s, d.quote) {
		return true
	}
	runes := []rune(s)
	if marker, ok := d.Comment(); ok && runes[0] == marker {
		return true
	}
	// Surrounding whitespace and control characters must survive trimming
	// readers.
	return runes[0] <= ' ' || runes[len(runes)-1] <= ' '
}

// writeQuoted wraps s in the quote character. Embedded quotes are doubled
// unless an escape character is configured, in which case both the quote
// and the escape character itself are escaped.
func (p *Printer) writeQuoted(s string) {
	d := p.dialect
	p.writeRune(d.quote)
	for _, r := range s {
		switch {
		case r == d.quote:
			if d.escape != 0 {
				p.writeRune(d.escape)
			} else {
				p.writeRune(d.quote)
			}
			p.writeRune(d.quote)
		case d.escape != 0 && r == d.escape:
			p.writeRune(d.escape)
			p.writeRune(d.escape)
		default:
			p.writeRune(r)
		}
	}
	p.writeRune(d.quote)
}

// writeEscaped emits s without quoting, escaping every character that
// would otherwise be structural. Line breaks are rewritten to their
// mnemonics. Without an escape character the value is emitted verbatim,
// embedded separators included; that rendering is lossy by construction.
func (p *Printer) writeEscaped(s string) {
	d := p.dialect
	if d.escape == 0 {
		p.writeString(s)
		return
	}
	for _, r := range s {
		switch {
		case r == '\n':
			p.writeRune(d.escape)
			p.writeRune('n')
		case r == '\r':
			p.writeRune(d.escape)
			p.writeRune('r')
		case r == d.escape, d.quote != 0 && r == d.quote, strings.ContainsRune(d.delimiter, r):
			p.writeRune(d.escape)
			p.writeRune(r)
		default:
			p.writeRune(r)
		}
	}
}

func (p *Printer) writeString(s string) {
	if p.err != nil {
		return
	}
	if _, err := p.w.WriteString(s); err != nil {
		p.err = err
	}
}

func (p *Printer) writeRune(r rune) {
	if p.err != nil {
		return
	}
	if _, err := p.w.WriteRune(r); err != nil {
		p.err = err
	}
}

// splitLines splits on CR, LF, or CRLF. A trailing terminator yields a
// final empty line.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	var out []string
	var sb strings.Builder
	terminated := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			out = append(out, sb.String())
			sb.Reset()
			terminated = true
		case '\r':
			out = append(out, sb.String())
			sb.Reset()
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			terminated = true
		default:
			sb.WriteByte(s[i])
			terminated = false
		}
	}
	if sb.Len() > 0 || terminated {
		out = append(out, sb.String())
	}
	return out
}
