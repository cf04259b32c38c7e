package csv

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/fieldline/dialect-csv/internal/lexer"
)

// ParserOption configures one Parser instance.
type ParserOption func(*parserConfig)

type parserConfig struct {
	strict  bool
	track   bool
	charset encoding.Encoding
}

// WithStrictRecordLength makes the parser fail with ErrFieldCount when a
// record's length disagrees with the header's, or with the first record
// when no header is configured. The default tolerates ragged records.
func WithStrictRecordLength() ParserOption {
	return func(c *parserConfig) { c.strict = true }
}

// WithPositions enables per-record character and byte offset tracking.
func WithPositions() ParserOption {
	return func(c *parserConfig) { c.track = true }
}

// WithCharset declares the encoding of the input stream. The input is
// decoded through it and byte offsets are computed against the encoded
// form. The default is UTF-8.
func WithCharset(enc encoding.Encoding) ParserOption {
	return func(c *parserConfig) { c.charset = enc }
}

// Parser assembles lexer tokens into records: it applies header mapping,
// skips comment lines, substitutes the null sentinel, and enforces the
// record-length policy. A Parser owns its input stream, is single-use,
// and is not safe for concurrent use. After any error it stays in a
// terminal failed state.
type Parser struct {
	lx      *lexer.Lexer
	dialect Dialect
	cfg     parserConfig

	header     []string
	headerIdx  map[string]int
	headerDone bool

	expected int
	number   int64
	count    int64
	done     bool
	err      error
}

// NewParser builds a Parser reading from r under the given dialect.
func NewParser(r io.Reader, d Dialect, opts ...ParserOption) (*Parser, error) {
	if d.delimiter == "" {
		return nil, &DialectError{Option: "delimiter", Message: "dialect not built; use Builder"}
	}
	var cfg parserConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var width lexer.WidthFunc
	if cfg.charset != nil {
		r = cfg.charset.NewDecoder().Reader(r)
		width = charsetWidth(cfg.charset)
	}

	p := &Parser{
		dialect: d,
		cfg:     cfg,
		lx: lexer.New(r, lexer.Config{
			Delimiter:               d.delimiter,
			Quote:                   d.quote,
			Escape:                  d.escape,
			Comment:                 d.comment,
			IgnoreSurroundingSpaces: d.ignoreSpaces,
			IgnoreEmptyLines:        d.ignoreEmptyLines,
			Width:                   width,
		}),
	}
	if header, ok := d.Header(); ok && len(header) > 0 {
		if err := p.setHeader(header); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// charsetWidth measures the encoded byte width of each rune in the
// declared charset. Runes the charset cannot represent count as their
// replacement's width.
func charsetWidth(enc encoding.Encoding) lexer.WidthFunc {
	e := enc.NewEncoder()
	return func(r rune) int {
		b, err := e.Bytes([]byte(string(r)))
		if err != nil || len(b) == 0 {
			return 1
		}
		return len(b)
	}
}

// Read returns the next record, or io.EOF when the input is drained.
// Header and comment lines are consumed internally and never surfaced.
func (p *Parser) Read() (*Record, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.done {
		return nil, io.EOF
	}
	for {
		rec, err := p.readRecord()
		if err != nil {
			if err == io.EOF {
				p.done = true
				return nil, io.EOF
			}
			p.err = err
			return nil, err
		}
		if rec == nil {
			continue // comment line or consumed header
		}
		return rec, nil
	}
}

// ReadAll drains the parser. io.EOF is not an error here.
func (p *Parser) ReadAll() ([]*Record, error) {
	var out []*Record
	for {
		rec, err := p.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// Header returns the column-name-to-index mapping in declaration order,
// or nil when none is configured or captured yet.
func (p *Parser) Header() []string {
	if p.header == nil {
		return nil
	}
	out := make([]string, len(p.header))
	copy(out, p.header)
	return out
}

// RecordCount returns the number of records surfaced so far; skipped
// header records and comments are excluded.
func (p *Parser) RecordCount() int64 {
	return p.count
}

// Line returns the current 1-based physical input line.
func (p *Parser) Line() int {
	return p.lx.Line()
}

// readRecord assembles one raw record. It returns (nil, nil) for lines
// the caller never sees: comments and a captured header record.
func (p *Parser) readRecord() (*Record, error) {
	tok, err := p.lx.Next()
	if err != nil {
		return nil, p.wrap(err)
	}

	switch tok.Kind {
	case lexer.KindEOF:
		return nil, io.EOF
	case lexer.KindComment:
		return nil, nil
	}

	line := p.lx.RecordLine()
	charPos, bytePos := p.lx.RecordStart()
	if !p.cfg.track {
		charPos, bytePos = -1, -1
	}

	var fields []*string
	for {
		if tok.Kind != lexer.KindField {
			return nil, p.wrap(fmt.Errorf("unexpected %s token", tok.Kind))
		}
		fields = append(fields, p.finishField(tok))

		sep, err := p.lx.Next()
		if err != nil {
			return nil, p.wrap(err)
		}
		if sep.Kind == lexer.KindRecordEnd || sep.Kind == lexer.KindEOF {
			break
		}
		if sep.Kind != lexer.KindDelimiter {
			return nil, p.wrap(fmt.Errorf("unexpected %s token", sep.Kind))
		}
		tok, err = p.lx.Next()
		if err != nil {
			return nil, p.wrap(err)
		}
	}

	p.number++

	if !p.headerDone {
		if consumed, err := p.captureHeader(fields); err != nil {
			return nil, err
		} else if consumed {
			return nil, nil
		}
	}

	if p.cfg.strict {
		if p.expected == 0 {
			p.expected = len(fields)
		} else if len(fields) != p.expected {
			return nil, &ParseError{
				Record: p.number,
				Line:   line,
				Err:    fmt.Errorf("%w (got %d, want %d)", ErrFieldCount, len(fields), p.expected),
			}
		}
	}

	p.count++
	return &Record{
		fields:  fields,
		header:  p.headerIdx,
		number:  p.number,
		line:    line,
		charPos: charPos,
		bytePos: bytePos,
	}, nil
}

// captureHeader resolves header handling for the first record. It reports
// whether the record was consumed as a header row.
func (p *Parser) captureHeader(fields []*string) (bool, error) {
	p.headerDone = true
	header, declared := p.dialect.Header()
	if !declared {
		return false, nil
	}

	if len(header) == 0 {
		// Auto-capture: the first record's own values name the columns.
		names := make([]string, len(fields))
		for i, f := range fields {
			if f != nil {
				names[i] = *f
			}
		}
		if err := p.setHeader(names); err != nil {
			return false, err
		}
		return p.dialect.skipHeaderRecord, nil
	}

	// Declared names; the input's first record is the redundant header row
	// when skipHeaderRecord is set.
	return p.dialect.skipHeaderRecord, nil
}

func (p *Parser) setHeader(names []string) error {
	idx := make(map[string]int, len(names))
	for i, name := range names {
		if _, dup := idx[name]; dup && !p.dialect.allowDupHeaders {
			err := &ParseError{
				Record: p.number,
				Line:   p.lx.Line(),
				Err:    fmt.Errorf("%w: %q", ErrDuplicateHeader, name),
			}
			p.err = err
			return err
		}
		idx[name] = i // last wins
	}
	p.header = names
	p.headerIdx = idx
	if p.cfg.strict {
		p.expected = len(names)
	}
	return nil
}

// finishField applies trim and null substitution to one lexed field.
func (p *Parser) finishField(tok lexer.Token) *string {
	v := tok.Value
	if p.dialect.trim && !tok.Quoted {
		v = strings.TrimSpace(v)
	}
	if p.dialect.hasNullString && p.nullMatchAllowed(tok.Quoted) && v == p.dialect.nullString {
		return nil
	}
	return &v
}

// nullMatchAllowed decides whether a field may become null. Quoted fields
// are immune when the dialect distinguishes quoted from unquoted values:
// explicitly via QuotedNullString(false), or implicitly under the strict
// quote policies, whose whole purpose is keeping null and quoted text
// apart.
func (p *Parser) nullMatchAllowed(wasQuoted bool) bool {
	if !wasQuoted {
		return true
	}
	if !p.dialect.quotedNullString {
		return false
	}
	return p.dialect.policy != QuoteAllNonNull && p.dialect.policy != QuoteNonNumeric
}

// wrap annotates a lexer error with record context. I/O errors pass
// through unchanged.
func (p *Parser) wrap(err error) error {
	if pe, ok := err.(*lexer.PosError); ok {
		return &ParseError{
			Record: p.number + 1,
			Line:   pe.Line,
			Column: pe.Column,
			Err:    pe.Err,
		}
	}
	return err
}
