package lexer

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Control characters the state machine cares about.
const (
	cr        = '\r'
	lf        = '\n'
	tab       = '\t'
	backspace = '\b'
	formFeed  = '\f'
)

// ErrUnterminatedQuote reports a quoted field still open at end of input.
var ErrUnterminatedQuote = errors.New("unterminated quoted field")

// ErrDanglingEscape reports an escape character at end of input.
var ErrDanglingEscape = errors.New("escape sequence cut short by end of input")

// PosError is a lexing error annotated with the 1-based line and column at
// which the offending construct started.
type PosError struct {
	Line   int
	Column int
	Err    error
}

func (e *PosError) Error() string {
	return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *PosError) Unwrap() error {
	return e.Err
}

// Config is the subset of a dialect the lexer needs. The zero rune disables
// the corresponding special character.
type Config struct {
	Delimiter               string
	Quote                   rune
	Escape                  rune
	Comment                 rune
	IgnoreSurroundingSpaces bool
	IgnoreEmptyLines        bool

	// Width computes encoded byte widths for position tracking.
	// Nil means UTF-8.
	Width WidthFunc
}

// Lexer decomposes a character stream into tokens under a fixed dialect.
// It is a forward-only, single-use state machine: after an error every
// subsequent Next call returns the same error.
type Lexer struct {
	r     *reader
	cfg   Config
	delim []rune
	queue []Token

	line        int
	col         int
	atLineStart bool

	recStartChar int64
	recStartByte int64
	recStartLine int

	sawField     bool
	skippedLines int
	emittedSkip  bool

	failed error
}

// New builds a Lexer over r. The Config is assumed to be pre-validated by
// the dialect constructor; the lexer itself performs no option checking.
func New(r io.Reader, cfg Config) *Lexer {
	return &Lexer{
		r:            newReader(r, cfg.Width),
		cfg:          cfg,
		delim:        []rune(cfg.Delimiter),
		line:         1,
		col:          1,
		recStartLine: 1,
		atLineStart:  true,
	}
}

// Offsets reports the cumulative counts of consumed characters and the
// encoded bytes they occupied.
func (lx *Lexer) Offsets() (chars, bytes int64) {
	return lx.r.offsets()
}

// RecordStart reports the character and byte offsets at which the current
// (or most recently started) record began.
func (lx *Lexer) RecordStart() (chars, bytes int64) {
	return lx.recStartChar, lx.recStartByte
}

// RecordLine reports the 1-based physical line on which the current (or
// most recently started) record began.
func (lx *Lexer) RecordLine() int {
	return lx.recStartLine
}

// Line reports the current 1-based physical line number.
func (lx *Lexer) Line() int {
	return lx.line
}

// Next returns the next token. After KindEOF or an error the lexer is
// exhausted.
func (lx *Lexer) Next() (Token, error) {
	if lx.failed != nil {
		return Token{Kind: KindEOF}, lx.failed
	}
	tok, err := lx.next()
	if err != nil {
		lx.failed = err
		return Token{Kind: KindEOF}, err
	}
	return tok, nil
}

func (lx *Lexer) next() (Token, error) {
	if len(lx.queue) > 0 {
		tok := lx.queue[0]
		lx.queue = lx.queue[1:]
		return tok, nil
	}

	if lx.atLineStart {
		if tok, done, err := lx.lexLineStart(); done {
			return tok, err
		}
	}

	return lx.lexField()
}

// lexLineStart consumes comment lines and (when configured) empty lines.
// It returns done=true when it produced a token of its own; otherwise the
// caller proceeds to lex the first field of a record, whose start offsets
// have been stamped.
func (lx *Lexer) lexLineStart() (Token, bool, error) {
	for {
		c, ok := lx.peek1()
		if !ok {
			tok, err := lx.eofToken()
			return tok, true, err
		}

		if lx.cfg.Comment != 0 && c == lx.cfg.Comment {
			tok, err := lx.lexComment()
			return tok, true, err
		}

		if lx.cfg.IgnoreEmptyLines && (c == cr || c == lf) {
			lx.readTerminator(c)
			lx.skippedLines++
			continue
		}

		lx.recStartChar, lx.recStartByte = lx.r.offsets()
		lx.recStartLine = lx.line
		lx.atLineStart = false
		return Token{}, false, nil
	}
}

// lexComment consumes a full comment line including its terminator.
func (lx *Lexer) lexComment() (Token, error) {
	lx.read() // marker
	var sb strings.Builder
	for {
		c, ok := lx.peek1()
		if !ok {
			if err := lx.r.err(); err != nil {
				return Token{}, err
			}
			break
		}
		if c == cr || c == lf {
			lx.readTerminator(c)
			break
		}
		lx.read()
		sb.WriteRune(c)
	}
	return Token{Kind: KindComment, Value: strings.TrimSpace(sb.String())}, nil
}

// lexField lexes one field plus the delimiter or terminator that follows
// it. The field token is returned; the structural token is queued.
func (lx *Lexer) lexField() (Token, error) {
	if lx.cfg.IgnoreSurroundingSpaces {
		for {
			c, ok := lx.peek1()
			if !ok || !isBlank(c) || lx.delimAhead() {
				break
			}
			lx.read()
		}
	}

	if c, ok := lx.peek1(); ok && lx.cfg.Quote != 0 && c == lx.cfg.Quote {
		return lx.lexQuoted()
	}
	return lx.lexBare(nil, false)
}

// lexBare scans unquoted content until a delimiter, terminator, or EOF.
// When quoted is set the scan is a lenient continuation of a quoted field
// and trailing whitespace is preserved.
func (lx *Lexer) lexBare(buf []rune, quoted bool) (Token, error) {
	for {
		if lx.delimAhead() {
			lx.consumeDelim()
			lx.queue = append(lx.queue, Token{Kind: KindDelimiter})
			break
		}
		c, ok := lx.peek1()
		if !ok {
			if err := lx.r.err(); err != nil {
				return Token{}, err
			}
			lx.queue = append(lx.queue, Token{Kind: KindRecordEnd})
			break
		}
		if c == cr || c == lf {
			lx.readTerminator(c)
			lx.queue = append(lx.queue, Token{Kind: KindRecordEnd})
			break
		}
		lx.read()
		if lx.cfg.Escape != 0 && c == lx.cfg.Escape {
			dec, err := lx.readEscape()
			if err != nil {
				return Token{}, err
			}
			buf = append(buf, dec...)
			continue
		}
		buf = append(buf, c)
	}

	if lx.cfg.IgnoreSurroundingSpaces && !quoted {
		for len(buf) > 0 && isBlank(buf[len(buf)-1]) {
			buf = buf[:len(buf)-1]
		}
	}
	lx.sawField = true
	return Token{Kind: KindField, Value: string(buf), Quoted: quoted}, nil
}

// lexQuoted scans a quoted field. Two consecutive quotes collapse to one;
// the escape character (when distinct from the quote) escapes the next
// character; content after a closing quote is handled leniently by
// resuming a bare scan rather than failing.
func (lx *Lexer) lexQuoted() (Token, error) {
	startLine, startCol := lx.line, lx.col
	lx.read() // opening quote
	var buf []rune

	for {
		c, ok := lx.read()
		if !ok {
			if err := lx.r.err(); err != nil {
				return Token{}, err
			}
			return Token{}, &PosError{Line: startLine, Column: startCol, Err: ErrUnterminatedQuote}
		}

		if lx.cfg.Escape != 0 && lx.cfg.Escape != lx.cfg.Quote && c == lx.cfg.Escape {
			dec, err := lx.readEscape()
			if err != nil {
				return Token{}, err
			}
			buf = append(buf, dec...)
			continue
		}

		if c != lx.cfg.Quote {
			buf = append(buf, c)
			continue
		}

		if p, ok := lx.peek1(); ok && p == lx.cfg.Quote {
			lx.read()
			buf = append(buf, lx.cfg.Quote)
			continue
		}

		// Closing quote. Whitespace, the delimiter, a terminator, or EOF
		// may follow; anything else resumes literal content.
		var blanks []rune
		for {
			if lx.delimAhead() {
				lx.consumeDelim()
				lx.queue = append(lx.queue, Token{Kind: KindDelimiter})
				lx.sawField = true
				return Token{Kind: KindField, Value: string(buf), Quoted: true}, nil
			}
			p, ok := lx.peek1()
			if !ok {
				if err := lx.r.err(); err != nil {
					return Token{}, err
				}
				lx.queue = append(lx.queue, Token{Kind: KindRecordEnd})
				lx.sawField = true
				return Token{Kind: KindField, Value: string(buf), Quoted: true}, nil
			}
			if p == cr || p == lf {
				lx.readTerminator(p)
				lx.queue = append(lx.queue, Token{Kind: KindRecordEnd})
				lx.sawField = true
				return Token{Kind: KindField, Value: string(buf), Quoted: true}, nil
			}
			if isBlank(p) {
				lx.read()
				blanks = append(blanks, p)
				continue
			}
			return lx.lexBare(append(buf, blanks...), true)
		}
	}
}

// readEscape consumes the character after an escape and returns its decoded
// form. Mnemonics decode to their control characters, metacharacters pass
// through, and unknown sequences keep both characters so that sentinel
// strings like \N survive the trip.
func (lx *Lexer) readEscape() ([]rune, error) {
	c, ok := lx.read()
	if !ok {
		if err := lx.r.err(); err != nil {
			return nil, err
		}
		return nil, &PosError{Line: lx.line, Column: lx.col, Err: ErrDanglingEscape}
	}
	switch c {
	case 'n':
		return []rune{lf}, nil
	case 'r':
		return []rune{cr}, nil
	case 't':
		return []rune{tab}, nil
	case 'b':
		return []rune{backspace}, nil
	case 'f':
		return []rune{formFeed}, nil
	case cr, lf, tab, backspace, formFeed:
		return []rune{c}, nil
	}
	if lx.isMeta(c) {
		return []rune{c}, nil
	}
	return []rune{lx.cfg.Escape, c}, nil
}

// eofToken finishes the stream. A stream whose only content was a single
// terminator still yields one empty record.
func (lx *Lexer) eofToken() (Token, error) {
	if err := lx.r.err(); err != nil {
		return Token{}, err
	}
	if lx.cfg.IgnoreEmptyLines && lx.skippedLines == 1 && !lx.sawField && !lx.emittedSkip {
		lx.emittedSkip = true
		lx.sawField = true
		lx.queue = append(lx.queue, Token{Kind: KindRecordEnd})
		return Token{Kind: KindField, Value: ""}, nil
	}
	return Token{Kind: KindEOF}, nil
}

// read consumes one rune and maintains line/column accounting.
func (lx *Lexer) read() (rune, bool) {
	c, ok := lx.r.next()
	if !ok {
		return 0, false
	}
	if c == lf {
		lx.line++
		lx.col = 1
	} else if c == cr {
		if p, ok := lx.peek1(); !ok || p != lf {
			lx.line++
			lx.col = 1
		}
	} else {
		lx.col++
	}
	return c, true
}

func (lx *Lexer) peek1() (rune, bool) {
	return lx.r.peek1()
}

// readTerminator consumes CR, LF, or CRLF and marks the line start.
func (lx *Lexer) readTerminator(c rune) {
	lx.read()
	if c == cr {
		if p, ok := lx.peek1(); ok && p == lf {
			lx.read()
		}
	}
	lx.atLineStart = true
}

// delimAhead reports whether the full delimiter sequence is next in the
// input. Matching is greedy and non-backtracking: a partial match is not a
// delimiter and the caller consumes a single rune as literal content.
func (lx *Lexer) delimAhead() bool {
	ahead := lx.r.peek(len(lx.delim))
	if len(ahead) < len(lx.delim) {
		return false
	}
	for i, d := range lx.delim {
		if ahead[i] != d {
			return false
		}
	}
	return true
}

func (lx *Lexer) consumeDelim() {
	for range lx.delim {
		lx.read()
	}
}

// isMeta reports whether c is one of the dialect's special characters.
func (lx *Lexer) isMeta(c rune) bool {
	if c == lx.cfg.Escape || (lx.cfg.Quote != 0 && c == lx.cfg.Quote) || (lx.cfg.Comment != 0 && c == lx.cfg.Comment) {
		return true
	}
	for _, d := range lx.delim {
		if c == d {
			return true
		}
	}
	return false
}

func isBlank(c rune) bool {
	return c == ' ' || c == tab
}
