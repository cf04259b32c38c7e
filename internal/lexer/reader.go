package lexer

import (
	"bufio"
	"io"
	"unicode/utf8"
)

// WidthFunc reports the encoded byte width of a rune in the stream's
// declared charset. Byte offsets are accumulated through this function so
// that position tracking matches the original encoded input rather than
// the in-memory representation.
type WidthFunc func(r rune) int

// UTF8Width is the default WidthFunc.
func UTF8Width(r rune) int {
	if n := utf8.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// reader decodes runes from an io.Reader with arbitrary lookahead and
// cumulative character/byte offset counting. Peeked runes are held in a
// pending queue and do not advance the offsets until consumed.
type reader struct {
	br      *bufio.Reader
	pending []rune
	width   WidthFunc
	chars   int64
	bytes   int64
	readErr error
	eof     bool
}

func newReader(r io.Reader, width WidthFunc) *reader {
	if width == nil {
		width = UTF8Width
	}
	return &reader{
		br:    bufio.NewReader(r),
		width: width,
	}
}

// fill decodes runes into the pending queue until it holds n runes,
// the stream ends, or an I/O error occurs.
func (r *reader) fill(n int) {
	for len(r.pending) < n && !r.eof && r.readErr == nil {
		ch, _, err := r.br.ReadRune()
		if err != nil {
			if err == io.EOF {
				r.eof = true
			} else {
				r.readErr = err
			}
			return
		}
		r.pending = append(r.pending, ch)
	}
}

// peek returns the next n runes without consuming them. The returned slice
// may be shorter than n near the end of input.
func (r *reader) peek(n int) []rune {
	r.fill(n)
	if len(r.pending) < n {
		return r.pending
	}
	return r.pending[:n]
}

// peek1 returns the next rune without consuming it.
func (r *reader) peek1() (rune, bool) {
	r.fill(1)
	if len(r.pending) == 0 {
		return 0, false
	}
	return r.pending[0], true
}

// next consumes and returns one rune, advancing the offsets.
func (r *reader) next() (rune, bool) {
	r.fill(1)
	if len(r.pending) == 0 {
		return 0, false
	}
	ch := r.pending[0]
	r.pending = r.pending[1:]
	r.chars++
	r.bytes += int64(r.width(ch))
	return ch, true
}

// skip consumes n runes that have already been peeked.
func (r *reader) skip(n int) {
	for i := 0; i < n; i++ {
		if _, ok := r.next(); !ok {
			return
		}
	}
}

// offsets reports the cumulative counts of consumed characters and of the
// encoded bytes they occupied in the source.
func (r *reader) offsets() (chars, bytes int64) {
	return r.chars, r.bytes
}

// err reports a pending non-EOF read error.
func (r *reader) err() error {
	return r.readErr
}
