// Package lexer turns a character stream into CSV tokens under a
// configurable dialect.
package lexer

// Kind identifies a token produced by the Lexer.
// These correspond to the structural elements of a delimited-text stream;
// the parser is responsible for assembling them into records.
type Kind int

const (
	// KindField is field content. Value holds the decoded text and Quoted
	// reports whether the field was wrapped in the quote character.
	KindField Kind = iota
	// KindDelimiter separates two fields of the same record.
	KindDelimiter
	// KindRecordEnd terminates a record (CR, LF, or CRLF).
	KindRecordEnd
	// KindComment is a whole comment line. Value holds the text after the
	// comment marker, without leading whitespace.
	KindComment
	// KindEOF signals the end of the input stream.
	KindEOF
)

// String returns the token kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindField:
		return "Field"
	case KindDelimiter:
		return "Delimiter"
	case KindRecordEnd:
		return "RecordEnd"
	case KindComment:
		return "Comment"
	case KindEOF:
		return "EOF"
	default:
		return "Kind(?)"
	}
}

// Token is a single lexed unit.
type Token struct {
	Kind   Kind
	Value  string
	Quoted bool
}
