package csv

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func sp(s string) *string { return &s }

// parseAll reads everything from input under d.
func parseAll(t *testing.T, d Dialect, input string, opts ...ParserOption) []*Record {
	t.Helper()
	p, err := NewParser(strings.NewReader(input), d, opts...)
	require.NoError(t, err)
	recs, err := p.ReadAll()
	require.NoError(t, err)
	return recs
}

func TestParseBasic(t *testing.T) {
	recs := parseAll(t, Default, "a,b\r\nc,d\r\n")
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"a", "b"}, recs[0].Strings())
	assert.Equal(t, []string{"c", "d"}, recs[1].Strings())
	assert.Equal(t, int64(1), recs[0].Number())
	assert.Equal(t, int64(2), recs[1].Number())
	assert.Equal(t, 1, recs[0].Line())
	assert.Equal(t, 2, recs[1].Line())
}

func TestParseMixedTerminators(t *testing.T) {
	recs := parseAll(t, Default, "a\nb\r\nc\rd")
	require.Len(t, recs, 4)
	assert.Equal(t, []string{"a"}, recs[0].Strings())
	assert.Equal(t, []string{"d"}, recs[3].Strings())
}

func TestParseEmptyInput(t *testing.T) {
	p, err := NewParser(strings.NewReader(""), Default)
	require.NoError(t, err)
	_, err = p.Read()
	assert.Equal(t, io.EOF, err)
	// EOF repeats.
	_, err = p.Read()
	assert.Equal(t, io.EOF, err)
}

func TestParseEmptyLines(t *testing.T) {
	// Default skips them; RFC4180 surfaces each as a one-field empty record.
	recs := parseAll(t, Default, "a\n\n\nb\n")
	require.Len(t, recs, 2)

	recs = parseAll(t, RFC4180, "a\n\nb\n")
	require.Len(t, recs, 3)
	assert.Equal(t, []string{""}, recs[1].Strings())
}

func TestParseHeaderAutoCapture(t *testing.T) {
	d, err := Default.Builder().Header().SkipHeaderRecord(true).Build()
	require.NoError(t, err)

	p, err := NewParser(strings.NewReader("name,age\r\nalice,30\r\nbob,25\r\n"), d)
	require.NoError(t, err)

	recs, err := p.ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, []string{"name", "age"}, p.Header())
	name, ok := recs[0].ByName("name")
	assert.True(t, ok)
	assert.Equal(t, "alice", name)
	age, ok := recs[1].ByName("age")
	assert.True(t, ok)
	assert.Equal(t, "25", age)
	_, ok = recs[0].ByName("missing")
	assert.False(t, ok)

	// The header record counts toward record numbers but not RecordCount.
	assert.Equal(t, int64(2), recs[0].Number())
	assert.Equal(t, int64(2), p.RecordCount())
}

func TestParseHeaderDeclaredSkip(t *testing.T) {
	d, err := Default.Builder().Header("c1", "c2").SkipHeaderRecord(true).Build()
	require.NoError(t, err)

	recs := parseAll(t, d, "whatever,labels\r\n1,2\r\n")
	require.Len(t, recs, 1)
	v, ok := recs[0].ByName("c2")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestParseHeaderDeclaredNoSkip(t *testing.T) {
	d, err := Default.Builder().Header("c1", "c2").Build()
	require.NoError(t, err)

	recs := parseAll(t, d, "1,2\r\n3,4\r\n")
	require.Len(t, recs, 2)
	v, ok := recs[0].ByName("c1")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestParseDuplicateHeaderFailFast(t *testing.T) {
	d, err := Default.Builder().
		Header().
		SkipHeaderRecord(true).
		AllowDuplicateHeaderNames(false).
		Build()
	require.NoError(t, err)

	p, err := NewParser(strings.NewReader("id,id\r\n1,2\r\n"), d)
	require.NoError(t, err)

	_, err = p.Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateHeader)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, int64(1), pe.Record)
}

func TestParseDuplicateHeaderLastWins(t *testing.T) {
	d, err := Default.Builder().Header().SkipHeaderRecord(true).Build()
	require.NoError(t, err)

	recs := parseAll(t, d, "id,id\r\nfirst,second\r\n")
	require.Len(t, recs, 1)
	v, ok := recs[0].ByName("id")
	assert.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestParseComments(t *testing.T) {
	d, err := Default.Builder().Comment('#').Build()
	require.NoError(t, err)

	recs := parseAll(t, d, "# leading\na\n# middle\nb\n")
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"a"}, recs[0].Strings())
	assert.Equal(t, 2, recs[0].Line())
	assert.Equal(t, 4, recs[1].Line())
	// Comments do not advance record numbers.
	assert.Equal(t, int64(2), recs[1].Number())
}

func TestParseNullMySQL(t *testing.T) {
	// Both the raw sentinel and its escaped form decode to \N and match:
	// a written literal \N does not survive the round trip as text.
	recs := parseAll(t, MySQL, "\\N\t\\\\N\tx\n")
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.True(t, rec.IsNull(0))
	assert.True(t, rec.IsNull(1))
	assert.False(t, rec.IsNull(2))
	assert.Nil(t, rec.Field(0))
	assert.Equal(t, "x", rec.Get(2))
}

func TestParseNullPostgreSQLCSV(t *testing.T) {
	recs := parseAll(t, PostgreSQLCSV, "a,,\"\"\n")
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, sp("a"), rec.Field(0))
	assert.True(t, rec.IsNull(1), "bare empty field is null")
	assert.Equal(t, sp(""), rec.Field(2), "quoted empty field is an empty string")
}

func TestParseQuotedNullImmunity(t *testing.T) {
	// Under a strict quote policy a quoted occurrence of the sentinel is
	// text, not null, even with QuotedNullString left on.
	d, err := NewBuilder().
		NullString("NULL").
		QuotePolicy(QuoteNonNumeric).
		Build()
	require.NoError(t, err)

	recs := parseAll(t, d, "\"NULL\",NULL\r\n")
	require.Len(t, recs, 1)
	assert.Equal(t, sp("NULL"), recs[0].Field(0))
	assert.True(t, recs[0].IsNull(1))
}

func TestParseQuotedNullMatchesUnderMinimal(t *testing.T) {
	d, err := NewBuilder().NullString("NULL").Build()
	require.NoError(t, err)

	recs := parseAll(t, d, "\"NULL\",NULL\r\n")
	require.Len(t, recs, 1)
	assert.True(t, recs[0].IsNull(0))
	assert.True(t, recs[0].IsNull(1))
}

func TestParseTrim(t *testing.T) {
	recs := parseAll(t, Oracle, "  a  ,\"  b  \"\n")
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].Get(0))
	// Quoted content keeps its padding; only unquoted values are trimmed.
	assert.Equal(t, "  b  ", recs[0].Get(1))
}

func TestParseStrictRecordLength(t *testing.T) {
	p, err := NewParser(strings.NewReader("a,b\nc\n"), Default, WithStrictRecordLength())
	require.NoError(t, err)

	_, err = p.Read()
	require.NoError(t, err)

	_, err = p.Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFieldCount)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, int64(2), pe.Record)
	assert.Equal(t, 2, pe.Line)

	// The failure is terminal.
	_, err2 := p.Read()
	assert.Equal(t, err, err2)
}

func TestParseStrictAgainstHeader(t *testing.T) {
	d, err := Default.Builder().Header("a", "b", "c").Build()
	require.NoError(t, err)

	p, err := NewParser(strings.NewReader("1,2\n"), d, WithStrictRecordLength())
	require.NoError(t, err)
	_, err = p.Read()
	assert.ErrorIs(t, err, ErrFieldCount)
}

func TestParseRaggedRecordsTolerated(t *testing.T) {
	recs := parseAll(t, Default, "a,b,c\nd\ne,f\n")
	require.Len(t, recs, 3)
	assert.Equal(t, 3, recs[0].Len())
	assert.Equal(t, 1, recs[1].Len())
	assert.Equal(t, 2, recs[2].Len())
}

func TestParseUnterminatedQuote(t *testing.T) {
	p, err := NewParser(strings.NewReader("ok\n\"broken"), Default)
	require.NoError(t, err)

	_, err = p.Read()
	require.NoError(t, err)

	_, err = p.Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, int64(2), pe.Record)
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, 1, pe.Column)
}

func TestParsePositions(t *testing.T) {
	recs := parseAll(t, Default, "aa,b\ncc,d\n", WithPositions())
	require.Len(t, recs, 2)
	assert.Equal(t, int64(0), recs[0].CharPos())
	assert.Equal(t, int64(0), recs[0].BytePos())
	assert.Equal(t, int64(5), recs[1].CharPos())
	assert.Equal(t, int64(5), recs[1].BytePos())
}

func TestParsePositionsMultibyte(t *testing.T) {
	// é is one character but two bytes in UTF-8.
	recs := parseAll(t, Default, "é,1\né,2\n", WithPositions())
	require.Len(t, recs, 2)
	assert.Equal(t, int64(4), recs[1].CharPos())
	assert.Equal(t, int64(5), recs[1].BytePos())
}

func TestParsePositionsCharset(t *testing.T) {
	// In Latin-1 é is a single byte, so byte and character offsets agree.
	input := []byte{0xE9, ',', '1', '\n', 0xE9, ',', '2', '\n'}
	p, err := NewParser(strings.NewReader(string(input)), Default,
		WithPositions(), WithCharset(charmap.ISO8859_1))
	require.NoError(t, err)

	recs, err := p.ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "é", recs[0].Get(0))
	assert.Equal(t, int64(4), recs[1].CharPos())
	assert.Equal(t, int64(4), recs[1].BytePos())
}

func TestParsePositionsDisabled(t *testing.T) {
	recs := parseAll(t, Default, "a\n")
	require.Len(t, recs, 1)
	assert.Equal(t, int64(-1), recs[0].CharPos())
	assert.Equal(t, int64(-1), recs[0].BytePos())
}

func TestParserRequiresBuiltDialect(t *testing.T) {
	_, err := NewParser(strings.NewReader("a"), Dialect{})
	require.Error(t, err)
	var de *DialectError
	assert.ErrorAs(t, err, &de)
}

func TestRecordAccessors(t *testing.T) {
	recs := parseAll(t, MySQL, "a\t\\N\n")
	require.Len(t, recs, 1)
	rec := recs[0]

	assert.Equal(t, 2, rec.Len())
	assert.Equal(t, "", rec.Get(1), "null flattens to empty")
	assert.Equal(t, "", rec.Get(99), "out of range flattens to empty")
	assert.Nil(t, rec.Field(99))
	assert.False(t, rec.IsNull(99))
	assert.Equal(t, []*string{sp("a"), nil}, rec.Values())
	assert.Equal(t, []string{"a", ""}, rec.Strings())

	// Values returns a copy.
	vals := rec.Values()
	vals[0] = nil
	assert.Equal(t, sp("a"), rec.Field(0))
}
