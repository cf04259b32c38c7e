package csv

// Built-in dialects. The field values are a compatibility contract with
// the formats they name; tests pin them exactly.
var (
	// Default is comma-delimited, double-quoted, CRLF-terminated, with
	// empty lines ignored on read.
	Default = mustDialect(NewBuilder())

	// RFC4180 is Default without empty-line skipping.
	RFC4180 = mustDialect(Default.Builder().
		IgnoreEmptyLines(false))

	// Excel matches what Microsoft Excel produces: RFC4180 framing with
	// duplicate header names tolerated.
	Excel = mustDialect(Default.Builder().
		IgnoreEmptyLines(false).
		AllowDuplicateHeaderNames(true))

	// TDF is tab-delimited with surrounding spaces ignored.
	TDF = mustDialect(Default.Builder().
		Delimiter("\t").
		IgnoreSurroundingSpaces(true))

	// MySQL matches SELECT INTO OUTFILE / LOAD DATA INFILE defaults:
	// tab-delimited, no quoting, backslash escapes, \N for null.
	MySQL = mustDialect(Default.Builder().
		Delimiter("\t").
		NoQuote().
		Escape('\\').
		IgnoreEmptyLines(false).
		RecordSeparator("\n").
		NullString("\\N").
		QuotePolicy(QuoteAllNonNull))

	// PostgreSQLCSV matches COPY ... WITH (FORMAT CSV): an empty unquoted
	// field is null, a quoted empty field is an empty string.
	PostgreSQLCSV = mustDialect(Default.Builder().
		NoEscape().
		IgnoreEmptyLines(false).
		RecordSeparator("\n").
		NullString("").
		QuotedNullString(false).
		QuotePolicy(QuoteAllNonNull))

	// PostgreSQLText matches COPY ... WITH (FORMAT TEXT): tab-delimited,
	// unquoted, backslash escapes, \N for null.
	PostgreSQLText = mustDialect(Default.Builder().
		Delimiter("\t").
		NoQuote().
		Escape('\\').
		IgnoreEmptyLines(false).
		RecordSeparator("\n").
		NullString("\\N").
		QuotePolicy(QuoteAllNonNull))

	// MongoDBCSV matches mongoexport --type=csv, which escapes quotes with
	// a quote (doubling).
	MongoDBCSV = mustDialect(Default.Builder().
		Escape('"').
		QuotePolicy(QuoteMinimal).
		SkipHeaderRecord(false))

	// MongoDBTSV is MongoDBCSV with a tab delimiter.
	MongoDBTSV = mustDialect(Default.Builder().
		Delimiter("\t").
		Escape('"').
		QuotePolicy(QuoteMinimal).
		SkipHeaderRecord(false))

	// InformixUnload matches the UNLOAD TO format: pipe-delimited with
	// backslash escapes.
	InformixUnload = mustDialect(Default.Builder().
		Delimiter("|").
		Escape('\\').
		RecordSeparator("\n"))

	// Oracle matches SQL*Loader conventions. SQL*Loader itself takes the
	// platform line separator; LF is pinned here so output does not vary
	// by OS.
	Oracle = mustDialect(Default.Builder().
		Escape('\\').
		IgnoreEmptyLines(false).
		NullString("\\N").
		Trim(true).
		RecordSeparator("\n").
		QuotePolicy(QuoteMinimal))
)

func mustDialect(b *Builder) Dialect {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}
