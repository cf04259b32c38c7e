package csv

import (
	"regexp"
	"strings"
)

// candidate delimiters, most common first. Ties go to the earlier entry.
var sniffDelimiters = []string{",", "\t", ";", "|"}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_ ]*$`)

// Sniff inspects a sample of delimited text and suggests a Dialect:
// the delimiter is chosen by consistency-scored counting across lines
// (quoted sections excluded), and a header declaration is added when the
// first line looks like column names rather than data. Provide at least
// two or three lines for useful results; an empty or ambiguous sample
// falls back to the Default dialect.
func Sniff(sample string) Dialect {
	lines := sampleLines(sample)
	delim := sniffDelimiter(lines)

	b := Default.Builder().Delimiter(delim)
	if sniffHeader(lines, delim) {
		b.Header().SkipHeaderRecord(true)
	}
	d, err := b.Build()
	if err != nil {
		return Default
	}
	return d
}

func sampleLines(sample string) []string {
	var out []string
	for _, line := range splitLines(sample) {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// sniffDelimiter scores each candidate by its occurrence count, with a
// large bonus when the count is identical on every line.
func sniffDelimiter(lines []string) string {
	if len(lines) == 0 {
		return ","
	}
	best, bestScore := ",", 0
	for _, delim := range sniffDelimiters {
		counts := make([]int, len(lines))
		for i, line := range lines {
			counts[i] = countUnquoted(line, delim)
		}
		if counts[0] == 0 {
			continue
		}
		score := counts[0]
		consistent := true
		for _, c := range counts[1:] {
			if c != counts[0] {
				consistent = false
				break
			}
		}
		if consistent {
			score *= 10
		}
		if score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

// countUnquoted counts delimiter occurrences outside double-quoted
// sections.
func countUnquoted(line, delim string) int {
	count := 0
	inQuotes := false
	for i := 0; i < len(line); i++ {
		if line[i] == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes && strings.HasPrefix(line[i:], delim) {
			count++
			i += len(delim) - 1
		}
	}
	return count
}

// sniffHeader compares the first line's fields against header heuristics:
// identifier-shaped, non-numeric names suggest a header; numbers, emails,
// and dates suggest data.
func sniffHeader(lines []string, delim string) bool {
	if len(lines) < 2 {
		return false
	}
	headerish, dataish := 0, 0
	for _, field := range strings.Split(lines[0], delim) {
		field = strings.Trim(strings.TrimSpace(field), `"`)
		switch {
		case field == "":
		case isNumeric(field), strings.Contains(field, "@"):
			dataish++
		case identifierPattern.MatchString(field):
			headerish++
		}
	}
	return headerish > dataish
}
