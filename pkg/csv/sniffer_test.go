package csv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   string
	}{
		{
			name:   "comma",
			sample: "a,b,c\n1,2,3\n4,5,6\n",
			want:   ",",
		},
		{
			name:   "tab",
			sample: "a\tb\tc\n1\t2\t3\n",
			want:   "\t",
		},
		{
			name:   "semicolon",
			sample: "a;b;c\n1;2;3\n",
			want:   ";",
		},
		{
			name:   "pipe",
			sample: "a|b|c\n1|2|3\n",
			want:   "|",
		},
		{
			name:   "consistency beats raw count",
			sample: "a;b;c\nx,y;q;w\n1;2;3\n",
			want:   ";",
		},
		{
			name:   "quoted sections excluded",
			sample: "\"a,b,c,d\";x\n\"e,f\";y\n",
			want:   ";",
		},
		{
			name:   "empty sample falls back to comma",
			sample: "",
			want:   ",",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sniff(tt.sample).Delimiter())
		})
	}
}

func TestSniffHeader(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   bool
	}{
		{
			name:   "name-like first line",
			sample: "id,name,email\n1,alice,a@x.com\n2,bob,b@x.com\n",
			want:   true,
		},
		{
			name:   "numeric first line",
			sample: "1,2,3\n4,5,6\n",
			want:   false,
		},
		{
			name:   "single line is never a header",
			sample: "id,name\n",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Sniff(tt.sample)
			_, hasHeader := d.Header()
			assert.Equal(t, tt.want, hasHeader)
			assert.Equal(t, tt.want, d.SkipHeaderRecord())
		})
	}
}

func TestSniffedDialectParses(t *testing.T) {
	sample := "id;name\n1;alice\n2;bob\n"
	d := Sniff(sample)

	recs := parseAll(t, d, sample)
	assert.Len(t, recs, 2)
	name, ok := recs[0].ByName("name")
	assert.True(t, ok)
	assert.Equal(t, "alice", name)
}
