// Package tokenizer turns smart-scale CSV exports into rows of named string fields.
//
// Quotes toggle an "inside field" state instead of following RFC 4180 escaping:
// scale exports embed commas in timestamps ("4/5/2025, 8:43 AM") but are otherwise
// loosely quoted, and a stray quote must not abort the whole file.
package tokenizer

import (
	"strings"

	"github.com/okian/scalesync/internal/domain/model"
)

const bom = "\uFEFF"

// Table is the tokenized form of one file.
type Table struct {
	Header []string
	Rows   []model.RawRecord

	// Misaligned lists 1-based line numbers whose field count differed from the header.
	Misaligned []int
}

// Parse tokenizes text. The first non-blank line is the header; blank lines are skipped.
// Rows with too few values are padded with "", rows with too many are truncated.
func Parse(text string) Table {
	var t Table
	text = strings.TrimPrefix(text, bom)

	lines := strings.Split(text, "\n")
	headerSeen := false
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		values := SplitLine(line)
		if !headerSeen {
			t.Header = values
			headerSeen = true
			continue
		}

		if len(values) != len(t.Header) {
			t.Misaligned = append(t.Misaligned, i+1)
		}

		row := make(model.RawRecord, len(t.Header))
		for j, name := range t.Header {
			if name == "" {
				continue
			}
			if j < len(values) {
				row[name] = values[j]
			} else {
				row[name] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// SplitLine splits one line on commas outside quotes, strips quote characters and
// trims surrounding whitespace from every value.
func SplitLine(line string) []string {
	var (
		values  []string
		current strings.Builder
		quoted  bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			values = append(values, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	values = append(values, strings.TrimSpace(current.String()))
	return values
}
