package parse

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// ParseError indicates a ledger export that cannot be read at all. It is
// fatal to the import attempt; the operator must fix the file and retry.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Reason
}

// Table is the raw parsed form of a delimited export: one header row and
// zero or more data rows, all still untyped strings.
type Table struct {
	Headers   []string
	Rows      [][]string
	Delimiter rune
}

// Parse reads delimited text with double-quote field escaping. Embedded
// delimiters and quotes inside quoted fields are preserved literally. The
// delimiter is sniffed from the header line (comma, semicolon, or tab).
// Fails with ParseError when the text holds fewer than 2 non-empty lines.
func Parse(text string) (*Table, error) {
	delim := sniffDelimiter(text)

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = delim
	cr.FieldsPerRecord = -1 // heterogeneous exports pad rows unevenly
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}

	var kept [][]string
	for _, rec := range records {
		if !emptyRecord(rec) {
			kept = append(kept, rec)
		}
	}

	if len(kept) < 2 {
		return nil, &ParseError{Reason: fmt.Sprintf("need a header row and at least one data row, got %d non-empty lines", len(kept))}
	}

	return &Table{
		Headers:   kept[0],
		Rows:      kept[1:],
		Delimiter: delim,
	}, nil
}

func emptyRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// sniffDelimiter counts candidate delimiters outside quotes on the first
// non-blank line and picks the most frequent, defaulting to comma.
func sniffDelimiter(text string) rune {
	line := ""
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}

	counts := map[rune]int{',': 0, ';': 0, '\t': 0}
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		if _, ok := counts[r]; ok {
			counts[r]++
		}
	}

	best := ','
	for _, cand := range []rune{';', '\t'} {
		if counts[cand] > counts[best] {
			best = cand
		}
	}
	return best
}
