package invoice

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Labels are extraction-pattern overrides loaded from a CSV file, one
// "field,pattern" row per pattern. Supported fields: restaurant, date.
// Patterns are matched case-insensitively and must capture the value in
// their first group; for a field with overrides, the loaded patterns
// replace the built-in ones and the first match in file order wins.
//
// Known failure modes of the default restaurant heuristic, which this file
// exists to work around: multi-line restaurant names are cut at the label
// line, and a document that opens with a slogan line misleads the
// first-non-empty-line fallback.
type Labels map[string][]*regexp.Regexp

func NewLabels(file string) (Labels, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	labels := Labels{}
	csvReader := csv.NewReader(f)
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("reading labels file: %v", err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("labels file: want field,pattern, got %v", record)
		}
		field := strings.ToLower(strings.TrimSpace(record[0]))
		if field != "restaurant" && field != "date" {
			return nil, fmt.Errorf("labels file: unknown field %q", record[0])
		}
		re, err := regexp.Compile("(?i)" + record[1])
		if err != nil {
			return nil, fmt.Errorf("labels file: compiling pattern %q: %v", record[1], err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("labels file: pattern %q has no capture group", record[1])
		}
		labels[field] = append(labels[field], re)
	}
	return labels, nil
}

// ApplyLabels swaps in the loaded patterns for any field that has them.
func (p *Parser) ApplyLabels(labels Labels) {
	if pats := labels["restaurant"]; len(pats) > 0 {
		p.restaurantPatterns = pats
	}
	if pats := labels["date"]; len(pats) > 0 {
		p.datePatterns = pats
	}
}
