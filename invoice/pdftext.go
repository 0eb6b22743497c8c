package invoice

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractLines converts a PDF into plain text lines, page order first,
// top-to-bottom within a page. The field rules are positional, so this
// ordering is significant.
func ExtractLines(path string) (lines []string, err error) {
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			lines = nil
			err = fmt.Errorf("reading %v: %v", path, r)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			var b strings.Builder
			for _, word := range row.Content {
				s := strings.TrimSpace(word.S)
				if s == "" {
					continue
				}
				if b.Len() > 0 {
					b.WriteString(" ")
				}
				b.WriteString(s)
			}
			if line := b.String(); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines, nil
}
