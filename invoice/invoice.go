package invoice

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is one parsed invoice, destined for one spreadsheet row. Fields
// the rules could not extract stay blank; a document never fails as a
// whole because one field is missing.
type Record struct {
	Filename   string
	Date       string
	Restaurant string
	Amount     decimal.NullDecimal
	Items      []string
}

const (
	maxItems         = 10
	maxRestaurantLen = 100
)

var (
	defaultDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Order Time:\s*(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4})`),
		regexp.MustCompile(`(?i)\b(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4})\b`),
		regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{4})\b`),
		regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`),
	}
	defaultRestaurantPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Restaurant Name:\s*(.+)`),
		regexp.MustCompile(`(?i)Order(?:ed)? from[:\s]+(.+)`),
		regexp.MustCompile(`(?i)Delivery from[:\s]+(.+)`),
	}
	currencyValue = regexp.MustCompile(`[₹$€£]\s*([\d,]+(?:\.\d{1,2})?)|([\d,]+\.\d{2})`)
	parenthetical = regexp.MustCompile(`\s*\(.*?\)\s*`)
	metadataLabel = regexp.MustCompile(`(?i)^(Order ID|Order Time|Invoice|Customer|Delivery Address|Address|Phone|GST)\b`)

	chargeWords = []string{"taxes", "packaging", "delivery charge", "delivery fee", "platform fee", "round off", "subtotal", "sub total"}
)

// Parser applies the extraction rules to a document's text lines. The
// restaurant and date patterns are policy, not architecture, so they can
// be replaced via a Labels file.
type Parser struct {
	datePatterns       []*regexp.Regexp
	restaurantPatterns []*regexp.Regexp
}

func NewParser() *Parser {
	return &Parser{
		datePatterns:       defaultDatePatterns,
		restaurantPatterns: defaultRestaurantPatterns,
	}
}

// Parse runs the rules, in order, over the extracted lines. Each rule
// fills exactly one field and fails independently of the others.
func (p *Parser) Parse(filename string, lines []string) Record {
	rec := Record{Filename: filename}
	rules := []func([]string, *Record){
		p.dateRule,
		p.restaurantRule,
		p.amountRule,
		p.itemsRule,
	}
	for _, rule := range rules {
		rule(lines, &rec)
	}
	return rec
}

// dateRule takes the first line matching any date pattern; textual order
// breaks ties between patterns.
func (p *Parser) dateRule(lines []string, rec *Record) {
	for _, line := range lines {
		for _, re := range p.datePatterns {
			if m := re.FindStringSubmatch(line); m != nil {
				rec.Date = strings.TrimSpace(m[1])
				return
			}
		}
	}
}

// restaurantRule takes the first line matching a restaurant label,
// falling back to the first non-empty line of the document. Branch
// suffixes like "(Indiranagar)" are dropped.
func (p *Parser) restaurantRule(lines []string, rec *Record) {
	for _, line := range lines {
		for _, re := range p.restaurantPatterns {
			if m := re.FindStringSubmatch(line); m != nil {
				if name := cleanRestaurant(m[1]); name != "" {
					rec.Restaurant = name
					return
				}
			}
		}
	}
	for _, line := range lines {
		if name := cleanRestaurant(line); name != "" {
			rec.Restaurant = name
			return
		}
	}
}

func cleanRestaurant(s string) string {
	s = parenthetical.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if len(s) > maxRestaurantLen {
		s = strings.TrimSpace(s[:maxRestaurantLen])
	}
	return s
}

// amountRule prefers the first total-labelled line carrying a currency
// value; when no line is labelled, the last currency-valued line wins.
func (p *Parser) amountRule(lines []string, rec *Record) {
	last := ""
	for _, line := range lines {
		v := currencyOn(line)
		if v == "" {
			continue
		}
		if isTotalLine(line) {
			setAmount(rec, v)
			return
		}
		last = v
	}
	if last != "" {
		setAmount(rec, last)
	}
}

func currencyOn(line string) string {
	m := currencyValue.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

func setAmount(rec *Record, v string) {
	d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", ""))
	if err != nil {
		return
	}
	rec.Amount = decimal.NullDecimal{Decimal: d, Valid: true}
}

func isTotalLine(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	if !strings.HasPrefix(l, "total") && !strings.HasPrefix(l, "grand total") &&
		!strings.HasPrefix(l, "amount payable") {
		return false
	}
	// "Total Price" inside the items table header is not the total.
	if strings.Contains(l, "quantity") || strings.Contains(l, "unit") {
		return false
	}
	return true
}

// itemsRule collects the lines between the items header (or, absent one,
// the leading metadata block) and the first total or charges line. Line
// order is preserved.
func (p *Parser) itemsRule(lines []string, rec *Record) {
	end := len(lines)
	for i, line := range lines {
		if isTotalLine(line) || isChargeLine(line) {
			end = i
			break
		}
	}
	start := 0
	if h := itemsHeader(lines[:end]); h >= 0 {
		start = h + 1
	} else {
		for start < end && p.isMetadataLine(lines[start]) {
			start++
		}
	}
	for _, line := range lines[start:end] {
		line = strings.TrimSpace(line)
		if line == "" || p.isMetadataLine(line) {
			continue
		}
		rec.Items = append(rec.Items, line)
		if len(rec.Items) == maxItems {
			return
		}
	}
}

func itemsHeader(lines []string) int {
	for i, line := range lines {
		l := strings.ToLower(line)
		if strings.Contains(l, "item") &&
			(strings.Contains(l, "qty") || strings.Contains(l, "quantity") || strings.Contains(l, "price")) {
			return i
		}
	}
	return -1
}

func isChargeLine(line string) bool {
	l := strings.ToLower(line)
	for _, w := range chargeWords {
		if strings.Contains(l, w) {
			return true
		}
	}
	return false
}

func (p *Parser) isMetadataLine(line string) bool {
	if metadataLabel.MatchString(line) {
		return true
	}
	for _, re := range p.restaurantPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	for _, re := range p.datePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
