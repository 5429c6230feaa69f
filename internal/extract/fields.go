// Package extract parses recognized receipt text into structured fields
// using ordered pattern matching with fallback heuristics.
package extract

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/deducto/receipt-scanner/internal/entity"
)

// UnknownVendor is the sentinel used when no vendor can be determined.
const UnknownVendor = "Unknown Vendor"

const (
	vendorHeaderLines = 5   // first N non-blank lines searched for a vendor
	vendorMaxLen      = 100 // longer lines are not plausible headers
	minYear           = 2000
)

// Fields is the result of one extraction pass over raw receipt text.
type Fields struct {
	Vendor     string
	Total      decimal.Decimal
	TotalFound bool // false when Total is the 0.00 default
	Tax        *decimal.Decimal
	Date       *entity.Date
	Items      []entity.LineItem
}

// Extractor parses raw multi-line receipt text. The pattern tables are
// package-level and read-only, so one Extractor is safe for concurrent use.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract runs all field parsers over the text. It never fails: missing
// fields come back as their documented defaults (sentinel vendor, zero
// total, absent tax and date, empty items).
func (e *Extractor) Extract(text string) Fields {
	f := Fields{
		Vendor: e.extractVendor(text),
		Tax:    e.extractTax(text),
		Date:   e.extractDate(text),
		Items:  e.extractItems(text),
	}
	f.Total, f.TotalFound = e.extractTotal(text)

	e.logger.Debug("extract.fields",
		"vendor", f.Vendor,
		"total", f.Total.String(),
		"total_found", f.TotalFound,
		"tax_present", f.Tax != nil,
		"date_present", f.Date != nil,
		"items", len(f.Items),
	)
	return f
}

// extractVendor tests the first header lines against the known-vendor rules,
// most specific first, then falls back to the first plausible header line.
func (e *Extractor) extractVendor(text string) string {
	headers := headerLines(text, vendorHeaderLines)

	for _, line := range headers {
		for _, rule := range vendorRules {
			if rule.pattern.MatchString(line) {
				return rule.name
			}
		}
	}

	for _, line := range headers {
		if !plausibleHeader(line) {
			continue
		}
		return strings.TrimSpace(storeSuffix.ReplaceAllString(line, ""))
	}
	return UnknownVendor
}

func headerLines(text string, n int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}

func plausibleHeader(line string) bool {
	if len(line) > vendorMaxLen {
		return false
	}
	if strings.HasPrefix(line, "$") || strings.HasPrefix(line, "€") || strings.HasPrefix(line, "£") {
		return false
	}
	lower := strings.ToLower(line)
	return !strings.HasPrefix(lower, "total")
}

// extractTotal searches the labeled patterns in order. When a pattern
// matches multiple times the last occurrence wins. With no labeled match the
// fallback is the maximum currency-shaped token anywhere in the text; the
// default is 0.00.
func (e *Extractor) extractTotal(text string) (decimal.Decimal, bool) {
	if amt, ok := lastLabeledAmount(text, totalPatterns); ok {
		return amt, true
	}
	if amt, ok := maxCurrencyToken(text); ok {
		return amt, true
	}
	return decimal.Zero, false
}

// extractTax uses the same labeled-pattern strategy but returns nil, not
// zero, when no tax line exists: "no tax printed" and "$0.00 tax" are
// different facts.
func (e *Extractor) extractTax(text string) *decimal.Decimal {
	if amt, ok := lastLabeledAmount(text, taxPatterns); ok {
		return &amt
	}
	return nil
}

func lastLabeledAmount(text string, patterns []*regexp.Regexp) (decimal.Decimal, bool) {
	for _, re := range patterns {
		matches := re.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}
		raw := matches[len(matches)-1][1]
		if amt, err := parseAmount(raw); err == nil {
			return amt, true
		}
	}
	return decimal.Zero, false
}

func maxCurrencyToken(text string) (decimal.Decimal, bool) {
	tokens := currencyToken.FindAllString(text, -1)
	var best decimal.Decimal
	found := false
	for _, tok := range tokens {
		amt, err := parseAmount(tok)
		if err != nil {
			continue
		}
		if !found || amt.GreaterThan(best) {
			best = amt
			found = true
		}
	}
	return best, found
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	raw = strings.ReplaceAll(raw, ",", "")
	return decimal.NewFromString(raw)
}

// extractDate tries the numeric day/month form, the numeric year-first form,
// then the textual form, accepting the first candidate inside a sane
// calendar window.
//
// Numeric disambiguation is a known heuristic limitation: for 03/04/2025 the
// first group that is <=12 is taken as the month, first-match-wins, so
// day-first readings of genuinely ambiguous dates are not recovered.
func (e *Extractor) extractDate(text string) *entity.Date {
	if m := dateNumericDMY.FindStringSubmatch(text); m != nil {
		a, b, y := atoi(m[1]), atoi(m[2]), normalizeYear(atoi(m[3]))
		var month, day int
		switch {
		case a <= 12:
			month, day = a, b
		case b <= 12:
			month, day = b, a
		default:
			month, day = 0, 0
		}
		if d := validDate(y, month, day); d != nil {
			return d
		}
	}
	if m := dateNumericYMD.FindStringSubmatch(text); m != nil {
		if d := validDate(atoi(m[1]), atoi(m[2]), atoi(m[3])); d != nil {
			return d
		}
	}
	if m := dateTextual.FindStringSubmatch(text); m != nil {
		month := monthsByPrefix[strings.ToLower(m[1])]
		if d := validDate(atoi(m[3]), month, atoi(m[2])); d != nil {
			return d
		}
	}
	return nil
}

func normalizeYear(y int) int {
	if y < 100 {
		return y + 2000
	}
	return y
}

// validDate rejects candidates outside month 1-12, day 1-31, or a
// near-present year window, and dates the calendar itself rejects
// (e.g. Feb 31).
func validDate(year, month, day int) *entity.Date {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	if year < minYear || year > time.Now().Year()+1 {
		return nil
	}
	d := entity.NewDate(year, time.Month(month), day)
	if d.Day() != day || d.Month() != time.Month(month) || d.Year() != year {
		return nil
	}
	return &d
}

// extractItems treats every line holding a currency-shaped number as an item
// candidate: the numeric token becomes the price and the rest of the line
// the description. Lines carrying labeled amounts (total, tax, subtotal...)
// are excluded first so summary rows do not become items.
func (e *Extractor) extractItems(text string) []entity.LineItem {
	var items []entity.LineItem
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || labelLine.MatchString(line) {
			continue
		}
		loc := currencyToken.FindStringIndex(line)
		if loc == nil {
			continue
		}
		price, err := parseAmount(line[loc[0]:loc[1]])
		if err != nil || price.IsNegative() {
			continue
		}
		desc := strings.TrimSpace(line[:loc[0]] + line[loc[1]:])
		desc = strings.Trim(desc, " \t-–:;.,*$")
		if desc == "" {
			continue
		}
		items = append(items, entity.LineItem{Description: desc, Price: price})
	}
	return items
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
