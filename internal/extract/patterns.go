package extract

import "regexp"

// amount is the numeric fragment shared by the labeled patterns: an optional
// currency symbol followed by a comma-grouped number with optional cents.
const amount = `\$?\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`

// Labeled total patterns, tried in order. Within one pattern the LAST match
// wins: receipts often repeat a label and the final occurrence is the
// authoritative one. `\btotal\b` deliberately does not match "Subtotal".
var totalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btotal\b[^0-9$\n-]*` + amount),
	regexp.MustCompile(`(?i)\bamount\s+due\b[^0-9$\n-]*` + amount),
	regexp.MustCompile(`(?i)\bbalance\b[^0-9$\n-]*` + amount),
	regexp.MustCompile(`(?i)\bgrand\s+total\b[^0-9$\n-]*` + amount),
}

// Labeled tax patterns, same ordering and last-match rule.
var taxPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btax\b[^0-9$\n-]*` + amount),
	regexp.MustCompile(`(?i)\bsales\s+tax\b[^0-9$\n-]*` + amount),
	regexp.MustCompile(`(?i)\btax\s+amount\b[^0-9$\n-]*` + amount),
}

// currencyToken matches a currency-shaped number anywhere in free text.
// Cents are required so that quantities and dates are not mistaken for money.
var currencyToken = regexp.MustCompile(`\$\s*[0-9][0-9,]*\.[0-9]{2}|\b[0-9][0-9,]*\.[0-9]{2}\b`)

// labelLine marks lines that carry a labeled amount (total, tax, and their
// relatives). Such lines are excluded from line-item extraction so the
// summary rows do not turn into spurious items.
var labelLine = regexp.MustCompile(`(?i)\b(?:sub\s*total|total|tax|amount\s+due|balance|grand\s+total)\b`)

// Date patterns, tried in order: numeric day/month (or month/day), numeric
// year-first, then textual "Month Day, Year".
var (
	dateNumericDMY = regexp.MustCompile(`\b(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})\b`)
	dateNumericYMD = regexp.MustCompile(`\b(\d{4})[/.-](\d{1,2})[/.-](\d{1,2})\b`)
	dateTextual    = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?\s*,?\s*(\d{4})`)
)

var monthsByPrefix = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// storeSuffix strips trailing store-number noise from a fallback vendor
// header, e.g. "TRADER JOE'S #552" or "SHOP MART STORE 104".
var storeSuffix = regexp.MustCompile(`(?i)\s*[-–]?\s*(?:store\s*)?#?\s*\d{2,6}\s*$`)

// vendorRule maps a known-vendor pattern to its canonical display name.
type vendorRule struct {
	pattern *regexp.Regexp
	name    string
}

// vendorRules is a prioritized, ordered rule list evaluated short-circuit:
// the most specific pattern must come before any more generic one it
// overlaps with (e.g. "CVS Pharmacy" before "CVS"), so a generic rule can
// never pre-empt a specific match.
var vendorRules = []vendorRule{
	{regexp.MustCompile(`(?i)cvs\s+pharmacy`), "CVS Pharmacy"},
	{regexp.MustCompile(`(?i)home\s*depot`), "The Home Depot"},
	{regexp.MustCompile(`(?i)office\s*depot`), "Office Depot"},
	{regexp.MustCompile(`(?i)rite\s*aid`), "Rite Aid"},
	{regexp.MustCompile(`(?i)whole\s*foods`), "Whole Foods Market"},
	{regexp.MustCompile(`(?i)best\s*buy`), "Best Buy"},
	{regexp.MustCompile(`(?i)salvation\s+army`), "The Salvation Army"},
	{regexp.MustCompile(`(?i)\bwal\s*-?\s*mart\b`), "Walmart"},
	{regexp.MustCompile(`(?i)\bwalgreens\b`), "Walgreens"},
	{regexp.MustCompile(`(?i)\bcvs\b`), "CVS"},
	{regexp.MustCompile(`(?i)\bcostco\b`), "Costco"},
	{regexp.MustCompile(`(?i)\btarget\b`), "Target"},
	{regexp.MustCompile(`(?i)\bstaples\b`), "Staples"},
	{regexp.MustCompile(`(?i)\bkroger\b`), "Kroger"},
	{regexp.MustCompile(`(?i)\bsafeway\b`), "Safeway"},
	{regexp.MustCompile(`(?i)\bgoodwill\b`), "Goodwill"},
	{regexp.MustCompile(`(?i)\bshell\b`), "Shell"},
	{regexp.MustCompile(`(?i)\bchevron\b`), "Chevron"},
	{regexp.MustCompile(`(?i)\bstarbucks\b`), "Starbucks"},
	{regexp.MustCompile(`(?i)\bikea\b`), "IKEA"},
}
