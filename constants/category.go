package constants

import (
	"strings"
)

// Category is a tax-deduction bucket assigned to a scanned receipt.
type Category string

const (
	Medical       Category = "medical"
	Charitable    Category = "charitable"
	Business      Category = "business"
	Education     Category = "education"
	Vehicle       Category = "vehicle"
	HomeOffice    Category = "home_office"
	Retirement    Category = "retirement"
	Energy        Category = "energy"
	StateLocal    Category = "state_local"
	Miscellaneous Category = "miscellaneous"
)

// allCategories is the closed set, in declaration order. Order matters:
// the categorizer breaks score ties in favor of the earlier category.
var allCategories = []Category{
	Medical,
	Charitable,
	Business,
	Education,
	Vehicle,
	HomeOffice,
	Retirement,
	Energy,
	StateLocal,
	Miscellaneous,
}

// AllCategories returns the closed category set in declaration order.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// IsValidCategory reports whether input is exactly a member of the closed
// set. Unlike Canonicalize it accepts no synonyms; it is the membership check
// used by record validation.
func IsValidCategory(input string) bool {
	for _, cat := range allCategories {
		if input == string(cat) {
			return true
		}
	}
	return false
}

// Canonicalize maps free-form input onto the closed category set.
// Unknown labels fall back to Miscellaneous with ok=false.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Miscellaneous, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"misc":            Miscellaneous,
		"other":           Miscellaneous,
		"home office":     HomeOffice,
		"home-office":     HomeOffice,
		"state/local":     StateLocal,
		"state and local": StateLocal,
		"auto":            Vehicle,
		"car":             Vehicle,
		"charity":         Charitable,
		"donations":       Charitable,
		"health":          Medical,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}

	return Miscellaneous, false
}
