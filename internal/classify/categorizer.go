// Package classify maps a scanned receipt onto one tax-deduction category.
package classify

import (
	"strings"

	"github.com/deducto/receipt-scanner/constants"
)

// rule pairs a category with the keywords that vote for it. The slice is an
// ordered rule table evaluated in declaration order; score ties break in
// favor of the earlier entry. Miscellaneous has no keywords and is the
// default when every category scores zero.
type rule struct {
	category constants.Category
	keywords []string
}

var rules = []rule{
	{constants.Medical, []string{
		"pharmacy", "walgreens", "cvs", "rite aid", "clinic", "medical",
		"doctor", "dental", "dentist", "optometry", "prescription", "rx",
		"copay", "aspirin", "medicine", "hospital", "urgent care", "lab fee",
	}},
	{constants.Charitable, []string{
		"donation", "donate", "charity", "charitable", "goodwill",
		"salvation army", "red cross", "nonprofit", "non-profit", "church",
		"foundation", "tithe",
	}},
	{constants.Business, []string{
		"office supplies", "staples", "office depot", "fedex", "ups store",
		"printing", "software", "subscription", "saas", "conference",
		"consulting", "business", "client", "invoice",
	}},
	{constants.Education, []string{
		"tuition", "university", "college", "bookstore", "textbook",
		"course", "seminar", "school", "training", "certification",
	}},
	{constants.Vehicle, []string{
		"gas", "fuel", "gasoline", "shell", "chevron", "exxon", "mobil",
		"auto", "repair", "oil change", "tire", "parking", "toll", "mileage",
	}},
	{constants.HomeOffice, []string{
		"desk", "office chair", "monitor", "keyboard", "router", "internet",
		"ikea", "home depot", "lamp", "printer", "ink cartridge",
	}},
	{constants.Retirement, []string{
		"ira", "401k", "401(k)", "retirement", "pension", "annuity",
		"rollover",
	}},
	{constants.Energy, []string{
		"solar", "energy star", "insulation", "hvac", "heat pump",
		"thermostat", "ev charger", "weatherization", "energy efficient",
	}},
	{constants.StateLocal, []string{
		"property tax", "vehicle registration", "registration fee", "dmv",
		"license fee", "state tax", "county", "municipal", "assessor",
	}},
}

// Categorizer scores receipts against the fixed keyword tables. The tables
// are read-only package data, so one Categorizer is safe for concurrent use.
type Categorizer struct{}

func NewCategorizer() *Categorizer {
	return &Categorizer{}
}

// Categorize counts case-insensitive keyword occurrences across vendor name
// and raw text combined, and returns the highest-scoring non-zero category.
// Ties break by rule declaration order; zero everywhere means Miscellaneous.
func (c *Categorizer) Categorize(vendor, rawText string) constants.Category {
	haystack := strings.ToLower(vendor + "\n" + rawText)

	best := constants.Miscellaneous
	bestScore := 0
	for _, r := range rules {
		score := 0
		for _, kw := range r.keywords {
			score += strings.Count(haystack, kw)
		}
		if score > bestScore {
			best = r.category
			bestScore = score
		}
	}
	return best
}
