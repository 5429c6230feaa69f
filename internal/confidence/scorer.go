// Package confidence estimates how trustworthy an extraction is. Two
// historically divergent scoring shapes live behind one Strategy interface;
// both return the same canonical [0,1] value, so callers can no longer mix
// a 0-100 scale with a 0-1 scale.
package confidence

import (
	"regexp"
	"strings"
)

// Inputs carries everything either strategy may consult. Presence flags
// reflect the extraction outcome; RawText and Reliability feed the
// text-shape heuristics and the optional engine scaling.
type Inputs struct {
	VendorFound bool // vendor other than the "Unknown Vendor" sentinel
	AmountFound bool // a positive total was parsed
	DateFound   bool
	ItemsFound  bool
	RawText     string
	Reliability float64 // recognition-engine confidence in [0,1]; 0 = unreported
}

// Strategy converts extraction signals into a confidence in [0,1].
type Strategy interface {
	Score(in Inputs) float64
	Name() string
}

// PresenceFlags scores 25 points per extracted field (vendor, amount, date,
// items), scaled by the recognition reliability when the engine reports one,
// then normalized to [0,1].
type PresenceFlags struct{}

func (PresenceFlags) Name() string { return "presence_flags" }

func (PresenceFlags) Score(in Inputs) float64 {
	points := 0
	for _, found := range []bool{in.VendorFound, in.AmountFound, in.DateFound, in.ItemsFound} {
		if found {
			points += 25
		}
	}
	score := float64(points) / 100.0
	if in.Reliability > 0 {
		score *= clamp01(in.Reliability)
	}
	return clamp01(score)
}

// dateShaped and moneyShaped are the token detectors for the heuristic
// strategy; they look at raw text, not at parsed fields.
var (
	dateShaped  = regexp.MustCompile(`\b\d{1,4}[/.-]\d{1,2}[/.-]\d{1,4}\b`)
	moneyShaped = regexp.MustCompile(`\$?\b[0-9][0-9,]*\.[0-9]{2}\b`)
)

// HeuristicText scores the shape of the recognized text itself: length
// bands, a parsed positive amount, a non-sentinel vendor, a date-shaped
// token, and enough distinct currency tokens to suggest a detailed receipt.
// The 0-100 tally is capped and divided down to the canonical scale.
type HeuristicText struct{}

func (HeuristicText) Name() string { return "heuristic_text" }

func (HeuristicText) Score(in Inputs) float64 {
	points := 0

	switch n := len(in.RawText); {
	case n > 100:
		points += 30
	case n > 50:
		points += 20
	case n > 20:
		points += 10
	}

	if in.AmountFound {
		points += 25
	}
	if in.VendorFound {
		points += 20
	}
	if dateShaped.MatchString(in.RawText) {
		points += 15
	}
	if distinctMoneyTokens(in.RawText) > 3 {
		points += 10
	}

	if points > 100 {
		points = 100
	}
	return float64(points) / 100.0
}

func distinctMoneyTokens(text string) int {
	seen := map[string]struct{}{}
	for _, tok := range moneyShaped.FindAllString(text, -1) {
		seen[strings.TrimPrefix(tok, "$")] = struct{}{}
	}
	return len(seen)
}

// ForName resolves a configured scorer name to a Strategy, defaulting to
// PresenceFlags for unknown names.
func ForName(name string) Strategy {
	if strings.EqualFold(strings.TrimSpace(name), "text") || strings.EqualFold(name, "heuristic_text") {
		return HeuristicText{}
	}
	return PresenceFlags{}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
