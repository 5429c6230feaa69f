package confidence

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PresenceFlags", func() {
	var scorer PresenceFlags

	It("scores zero when nothing was extracted", func() {
		Expect(scorer.Score(Inputs{})).To(BeZero())
	})

	It("awards a quarter per extracted field", func() {
		Expect(scorer.Score(Inputs{VendorFound: true})).To(BeNumerically("~", 0.25, 1e-9))
		Expect(scorer.Score(Inputs{VendorFound: true, AmountFound: true})).To(BeNumerically("~", 0.50, 1e-9))
		Expect(scorer.Score(Inputs{VendorFound: true, AmountFound: true, DateFound: true})).To(BeNumerically("~", 0.75, 1e-9))
		Expect(scorer.Score(Inputs{VendorFound: true, AmountFound: true, DateFound: true, ItemsFound: true})).To(BeNumerically("~", 1.0, 1e-9))
	})

	It("never decreases when another field is found", func() {
		base := Inputs{VendorFound: true}
		withDate := base
		withDate.DateFound = true
		Expect(scorer.Score(withDate)).To(BeNumerically(">=", scorer.Score(base)))
	})

	When("the engine reports a reliability", func() {
		It("scales the flag score by it", func() {
			in := Inputs{VendorFound: true, AmountFound: true, DateFound: true, ItemsFound: true, Reliability: 0.5}
			Expect(scorer.Score(in)).To(BeNumerically("~", 0.5, 1e-9))
		})

		It("clamps an out-of-range reliability", func() {
			in := Inputs{VendorFound: true, AmountFound: true, DateFound: true, ItemsFound: true, Reliability: 1.7}
			Expect(scorer.Score(in)).To(BeNumerically("~", 1.0, 1e-9))
		})
	})

	When("no reliability is reported", func() {
		It("leaves the flag score unscaled", func() {
			in := Inputs{VendorFound: true, AmountFound: true, DateFound: true, ItemsFound: true}
			Expect(scorer.Score(in)).To(BeNumerically("~", 1.0, 1e-9))
		})
	})
})

var _ = Describe("HeuristicText", func() {
	var scorer HeuristicText

	It("scores zero on empty text", func() {
		Expect(scorer.Score(Inputs{})).To(BeZero())
	})

	It("scores by length band when no other signal exists", func() {
		Expect(scorer.Score(Inputs{RawText: strings.Repeat("x", 15)})).To(BeZero())
		Expect(scorer.Score(Inputs{RawText: strings.Repeat("x", 25)})).To(BeNumerically("~", 0.10, 1e-9))
		Expect(scorer.Score(Inputs{RawText: strings.Repeat("x", 60)})).To(BeNumerically("~", 0.20, 1e-9))
		Expect(scorer.Score(Inputs{RawText: strings.Repeat("x", 150)})).To(BeNumerically("~", 0.30, 1e-9))
	})

	It("rewards a date-shaped token in the raw text", func() {
		withDate := scorer.Score(Inputs{RawText: "visited 03/15/2025"})
		without := scorer.Score(Inputs{RawText: strings.Repeat("x", 18)})
		Expect(withDate - without).To(BeNumerically("~", 0.15, 1e-9))
	})

	It("rewards a detailed receipt with many distinct amounts", func() {
		text := "a 1.01\nb 2.02\nc 3.03\nd 4.04" // 27 chars: length band 10
		Expect(scorer.Score(Inputs{RawText: text})).To(BeNumerically("~", 0.20, 1e-9))
	})

	It("does not double-count a repeated amount", func() {
		text := "a 1.01\nb 1.01\nc 1.01\nd 1.01"
		Expect(scorer.Score(Inputs{RawText: text})).To(BeNumerically("~", 0.10, 1e-9))
	})

	It("caps a fully signaled receipt at the maximum", func() {
		text := "WALGREENS\nAspirin $12.99\nCough Medicine $15.99\nSubtotal: $28.98\nTax: $2.50\nTotal: $31.48\nDate: 03/15/2025"
		score := scorer.Score(Inputs{RawText: text, VendorFound: true, AmountFound: true})
		Expect(score).To(BeNumerically("~", 1.0, 1e-9))
	})
})

var _ = Describe("ForName", func() {
	It("resolves the text heuristic by either alias", func() {
		Expect(ForName("text").Name()).To(Equal("heuristic_text"))
		Expect(ForName("heuristic_text").Name()).To(Equal("heuristic_text"))
	})

	It("defaults everything else to presence flags", func() {
		Expect(ForName("flags").Name()).To(Equal("presence_flags"))
		Expect(ForName("").Name()).To(Equal("presence_flags"))
		Expect(ForName("bogus").Name()).To(Equal("presence_flags"))
	})
})
