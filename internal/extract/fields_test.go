package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const pharmacyReceipt = "WALGREENS\nAspirin $12.99\nCough Medicine $15.99\nSubtotal: $28.98\nTax: $2.50\nTotal: $31.48\nDate: 03/15/2025"

var _ = Describe("Extractor", func() {
	var (
		extractor *Extractor
		text      string
		fields    Fields
	)

	BeforeEach(func() {
		extractor = NewExtractor(nil)
	})

	JustBeforeEach(func() {
		fields = extractor.Extract(text)
	})

	When("parsing a complete pharmacy receipt", func() {
		BeforeEach(func() {
			text = pharmacyReceipt
		})

		It("recognizes the known vendor with its canonical name", func() {
			Expect(fields.Vendor).To(Equal("Walgreens"))
		})

		It("takes the labeled total, not the subtotal", func() {
			Expect(fields.TotalFound).To(BeTrue())
			Expect(fields.Total.StringFixed(2)).To(Equal("31.48"))
		})

		It("parses the tax line", func() {
			Expect(fields.Tax).NotTo(BeNil())
			Expect(fields.Tax.StringFixed(2)).To(Equal("2.50"))
		})

		It("parses the numeric date as month/day/year", func() {
			Expect(fields.Date).NotTo(BeNil())
			Expect(fields.Date.Format("2006-01-02")).To(Equal("2025-03-15"))
		})

		It("extracts the item lines but not the summary lines", func() {
			Expect(fields.Items).To(HaveLen(2))
			Expect(fields.Items[0].Description).To(Equal("Aspirin"))
			Expect(fields.Items[0].Price.StringFixed(2)).To(Equal("12.99"))
			Expect(fields.Items[1].Description).To(Equal("Cough Medicine"))
			Expect(fields.Items[1].Price.StringFixed(2)).To(Equal("15.99"))
		})
	})

	When("a label repeats", func() {
		BeforeEach(func() {
			text = "Total: $10.00\nsome items\nTotal: $20.00"
		})

		It("takes the last occurrence", func() {
			Expect(fields.Total.StringFixed(2)).To(Equal("20.00"))
		})
	})

	When("no labeled total exists", func() {
		BeforeEach(func() {
			text = "Item A $5.00\nItem B $3.00\nItem C $12.00"
		})

		It("falls back to the maximum currency token", func() {
			Expect(fields.TotalFound).To(BeTrue())
			Expect(fields.Total.StringFixed(2)).To(Equal("12.00"))
		})
	})

	When("no currency-shaped token exists at all", func() {
		BeforeEach(func() {
			text = "thanks for shopping with us\ncome again"
		})

		It("defaults the total to 0.00", func() {
			Expect(fields.TotalFound).To(BeFalse())
			Expect(fields.Total.StringFixed(2)).To(Equal("0.00"))
		})

		It("never produces a negative total", func() {
			Expect(fields.Total.IsNegative()).To(BeFalse())
		})
	})

	When("the receipt prints a zero tax line", func() {
		BeforeEach(func() {
			text = "Tax: $0.00\nTotal: $5.00"
		})

		It("reports 0.00 rather than absent", func() {
			Expect(fields.Tax).NotTo(BeNil())
			Expect(fields.Tax.StringFixed(2)).To(Equal("0.00"))
		})
	})

	When("no tax line is printed", func() {
		BeforeEach(func() {
			text = "Candy $1.50\nTotal: $1.50"
		})

		It("reports the tax as absent", func() {
			Expect(fields.Tax).To(BeNil())
		})
	})

	Describe("vendor matching", func() {
		When("a specific pattern overlaps a generic one", func() {
			BeforeEach(func() {
				text = "CVS PHARMACY #0412\nBandages $4.99\nTotal: $4.99"
			})

			It("prefers the more specific rule", func() {
				Expect(fields.Vendor).To(Equal("CVS Pharmacy"))
			})
		})

		When("no known vendor matches", func() {
			BeforeEach(func() {
				text = "JOE'S DINER #42\nBurger $8.00\nTotal: $8.00"
			})

			It("uses the first plausible header and strips the store number", func() {
				Expect(fields.Vendor).To(Equal("JOE'S DINER"))
			})
		})

		When("no header line is plausible", func() {
			BeforeEach(func() {
				text = "$5.00\nTotal: $5.00"
			})

			It("falls back to the sentinel", func() {
				Expect(fields.Vendor).To(Equal(UnknownVendor))
			})
		})
	})

	Describe("date parsing", func() {
		When("the date is year-first", func() {
			BeforeEach(func() {
				text = "Receipt 2025-03-15\nTotal: $1.00"
			})

			It("parses it", func() {
				Expect(fields.Date).NotTo(BeNil())
				Expect(fields.Date.Format("2006-01-02")).To(Equal("2025-03-15"))
			})
		})

		When("the date is textual", func() {
			BeforeEach(func() {
				text = "March 15, 2025\nTotal: $1.00"
			})

			It("parses it", func() {
				Expect(fields.Date).NotTo(BeNil())
				Expect(fields.Date.Format("2006-01-02")).To(Equal("2025-03-15"))
			})
		})

		When("the day comes first", func() {
			BeforeEach(func() {
				text = "15/03/2025\nTotal: $1.00"
			})

			It("takes the component that can only be a month", func() {
				Expect(fields.Date).NotTo(BeNil())
				Expect(fields.Date.Format("2006-01-02")).To(Equal("2025-03-15"))
			})
		})

		When("the candidate is outside the calendar", func() {
			BeforeEach(func() {
				text = "13/13/2025\nTotal: $1.00"
			})

			It("reports the date as absent", func() {
				Expect(fields.Date).To(BeNil())
			})
		})

		When("the year is outside the near-present window", func() {
			BeforeEach(func() {
				text = "03/15/1987\nTotal: $1.00"
			})

			It("reports the date as absent", func() {
				Expect(fields.Date).To(BeNil())
			})
		})

		When("the calendar itself rejects the day", func() {
			BeforeEach(func() {
				text = "Feb 31, 2025\nTotal: $1.00"
			})

			It("reports the date as absent", func() {
				Expect(fields.Date).To(BeNil())
			})
		})
	})

	Describe("line items", func() {
		When("a currency line has no description", func() {
			BeforeEach(func() {
				text = "STORE\n$9.99\nWidget $5.00"
			})

			It("discards the bare-amount candidate", func() {
				Expect(fields.Items).To(HaveLen(1))
				Expect(fields.Items[0].Description).To(Equal("Widget"))
			})
		})
	})
})
