package recordjson

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deducto/receipt-scanner/constants"
	"github.com/deducto/receipt-scanner/internal/entity"
)

func validRecord() *entity.ReceiptRecord {
	tax := decimal.RequireFromString("2.50")
	date := entity.NewDate(2025, time.March, 15)
	return &entity.ReceiptRecord{
		ID:              uuid.New(),
		VendorName:      "Walgreens",
		TotalAmount:     decimal.RequireFromString("31.48"),
		TaxAmount:       &tax,
		TransactionDate: &date,
		Items: []entity.LineItem{
			{Description: "Aspirin", Price: decimal.RequireFromString("12.99")},
		},
		Category:        constants.Medical,
		ConfidenceScore: 0.9,
		RawText:         "WALGREENS ...",
		ExtractedAt:     time.Now().UTC(),
	}
}

// mutate serializes a valid record, applies edits as a generic map, and
// re-serializes, so each case expresses exactly one deviation.
func mutate(edit func(m map[string]any)) []byte {
	b, err := json.Marshal(validRecord())
	Expect(err).NotTo(HaveOccurred())
	var m map[string]any
	Expect(json.Unmarshal(b, &m)).To(Succeed())
	edit(m)
	out, err := json.Marshal(m)
	Expect(err).NotTo(HaveOccurred())
	return out
}

var _ = Describe("Validator", func() {
	var validator *Validator

	BeforeEach(func() {
		var err error
		validator, err = NewValidator()
		Expect(err).NotTo(HaveOccurred())
	})

	It("accepts a serialized scan record", func() {
		doc, err := json.Marshal(validRecord())
		Expect(err).NotTo(HaveOccurred())
		Expect(validator.Validate(doc)).To(Succeed())
	})

	It("accepts a record without the optional fields", func() {
		rec := validRecord()
		rec.TaxAmount = nil
		rec.TransactionDate = nil
		rec.Items = []entity.LineItem{}
		doc, err := json.Marshal(rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(validator.Validate(doc)).To(Succeed())
	})

	It("rejects a category outside the closed set", func() {
		doc := mutate(func(m map[string]any) { m["category"] = "groceries" })
		Expect(validator.Validate(doc)).NotTo(Succeed())
	})

	It("rejects a negative amount", func() {
		doc := mutate(func(m map[string]any) { m["total_amount"] = "-5.00" })
		Expect(validator.Validate(doc)).NotTo(Succeed())
	})

	It("rejects an amount that is not fixed-point", func() {
		doc := mutate(func(m map[string]any) { m["total_amount"] = "31.489" })
		Expect(validator.Validate(doc)).NotTo(Succeed())
	})

	It("rejects a confidence outside the unit interval", func() {
		doc := mutate(func(m map[string]any) { m["confidence_score"] = 1.5 })
		Expect(validator.Validate(doc)).NotTo(Succeed())
	})

	It("rejects an unknown key", func() {
		doc := mutate(func(m map[string]any) { m["notes"] = "handwritten" })
		Expect(validator.Validate(doc)).NotTo(Succeed())
	})

	It("rejects a missing required field", func() {
		doc := mutate(func(m map[string]any) { delete(m, "vendor_name") })
		Expect(validator.Validate(doc)).NotTo(Succeed())
	})

	It("rejects a date that is not calendar-shaped", func() {
		doc := mutate(func(m map[string]any) { m["transaction_date"] = "03/15/2025" })
		Expect(validator.Validate(doc)).NotTo(Succeed())
	})

	It("rejects a document that is not JSON at all", func() {
		Expect(validator.Validate([]byte("not json"))).NotTo(Succeed())
	})
})
