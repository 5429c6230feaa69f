// Package entity holds the value types passed between pipeline stages and
// returned to the consuming application.
package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deducto/receipt-scanner/constants"
)

// Date is a calendar date with no time component, serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate builds a Date pinned to UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.Format("2006-01-02"))), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("date: expected quoted YYYY-MM-DD, got %s", s)
	}
	t, err := time.ParseInLocation("2006-01-02", s[1:len(s)-1], time.UTC)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	d.Time = t
	return nil
}

// LineItem is a single purchased item parsed from the receipt body.
type LineItem struct {
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// ReceiptRecord is the structured output of one successful scan.
// It is immutable once returned; later edits belong to the calling application.
type ReceiptRecord struct {
	ID              uuid.UUID          `json:"id"`
	VendorName      string             `json:"vendor_name"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	TaxAmount       *decimal.Decimal   `json:"tax_amount,omitempty"`
	TransactionDate *Date              `json:"transaction_date,omitempty"`
	Items           []LineItem         `json:"items"`
	Category        constants.Category `json:"category"`
	ConfidenceScore float64            `json:"confidence_score"`
	RawText         string             `json:"raw_text"`
	ExtractedAt     time.Time          `json:"extracted_at"`
}

// ScanResult is produced exactly once per scan call, success or not.
// On failure Record is always nil; a partially-filled record is never returned.
type ScanResult struct {
	Success           bool           `json:"success"`
	Record            *ReceiptRecord `json:"record,omitempty"`
	ErrorMessage      string         `json:"error_message,omitempty"`
	ProcessingTime    time.Duration  `json:"processing_time_ns"`
	ImageQualityScore float64        `json:"image_quality_score"`
}
