// Package store is the persistence collaborator downstream of the scan
// pipeline. The pipeline itself never writes here; the consuming layer
// validates a record and then hands it over.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deducto/receipt-scanner/constants"
	"github.com/deducto/receipt-scanner/internal/common"
	"github.com/deducto/receipt-scanner/internal/entity"
)

// ReceiptStore accepts serialized receipt records and accumulates the
// running per-category totals used for deduction buckets.
type ReceiptStore interface {
	Save(ctx context.Context, record *entity.ReceiptRecord) error
	List(ctx context.Context) ([]entity.ReceiptRecord, error)
	CategoryTotals(ctx context.Context) (map[constants.Category]decimal.Decimal, error)
	Close() error
}

// Open picks a backend from the DSN: postgres URLs go to pgx, anything else
// is treated as a sqlite file path (":memory:" included).
func Open(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (ReceiptStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		return NewPostgresStore(ctx, cfg, logger)
	}
	return NewSQLiteStore(ctx, cfg.DSN, logger)
}

// row is the flat serialized shape shared by both backends.
type row struct {
	id         string
	vendor     string
	total      string
	tax        *string
	date       *string
	category   string
	confidence float64
	rawText    string
	itemsJSON  string
	extracted  string
}

func toRow(r *entity.ReceiptRecord) (row, error) {
	items, err := json.Marshal(r.Items)
	if err != nil {
		return row{}, fmt.Errorf("marshal items: %w", err)
	}
	out := row{
		id:         r.ID.String(),
		vendor:     r.VendorName,
		total:      r.TotalAmount.StringFixed(2),
		category:   string(r.Category),
		confidence: r.ConfidenceScore,
		rawText:    r.RawText,
		itemsJSON:  string(items),
		extracted:  r.ExtractedAt.UTC().Format(time.RFC3339Nano),
	}
	if r.TaxAmount != nil {
		tax := r.TaxAmount.StringFixed(2)
		out.tax = &tax
	}
	if r.TransactionDate != nil {
		date := r.TransactionDate.Format("2006-01-02")
		out.date = &date
	}
	return out, nil
}

func fromRow(rw row) (entity.ReceiptRecord, error) {
	var rec entity.ReceiptRecord

	id, err := parseUUID(rw.id)
	if err != nil {
		return rec, err
	}
	total, err := decimal.NewFromString(rw.total)
	if err != nil {
		return rec, fmt.Errorf("total_amount %q: %w", rw.total, err)
	}
	extracted, err := time.Parse(time.RFC3339Nano, rw.extracted)
	if err != nil {
		return rec, fmt.Errorf("extracted_at %q: %w", rw.extracted, err)
	}

	rec = entity.ReceiptRecord{
		ID:              id,
		VendorName:      rw.vendor,
		TotalAmount:     total,
		Category:        constants.Category(rw.category),
		ConfidenceScore: rw.confidence,
		RawText:         rw.rawText,
		ExtractedAt:     extracted,
	}

	if rw.tax != nil {
		tax, err := decimal.NewFromString(*rw.tax)
		if err != nil {
			return rec, fmt.Errorf("tax_amount %q: %w", *rw.tax, err)
		}
		rec.TaxAmount = &tax
	}
	if rw.date != nil {
		t, err := time.ParseInLocation("2006-01-02", *rw.date, time.UTC)
		if err != nil {
			return rec, fmt.Errorf("transaction_date %q: %w", *rw.date, err)
		}
		d := entity.Date{Time: t}
		rec.TransactionDate = &d
	}
	if err := json.Unmarshal([]byte(rw.itemsJSON), &rec.Items); err != nil {
		return rec, fmt.Errorf("unmarshal items: %w", err)
	}
	return rec, nil
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("id %q: %w", s, err)
	}
	return id, nil
}
