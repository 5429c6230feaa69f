package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/deducto/receipt-scanner/constants"
	"github.com/deducto/receipt-scanner/internal/common"
	"github.com/deducto/receipt-scanner/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS receipts (
	id               TEXT PRIMARY KEY,
	vendor_name      TEXT NOT NULL,
	total_amount     TEXT NOT NULL,
	tax_amount       TEXT,
	transaction_date TEXT,
	category         TEXT NOT NULL,
	confidence_score REAL NOT NULL,
	raw_text         TEXT NOT NULL,
	items_json       TEXT NOT NULL,
	extracted_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_receipts_category ON receipts(category);
`

// SQLiteStore is the default single-user backend: one file in the
// application's data directory.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteStore(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.NewAppError("STORE_OPEN", fmt.Sprintf("open sqlite %q", path), err)
	}
	// modernc sqlite serializes at the driver level; a single connection
	// avoids table-lock churn under concurrent writers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, common.NewAppError("STORE_MIGRATE", "apply sqlite schema", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, record *entity.ReceiptRecord) error {
	rw, err := toRow(record)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO receipts
			(id, vendor_name, total_amount, tax_amount, transaction_date,
			 category, confidence_score, raw_text, items_json, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			vendor_name=excluded.vendor_name,
			total_amount=excluded.total_amount,
			tax_amount=excluded.tax_amount,
			transaction_date=excluded.transaction_date,
			category=excluded.category,
			confidence_score=excluded.confidence_score,
			raw_text=excluded.raw_text,
			items_json=excluded.items_json,
			extracted_at=excluded.extracted_at`,
		rw.id, rw.vendor, rw.total, rw.tax, rw.date,
		rw.category, rw.confidence, rw.rawText, rw.itemsJSON, rw.extracted,
	)
	if err != nil {
		return fmt.Errorf("save receipt %s: %w", rw.id, err)
	}
	s.logger.Debug("store.save", "id", rw.id, "category", rw.category)
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]entity.ReceiptRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vendor_name, total_amount, tax_amount, transaction_date,
		       category, confidence_score, raw_text, items_json, extracted_at
		FROM receipts
		ORDER BY extracted_at`)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var out []entity.ReceiptRecord
	for rows.Next() {
		var rw row
		if err := rows.Scan(&rw.id, &rw.vendor, &rw.total, &rw.tax, &rw.date,
			&rw.category, &rw.confidence, &rw.rawText, &rw.itemsJSON, &rw.extracted); err != nil {
			return nil, fmt.Errorf("scan receipt row: %w", err)
		}
		rec, err := fromRow(rw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CategoryTotals accumulates total_amount per category. Amounts live as
// fixed-point strings, so summation happens in decimal space here rather
// than as float arithmetic in SQL.
func (s *SQLiteStore) CategoryTotals(ctx context.Context) (map[constants.Category]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, total_amount FROM receipts`)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[constants.Category]decimal.Decimal)
	for rows.Next() {
		var category, amount string
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("scan totals row: %w", err)
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("total_amount %q: %w", amount, err)
		}
		key := constants.Category(category)
		totals[key] = totals[key].Add(amt)
	}
	return totals, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
