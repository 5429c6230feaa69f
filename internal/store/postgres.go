package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/deducto/receipt-scanner/constants"
	"github.com/deducto/receipt-scanner/internal/common"
	"github.com/deducto/receipt-scanner/internal/entity"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS receipts (
	id               TEXT PRIMARY KEY,
	vendor_name      TEXT NOT NULL,
	total_amount     TEXT NOT NULL,
	tax_amount       TEXT,
	transaction_date TEXT,
	category         TEXT NOT NULL,
	confidence_score DOUBLE PRECISION NOT NULL,
	raw_text         TEXT NOT NULL,
	items_json       TEXT NOT NULL,
	extracted_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_receipts_category ON receipts(category);
`

// PostgresStore backs deployments where several workstations share one
// receipts database.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresStore(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, common.NewAppError("STORE_OPEN", "parse postgres dsn", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.DialTimeout > 0 {
		pc.ConnConfig.ConnectTimeout = cfg.DialTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, common.NewAppError("STORE_OPEN", "connect postgres", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, common.NewAppError("STORE_MIGRATE", "apply postgres schema", err)
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Save(ctx context.Context, record *entity.ReceiptRecord) error {
	rw, err := toRow(record)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO receipts
			(id, vendor_name, total_amount, tax_amount, transaction_date,
			 category, confidence_score, raw_text, items_json, extracted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			vendor_name=EXCLUDED.vendor_name,
			total_amount=EXCLUDED.total_amount,
			tax_amount=EXCLUDED.tax_amount,
			transaction_date=EXCLUDED.transaction_date,
			category=EXCLUDED.category,
			confidence_score=EXCLUDED.confidence_score,
			raw_text=EXCLUDED.raw_text,
			items_json=EXCLUDED.items_json,
			extracted_at=EXCLUDED.extracted_at`,
		rw.id, rw.vendor, rw.total, rw.tax, rw.date,
		rw.category, rw.confidence, rw.rawText, rw.itemsJSON, rw.extracted,
	)
	if err != nil {
		return fmt.Errorf("save receipt %s: %w", rw.id, err)
	}
	s.logger.Debug("store.save", "id", rw.id, "category", rw.category)
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]entity.ReceiptRecord, error) {
	rows, err := s.pool.Query(ctx, `
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

func (s *PostgresStore) CategoryTotals(ctx context.Context) (map[constants.Category]decimal.Decimal, error) {
	rows, err := s.pool.Query(ctx, `SELECT category, total_amount FROM receipts`)
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

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
