// Package export renders stored receipt records as an XLSX deduction
// worksheet for hand-off to the tax-preparation workflow.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/deducto/receipt-scanner/internal/store"
)

// Service is a tiny façade over the store that produces XLSX bytes.
type Service struct {
	receipts store.ReceiptStore
	logger   *slog.Logger
}

func NewService(receipts store.ReceiptStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{receipts: receipts, logger: logger}
}

// ExportReceiptsXLSX returns a workbook with one row per stored record plus
// a per-category totals sheet mapping receipts onto deduction buckets.
func (s *Service) ExportReceiptsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	recs, err := s.receipts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}
	totals, err := s.receipts.CategoryTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Receipts"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Transaction Date",
		"Vendor",
		"Deduction Category",
		"Amount",
		"Tax",
		"Confidence",
		"Items",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if r.TransactionDate != nil {
			write(1, r.TransactionDate.Format("2006-01-02"))
		} else {
			write(1, "")
		}
		write(2, r.VendorName)
		write(3, string(r.Category))
		write(4, r.TotalAmount.StringFixed(2))
		if r.TaxAmount != nil {
			write(5, r.TaxAmount.StringFixed(2))
		} else {
			write(5, "")
		}
		write(6, fmt.Sprintf("%.2f", r.ConfidenceScore))

		names := make([]string, 0, len(r.Items))
		for _, it := range r.Items {
			names = append(names, it.Description)
		}
		write(7, truncate(strings.Join(names, "; "), 140))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 14) // date
	_ = f.SetColWidth(sheet, "B", "B", 28) // vendor
	_ = f.SetColWidth(sheet, "C", "C", 20) // category
	_ = f.SetColWidth(sheet, "D", "E", 12) // amounts
	_ = f.SetColWidth(sheet, "F", "F", 12) // confidence
	_ = f.SetColWidth(sheet, "G", "G", 48) // items

	const totalsSheet = "Category Totals"
	if _, err := f.NewSheet(totalsSheet); err != nil {
		return nil, err
	}
	_ = f.SetCellValue(totalsSheet, "A1", "Deduction Category")
	_ = f.SetCellValue(totalsSheet, "B1", "Total")
	trow := 2
	for cat, amt := range totals {
		cell, _ := excelize.CoordinatesToCellName(1, trow)
		_ = f.SetCellValue(totalsSheet, cell, string(cat))
		cell, _ = excelize.CoordinatesToCellName(2, trow)
		_ = f.SetCellValue(totalsSheet, cell, amt.StringFixed(2))
		trow++
	}
	_ = f.SetColWidth(totalsSheet, "A", "A", 20)
	_ = f.SetColWidth(totalsSheet, "B", "B", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
