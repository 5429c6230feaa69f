package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/deducto/receipt-scanner/constants"
	"github.com/deducto/receipt-scanner/internal/common"
	"github.com/deducto/receipt-scanner/internal/confidence"
	"github.com/deducto/receipt-scanner/internal/export"
	"github.com/deducto/receipt-scanner/internal/imaging"
	"github.com/deducto/receipt-scanner/internal/quality"
	"github.com/deducto/receipt-scanner/internal/recognize"
	"github.com/deducto/receipt-scanner/internal/recordjson"
	"github.com/deducto/receipt-scanner/internal/scanner"
	"github.com/deducto/receipt-scanner/internal/store"
)

func main() {
	fs := ff.NewFlagSet("receipt-batch")
	var (
		dir        = fs.StringLong("dir", "", "directory of receipt images (required)")
		dsn        = fs.StringLong("dsn", "receipts.db", "store DSN: sqlite path or postgres:// URL")
		out        = fs.StringLong("out", "", "write an XLSX deduction worksheet to this path")
		lang       = fs.StringLong("lang", "eng", "Tesseract language")
		psm        = fs.IntLong("psm", 6, "Tesseract page segmentation mode")
		scorerName = fs.StringLong("scorer", "flags", "confidence scorer: 'flags' or 'text'")
		debug      = fs.BoolLong("debug", "enable debug logging")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_BATCH"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *dir == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --dir is required")
		os.Exit(2)
	}

	ctx := context.Background()

	cfg := common.LoadConfig()
	cfg.Store.DSN = *dsn

	receipts, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := receipts.Close(); cerr != nil {
			logger.Error("close store", "error", cerr)
		}
	}()

	rec, err := recognize.NewTesseract(recognize.Config{
		Language:    *lang,
		PageSegMode: *psm,
	}, logger)
	if err != nil {
		logger.Error("init recognizer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := rec.Close(); cerr != nil {
			logger.Error("close recognizer", "error", cerr)
		}
	}()

	validator, err := recordjson.NewValidator()
	if err != nil {
		logger.Error("compile record schema", "error", err)
		os.Exit(1)
	}

	pre := imaging.NewPreprocessor(imaging.Config{
		DeskewMinAngle: cfg.Scan.DeskewMinAngle,
		MorphCleanup:   cfg.Scan.MorphCleanup,
	}, quality.NewAssessor(), logger)
	orch := scanner.NewOrchestrator(pre, rec, confidence.ForName(*scorerName), logger)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Error("read directory", "dir", *dir, "error", err)
		os.Exit(1)
	}

	start := time.Now()
	scanned, failed, skipped := 0, 0, 0
	// Batch processing is N independent scans; a failed image never stops
	// the rest of the run.
	for _, entry := range entries {
		if entry.IsDir() || !constants.IsAllowedExt(filepath.Ext(entry.Name())) {
			continue
		}
		path := filepath.Join(*dir, entry.Name())

		result := orch.Scan(ctx, path)
		if !result.Success {
			failed++
			continue
		}

		if problems := scanner.Validate(result.Record); len(problems) > 0 {
			logger.Warn("record rejected", "path", path, "problems", problems)
			skipped++
			continue
		}
		doc, err := json.Marshal(result.Record)
		if err != nil {
			logger.Error("serialize record", "path", path, "error", err)
			skipped++
			continue
		}
		if err := validator.Validate(doc); err != nil {
			logger.Warn("record rejected", "path", path, "error", err)
			skipped++
			continue
		}

		if err := receipts.Save(ctx, result.Record); err != nil {
			logger.Error("save record", "path", path, "error", err)
			skipped++
			continue
		}
		scanned++
	}

	totals, err := receipts.CategoryTotals(ctx)
	if err != nil {
		logger.Error("category totals", "error", err)
		os.Exit(1)
	}
	for cat, amt := range totals {
		logger.Info("deduction bucket", "category", string(cat), "total", amt.StringFixed(2))
	}

	if *out != "" {
		svc := export.NewService(receipts, logger)
		xlsx, err := svc.ExportReceiptsXLSX(ctx)
		if err != nil {
			logger.Error("export xlsx", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
			logger.Error("write xlsx", "path", *out, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch complete",
		"scanned", scanned,
		"failed", failed,
		"skipped", skipped,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if failed > 0 {
		os.Exit(1)
	}
}
