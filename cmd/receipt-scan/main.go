package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/deducto/receipt-scanner/internal/confidence"
	"github.com/deducto/receipt-scanner/internal/imaging"
	"github.com/deducto/receipt-scanner/internal/quality"
	"github.com/deducto/receipt-scanner/internal/recognize"
	"github.com/deducto/receipt-scanner/internal/scanner"
)

func main() {
	fs := ff.NewFlagSet("receipt-scan")
	var (
		imagePath  = fs.StringLong("image", "", "path to the receipt image (required)")
		lang       = fs.StringLong("lang", "eng", "Tesseract language")
		psm        = fs.IntLong("psm", 6, "Tesseract page segmentation mode")
		scorerName = fs.StringLong("scorer", "flags", "confidence scorer: 'flags' or 'text'")
		noMorph    = fs.BoolLong("no-morph", "skip morphological cleanup after binarization")
		pretty     = fs.BoolLong("pretty", "pretty-print the JSON result")
		debug      = fs.BoolLong("debug", "enable debug logging")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_SCAN"),
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

	if *imagePath == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --image is required")
		os.Exit(2)
	}

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

	pre := imaging.NewPreprocessor(imaging.Config{
		MorphCleanup: !*noMorph,
	}, quality.NewAssessor(), logger)

	orch := scanner.NewOrchestrator(pre, rec, confidence.ForName(*scorerName), logger)

	result := orch.Scan(context.Background(), *imagePath)

	if result.Success {
		for _, problem := range scanner.Validate(result.Record) {
			logger.Warn("record validation", "problem", problem)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	if !result.Success {
		os.Exit(1)
	}
}
