// Package scanner composes preprocessing, recognition, extraction,
// categorization, and confidence scoring into one synchronous scan.
package scanner

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deducto/receipt-scanner/constants"
	"github.com/deducto/receipt-scanner/internal/classify"
	"github.com/deducto/receipt-scanner/internal/common"
	"github.com/deducto/receipt-scanner/internal/confidence"
	"github.com/deducto/receipt-scanner/internal/entity"
	"github.com/deducto/receipt-scanner/internal/extract"
)

// rawQualityWarn is the early-warning threshold: a source image scoring
// below it is logged before any further work is spent on it.
const rawQualityWarn = 0.3

// Orchestrator runs the scan state machine. It holds no per-call mutable
// state, so one Orchestrator is safe for concurrent scans as long as the
// injected Recognizer is (see recognize.Tesseract).
type Orchestrator struct {
	logger     *slog.Logger
	pre        Preprocessor
	rec        Recognizer
	fields     *extract.Extractor
	categories *classify.Categorizer
	scorer     confidence.Strategy
}

func NewOrchestrator(pre Preprocessor, rec Recognizer, scorer confidence.Strategy, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if scorer == nil {
		scorer = confidence.PresenceFlags{}
	}
	return &Orchestrator{
		logger:     logger,
		pre:        pre,
		rec:        rec,
		fields:     extract.NewExtractor(logger),
		categories: classify.NewCategorizer(),
		scorer:     scorer,
	}
}

// Scan runs exactly once, synchronously, with no retry. It never returns an
// error: terminal conditions come back as a ScanResult with Success=false, a
// human-readable message, and whatever quality/timing metrics were already
// measured. A failed scan never carries a partial record.
func (o *Orchestrator) Scan(ctx context.Context, path string) entity.ScanResult {
	start := time.Now()
	stage := constants.StageStart

	fail := func(msg string, qualityScore float64) entity.ScanResult {
		o.logger.Error("scan.failed", "path", path, "stage", string(stage), "error", msg)
		return entity.ScanResult{
			Success:           false,
			ErrorMessage:      msg,
			ProcessingTime:    time.Since(start),
			ImageQualityScore: qualityScore,
		}
	}

	pi, err := o.pre.Process(ctx, path)
	if err != nil {
		stage = constants.StageFailed
		if common.HasCode(err, common.CodeImageLoad) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fail(err.Error(), 0)
		}
		return fail("failed to load image: "+err.Error(), 0)
	}
	stage = constants.StagePreprocessed
	if pi.RawQuality > 0 && pi.RawQuality < rawQualityWarn {
		o.logger.Warn("scan.low_quality_source", "path", path, "raw_quality", pi.RawQuality)
	}

	text, err := o.rec.Recognize(ctx, pi.Image)
	if err != nil {
		stage = constants.StageFailed
		return fail("text recognition failed: "+err.Error(), pi.Quality)
	}
	if strings.TrimSpace(text) == "" {
		stage = constants.StageFailed
		return fail("no text could be extracted from the image", pi.Quality)
	}
	stage = constants.StageRecognized

	f := o.fields.Extract(text)
	stage = constants.StageExtracted

	category := o.categories.Categorize(f.Vendor, text)
	stage = constants.StageCategorized

	reliability := 0.0
	if rr, ok := o.rec.(ReliabilityReporter); ok {
		reliability = rr.Reliability()
	}
	score := o.scorer.Score(confidence.Inputs{
		VendorFound: f.Vendor != extract.UnknownVendor,
		AmountFound: f.TotalFound && f.Total.IsPositive(),
		DateFound:   f.Date != nil,
		ItemsFound:  len(f.Items) > 0,
		RawText:     text,
		Reliability: reliability,
	})
	stage = constants.StageScored

	// An absent items list serializes as [] rather than null.
	items := f.Items
	if items == nil {
		items = []entity.LineItem{}
	}

	record := &entity.ReceiptRecord{
		ID:              uuid.New(),
		VendorName:      f.Vendor,
		TotalAmount:     f.Total,
		TaxAmount:       f.Tax,
		TransactionDate: f.Date,
		Items:           items,
		Category:        category,
		ConfidenceScore: score,
		RawText:         text,
		ExtractedAt:     time.Now().UTC(),
	}
	stage = constants.StageDone

	o.logger.Info("scan.ok",
		"path", path,
		"stage", string(stage),
		"vendor", record.VendorName,
		"total", record.TotalAmount.String(),
		"category", string(record.Category),
		"confidence", record.ConfidenceScore,
		"quality", pi.Quality,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return entity.ScanResult{
		Success:           true,
		Record:            record,
		ProcessingTime:    time.Since(start),
		ImageQualityScore: pi.Quality,
	}
}
