package scanner

import (
	"context"
	"image"
)

// ProcessedImage is the transient, normalized bitmap produced by
// preprocessing. It exists only for the duration of one scan and carries the
// quality scores measured before and after normalization.
type ProcessedImage struct {
	Image      image.Image
	RawQuality float64  // quality of the source bitmap, before preprocessing
	Quality    float64  // quality of the normalized bitmap
	Warnings   []string // preprocessing sub-steps that degraded gracefully
}

// Preprocessor normalizes a raw receipt image for text recognition.
// Implementations must fail only when the source cannot be loaded at all;
// internal stage failures degrade to a less-processed bitmap instead.
type Preprocessor interface {
	Process(ctx context.Context, path string) (*ProcessedImage, error)
}

// Recognizer converts a normalized bitmap into best-effort raw multi-line
// text. It is an external capability boundary: the pipeline depends only on
// this contract and never on a concrete engine.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// ReliabilityReporter is optionally implemented by recognizers that can
// report an engine-level confidence in [0,1] for the last recognition.
type ReliabilityReporter interface {
	Reliability() float64
}
