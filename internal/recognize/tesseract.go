// Package recognize adapts a Tesseract engine to the pipeline's
// text-recognition boundary. The pipeline itself depends only on the
// Recognize contract; this package is the default implementation.
package recognize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

type Config struct {
	Language    string // default "eng"
	PageSegMode int    // default 6, a uniform block of text
	Whitelist   string // optional character whitelist
}

// Tesseract wraps one gosseract client. A client is not reentrant, so all
// calls are serialized internally; use one Tesseract per worker when
// scanning in parallel.
type Tesseract struct {
	mu          sync.Mutex
	client      *gosseract.Client
	reliability float64
	logger      *slog.Logger
}

func NewTesseract(cfg Config, logger *slog.Logger) (*Tesseract, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.PageSegMode == 0 {
		cfg.PageSegMode = int(gosseract.PSM_SINGLE_BLOCK)
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(cfg.Language); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if cfg.Whitelist != "" {
		if err := client.SetWhitelist(cfg.Whitelist); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set whitelist: %w", err)
		}
	}
	return &Tesseract{client: client, logger: logger}, nil
}

// Recognize converts a normalized bitmap into raw multi-line text. The text
// is best-effort and may be empty; the caller decides what empty means.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode bitmap: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}

	t.reliability = t.wordReliability()
	return text, nil
}

// wordReliability averages Tesseract's per-word confidences onto [0,1].
// Zero means the engine reported nothing usable.
func (t *Tesseract) wordReliability() float64 {
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes)) / 100.0
}

// Reliability reports the engine confidence of the last Recognize call.
func (t *Tesseract) Reliability() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reliability
}

func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
