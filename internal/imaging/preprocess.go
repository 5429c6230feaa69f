// Package imaging normalizes raw receipt photos for text recognition:
// grayscale, denoise, contrast equalization, deskew, and binarization.
package imaging

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"gocv.io/x/gocv"

	"github.com/deducto/receipt-scanner/internal/common"
	"github.com/deducto/receipt-scanner/internal/quality"
	"github.com/deducto/receipt-scanner/internal/scanner"
)

type Config struct {
	DeskewMinAngle float64 // degrees; rotations below this are skipped
	MorphCleanup   bool    // close-then-open speckle removal after binarize
	CLAHEClipLimit float64
	CLAHETileSize  int
	AdaptiveBlock  int // odd window size for adaptive threshold
	AdaptiveC      float32
}

// Preprocessor runs the normalization pipeline. Every stage after load is
// best-effort: a stage that fails internally is skipped with a warning and
// the pipeline continues from the last good bitmap, because degraded
// recognition beats no result.
type Preprocessor struct {
	cfg      Config
	assessor *quality.Assessor
	logger   *slog.Logger
}

func NewPreprocessor(cfg Config, assessor *quality.Assessor, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	if assessor == nil {
		assessor = quality.NewAssessor()
	}
	if cfg.DeskewMinAngle <= 0 {
		cfg.DeskewMinAngle = 5.0
	}
	if cfg.CLAHEClipLimit <= 0 {
		cfg.CLAHEClipLimit = 2.0
	}
	if cfg.CLAHETileSize <= 0 {
		cfg.CLAHETileSize = 8
	}
	if cfg.AdaptiveBlock <= 1 {
		cfg.AdaptiveBlock = 31
	}
	if cfg.AdaptiveBlock%2 == 0 {
		cfg.AdaptiveBlock++
	}
	if cfg.AdaptiveC == 0 {
		cfg.AdaptiveC = 10
	}
	return &Preprocessor{cfg: cfg, assessor: assessor, logger: logger}
}

// Process loads the image at path and runs the pipeline. The only hard
// failure is a missing or unreadable source image.
func (p *Preprocessor) Process(ctx context.Context, path string) (*scanner.ProcessedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := gocv.IMRead(path, gocv.IMReadColor)
	if src.Empty() {
		return nil, common.NewAppError(common.CodeImageLoad,
			fmt.Sprintf("cannot read image %q", path), nil)
	}
	defer src.Close()

	var warnings []string

	rawQuality := 0.0
	var rawImg image.Image
	if img, err := src.ToImage(); err == nil {
		rawImg = img
		rawQuality = p.assessor.Assess(img).Overall
	} else {
		warnings = append(warnings, "raw-quality")
	}

	cur := src.Clone()

	cur = p.applyStage(cur, "grayscale", &warnings, func(in gocv.Mat, out *gocv.Mat) {
		gocv.CvtColor(in, out, gocv.ColorBGRToGray)
	})

	// Edge-preserving smoothing plus a light median pass removes sensor and
	// print noise without blurring character edges.
	cur = p.applyStage(cur, "denoise", &warnings, func(in gocv.Mat, out *gocv.Mat) {
		tmp := gocv.NewMat()
		defer tmp.Close()
		gocv.BilateralFilter(in, &tmp, 9, 75, 75)
		gocv.MedianBlur(tmp, out, 3)
	})

	// Tile-based contrast-limited equalization normalizes uneven lighting
	// across the receipt.
	cur = p.applyStage(cur, "equalize", &warnings, func(in gocv.Mat, out *gocv.Mat) {
		clahe := gocv.NewCLAHEWithParams(p.cfg.CLAHEClipLimit,
			image.Pt(p.cfg.CLAHETileSize, p.cfg.CLAHETileSize))
		defer clahe.Close()
		clahe.Apply(in, out)
	})

	cur = p.deskew(cur, &warnings)

	// Local thresholding binarizes faded and heavily-inked regions of the
	// same receipt correctly where a global threshold cannot.
	cur = p.applyStage(cur, "binarize", &warnings, func(in gocv.Mat, out *gocv.Mat) {
		gocv.AdaptiveThreshold(in, out, 255,
			gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary,
			p.cfg.AdaptiveBlock, p.cfg.AdaptiveC)
	})

	if p.cfg.MorphCleanup {
		cur = p.applyStage(cur, "morphology", &warnings, func(in gocv.Mat, out *gocv.Mat) {
			kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(2, 2))
			defer kernel.Close()
			tmp := gocv.NewMat()
			defer tmp.Close()
			gocv.MorphologyEx(in, &tmp, gocv.MorphClose, kernel)
			gocv.MorphologyEx(tmp, out, gocv.MorphOpen, kernel)
		})
	}
	defer cur.Close()

	finalImg, err := cur.ToImage()
	if err != nil {
		if rawImg == nil {
			return nil, common.NewAppError(common.CodeImageLoad,
				fmt.Sprintf("cannot decode image %q", path), err)
		}
		warnings = append(warnings, "final-convert")
		finalImg = rawImg
	}

	if len(warnings) > 0 {
		p.logger.Warn("preprocess.degraded", "path", path, "stages", warnings)
	}

	return &scanner.ProcessedImage{
		Image:      finalImg,
		RawQuality: rawQuality,
		Quality:    p.assessor.Assess(finalImg).Overall,
		Warnings:   warnings,
	}, nil
}

// applyStage runs one transform, keeping the previous bitmap when the
// transform fails or produces nothing. OpenCV surfaces failures as panics
// through the binding, so the stage body runs under recover.
func (p *Preprocessor) applyStage(cur gocv.Mat, name string, warnings *[]string, fn func(in gocv.Mat, out *gocv.Mat)) gocv.Mat {
	next := gocv.NewMat()
	ok := func() (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		fn(cur, &next)
		return !next.Empty()
	}()
	if !ok {
		next.Close()
		*warnings = append(*warnings, name)
		return cur
	}
	cur.Close()
	return next
}

// deskew estimates the dominant rotation from the minimum-area bounding
// rectangle of the largest contour and rotates only when the angle exceeds
// the configured minimum, so near-upright images pick up no resampling
// artifacts.
func (p *Preprocessor) deskew(cur gocv.Mat, warnings *[]string) gocv.Mat {
	angle, ok := p.skewAngle(cur)
	if !ok {
		*warnings = append(*warnings, "deskew")
		return cur
	}
	if math.Abs(angle) <= p.cfg.DeskewMinAngle {
		return cur
	}
	return p.applyStage(cur, "deskew", warnings, func(in gocv.Mat, out *gocv.Mat) {
		center := image.Pt(in.Cols()/2, in.Rows()/2)
		rot := gocv.GetRotationMatrix2D(center, angle, 1.0)
		defer rot.Close()
		gocv.WarpAffineWithParams(in, out, rot,
			image.Pt(in.Cols(), in.Rows()),
			gocv.InterpolationLinear, gocv.BorderConstant,
			color.RGBA{R: 255, G: 255, B: 255, A: 255})
	})
}

func (p *Preprocessor) skewAngle(gray gocv.Mat) (angle float64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			angle, ok = 0, false
		}
	}()

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(gray, &bin, 0, 255, gocv.ThresholdBinaryInv+gocv.ThresholdOtsu)

	contours := gocv.FindContours(bin, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	bestArea := 0.0
	found := false
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		if area := gocv.ContourArea(c); area > bestArea {
			bestArea = area
			angle = float64(gocv.MinAreaRect(c).Angle)
			found = true
		}
	}
	if !found {
		return 0, true // nothing to deskew is not a failure
	}
	// MinAreaRect reports in [-90, 0); fold onto the nearest upright.
	if angle < -45 {
		angle += 90
	}
	return angle, true
}
