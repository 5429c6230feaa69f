// Package quality scores how well a receipt bitmap is likely to OCR.
// It is pure Go so it can run on either side of preprocessing without
// touching the OpenCV pipeline.
package quality

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"
)

// Empirical normalization constants. Laplacian variance above sharpnessScale
// and intensity stddev above contrastScale are treated as "good enough" and
// clip to 1.0.
const (
	sharpnessScale = 1500.0
	contrastScale  = 80.0
	idealBrightness = 128.0

	weightSharpness  = 0.4
	weightBrightness = 0.3
	weightContrast   = 0.3

	// Bitmaps are shrunk to at most this edge length before measuring;
	// the statistics are scale-stable and the full image is not needed.
	maxAnalysisEdge = 640
)

// Score holds the three independent signals and their weighted blend.
// All values are clamped to [0,1].
type Score struct {
	Sharpness  float64
	Contrast   float64
	Brightness float64
	Overall    float64
}

// Assessor computes quality scores from bitmaps.
type Assessor struct{}

func NewAssessor() *Assessor {
	return &Assessor{}
}

// Assess measures sharpness (Laplacian variance), contrast (intensity
// stddev), and brightness closeness to mid-gray, then blends them with
// fixed weights.
func (a *Assessor) Assess(img image.Image) Score {
	gray := luminance(img)
	if len(gray.pix) == 0 {
		return Score{}
	}

	sharp := clamp01(laplacianVariance(gray) / sharpnessScale)
	contrast := clamp01(stat.StdDev(gray.pix, nil) / contrastScale)

	mean := stat.Mean(gray.pix, nil)
	bright := clamp01(1.0 - math.Abs(mean-idealBrightness)/idealBrightness)

	overall := clamp01(weightSharpness*sharp + weightBrightness*bright + weightContrast*contrast)

	return Score{
		Sharpness:  sharp,
		Contrast:   contrast,
		Brightness: bright,
		Overall:    overall,
	}
}

// grayPlane is a dense row-major luminance buffer.
type grayPlane struct {
	pix  []float64
	w, h int
}

func luminance(img image.Image) grayPlane {
	b := img.Bounds()
	if b.Dx() > maxAnalysisEdge || b.Dy() > maxAnalysisEdge {
		img = imaging.Fit(img, maxAnalysisEdge, maxAnalysisEdge, imaging.Box)
	}
	g := imaging.Grayscale(img)

	gb := g.Bounds()
	w, h := gb.Dx(), gb.Dy()
	pix := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w*4]
		for x := 0; x < w; x++ {
			// Grayscale output has R=G=B; any channel is the intensity.
			pix = append(pix, float64(row[x*4]))
		}
	}
	return grayPlane{pix: pix, w: w, h: h}
}

// laplacianVariance convolves the 4-neighbor Laplacian kernel and returns the
// variance of the response. Flat images score near zero; crisp text edges
// score high.
func laplacianVariance(g grayPlane) float64 {
	if g.w < 3 || g.h < 3 {
		return 0
	}
	resp := make([]float64, 0, (g.w-2)*(g.h-2))
	for y := 1; y < g.h-1; y++ {
		for x := 1; x < g.w-1; x++ {
			c := g.pix[y*g.w+x]
			l := g.pix[y*g.w+x-1] + g.pix[y*g.w+x+1] + g.pix[(y-1)*g.w+x] + g.pix[(y+1)*g.w+x] - 4*c
			resp = append(resp, l)
		}
	}
	return stat.Variance(resp, nil)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
