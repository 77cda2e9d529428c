package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// ErrEmptyImage reports a structurally invalid input (zero-length buffer or
// zero-area bounds).
var ErrEmptyImage = errors.New("preprocess: empty image")

// Dimensions assumed when a raw buffer arrives without size metadata.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ThresholdMode selects how the conditioned image is binarized.
type ThresholdMode int

const (
	// ThresholdNone keeps the contrast-stretched grayscale as-is.
	ThresholdNone ThresholdMode = iota
	// ThresholdFixed drives every pixel to black or white around FixedLevel.
	ThresholdFixed
	// ThresholdOtsu derives the cut from the luminance histogram by
	// maximizing inter-class variance.
	ThresholdOtsu
)

// Options controls the conditioning pipeline. The zero value applies no
// upscaling, no contrast change and no binarization.
type Options struct {
	// Scale is an integer upscale factor; 0 and 1 mean no scaling. Higher
	// factors improve thin-stroke legibility at the cost of processing time.
	Scale int
	// Contrast multiplies the distance of each luminance value from the
	// midpoint (128). 0 leaves contrast untouched; 1.5 is a sensible start.
	Contrast float64
	// Threshold selects the binarization mode.
	Threshold ThresholdMode
	// FixedLevel is the cut used by ThresholdFixed.
	FixedLevel uint8
	// Soft grades pixels near the threshold instead of producing a hard
	// two-level output, which some engines prefer on anti-aliased strokes.
	Soft bool
}

// DefaultOptions returns the conditioning used by the stock recognition plan.
func DefaultOptions() Options {
	return Options{
		Scale:      2,
		Contrast:   1.5,
		Threshold:  ThresholdOtsu,
		FixedLevel: 127,
	}
}

// softBand is the half-width of the graded ramp around the threshold when
// Options.Soft is set.
const softBand = 16

// Condition produces a new buffer optimized for text recognition: optional
// upscaling, luminance conversion with broadcast luma weights, contrast
// stretch around the midpoint and binarization. The input image is never
// modified, so a caller can retry with different options without
// re-capturing. All three color channels stay in sync (R=G=B) for consumers
// that expect color data.
func Condition(img image.Image, opts Options) (*image.RGBA, error) {
	if img == nil {
		return nil, ErrEmptyImage
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, ErrEmptyImage
	}

	if opts.Scale > 1 {
		scaled := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*opts.Scale, bounds.Dy()*opts.Scale))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
		img = scaled
		bounds = scaled.Bounds()
	}

	luma := lumaPlane(img)

	if opts.Contrast > 0 && opts.Contrast != 1 {
		for i, l := range luma {
			luma[i] = clamp((float64(l)-128)*opts.Contrast + 128)
		}
	}

	switch opts.Threshold {
	case ThresholdFixed:
		applyThreshold(luma, opts.FixedLevel, opts.Soft)
	case ThresholdOtsu:
		applyThreshold(luma, otsuThreshold(luma), opts.Soft)
	}

	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for i, l := range luma {
		off := i * 4
		out.Pix[off] = l
		out.Pix[off+1] = l
		out.Pix[off+2] = l
		out.Pix[off+3] = 0xff
	}
	return out, nil
}

// ConditionBytes decodes an encoded image (PNG or JPEG), conditions it and
// re-encodes the result as PNG. This is the form the OCR backends consume.
func ConditionBytes(data []byte, opts Options) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("preprocess: decode image: %w", err)
	}
	conditioned, err := Condition(img, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, conditioned, imaging.PNG); err != nil {
		return nil, fmt.Errorf("preprocess: encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// ConditionRaw conditions a raw RGBA buffer. When width or height is not
// known the buffer is interpreted as DefaultWidth x DefaultHeight rather
// than failing, matching cameras that deliver frames without metadata.
func ConditionRaw(pix []byte, width, height int, opts Options) (*image.RGBA, error) {
	if len(pix) == 0 {
		return nil, ErrEmptyImage
	}
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	if len(pix) < width*height*4 {
		return nil, fmt.Errorf("preprocess: buffer holds %d bytes, need %d for %dx%d: %w",
			len(pix), width*height*4, width, height, ErrEmptyImage)
	}
	src := &image.RGBA{
		Pix:    pix[:width*height*4],
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	return Condition(src, opts)
}

// lumaPlane converts the image to one luminance byte per pixel using the
// broadcast weights 0.299R + 0.587G + 0.114B.
func lumaPlane(img image.Image) []uint8 {
	bounds := img.Bounds()
	luma := make([]uint8, bounds.Dx()*bounds.Dy())
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			l := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			luma[i] = clamp(l)
			i++
		}
	}
	return luma
}

func applyThreshold(luma []uint8, level uint8, soft bool) {
	for i, l := range luma {
		switch {
		case soft && absDiff(l, level) <= softBand:
			// Linear ramp across the band so near-threshold pixels keep a
			// gradient instead of flipping hard.
			pos := float64(int(l)-int(level)+softBand) / (2 * softBand)
			luma[i] = clamp(pos * 255)
		case l > level:
			luma[i] = 0xff
		default:
			luma[i] = 0
		}
	}
}

// otsuThreshold picks the cut maximizing inter-class variance between the
// two luminance populations.
func otsuThreshold(luma []uint8) uint8 {
	var hist [256]int
	for _, l := range luma {
		hist[l]++
	}
	total := len(luma)

	var sum float64
	for v, n := range hist {
		sum += float64(v) * float64(n)
	}

	var (
		sumBack    float64
		weightBack int
		bestVar    float64
		best       uint8
	)
	for t := 0; t < 256; t++ {
		weightBack += hist[t]
		if weightBack == 0 {
			continue
		}
		weightFore := total - weightBack
		if weightFore == 0 {
			break
		}
		sumBack += float64(t) * float64(hist[t])
		meanBack := sumBack / float64(weightBack)
		meanFore := (sum - sumBack) / float64(weightFore)
		diff := meanBack - meanFore
		between := float64(weightBack) * float64(weightFore) * diff * diff
		if between > bestVar {
			bestVar = between
			best = uint8(t)
		}
	}
	return best
}

func clamp(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a) - int(b)
	}
	return int(b) - int(a)
}
