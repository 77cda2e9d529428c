package preprocess

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// bimodalImage returns a half dark, half bright image whose histogram has two
// clearly separated populations.
func bimodalImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(40)
			if x >= w/2 {
				v = 220
			}
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func TestConditionRejectsEmpty(t *testing.T) {
	if _, err := Condition(nil, Options{}); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("nil image: err = %v, want ErrEmptyImage", err)
	}
	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if _, err := Condition(empty, Options{}); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("zero-area image: err = %v, want ErrEmptyImage", err)
	}
	if _, err := ConditionBytes(nil, Options{}); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("empty bytes: err = %v, want ErrEmptyImage", err)
	}
}

func TestConditionDoesNotMutateInput(t *testing.T) {
	src := bimodalImage(8, 8)
	before := append([]byte(nil), src.Pix...)
	if _, err := Condition(src, DefaultOptions()); err != nil {
		t.Fatalf("Condition() error = %v", err)
	}
	if !bytes.Equal(before, src.Pix) {
		t.Fatalf("input image was modified")
	}
}

func TestConditionFixedThresholdTwoLevel(t *testing.T) {
	src := bimodalImage(16, 4)
	out, err := Condition(src, Options{Threshold: ThresholdFixed, FixedLevel: 127})
	if err != nil {
		t.Fatalf("Condition() error = %v", err)
	}
	for i := 0; i < len(out.Pix); i += 4 {
		r, g, b, a := out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3]
		if r != g || g != b {
			t.Fatalf("pixel %d channels out of sync: %d %d %d", i/4, r, g, b)
		}
		if r != 0 && r != 255 {
			t.Fatalf("pixel %d not driven to an extreme: %d", i/4, r)
		}
		if a != 255 {
			t.Fatalf("pixel %d alpha = %d", i/4, a)
		}
	}
}

func TestConditionOtsuSplitsBimodal(t *testing.T) {
	src := bimodalImage(32, 8)
	out, err := Condition(src, Options{Threshold: ThresholdOtsu})
	if err != nil {
		t.Fatalf("Condition() error = %v", err)
	}
	// The dark half must end up black and the bright half white.
	if got := out.Pix[0]; got != 0 {
		t.Fatalf("dark pixel = %d, want 0", got)
	}
	lastRow := (out.Bounds().Dx() - 1) * 4
	if got := out.Pix[lastRow]; got != 255 {
		t.Fatalf("bright pixel = %d, want 255", got)
	}
}

func TestOtsuThresholdBetweenModes(t *testing.T) {
	luma := make([]uint8, 0, 200)
	for i := 0; i < 100; i++ {
		luma = append(luma, 40)
	}
	for i := 0; i < 100; i++ {
		luma = append(luma, 220)
	}
	got := otsuThreshold(luma)
	if got < 40 || got >= 220 {
		t.Fatalf("otsuThreshold() = %d, want a cut between the modes", got)
	}
}

func TestConditionUpscale(t *testing.T) {
	src := bimodalImage(10, 6)
	out, err := Condition(src, Options{Scale: 3})
	if err != nil {
		t.Fatalf("Condition() error = %v", err)
	}
	if out.Bounds().Dx() != 30 || out.Bounds().Dy() != 18 {
		t.Fatalf("upscaled bounds = %v, want 30x18", out.Bounds())
	}
}

func TestConditionSoftKeepsGradient(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.RGBA{110, 110, 110, 255})
	img.Set(1, 0, color.RGBA{127, 127, 127, 255})
	img.Set(2, 0, color.RGBA{200, 200, 200, 255})
	out, err := Condition(img, Options{Threshold: ThresholdFixed, FixedLevel: 127, Soft: true})
	if err != nil {
		t.Fatalf("Condition() error = %v", err)
	}
	mid := out.Pix[4]
	if mid == 0 || mid == 255 {
		t.Fatalf("near-threshold pixel = %d, want graded value", mid)
	}
	if out.Pix[8] != 255 {
		t.Fatalf("bright pixel = %d, want 255", out.Pix[8])
	}
}

func TestConditionBytesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, bimodalImage(12, 12)); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	out, err := ConditionBytes(buf.Bytes(), DefaultOptions())
	if err != nil {
		t.Fatalf("ConditionBytes() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode conditioned output: %v", err)
	}
	if img.Bounds().Dx() != 24 || img.Bounds().Dy() != 24 {
		t.Fatalf("conditioned bounds = %v, want 24x24 after 2x upscale", img.Bounds())
	}
}

func TestConditionRawDefaultDimensions(t *testing.T) {
	pix := make([]byte, DefaultWidth*DefaultHeight*4)
	out, err := ConditionRaw(pix, 0, 0, Options{})
	if err != nil {
		t.Fatalf("ConditionRaw() error = %v", err)
	}
	if out.Bounds().Dx() != DefaultWidth || out.Bounds().Dy() != DefaultHeight {
		t.Fatalf("bounds = %v, want default %dx%d", out.Bounds(), DefaultWidth, DefaultHeight)
	}
	if _, err := ConditionRaw(pix[:16], 0, 0, Options{}); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("short buffer: err = %v, want ErrEmptyImage", err)
	}
}
