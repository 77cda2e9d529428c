package tesseract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/wudi/platekit/ocr"
)

// Engine implements ocr.Engine on top of the gosseract client. A fresh
// client is created per call so concurrent captures never share Tesseract
// state.
type Engine struct {
	clientFactory func() *gosseract.Client

	// Profiles restricts the language profiles this installation can serve.
	// Empty means any profile is passed through to Tesseract untested.
	Profiles []ocr.Profile

	// Nominal is the confidence assigned when Tesseract returns text but no
	// per-word scores.
	Nominal float64
}

// New constructs a Tesseract-backed engine.
func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient, Nominal: 75}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single conditioned image. Backend problems
// (bad image data, Tesseract errors) come back as failed attempts;
// configuration mistakes (unsupported profile) come back as errors.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Attempt, error) {
	att := ocr.Attempt{
		InputID:     in.ID,
		Engine:      e.Name(),
		Profile:     in.Profile,
		PageSegMode: in.PageSegMode,
	}
	if len(e.Profiles) > 0 && !e.supports(in.Profile) {
		return att, fmt.Errorf("%w: %q", ocr.ErrUnsupportedProfile, in.Profile)
	}
	if err := ctx.Err(); err != nil {
		att.Err = err
		return att, nil
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		att.Err = fmt.Errorf("set image: %w", err)
		return att, nil
	}
	if in.Profile != "" {
		langs := strings.Split(string(in.Profile), "+")
		if err := c.SetLanguage(langs...); err != nil {
			return att, fmt.Errorf("%w: %q: %v", ocr.ErrUnsupportedProfile, in.Profile, err)
		}
	}
	if in.PageSegMode != 0 {
		if err := c.SetVariable(gosseract.SettableVariable("tessedit_pageseg_mode"), strconv.Itoa(int(in.PageSegMode))); err != nil {
			att.Err = fmt.Errorf("set page segmentation mode: %w", err)
			return att, nil
		}
	}
	if in.Whitelist != "" {
		if err := c.SetWhitelist(in.Whitelist); err != nil {
			att.Err = fmt.Errorf("set whitelist: %w", err)
			return att, nil
		}
	}

	text, err := c.Text()
	if err != nil {
		att.Err = fmt.Errorf("recognize text: %w", err)
		return att, nil
	}
	att.Text = strings.TrimSpace(text)
	att.Confidence = e.confidence(c, att.Text)
	att.OK = true
	return att, nil
}

func (e *Engine) supports(p ocr.Profile) bool {
	for _, known := range e.Profiles {
		if known == p {
			return true
		}
	}
	return false
}

// confidence averages Tesseract's per-word scores (already on a 0-100
// scale). When words are recognized without scores the nominal value keeps
// the attempt competitive.
func (e *Engine) confidence(c *gosseract.Client, text string) float64 {
	if text == "" {
		return 0
	}
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return e.Nominal
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes))
}
