package ocr

import (
	"context"
	"errors"
	"fmt"
)

// Configuration errors surfaced when wiring backends. These indicate
// programmer or deployment mistakes, not conditions a capture can recover
// from; the runner defends against them by skipping the offending
// configuration.
var (
	ErrUnknownPageSegMode = errors.New("ocr: unknown page segmentation mode")
	ErrUnsupportedProfile = errors.New("ocr: unsupported language profile")
)

// PageSegMode is a layout hint passed to the engine. Values follow the
// Tesseract numbering so they can be handed to tessedit_pageseg_mode
// directly; other engines map them as they see fit.
type PageSegMode int

const (
	PSMSingleBlock PageSegMode = 6
	PSMSingleLine  PageSegMode = 7
	PSMSingleWord  PageSegMode = 8
	PSMSparseText  PageSegMode = 11
)

func (m PageSegMode) String() string {
	switch m {
	case PSMSingleBlock:
		return "single_block"
	case PSMSingleLine:
		return "single_line"
	case PSMSingleWord:
		return "single_word"
	case PSMSparseText:
		return "sparse_text"
	}
	return fmt.Sprintf("psm(%d)", int(m))
}

// ParsePageSegMode converts a configuration string to a PageSegMode,
// rejecting unknown values rather than passing them through silently.
func ParsePageSegMode(s string) (PageSegMode, error) {
	switch s {
	case "single_block":
		return PSMSingleBlock, nil
	case "single_line":
		return PSMSingleLine, nil
	case "single_word":
		return PSMSingleWord, nil
	case "sparse_text":
		return PSMSparseText, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPageSegMode, s)
}

// Profile identifies which script/language models an engine should load,
// e.g. "jpn" or "jpn+eng".
type Profile string

const (
	ProfileJapanese        Profile = "jpn"
	ProfileJapaneseEnglish Profile = "jpn+eng"
	ProfileEnglish         Profile = "eng"
)

// Input encapsulates a single conditioned image submitted for recognition.
type Input struct {
	// ID is an optional caller-provided identifier echoed back in the
	// corresponding Attempt.
	ID string
	// Image is the encoded image payload (PNG).
	Image []byte
	// Profile selects the language models.
	Profile Profile
	// PageSegMode is the layout hint for the engine.
	PageSegMode PageSegMode
	// Whitelist restricts recognizable characters to the given set. Engines
	// that cannot support whitelisting ignore it.
	Whitelist string
}

// Attempt is the outcome of one engine invocation under one configuration.
// Backend-specific failures are reported with OK=false rather than as
// errors so the runner can continue with other configurations.
type Attempt struct {
	InputID     string
	Engine      string
	Profile     Profile
	PageSegMode PageSegMode
	// Text is the recognized text, unprocessed.
	Text string
	// Confidence is the engine-reported score on a 0-100 scale. Engines
	// that cannot report confidence assign a fixed nominal value so the
	// attempt can still compete in best-of-N selection.
	Confidence float64
	OK         bool
	Err        error
}

// Result is the winner among a run's attempts.
type Result struct {
	Text       string
	Confidence float64
}

// FailureResult is the sentinel returned when every configuration fails or
// produces empty text.
var FailureResult = Result{}

// IsFailure reports whether the result is the failure sentinel.
func (r Result) IsFailure() bool { return r.Text == "" && r.Confidence == 0 }

// Engine is the backend capability contract: given an image and a
// configuration, return recognized text plus a confidence score. Recognize
// must honor ctx cancellation as far as the underlying provider allows.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (Attempt, error)
}
