package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wudi/platekit/ocr"
)

// Engine implements ocr.Engine against a hosted recognition endpoint that
// accepts a base64-encoded image and answers JSON of the form
// {"success": bool, "detected_text": string, "confidence": number}.
//
// The remote API has no page-segmentation or whitelist knobs; those input
// fields are silently ignored as the capability contract allows.
type Engine struct {
	// URL is the full endpoint, e.g. "https://host/api/ocr".
	URL string
	// Client is the HTTP client used for requests; nil means a client with
	// a 15s timeout.
	Client *http.Client
	// Nominal is the confidence assigned when the endpoint reports none.
	Nominal float64
	// Profiles restricts which language profiles the endpoint serves. Empty
	// means any.
	Profiles []ocr.Profile
}

// New constructs an engine for the given endpoint URL.
func New(url string) *Engine {
	return &Engine{
		URL:     url,
		Client:  &http.Client{Timeout: 15 * time.Second},
		Nominal: 75,
	}
}

func (e *Engine) Name() string { return "remote" }

type request struct {
	Image string `json:"image"`
}

type response struct {
	Success      bool     `json:"success"`
	DetectedText string   `json:"detected_text"`
	Confidence   *float64 `json:"confidence"`
	Error        string   `json:"error"`
}

// Recognize posts the image and maps the endpoint's answer to an attempt.
// Network and decode problems become failed attempts so the strategy runner
// can move on to the next configuration.
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

	body, err := json.Marshal(request{Image: base64.StdEncoding.EncodeToString(in.Image)})
	if err != nil {
		att.Err = fmt.Errorf("encode request: %w", err)
		return att, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(body))
	if err != nil {
		att.Err = fmt.Errorf("build request: %w", err)
		return att, nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client().Do(req)
	if err != nil {
		att.Err = fmt.Errorf("post image: %w", err)
		return att, nil
	}
	defer resp.Body.Close()

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		att.Err = fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
		return att, nil
	}
	if resp.StatusCode != http.StatusOK || !decoded.Success {
		msg := decoded.Error
		if msg == "" {
			msg = resp.Status
		}
		att.Err = fmt.Errorf("endpoint failure: %s", msg)
		return att, nil
	}

	att.Text = strings.TrimSpace(decoded.DetectedText)
	if decoded.Confidence != nil {
		att.Confidence = *decoded.Confidence
	} else if att.Text != "" {
		att.Confidence = e.Nominal
	}
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

func (e *Engine) client() *http.Client {
	if e.Client != nil {
		return e.Client
	}
	return http.DefaultClient
}
