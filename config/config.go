package config

import (
	"fmt"
	"os"

	"github.com/wudi/platekit/ocr"
	"github.com/wudi/platekit/preprocess"
	"gopkg.in/yaml.v3"
)

// Config bundles every tunable of the recognition service so thresholds
// never hide as literals in pipeline code.
type Config struct {
	Conditioner Conditioner `yaml:"conditioner"`
	Recognition Recognition `yaml:"recognition"`
	Remote      Remote      `yaml:"remote"`
	Server      Server      `yaml:"server"`
}

// Conditioner mirrors preprocess.Options in configuration form.
type Conditioner struct {
	Scale      int     `yaml:"scale"`      // integer upscale factor, 0/1 = none
	Contrast   float64 `yaml:"contrast"`   // midpoint contrast multiplier, 0 = leave
	Threshold  string  `yaml:"threshold"`  // none, fixed or otsu
	FixedLevel uint8   `yaml:"fixedLevel"` // cut used when threshold is fixed
	Soft       bool    `yaml:"soft"`       // grade pixels near the threshold
}

// Recognition holds the strategy runner thresholds and the ordered attempt
// plan.
type Recognition struct {
	EarlyExit float64   `yaml:"earlyExit"` // stop once an attempt exceeds this confidence
	Floor     float64   `yaml:"floor"`     // attempts below this never become best
	Nominal   float64   `yaml:"nominal"`   // assigned when an engine reports no confidence
	Plan      []Attempt `yaml:"plan"`      // configurations in priority order
}

// Attempt describes one entry of the recognition plan.
type Attempt struct {
	Engine    string `yaml:"engine"`    // tesseract or remote
	Profile   string `yaml:"profile"`   // language profile, e.g. jpn or jpn+eng
	PSM       string `yaml:"psm"`       // single_block, single_line, single_word or sparse_text
	Whitelist string `yaml:"whitelist"` // optional character whitelist
}

// Remote configures the hosted recognition endpoint.
type Remote struct {
	URL string `yaml:"url"` // full endpoint URL, empty disables the remote engine
}

// Server configures the HTTP front end.
type Server struct {
	Addr string `yaml:"addr"` // listen address, e.g. :8080
}

// Default returns the stock configuration: aggressive conditioning, a
// Japanese single-line Tesseract pass first, then sparser fallbacks.
func Default() Config {
	return Config{
		Conditioner: Conditioner{
			Scale:      2,
			Contrast:   1.5,
			Threshold:  "otsu",
			FixedLevel: 127,
		},
		Recognition: Recognition{
			EarlyExit: 60,
			Floor:     10,
			Nominal:   75,
			Plan: []Attempt{
				{Engine: "tesseract", Profile: "jpn", PSM: "single_line"},
				{Engine: "tesseract", Profile: "jpn", PSM: "single_word"},
				{Engine: "tesseract", Profile: "jpn+eng", PSM: "sparse_text"},
			},
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads and validates a YAML configuration file. Missing recognition
// thresholds fall back to the documented defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	cfg.Recognition.Plan = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if len(cfg.Recognition.Plan) == 0 {
		cfg.Recognition.Plan = Default().Recognition.Plan
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that would otherwise fail deep inside a
// capture: unknown engines, segmentation modes or threshold modes.
func (c Config) Validate() error {
	switch c.Conditioner.Threshold {
	case "", "none", "fixed", "otsu":
	default:
		return fmt.Errorf("config: unknown threshold mode %q", c.Conditioner.Threshold)
	}
	for i, att := range c.Recognition.Plan {
		switch att.Engine {
		case "tesseract":
		case "remote":
			if c.Remote.URL == "" {
				return fmt.Errorf("config: plan[%d] uses the remote engine but remote.url is empty", i)
			}
		default:
			return fmt.Errorf("config: plan[%d] names unknown engine %q", i, att.Engine)
		}
		if att.PSM != "" {
			if _, err := ocr.ParsePageSegMode(att.PSM); err != nil {
				return fmt.Errorf("config: plan[%d]: %w", i, err)
			}
		}
	}
	return nil
}

// ConditionerOptions converts the configuration to preprocess options.
func (c Config) ConditionerOptions() preprocess.Options {
	opts := preprocess.Options{
		Scale:      c.Conditioner.Scale,
		Contrast:   c.Conditioner.Contrast,
		FixedLevel: c.Conditioner.FixedLevel,
		Soft:       c.Conditioner.Soft,
	}
	switch c.Conditioner.Threshold {
	case "fixed":
		opts.Threshold = preprocess.ThresholdFixed
	case "otsu":
		opts.Threshold = preprocess.ThresholdOtsu
	}
	return opts
}

// Thresholds converts the configuration to runner thresholds. Nominal is
// not a runner concern; the cmds copy it onto each engine directly.
func (c Config) Thresholds() ocr.Thresholds {
	return ocr.Thresholds{
		EarlyExit: c.Recognition.EarlyExit,
		Floor:     c.Recognition.Floor,
	}
}

// Plan resolves the attempt plan against the given engines. Attempts naming
// an engine absent from the map are skipped; Validate catches them earlier
// in development.
func (c Config) Plan(engines map[string]ocr.Engine) []ocr.Call {
	calls := make([]ocr.Call, 0, len(c.Recognition.Plan))
	for _, att := range c.Recognition.Plan {
		engine, ok := engines[att.Engine]
		if !ok {
			continue
		}
		opts := []ocr.InputOption{}
		if att.Profile != "" {
			opts = append(opts, ocr.WithProfile(ocr.Profile(att.Profile)))
		}
		if att.PSM != "" {
			if mode, err := ocr.ParsePageSegMode(att.PSM); err == nil {
				opts = append(opts, ocr.WithPageSegMode(mode))
			}
		}
		if att.Whitelist != "" {
			opts = append(opts, ocr.WithWhitelist(att.Whitelist))
		}
		calls = append(calls, ocr.Call{Engine: engine, Options: opts})
	}
	return calls
}
