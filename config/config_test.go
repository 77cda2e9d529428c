package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wudi/platekit/ocr"
	"github.com/wudi/platekit/preprocess"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "platekit.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
conditioner:
  scale: 3
  contrast: 2.0
  threshold: fixed
  fixedLevel: 140
recognition:
  earlyExit: 70
  floor: 15
  nominal: 80
  plan:
    - engine: tesseract
      profile: jpn
      psm: single_word
      whitelist: "0123456789"
server:
  addr: ":9090"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Conditioner.Scale != 3 || cfg.Conditioner.Threshold != "fixed" {
		t.Fatalf("conditioner = %+v", cfg.Conditioner)
	}
	if cfg.Recognition.EarlyExit != 70 || len(cfg.Recognition.Plan) != 1 {
		t.Fatalf("recognition = %+v", cfg.Recognition)
	}
	opts := cfg.ConditionerOptions()
	if opts.Threshold != preprocess.ThresholdFixed || opts.FixedLevel != 140 {
		t.Fatalf("options = %+v", opts)
	}
	th := cfg.Thresholds()
	if th.EarlyExit != 70 || th.Floor != 15 {
		t.Fatalf("thresholds = %+v", th)
	}
	if cfg.Recognition.Nominal != 80 {
		t.Fatalf("nominal = %v", cfg.Recognition.Nominal)
	}
}

func TestLoadKeepsDefaultPlanWhenOmitted(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  addr: \":1234\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Recognition.Plan) == 0 {
		t.Fatalf("expected default plan")
	}
}

func TestValidateRejectsUnknownEngine(t *testing.T) {
	cfg := Default()
	cfg.Recognition.Plan = []Attempt{{Engine: "paddle"}}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "paddle") {
		t.Fatalf("err = %v, want unknown engine rejected", err)
	}
}

func TestValidateRejectsUnknownPSM(t *testing.T) {
	cfg := Default()
	cfg.Recognition.Plan = []Attempt{{Engine: "tesseract", PSM: "banana"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown psm to be rejected")
	}
}

func TestValidateRemoteNeedsURL(t *testing.T) {
	cfg := Default()
	cfg.Recognition.Plan = []Attempt{{Engine: "remote"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected remote plan without url to be rejected")
	}
	cfg.Remote.URL = "http://localhost:9000/api/ocr"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

type nopEngine struct{ name string }

func (e nopEngine) Name() string { return e.name }
func (e nopEngine) Recognize(ctx context.Context, in ocr.Input) (ocr.Attempt, error) {
	return ocr.Attempt{Engine: e.name, Profile: in.Profile, PageSegMode: in.PageSegMode}, nil
}

func TestPlanResolution(t *testing.T) {
	cfg := Default()
	cfg.Recognition.Plan = []Attempt{
		{Engine: "tesseract", Profile: "jpn", PSM: "single_word"},
		{Engine: "remote"},
	}
	engines := map[string]ocr.Engine{"tesseract": nopEngine{name: "tesseract"}}

	calls := cfg.Plan(engines)
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want unresolvable engines skipped", len(calls))
	}
	in := ocr.NewInput(nil, calls[0].Options...)
	if in.Profile != ocr.ProfileJapanese || in.PageSegMode != ocr.PSMSingleWord {
		t.Fatalf("resolved input = %+v", in)
	}
}
