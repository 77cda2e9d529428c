package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/wudi/platekit/config"
	"github.com/wudi/platekit/observability"
	"github.com/wudi/platekit/ocr"
	"github.com/wudi/platekit/ocr/remote"
	"github.com/wudi/platekit/ocr/tesseract"
	"github.com/wudi/platekit/plate"
)

type options struct {
	configPath string
	imagePath  string
	timeout    time.Duration
	verbose    bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "platescan: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "platescan: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: platescan [flags] <image>\n")
		flag.PrintDefaults()
	}
	configPath := flag.String("config", "", "Path to a YAML configuration file (defaults built in)")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall recognition deadline")
	verbose := flag.Bool("v", false, "Log attempt details to stderr")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing image path")
	}
	opts.configPath = *configPath
	opts.imagePath = flag.Arg(0)
	opts.timeout = *timeout
	opts.verbose = *verbose
	return opts, nil
}

func run(opts options) error {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	image, err := os.ReadFile(opts.imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	var logger observability.Logger = observability.NopLogger{}
	if opts.verbose {
		logger = observability.NewWriterLogger(os.Stderr)
	}

	pipeline := newPipeline(cfg, logger)
	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	capture, err := pipeline.Process(ctx, image)
	if err != nil {
		return err
	}

	out := struct {
		Plate      plate.Record `json:"plate"`
		Confidence float64      `json:"confidence"`
		RawText    string       `json:"raw_text"`
	}{capture.Record, capture.Confidence, capture.RawText}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func newPipeline(cfg config.Config, logger observability.Logger) *plate.Pipeline {
	engines := map[string]ocr.Engine{}

	tess := tesseract.New()
	tess.Nominal = cfg.Recognition.Nominal
	engines["tesseract"] = tess

	if cfg.Remote.URL != "" {
		rem := remote.New(cfg.Remote.URL)
		rem.Nominal = cfg.Recognition.Nominal
		engines["remote"] = rem
	}

	pipeline := plate.NewPipeline(cfg.Plan(engines))
	pipeline.Conditioning = cfg.ConditionerOptions()
	pipeline.Runner.Thresholds = cfg.Thresholds()
	pipeline.Runner.Logger = logger
	pipeline.Logger = logger
	return pipeline
}
