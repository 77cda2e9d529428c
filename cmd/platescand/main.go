package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/wudi/platekit/config"
	"github.com/wudi/platekit/observability"
	"github.com/wudi/platekit/ocr"
	"github.com/wudi/platekit/ocr/remote"
	"github.com/wudi/platekit/ocr/tesseract"
	"github.com/wudi/platekit/plate"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file (defaults built in)")
	addr := flag.String("addr", "", "Listen address override, e.g. :8080")
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "platescand: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger := observability.NewWriterLogger(os.Stderr)

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

	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}

	logger.Info("server starting", observability.String("addr", cfg.Server.Addr))
	return newRouter(pipeline, names, logger).Run(cfg.Server.Addr)
}
