package plate

import (
	"context"
	"time"

	"github.com/wudi/platekit/observability"
	"github.com/wudi/platekit/ocr"
	"github.com/wudi/platekit/preprocess"
)

// Capture is the outcome of one full recognition cycle.
type Capture struct {
	Record Record
	// RawText is the winning attempt's text before normalization.
	RawText string
	// Confidence is the winning attempt's score.
	Confidence float64
}

// Pipeline runs one capture end to end: conditioning, recognition,
// normalization, parsing and assembly. A pipeline holds no per-capture
// state, so one instance can serve concurrent captures; each call owns its
// own buffers and attempt list.
type Pipeline struct {
	Conditioning preprocess.Options
	Runner       *ocr.Runner
	Plan         []ocr.Call
	Parser       *Parser
	Logger       observability.Logger
	Tracer       observability.Tracer
}

// NewPipeline builds a pipeline with default conditioning and thresholds
// around the given attempt plan.
func NewPipeline(plan []ocr.Call) *Pipeline {
	return &Pipeline{
		Conditioning: preprocess.DefaultOptions(),
		Runner:       ocr.NewRunner(),
		Plan:         plan,
		Parser:       NewParser(DefaultRegions()),
		Logger:       observability.NopLogger{},
		Tracer:       observability.NopTracer(),
	}
}

// Process decodes one captured image into a plate record. Failures are
// total: either a record with at least one field comes back, or an error
// from the taxonomy (preprocess.ErrEmptyImage for unusable input,
// ErrNoPlateDetected when recognition or parsing came up empty). Retrying
// is the caller's explicit decision; Process never retries on its own.
func (p *Pipeline) Process(ctx context.Context, image []byte) (Capture, error) {
	ctx, span := p.tracer().StartSpan(ctx, "plate.process")
	defer span.Finish()

	p.logger().Debug("conditioning image", observability.Int("bytes", len(image)))
	start := time.Now()
	conditioned, err := preprocess.ConditionBytes(image, p.Conditioning)
	span.SetTag(observability.MetricConditionTime, time.Since(start))
	if err != nil {
		span.SetTag(observability.MetricPipelineFailures, 1)
		span.SetError(err)
		return Capture{}, err
	}

	p.logger().Debug("recognizing", observability.Int("plan", len(p.Plan)))
	start = time.Now()
	res := p.runner().Run(ctx, conditioned, p.Plan)
	span.SetTag(observability.MetricRecognizeTime, time.Since(start))
	if res.IsFailure() {
		p.logger().Info("recognition produced no usable text")
		span.SetTag(observability.MetricPipelineFailures, 1)
		span.SetTag("result", "no_text")
		return Capture{}, ErrNoPlateDetected
	}
	span.SetTag(observability.MetricBestConfidence, res.Confidence)

	normalized := Normalize(res.Text)
	parser := p.parser()
	rec, err := Assemble(parser.Parse(normalized))
	if err != nil {
		p.logger().Info("no plate fields extracted",
			observability.String("text", normalized))
		span.SetTag(observability.MetricPipelineFailures, 1)
		span.SetError(err)
		return Capture{}, err
	}
	span.SetTag(observability.MetricParseTier, parser.TierName(normalized))
	p.logger().Info("plate decoded",
		observability.String("plate", rec.FullText),
		observability.Float64("confidence", res.Confidence))
	return Capture{Record: rec, RawText: res.Text, Confidence: res.Confidence}, nil
}

func (p *Pipeline) runner() *ocr.Runner {
	if p.Runner != nil {
		return p.Runner
	}
	return ocr.NewRunner()
}

func (p *Pipeline) parser() *Parser {
	if p.Parser != nil {
		return p.Parser
	}
	return NewParser(DefaultRegions())
}

func (p *Pipeline) logger() observability.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return observability.NopLogger{}
}

func (p *Pipeline) tracer() observability.Tracer {
	if p.Tracer != nil {
		return p.Tracer
	}
	return observability.NopTracer()
}
