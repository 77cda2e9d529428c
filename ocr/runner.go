package ocr

import (
	"context"
	"strings"

	"github.com/wudi/platekit/observability"
)

// Thresholds names every confidence heuristic the runner applies so tuning
// never touches selection logic.
type Thresholds struct {
	// EarlyExit stops the run once an attempt's confidence exceeds it,
	// bounding worst-case latency when an early engine is already confident.
	EarlyExit float64
	// Floor excludes an attempt from becoming best when its confidence is
	// below it, even if it is the only attempt with non-empty text.
	Floor float64
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{EarlyExit: 60, Floor: 10}
}

// Call pairs an engine with the input options for one configuration.
type Call struct {
	Engine  Engine
	Options []InputOption
}

// Runner plays an ordered list of configurations against one image and
// selects a winner by confidence. Different configurations (segmentation
// mode, language profile, conditioning) have complementary strengths;
// sequential best-of-N with early exit gets near-best accuracy without
// paying full multi-engine latency on the common case.
type Runner struct {
	Thresholds Thresholds
	Logger     observability.Logger
	Tracer     observability.Tracer
}

// NewRunner constructs a Runner with default thresholds and nop
// observability.
func NewRunner() *Runner {
	return &Runner{
		Thresholds: DefaultThresholds(),
		Logger:     observability.NopLogger{},
		Tracer:     observability.NopTracer(),
	}
}

// Run invokes each configuration in priority order and returns the most
// confident non-empty attempt. Per-attempt failures are absorbed and logged;
// only a run where every configuration fails (or ctx is canceled) yields the
// failure sentinel. Ties are broken by priority order: a later attempt
// replaces the best only with a strictly higher confidence, so earlier,
// cheaper configurations win ties.
func (r *Runner) Run(ctx context.Context, image []byte, plan []Call) Result {
	ctx, span := r.tracer().StartSpan(ctx, "ocr.run")
	defer span.Finish()

	attempts := 0
	defer func() { span.SetTag(observability.MetricAttemptCount, attempts) }()

	var (
		best    Attempt
		hasBest bool
	)
	for i, call := range plan {
		if ctx.Err() != nil {
			r.logger().Warn("recognition canceled",
				observability.Int("attempts", i),
				observability.Error("cause", ctx.Err()))
			span.SetError(ctx.Err())
			return FailureResult
		}
		if call.Engine == nil {
			continue
		}
		attempts++

		in := NewInput(image, call.Options...)
		att, err := call.Engine.Recognize(ctx, in)
		if err != nil {
			// Backend failure is not fatal to the run; try the next
			// configuration.
			r.logger().Warn("attempt failed",
				observability.Int("index", i),
				observability.String("engine", call.Engine.Name()),
				observability.Error("err", err))
			continue
		}
		if !att.OK {
			r.logger().Warn("attempt unsuccessful",
				observability.Int("index", i),
				observability.String("engine", att.Engine),
				observability.Error("err", att.Err))
			continue
		}
		if strings.TrimSpace(att.Text) == "" {
			r.logger().Debug("attempt returned empty text",
				observability.Int("index", i),
				observability.String("engine", att.Engine))
			continue
		}
		r.logger().Debug("attempt done",
			observability.Int("index", i),
			observability.String("engine", att.Engine),
			observability.Float64("confidence", att.Confidence))

		if att.Confidence < r.Thresholds.Floor {
			// Below the floor the text is likely noise; never trust it.
			continue
		}
		if !hasBest || att.Confidence > best.Confidence {
			best = att
			hasBest = true
		}
		if att.Confidence > r.Thresholds.EarlyExit {
			break
		}
	}
	if !hasBest {
		span.SetTag("result", "failure")
		return FailureResult
	}
	span.SetTag(observability.MetricBestConfidence, best.Confidence)
	return Result{Text: best.Text, Confidence: best.Confidence}
}

func (r *Runner) logger() observability.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return observability.NopLogger{}
}

func (r *Runner) tracer() observability.Tracer {
	if r.Tracer != nil {
		return r.Tracer
	}
	return observability.NopTracer()
}
