package plate

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/wudi/platekit/observability"
	"github.com/wudi/platekit/ocr"
	"github.com/wudi/platekit/preprocess"
)

type tagTracer struct {
	tags map[string]interface{}
}

func (t *tagTracer) StartSpan(ctx context.Context, _ string) (context.Context, observability.Span) {
	if t.tags == nil {
		t.tags = map[string]interface{}{}
	}
	return ctx, (*tagSpan)(t)
}

type tagSpan tagTracer

func (s *tagSpan) SetTag(key string, value interface{}) { s.tags[key] = value }
func (s *tagSpan) SetError(error)                       {}
func (s *tagSpan) Finish()                              {}

type fixedEngine struct {
	text       string
	confidence float64
	calls      int
}

func (e *fixedEngine) Name() string { return "fixed" }

func (e *fixedEngine) Recognize(ctx context.Context, in ocr.Input) (ocr.Attempt, error) {
	e.calls++
	return ocr.Attempt{
		InputID:    in.ID,
		Engine:     e.Name(),
		Text:       e.text,
		Confidence: e.confidence,
		OK:         e.text != "",
	}, nil
}

func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.RGBA{200, 200, 200, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestProcessEndToEnd(t *testing.T) {
	engine := &fixedEngine{text: "品川 ５００ あ 12-34", confidence: 88}
	p := NewPipeline([]ocr.Call{{Engine: engine}})

	got, err := p.Process(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	want := Record{
		Region:         "品川",
		Classification: "500",
		Kana:           "あ",
		Serial:         "12-34",
		FullText:       "品川 500 あ 12-34",
	}
	if got.Record != want {
		t.Fatalf("record = %+v, want %+v", got.Record, want)
	}
	if got.Confidence != 88 || got.RawText != "品川 ５００ あ 12-34" {
		t.Fatalf("capture = %+v", got)
	}
	if engine.calls != 1 {
		t.Fatalf("engine calls = %d", engine.calls)
	}
}

func TestProcessEmitsStageMetrics(t *testing.T) {
	engine := &fixedEngine{text: "品川 500 あ 12-34", confidence: 88}
	tracer := &tagTracer{}
	p := NewPipeline([]ocr.Call{{Engine: engine}})
	p.Tracer = tracer

	if _, err := p.Process(context.Background(), testImage(t)); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := tracer.tags[observability.MetricParseTier]; got != "full" {
		t.Fatalf("parse tier tag = %v, want full", got)
	}
	if got := tracer.tags[observability.MetricBestConfidence]; got != 88.0 {
		t.Fatalf("confidence tag = %v, want 88", got)
	}
	for _, key := range []string{observability.MetricConditionTime, observability.MetricRecognizeTime} {
		if _, ok := tracer.tags[key].(time.Duration); !ok {
			t.Fatalf("tag %s = %v, want a duration", key, tracer.tags[key])
		}
	}
	if _, ok := tracer.tags[observability.MetricPipelineFailures]; ok {
		t.Fatalf("failure tag set on a successful capture")
	}
}

func TestProcessTagsFailures(t *testing.T) {
	engine := &fixedEngine{text: "", confidence: 0}
	tracer := &tagTracer{}
	p := NewPipeline([]ocr.Call{{Engine: engine}})
	p.Tracer = tracer

	if _, err := p.Process(context.Background(), testImage(t)); !errors.Is(err, ErrNoPlateDetected) {
		t.Fatalf("err = %v, want ErrNoPlateDetected", err)
	}
	if got := tracer.tags[observability.MetricPipelineFailures]; got != 1 {
		t.Fatalf("failure tag = %v, want 1", got)
	}
}

func TestProcessEmptyImage(t *testing.T) {
	p := NewPipeline(nil)
	if _, err := p.Process(context.Background(), nil); !errors.Is(err, preprocess.ErrEmptyImage) {
		t.Fatalf("err = %v, want ErrEmptyImage", err)
	}
}

func TestProcessNoTextIsNoPlate(t *testing.T) {
	engine := &fixedEngine{text: "", confidence: 0}
	p := NewPipeline([]ocr.Call{{Engine: engine}})
	if _, err := p.Process(context.Background(), testImage(t)); !errors.Is(err, ErrNoPlateDetected) {
		t.Fatalf("err = %v, want ErrNoPlateDetected", err)
	}
}

func TestProcessUnparsableTextIsNoPlate(t *testing.T) {
	engine := &fixedEngine{text: "####", confidence: 70}
	p := NewPipeline([]ocr.Call{{Engine: engine}})
	if _, err := p.Process(context.Background(), testImage(t)); !errors.Is(err, ErrNoPlateDetected) {
		t.Fatalf("err = %v, want ErrNoPlateDetected", err)
	}
}
