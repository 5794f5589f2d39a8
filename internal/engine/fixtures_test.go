package engine

import (
	"context"
	"io"
	"strings"

	"github.com/adp-project/adp/internal/pipeline"
	"github.com/adp-project/adp/internal/registry"
)

// Test components live under their own referent namespace so they never
// collide with the builtin plugin registrations.
func init() {
	registry.MustRegisterComponent("tests.fixtures:LettersSource", func(params map[string]any) (any, error) {
		return lettersSource{}, nil
	})
	registry.MustRegisterComponent("tests.fixtures:TrackingSource", func(params map[string]any) (any, error) {
		return trackingSource{}, nil
	})
	registry.MustRegisterComponent("tests.fixtures:UpperTransform", func(params map[string]any) (any, error) {
		return upperTransform{}, nil
	})
	registry.MustRegisterComponent("tests.fixtures:CaptureSink", func(params map[string]any) (any, error) {
		return captureSink{}, nil
	})
	registry.MustRegisterComponent("tests.fixtures:CursorSink", func(params map[string]any) (any, error) {
		return cursorSink{}, nil
	})
	registry.MustRegisterEntryPoint("letters", "tests.fixtures:LettersSource")
}

// lettersSource emits {"text": "a"}, {"text": "b"}, {"text": "c"}.
type lettersSource struct{}

func (lettersSource) Run(ctx context.Context, rc *pipeline.Context) (pipeline.Batch, error) {
	return pipeline.FromSlice([]pipeline.Record{
		{"text": "a"}, {"text": "b"}, {"text": "c"},
	}), nil
}

// trackingSource counts how many records downstream stages actually pull.
var trackingPulls int

type trackingSource struct{}

func (trackingSource) Run(ctx context.Context, rc *pipeline.Context) (pipeline.Batch, error) {
	i := 0
	return pipeline.Func(func() (pipeline.Record, error) {
		if i >= 3 {
			return nil, io.EOF
		}
		i++
		trackingPulls++
		return pipeline.Record{"n": i}, nil
	}), nil
}

type upperTransform struct{}

func (upperTransform) Run(ctx context.Context, rc *pipeline.Context, in pipeline.Batch) (pipeline.Batch, error) {
	return pipeline.Map(in, func(r pipeline.Record) (pipeline.Record, error) {
		out := r.Clone()
		if s, ok := out["text"].(string); ok {
			out["text"] = strings.ToUpper(s)
		}
		return out, nil
	}), nil
}

// captureSink collects everything it consumes into a package variable the
// tests read back. Runner tests that use it must not run in parallel.
var captured []pipeline.Record

type captureSink struct{}

func (captureSink) Run(ctx context.Context, rc *pipeline.Context, in pipeline.Batch) (string, error) {
	got, err := pipeline.Collect(in)
	if err != nil {
		return "", err
	}
	captured = append(captured, got...)
	return "captured", nil
}

// cursorSink records the consumed count into the run's state backend.
type cursorSink struct{}

func (cursorSink) Run(ctx context.Context, rc *pipeline.Context, in pipeline.Batch) (string, error) {
	got, err := pipeline.Collect(in)
	if err != nil {
		return "", err
	}
	rc.State.Set("consumed", len(got))
	if err := rc.State.Save(); err != nil {
		return "", err
	}
	return "", nil
}
