// Package jsonl provides newline-delimited JSON components: a source that
// reads one record per line and a sink that writes the same framing.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adp-project/adp/internal/pipeline"
	"github.com/adp-project/adp/internal/registry"
)

func init() {
	registry.MustRegisterComponent("adp.sources:JSONLinesSource", newSource)
	registry.MustRegisterComponent("adp.sinks:JSONLinesSink", newSink)
	registry.MustRegisterEntryPoint("jsonl-source", "adp.sources:JSONLinesSource")
	registry.MustRegisterEntryPoint("jsonl", "adp.sinks:JSONLinesSink")
}

type sourceParams struct {
	Path string `yaml:"path" validate:"required"`
}

// JSONLinesSource reads records from an NDJSON file, one object per line.
type JSONLinesSource struct {
	params sourceParams
}

func newSource(params map[string]any) (any, error) {
	var p sourceParams
	if err := registry.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	return &JSONLinesSource{params: p}, nil
}

// Run opens the file (relative paths resolve against the workdir) and
// yields records lazily, one line at a time.
func (s *JSONLinesSource) Run(ctx context.Context, rc *pipeline.Context) (pipeline.Batch, error) {
	path := s.params.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(rc.WorkDir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0

	return pipeline.Func(func() (pipeline.Record, error) {
		for scanner.Scan() {
			line++
			raw := scanner.Bytes()
			if len(raw) == 0 {
				continue
			}
			var r pipeline.Record
			if err := json.Unmarshal(raw, &r); err != nil {
				f.Close()
				return nil, fmt.Errorf("%s:%d: %w", path, line, err)
			}
			return r, nil
		}
		err := scanner.Err()
		f.Close()
		if err != nil {
			return nil, err
		}
		return nil, io.EOF
	}), nil
}

type sinkParams struct {
	Filename string `yaml:"filename"`
}

// JSONLinesSink streams records into an NDJSON file under the outdir.
type JSONLinesSink struct {
	params sinkParams
}

func newSink(params map[string]any) (any, error) {
	var p sinkParams
	if err := registry.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Filename == "" {
		p.Filename = "out.ndjson"
	}
	return &JSONLinesSink{params: p}, nil
}

// Run writes each record as one JSON line and returns the artifact path.
func (s *JSONLinesSink) Run(ctx context.Context, rc *pipeline.Context, in pipeline.Batch) (string, error) {
	out := filepath.Join(rc.OutDir, s.params.Filename)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(out)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for {
		r, err := in.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}
		if err := enc.Encode(r); err != nil {
			return "", err
		}
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return out, nil
}

var (
	_ pipeline.Source = (*JSONLinesSource)(nil)
	_ pipeline.Sink   = (*JSONLinesSink)(nil)
)
