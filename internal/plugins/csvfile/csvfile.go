// Package csvfile provides CSV components. The source maps each data row
// to a record keyed by the header row; the sink writes records under a
// fixed or inferred column order.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/adp-project/adp/internal/pipeline"
	"github.com/adp-project/adp/internal/registry"
)

func init() {
	registry.MustRegisterComponent("adp.sources:CSVSource", newSource)
	registry.MustRegisterComponent("adp.sinks:CSVSink", newSink)
	registry.MustRegisterEntryPoint("csv-source", "adp.sources:CSVSource")
	registry.MustRegisterEntryPoint("csv", "adp.sinks:CSVSink")
}

type sourceParams struct {
	Path string `yaml:"path" validate:"required"`
	// Comma overrides the field delimiter; first rune is used.
	Comma string `yaml:"comma"`
}

// CSVSource reads a headed CSV file and yields one record per data row.
// All values are strings; typing is a transform's concern.
type CSVSource struct {
	params sourceParams
}

func newSource(params map[string]any) (any, error) {
	var p sourceParams
	if err := registry.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	return &CSVSource{params: p}, nil
}

func (s *CSVSource) Run(ctx context.Context, rc *pipeline.Context) (pipeline.Batch, error) {
	path := s.params.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(rc.WorkDir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(f)
	if s.params.Comma != "" {
		reader.Comma = []rune(s.params.Comma)[0]
	}

	header, err := reader.Read()
	if err != nil {
		f.Close()
		if err == io.EOF {
			return pipeline.Empty(), nil
		}
		return nil, err
	}

	return pipeline.Func(func() (pipeline.Record, error) {
		row, err := reader.Read()
		if err != nil {
			f.Close()
			return nil, err
		}
		r := make(pipeline.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				r[col] = row[i]
			}
		}
		return r, nil
	}), nil
}

type sinkParams struct {
	Filename string `yaml:"filename"`
	// Columns fixes the output column order. When empty, the sorted keys
	// of the first record are used.
	Columns []string `yaml:"columns"`
}

// CSVSink writes records to a single CSV file with a header row.
type CSVSink struct {
	params sinkParams
}

func newSink(params map[string]any) (any, error) {
	var p sinkParams
	if err := registry.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Filename == "" {
		p.Filename = "out.csv"
	}
	return &CSVSink{params: p}, nil
}

func (s *CSVSink) Run(ctx context.Context, rc *pipeline.Context, in pipeline.Batch) (string, error) {
	out := filepath.Join(rc.OutDir, s.params.Filename)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(out)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	columns := s.params.Columns
	wroteHeader := false

	for {
		r, err := in.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}

		if columns == nil {
			columns = make([]string, 0, len(r))
			for k := range r {
				columns = append(columns, k)
			}
			sort.Strings(columns)
		}
		if !wroteHeader {
			if err := w.Write(columns); err != nil {
				return "", err
			}
			wroteHeader = true
		}

		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = stringify(r[col])
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	if !wroteHeader && columns != nil {
		if err := w.Write(columns); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return out, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

var (
	_ pipeline.Source = (*CSVSource)(nil)
	_ pipeline.Sink   = (*CSVSink)(nil)
)
