// Package fieldops provides generic record-surgery transforms: renaming
// fields, projecting a subset, and truncating a stream.
package fieldops

import (
	"context"
	"io"

	"github.com/adp-project/adp/internal/pipeline"
	"github.com/adp-project/adp/internal/registry"
)

func init() {
	registry.MustRegisterComponent("adp.transforms:RenameTransform", newRename)
	registry.MustRegisterComponent("adp.transforms:SelectTransform", newSelect)
	registry.MustRegisterComponent("adp.transforms:LimitTransform", newLimit)
	registry.MustRegisterEntryPoint("rename", "adp.transforms:RenameTransform")
	registry.MustRegisterEntryPoint("select", "adp.transforms:SelectTransform")
	registry.MustRegisterEntryPoint("limit", "adp.transforms:LimitTransform")
}

type renameParams struct {
	// Fields maps old field names to new ones.
	Fields map[string]string `yaml:"fields" validate:"required,min=1"`
}

// RenameTransform renames fields; records are otherwise passed through
// unchanged. A missing source field is not an error.
type RenameTransform struct {
	params renameParams
}

func newRename(params map[string]any) (any, error) {
	var p renameParams
	if err := registry.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	return &RenameTransform{params: p}, nil
}

func (t *RenameTransform) Run(ctx context.Context, rc *pipeline.Context, in pipeline.Batch) (pipeline.Batch, error) {
	return pipeline.Map(in, func(r pipeline.Record) (pipeline.Record, error) {
		out := r.Clone()
		for from, to := range t.params.Fields {
			if v, ok := out[from]; ok {
				delete(out, from)
				out[to] = v
			}
		}
		return out, nil
	}), nil
}

type selectParams struct {
	Fields []string `yaml:"fields" validate:"required,min=1"`
}

// SelectTransform projects each record down to the named fields.
type SelectTransform struct {
	params selectParams
}

func newSelect(params map[string]any) (any, error) {
	var p selectParams
	if err := registry.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	return &SelectTransform{params: p}, nil
}

func (t *SelectTransform) Run(ctx context.Context, rc *pipeline.Context, in pipeline.Batch) (pipeline.Batch, error) {
	return pipeline.Map(in, func(r pipeline.Record) (pipeline.Record, error) {
		out := make(pipeline.Record, len(t.params.Fields))
		for _, f := range t.params.Fields {
			if v, ok := r[f]; ok {
				out[f] = v
			}
		}
		return out, nil
	}), nil
}

type limitParams struct {
	N int `yaml:"n" validate:"required,min=1"`
}

// LimitTransform passes through the first n records and ends the stream.
// The remainder of the input is never pulled.
type LimitTransform struct {
	params limitParams
}

func newLimit(params map[string]any) (any, error) {
	var p limitParams
	if err := registry.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	return &LimitTransform{params: p}, nil
}

func (t *LimitTransform) Run(ctx context.Context, rc *pipeline.Context, in pipeline.Batch) (pipeline.Batch, error) {
	remaining := t.params.N
	return pipeline.Func(func() (pipeline.Record, error) {
		if remaining <= 0 {
			return nil, io.EOF
		}
		r, err := in.Next()
		if err != nil {
			return nil, err
		}
		remaining--
		return r, nil
	}), nil
}

var (
	_ pipeline.Transform = (*RenameTransform)(nil)
	_ pipeline.Transform = (*SelectTransform)(nil)
	_ pipeline.Transform = (*LimitTransform)(nil)
)
