// Package pipeline defines the data model and component contracts of the
// abstract data pipeline: records, lazy batches, the per-run context, and
// the Source/Transform/Sink interfaces components implement.
package pipeline

import (
	"context"
	"io"
)

// Record is one unit of data flowing through a pipeline. Values should be
// JSON-compatible; there is no fixed schema. Transforms add, remove and
// rename fields freely.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Batch is a lazy, finite, single-pass stream of records. Next returns
// io.EOF once the stream is exhausted. A batch is not restartable: once a
// stage has consumed it, it cannot be re-iterated.
type Batch interface {
	Next() (Record, error)
}

// Source fetches zero or more records.
type Source interface {
	Run(ctx context.Context, rc *Context) (Batch, error)
}

// Transform maps, filters or enriches records. The returned batch should
// lazily pull from in.
type Transform interface {
	Run(ctx context.Context, rc *Context, in Batch) (Batch, error)
}

// Sink consumes records terminally and returns the path or identifier of
// the produced artifact, or "" when there is none.
type Sink interface {
	Run(ctx context.Context, rc *Context, in Batch) (string, error)
}

// Role tags the capability of a component.
type Role string

const (
	RoleSource    Role = "source"
	RoleTransform Role = "transform"
	RoleSink      Role = "sink"
)

// RoleOf reports the role a component value satisfies. The three interfaces
// share the method name Run with different signatures, so a single type can
// satisfy at most one of them.
func RoleOf(v any) (Role, bool) {
	switch v.(type) {
	case Source:
		return RoleSource, true
	case Transform:
		return RoleTransform, true
	case Sink:
		return RoleSink, true
	default:
		return "", false
	}
}

type sliceBatch struct {
	records []Record
	pos     int
}

func (b *sliceBatch) Next() (Record, error) {
	if b.pos >= len(b.records) {
		return nil, io.EOF
	}
	r := b.records[b.pos]
	b.pos++
	return r, nil
}

// FromSlice wraps pre-materialized records in a Batch.
func FromSlice(records []Record) Batch {
	return &sliceBatch{records: records}
}

// Empty returns a batch with no records.
func Empty() Batch {
	return &sliceBatch{}
}

type funcBatch struct {
	next func() (Record, error)
	done bool
}

func (b *funcBatch) Next() (Record, error) {
	if b.done {
		return nil, io.EOF
	}
	r, err := b.next()
	if err != nil {
		b.done = true
		return nil, err
	}
	return r, nil
}

// Func builds a Batch from a pull function. The function returns io.EOF at
// exhaustion; after any error the batch stays exhausted.
func Func(next func() (Record, error)) Batch {
	return &funcBatch{next: next}
}

// Map returns a batch that lazily applies fn to each record of in. A nil
// record returned by fn drops the input record.
func Map(in Batch, fn func(Record) (Record, error)) Batch {
	return Func(func() (Record, error) {
		for {
			r, err := in.Next()
			if err != nil {
				return nil, err
			}
			out, err := fn(r)
			if err != nil {
				return nil, err
			}
			if out == nil {
				continue
			}
			return out, nil
		}
	})
}

// Collect drains a batch into a slice. Intended for sinks and tests; it
// defeats streaming for large inputs.
func Collect(b Batch) ([]Record, error) {
	var out []Record
	for {
		r, err := b.Next()
		if err != nil {
			if err == io.EOF {
				return out, nil
			}
			return nil, err
		}
		out = append(out, r)
	}
}
