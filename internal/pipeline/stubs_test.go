package pipeline

import "context"

type stubSource struct{}

func (stubSource) Run(ctx context.Context, rc *Context) (Batch, error) {
	return Empty(), nil
}

type stubTransform struct{}

func (stubTransform) Run(ctx context.Context, rc *Context, in Batch) (Batch, error) {
	return in, nil
}

type stubSink struct{}

func (stubSink) Run(ctx context.Context, rc *Context, in Batch) (string, error) {
	_, err := Collect(in)
	return "", err
}
