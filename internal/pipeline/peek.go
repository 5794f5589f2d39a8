package pipeline

import "io"

// Peek reads up to n records from b and returns them along with a batch
// that replays the buffered records before continuing with the remainder
// of b. Only the preview is buffered, so single-pass streaming is
// preserved for the rest of the stream.
func Peek(b Batch, n int) ([]Record, Batch, error) {
	if n <= 0 {
		return nil, b, nil
	}

	head := make([]Record, 0, n)
	for len(head) < n {
		r, err := b.Next()
		if err != nil {
			if err == io.EOF {
				return head, FromSlice(head), nil
			}
			return nil, nil, err
		}
		head = append(head, r)
	}
	return head, Chain(FromSlice(head), b), nil
}

// Chain concatenates batches into one stream.
func Chain(batches ...Batch) Batch {
	idx := 0
	return Func(func() (Record, error) {
		for idx < len(batches) {
			r, err := batches[idx].Next()
			if err == io.EOF {
				idx++
				continue
			}
			return r, err
		}
		return nil, io.EOF
	})
}

// Counted wraps a batch and increments *n each time a record is pulled
// through it. Used by the runner to report per-stage record counts without
// buffering.
func Counted(b Batch, n *int) Batch {
	return Func(func() (Record, error) {
		r, err := b.Next()
		if err != nil {
			return nil, err
		}
		*n++
		return r, nil
	})
}
