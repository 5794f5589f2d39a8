package pipeline

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromSliceYieldsInOrder(t *testing.T) {
	t.Parallel()

	b := FromSlice([]Record{{"i": 0}, {"i": 1}, {"i": 2}})

	got, err := Collect(b)
	require.NoError(t, err)
	require.Equal(t, []Record{{"i": 0}, {"i": 1}, {"i": 2}}, got)
}

func TestBatchIsSinglePass(t *testing.T) {
	t.Parallel()

	b := FromSlice([]Record{{"i": 0}})

	_, err := Collect(b)
	require.NoError(t, err)

	_, err = b.Next()
	require.Equal(t, io.EOF, err)
}

func TestFuncBatchStaysExhaustedAfterError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	b := Func(func() (Record, error) {
		calls++
		return nil, boom
	})

	_, err := b.Next()
	require.Equal(t, boom, err)

	_, err = b.Next()
	require.Equal(t, io.EOF, err)
	require.Equal(t, 1, calls)
}

func TestMapIsLazyAndPreservesOrder(t *testing.T) {
	t.Parallel()

	pulled := 0
	src := Func(func() (Record, error) {
		if pulled >= 3 {
			return nil, io.EOF
		}
		r := Record{"i": pulled}
		pulled++
		return r, nil
	})

	mapped := Map(src, func(r Record) (Record, error) {
		out := r.Clone()
		out["doubled"] = r["i"].(int) * 2
		return out, nil
	})

	// Nothing pulled until the consumer asks.
	require.Equal(t, 0, pulled)

	got, err := Collect(mapped)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, 0, got[0]["doubled"])
	require.Equal(t, 4, got[2]["doubled"])
}

func TestMapDropsNilRecords(t *testing.T) {
	t.Parallel()

	src := FromSlice([]Record{{"keep": true}, {"keep": false}, {"keep": true}})
	filtered := Map(src, func(r Record) (Record, error) {
		if r["keep"] == false {
			return nil, nil
		}
		return r, nil
	})

	got, err := Collect(filtered)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestRoleOf(t *testing.T) {
	t.Parallel()

	role, ok := RoleOf(stubSource{})
	require.True(t, ok)
	require.Equal(t, RoleSource, role)

	role, ok = RoleOf(stubTransform{})
	require.True(t, ok)
	require.Equal(t, RoleTransform, role)

	role, ok = RoleOf(stubSink{})
	require.True(t, ok)
	require.Equal(t, RoleSink, role)

	_, ok = RoleOf(struct{}{})
	require.False(t, ok)
}

func TestCloneIsShallowCopy(t *testing.T) {
	t.Parallel()

	r := Record{"a": 1}
	c := r.Clone()
	c["a"] = 2

	require.Equal(t, 1, r["a"])
}
