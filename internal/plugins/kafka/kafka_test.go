package kafka

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSinkParams(t *testing.T) {
	t.Parallel()

	v, err := newSink(map[string]any{
		"brokers":   []any{"localhost:9092"},
		"topic":     "alerts",
		"key_field": "id",
	})
	require.NoError(t, err)

	snk := v.(*KafkaSink)
	require.Equal(t, []string{"localhost:9092"}, snk.params.Brokers)
	require.Equal(t, "alerts", snk.params.Topic)
	require.Equal(t, "id", snk.params.KeyField)
}

func TestSinkRequiredParams(t *testing.T) {
	t.Parallel()

	_, err := newSink(map[string]any{"topic": "alerts"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Brokers")

	_, err = newSink(map[string]any{"brokers": []any{"localhost:9092"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Topic")

	_, err = newSink(map[string]any{"brokers": []any{}, "topic": "alerts"})
	require.Error(t, err)
}
