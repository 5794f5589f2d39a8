// Package kafka provides a sink that produces each record as a JSON
// message to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"io"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/adp-project/adp/internal/pipeline"
	"github.com/adp-project/adp/internal/registry"
)

func init() {
	registry.MustRegisterComponent("adp.sinks:KafkaSink", newSink)
	registry.MustRegisterEntryPoint("kafka", "adp.sinks:KafkaSink")
}

type sinkParams struct {
	Brokers []string `yaml:"brokers" validate:"required,min=1"`
	Topic   string   `yaml:"topic" validate:"required"`
	// KeyField selects a record field used as the message key; messages
	// are unkeyed when empty.
	KeyField string `yaml:"key_field"`
}

// KafkaSink produces records synchronously, preserving emission order.
type KafkaSink struct {
	params sinkParams
}

func newSink(params map[string]any) (any, error) {
	var p sinkParams
	if err := registry.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	return &KafkaSink{params: p}, nil
}

// Run drains the batch into the topic and returns the topic name.
func (s *KafkaSink) Run(ctx context.Context, rc *pipeline.Context, in pipeline.Batch) (string, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(s.params.Brokers...),
		kgo.DefaultProduceTopic(s.params.Topic),
	)
	if err != nil {
		return "", err
	}
	defer client.Close()

	for {
		r, err := in.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}

		value, err := json.Marshal(r)
		if err != nil {
			return "", err
		}
		msg := &kgo.Record{Value: value}
		if s.params.KeyField != "" {
			if k, ok := r[s.params.KeyField].(string); ok {
				msg.Key = []byte(k)
			}
		}

		// Synchronous produce keeps ordering and surfaces broker errors
		// at the offending record.
		if err := client.ProduceSync(ctx, msg).FirstErr(); err != nil {
			return "", err
		}
	}
	return s.params.Topic, nil
}

var _ pipeline.Sink = (*KafkaSink)(nil)
