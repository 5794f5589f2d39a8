// Package mongo provides a sink that inserts records into a MongoDB
// collection in bounded batches.
package mongo

import (
	"context"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adp-project/adp/internal/pipeline"
	"github.com/adp-project/adp/internal/registry"
)

func init() {
	registry.MustRegisterComponent("adp.sinks:MongoSink", newSink)
	registry.MustRegisterEntryPoint("mongo", "adp.sinks:MongoSink")
}

type sinkParams struct {
	URI        string `yaml:"uri" validate:"required"`
	Database   string `yaml:"database" validate:"required"`
	Collection string `yaml:"collection" validate:"required"`
	BatchSize  int    `yaml:"batch_size" validate:"omitempty,min=1"`
}

// MongoSink writes records with InsertMany, flushing every batch_size
// records (default 500). Partial writes on failure are not rolled back.
type MongoSink struct {
	params sinkParams
}

func newSink(params map[string]any) (any, error) {
	var p sinkParams
	if err := registry.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.BatchSize == 0 {
		p.BatchSize = 500
	}
	return &MongoSink{params: p}, nil
}

// Run connects, drains the batch into the collection, and returns the
// "database.collection" identifier as the artifact.
func (s *MongoSink) Run(ctx context.Context, rc *pipeline.Context, in pipeline.Batch) (string, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.params.URI))
	if err != nil {
		return "", err
	}
	defer client.Disconnect(context.Background())

	coll := client.Database(s.params.Database).Collection(s.params.Collection)
	buf := make([]any, 0, s.params.BatchSize)

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if _, err := coll.InsertMany(ctx, buf); err != nil {
			return err
		}
		buf = buf[:0]
		return nil
	}

	for {
		r, err := in.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}
		buf = append(buf, map[string]any(r))
		if len(buf) >= s.params.BatchSize {
			if err := flush(); err != nil {
				return "", err
			}
		}
	}
	if err := flush(); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s.%s", s.params.Database, s.params.Collection), nil
}

var _ pipeline.Sink = (*MongoSink)(nil)
