// Package elastic provides a sink that indexes records into an
// Elasticsearch index.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/adp-project/adp/internal/pipeline"
	"github.com/adp-project/adp/internal/registry"
)

func init() {
	registry.MustRegisterComponent("adp.sinks:ElasticSink", newSink)
	registry.MustRegisterEntryPoint("elastic", "adp.sinks:ElasticSink")
}

type sinkParams struct {
	Addresses []string `yaml:"addresses" validate:"omitempty,min=1"`
	CloudID   string   `yaml:"cloud_id"`
	APIKey    string   `yaml:"api_key"`
	Index     string   `yaml:"index" validate:"required"`
	// IDField selects a record field used as the document id; documents
	// get generated ids when empty.
	IDField string `yaml:"id_field"`
}

// ElasticSink indexes one document per record.
type ElasticSink struct {
	params sinkParams
}

func newSink(params map[string]any) (any, error) {
	var p sinkParams
	if err := registry.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	if len(p.Addresses) == 0 && p.CloudID == "" {
		return nil, fmt.Errorf("elastic sink requires addresses or cloud_id")
	}
	return &ElasticSink{params: p}, nil
}

// Run drains the batch into the index and returns the index name.
func (s *ElasticSink) Run(ctx context.Context, rc *pipeline.Context, in pipeline.Batch) (string, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: s.params.Addresses,
		CloudID:   s.params.CloudID,
		APIKey:    s.params.APIKey,
	})
	if err != nil {
		return "", err
	}

	for {
		r, err := in.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}

		doc, err := json.Marshal(r)
		if err != nil {
			return "", err
		}

		opts := []func(*esapi.IndexRequest){
			client.Index.WithContext(ctx),
		}
		if s.params.IDField != "" {
			if id, ok := r[s.params.IDField].(string); ok && id != "" {
				opts = append(opts, client.Index.WithDocumentID(id))
			}
		}

		res, err := client.Index(s.params.Index, bytes.NewReader(doc), opts...)
		if err != nil {
			return "", err
		}
		if res.IsError() {
			res.Body.Close()
			return "", fmt.Errorf("indexing into %s: %s", s.params.Index, res.Status())
		}
		res.Body.Close()
	}
	return s.params.Index, nil
}

var _ pipeline.Sink = (*ElasticSink)(nil)
