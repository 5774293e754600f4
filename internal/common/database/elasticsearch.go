// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"talent-matching-workers/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// CandidateIndexMapping types the fields the candidate search filters and
// decodes. Compliance sections stay dynamic objects.
const CandidateIndexMapping = `{
  "mappings": {
    "properties": {
      "id":                   {"type": "keyword"},
      "isActive":             {"type": "boolean"},
      "displayName":          {"type": "text"},
      "headline":             {"type": "text"},
      "skills":               {"type": "keyword", "normalizer": "lowercase"},
      "hourlyRate":           {"type": "float"},
      "yearsExperience":      {"type": "float"},
      "trustScore":           {"type": "float"},
      "platformProjectCount": {"type": "integer"},
      "verificationTier":     {"type": "keyword"},
      "endorsements":         {"type": "object", "dynamic": true},
      "workPattern":          {"type": "object", "dynamic": true},
      "successMetrics":       {"type": "object", "dynamic": true}
    }
  },
  "settings": {
    "analysis": {
      "normalizer": {
        "lowercase": {"type": "custom", "filter": ["lowercase"]}
      }
    }
  }
}`

// ElasticsearchClient serves the optional search-backed candidate store.
type ElasticsearchClient struct {
	client *elasticsearch.Client
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	addresses := cfg.Addresses
	if len(addresses) == 0 && cfg.URL != "" {
		addresses = []string{cfg.URL}
	}
	esCfg := elasticsearch.Config{Addresses: addresses}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticsearchClient{client: es}, nil
}

// NewElasticsearchFromClient wraps an existing client.
func NewElasticsearchFromClient(es *elasticsearch.Client) *ElasticsearchClient {
	return &ElasticsearchClient{client: es}
}

func (c *ElasticsearchClient) Client() *elasticsearch.Client {
	return c.client
}

func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := c.client.Ping(c.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}

// EnsureIndex creates index with mapping when it does not exist. It reports
// whether the index was created.
func (c *ElasticsearchClient) EnsureIndex(ctx context.Context, index, mapping string) (bool, error) {
	exists, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, c.client)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", index, err)
	}
	exists.Body.Close()

	switch exists.StatusCode {
	case http.StatusOK:
		return false, nil
	case http.StatusNotFound:
	default:
		return false, fmt.Errorf("check index %s: %s", index, exists.Status())
	}

	res, err := esapi.IndicesCreateRequest{Index: index, Body: strings.NewReader(mapping)}.Do(ctx, c.client)
	if err != nil {
		return false, fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return false, fmt.Errorf("create index %s: %s", index, res.String())
	}
	return true, nil
}
