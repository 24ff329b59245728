package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"travel-workers/internal/models"
)

// ElasticsearchSource reads products from an index whose documents use the
// Product JSON field names.
type ElasticsearchSource struct {
	client   *elasticsearch.Client
	index    string
	maxItems int
}

func NewElasticsearchSource(client *elasticsearch.Client, index string, maxItems int) *ElasticsearchSource {
	if maxItems <= 0 {
		maxItems = 1000
	}
	return &ElasticsearchSource{client: client, index: index, maxItems: maxItems}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string         `json:"_id"`
			Source models.Product `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchSource) buildRequest() esapi.SearchRequest {
	body := `{"query":{"match_all":{}},"sort":[{"_doc":"asc"}]}`
	size := s.maxItems
	return esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(body),
		Size:  &size,
	}
}

func (s *ElasticsearchSource) Products(ctx context.Context) ([]models.Product, error) {
	req := s.buildRequest()
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", s.index, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	products := make([]models.Product, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		p := hit.Source
		if p.ID == "" {
			p.ID = hit.ID
		}
		products = append(products, p)
	}
	return products, nil
}
