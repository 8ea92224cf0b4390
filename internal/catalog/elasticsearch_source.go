// internal/catalog/elasticsearch_source.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
)

// maxIndexedSchemes bounds a single search page; catalogs are small.
const maxIndexedSchemes = 1000

// ElasticsearchSource reads scheme documents from an index. Documents are
// ordered by an optional numeric "position" field, then by id.
type ElasticsearchSource struct {
	Client *elasticsearch.Client
	Index  string
}

func (s ElasticsearchSource) Name() string { return "elasticsearch:" + s.Index }

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s ElasticsearchSource) Document(ctx context.Context) ([]byte, error) {
	body := fmt.Sprintf(`{
		"query": {"match_all": {}},
		"size": %d,
		"sort": [
			{"position": {"order": "asc", "unmapped_type": "long"}},
			{"id": {"order": "asc", "unmapped_type": "keyword"}}
		]
	}`, maxIndexedSchemes)

	res, err := s.Client.Search(
		s.Client.Search.WithContext(ctx),
		s.Client.Search.WithIndex(s.Index),
		s.Client.Search.WithBody(strings.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.Index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", s.Index, res.Status())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	objects := make([]json.RawMessage, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		objects = append(objects, h.Source)
	}
	return assemble(objects), nil
}
