// Package search indexes offers in Elasticsearch for GET /offers/search.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/six-cities-api/internal/domain/entity"
)

type OfferIndex struct {
	ES   *elasticsearch.Client
	Name string
}

func NewOfferIndex(es *elasticsearch.Client, index string) *OfferIndex {
	return &OfferIndex{ES: es, Name: index}
}

type offerDoc struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	City        string   `json:"city"`
	Type        string   `json:"type"`
	Amenities   []string `json:"amenities"`
	IsPremium   bool     `json:"is_premium"`
	Price       int      `json:"price"`
	PublishDate string   `json:"publish_date"`
}

func toDoc(o *entity.Offer) offerDoc {
	amenities := make([]string, 0, len(o.Amenities))
	for _, a := range o.Amenities {
		amenities = append(amenities, string(a))
	}
	return offerDoc{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		City:        string(o.City),
		Type:        string(o.Type),
		Amenities:   amenities,
		IsPremium:   o.IsPremium,
		Price:       o.Price,
		PublishDate: o.PublishDate.Format(time.RFC3339Nano),
	}
}

func (x *OfferIndex) Index(ctx context.Context, o *entity.Offer) error {
	b, err := json.Marshal(toDoc(o))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Name, DocumentID: o.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index offer %s: %s", o.ID, res.Status())
	}
	return nil
}

func (x *OfferIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.Name, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete offer %s: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match over name, description, city and amenities.
func (x *OfferIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^3", "city^2", "description", "amenities"},
				"fuzziness": "AUTO",
			},
		},
		"size":    size,
		"_source": false,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Name), x.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
