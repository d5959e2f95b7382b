package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elkhamyyali/ecommerceback/internal/models"
)

// Document is what gets stored in the product index.
type Document struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
	Sold            int             `json:"sold"`
	ImageCover      string          `json:"image_cover"`
	RatingsAverage  float64         `json:"ratings_average"`
	RatingsQuantity int             `json:"ratings_quantity"`
}

func FromProduct(p *models.Product) Document {
	return Document{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		Price:           p.Price,
		Quantity:        p.Quantity,
		Sold:            p.Sold,
		ImageCover:      p.ImageCover,
		RatingsAverage:  p.RatingsAverage,
		RatingsQuantity: p.RatingsQuantity,
	}
}

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

type Index struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return client, nil
}

func NewIndex(es *elasticsearch.Client, index string) *Index {
	return &Index{es: es, index: index}
}

// Ping checks the cluster answers with a non-error status.
func (ix *Index) Ping(ctx context.Context) error {
	res, err := ix.es.Info(ix.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("info", res.Status(), res.Body)
	}
	return nil
}

func (ix *Index) IndexProduct(ctx context.Context, p *models.Product) error {
	body, err := json.Marshal(FromProduct(p))
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	res, err := ix.es.Index(
		ix.index,
		bytes.NewReader(body),
		ix.es.Index.WithContext(ctx),
		ix.es.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res.Status(), res.Body)
	}
	return nil
}

func (ix *Index) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := ix.es.Delete(ix.index, id.String(), ix.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete", res.Status(), res.Body)
	}
	return nil
}

func (ix *Index) Search(ctx context.Context, query string, from, size int) (int64, []Document, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := ix.es.Search(
		ix.es.Search.WithContext(ctx),
		ix.es.Search.WithIndex(ix.index),
		ix.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]Document, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}

func responseError(op, status string, body io.Reader) error {
	raw, _ := io.ReadAll(io.LimitReader(body, 1024))
	return fmt.Errorf("elasticsearch %s: %s: %s", op, status, strings.TrimSpace(string(raw)))
}
