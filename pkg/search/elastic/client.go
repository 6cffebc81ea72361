package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type Config struct {
	Addresses []string
	Index     string
	Transport http.RoundTripper // optional, tests plug a stub here
}

// Client is a thin wrapper over the official client bound to one index.
type Client struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(cfg Config) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &Client{es: es, index: cfg.Index}, nil
}

func (c *Client) Index() string {
	return c.index
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (c *Client) EnsureIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", c.index, err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("failed to check index %s: %s", c.index, res.Status())
	}

	res, err = c.es.Indices.Create(c.index,
		c.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", c.index, err)
	}
	defer res.Body.Close()

	return responseError(res, "create index "+c.index)
}

func (c *Client) IndexNote(ctx context.Context, doc NoteDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal note %s: %w", doc.Id, err)
	}

	res, err := c.es.Index(c.index, bytes.NewReader(payload),
		c.es.Index.WithDocumentID(doc.Id),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index note %s: %w", doc.Id, err)
	}
	defer res.Body.Close()

	return responseError(res, "index note "+doc.Id)
}

// DeleteNote removes a document; a missing document is not an error.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	res, err := c.es.Delete(c.index, id, c.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError(res, "delete note "+id)
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Id        string              `json:"_id"`
			Source    NoteDocument        `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *Client) Search(ctx context.Context, q Query) ([]Hit, error) {
	payload, err := json.Marshal(q.body())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search index %s: %w", c.index, err)
	}
	defer res.Body.Close()

	if err := responseError(res, "search "+c.index); err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, Hit{Id: h.Id, Source: h.Source, Highlight: h.Highlight})
	}
	return hits, nil
}

func responseError(res *esapi.Response, action string) error {
	if !res.IsError() {
		return nil
	}
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("elasticsearch %s failed: %s %s", action, res.Status(), strings.TrimSpace(string(body)))
}
