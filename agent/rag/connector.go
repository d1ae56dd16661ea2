package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
)

const (
	defaultTopK          = 5
	defaultTimeout       = 10 * time.Second
	maxResponseSizeBytes = 2 << 20
)

// SearchResult is one ranked passage from the banking knowledge base.
type SearchResult struct {
	ID         string   `json:"id"`
	Content    string   `json:"content"`
	Similarity float64  `json:"similarity"`
	Metadata   Metadata `json:"metadata"`
}

// Metadata describes where a passage came from.
type Metadata struct {
	Product    string `json:"product,omitempty"`
	DocType    string `json:"type,omitempty"`
	ChunkIndex int    `json:"chunk_index,omitempty"`
}

// SearchOptions bound and filter a search. Zero values take the
// connector defaults.
type SearchOptions struct {
	TopK      int
	Threshold float64
}

// Config is the retrieval backend endpoint configuration.
type Config struct {
	URL       string        `envconfig:"URL" split_words:"true" required:"true"`
	Token     string        `envconfig:"TOKEN" split_words:"true"`
	Timeout   time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	TopK      int           `envconfig:"TOP_K" split_words:"true" default:"5"`
	Threshold float64       `envconfig:"THRESHOLD" split_words:"true" default:"0"`
}

// Searcher is the retrieval contract the tool layer depends on. An
// empty result slice is a valid "no relevant context" outcome, distinct
// from a connector error.
type Searcher interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)
}

// Option customizes a Connector.
type Option func(*Connector)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Connector) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// Connector queries the knowledge-base backend over REST.
type Connector struct {
	baseURL          string
	token            string
	httpClient       *http.Client
	defaultTopK      int
	defaultThreshold float64
}

var _ Searcher = (*Connector)(nil)

func NewConnector(cfg Config, opts ...Option) (*Connector, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: retrieval backend url is required", contractx.ErrConfiguration)
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid retrieval backend url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	c := &Connector{
		baseURL:          baseURL,
		token:            strings.TrimSpace(cfg.Token),
		httpClient:       &http.Client{Timeout: timeout},
		defaultTopK:      topK,
		defaultThreshold: cfg.Threshold,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type searchRequest struct {
	Query     string  `json:"query"`
	TopK      int     `json:"top_k"`
	Threshold float64 `json:"threshold"`
}

type searchResponse struct {
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
	SearchTimeMS float64        `json:"search_time_ms"` // informational only
	Error        string         `json:"error,omitempty"`
}

// Search queries the backend and returns passages sorted by descending
// similarity, bounded by TopK and filtered by Threshold. The backend's
// ordering is not trusted; ranking is re-applied here.
func (c *Connector) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is empty", contractx.ErrValidation)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = c.defaultTopK
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = c.defaultThreshold
	}

	body, err := json.Marshal(searchRequest{Query: query, TopK: topK, Threshold: threshold})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal search request: %v", contractx.ErrRetrieval, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build search request: %v", contractx.ErrRetrieval, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrRetrieval, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read search response: %v", contractx.ErrRetrieval, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: http status=%d body=%s", contractx.ErrRetrieval, resp.StatusCode, string(raw))
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", contractx.ErrRetrieval, err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("%w: %s", contractx.ErrRetrieval, parsed.Error)
	}

	return Rank(parsed.Results, threshold, topK), nil
}

// Rank sorts results by descending similarity with stable ties, drops
// entries below the threshold, and bounds the length by topK.
func Rank(results []SearchResult, threshold float64, topK int) []SearchResult {
	ranked := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if r.Similarity >= threshold {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// IsRetrievalError distinguishes a connector failure from an empty but
// successful search.
func IsRetrievalError(err error) bool {
	return errors.Is(err, contractx.ErrRetrieval)
}
