// Package ai is the boundary to the external AI collaborator used for
// item listing suggestions and natural-language search parsing. The
// core treats everything returned here as untrusted input: suggested
// attributes and parsed filters are validated against the enumerated
// values before reaching the query layer.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrDisabled is returned when no AI service is configured.
var ErrDisabled = errors.New("ai service not configured")

// Suggestion carries generated listing details for a submitted title.
type Suggestion struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Condition   string   `json:"condition,omitempty"`
}

// Filters is the untyped filter shape produced by natural-language
// query parsing. Fields map onto the catalog query filters and are
// re-validated by the caller.
type Filters struct {
	Category  string `json:"category,omitempty"`
	Size      string `json:"size,omitempty"`
	Condition string `json:"condition,omitempty"`
	Search    string `json:"search,omitempty"`
}

// Assistant is the contract consumed by handlers. A nil-safe HTTP
// implementation is provided by NewClient.
type Assistant interface {
	SuggestItemDetails(ctx context.Context, title string) (*Suggestion, error)
	ParseNaturalSearch(ctx context.Context, query string) (*Filters, error)
}

// Client talks to the AI collaborator over HTTP. The service exposes
// two JSON endpoints, /v1/suggest and /v1/parse-search, mirroring the
// operations above.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a Client for the given base URL, or nil when the
// URL is empty so callers can treat AI features as disabled.
func NewClient(baseURL, apiKey string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SuggestItemDetails asks the collaborator for a description, tag set
// and estimated condition for a garment title.
func (c *Client) SuggestItemDetails(ctx context.Context, title string) (*Suggestion, error) {
	if c == nil {
		return nil, ErrDisabled
	}
	var out Suggestion
	if err := c.post(ctx, "/v1/suggest", map[string]string{"title": title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ParseNaturalSearch translates a free-text query into catalog filters.
func (c *Client) ParseNaturalSearch(ctx context.Context, query string) (*Filters, error) {
	if c == nil {
		return nil, ErrDisabled
	}
	var out Filters
	if err := c.post(ctx, "/v1/parse-search", map[string]string{"query": query}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ai service returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
