// Package registry provides the cpm registry HTTP client. The install
// pipeline only depends on the single GetPackage lookup; Search backs
// the search and browse commands.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauern/cpm/internal/model"
)

// DefaultTimeout bounds registry requests when none is configured.
const DefaultTimeout = 10 * time.Second

// Client talks to the cpm package registry.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a registry client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetPackage looks up a single package by name. A missing package
// returns (nil, nil); only transport and decode problems are errors.
func (c *Client) GetPackage(ctx context.Context, name string) (*model.PackageReference, error) {
	endpoint := fmt.Sprintf("%s/packages/%s", c.baseURL, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry lookup for %s failed: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry lookup for %s returned status %d", name, resp.StatusCode)
	}

	var ref model.PackageReference
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&ref); err != nil {
		return nil, fmt.Errorf("failed to parse registry response for %s: %w", name, err)
	}
	if ref.Name == "" {
		ref.Name = name
	}

	return &ref, nil
}

// SearchResult is one row of a registry search response.
type SearchResult struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Version     string   `json:"version,omitempty"`
	Type        string   `json:"type,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Downloads   int      `json:"downloads,omitempty"`
}

// Search queries the registry for packages matching the query string.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry search failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry search returned status %d", resp.StatusCode)
	}

	var payload struct {
		Results []SearchResult `json:"results"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return payload.Results, nil
}
