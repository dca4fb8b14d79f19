package drivers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultURL is where the route service serves the driver table.
const DefaultURL = "http://0.0.0.0:8082/whole-csv"

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher retrieves the driver table.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Driver, error)
}

// ErrBadStatus is wrapped by Fetch for non-2xx responses.
var ErrBadStatus = errors.New("unexpected status")

// Client fetches drivers over HTTP.
type Client struct {
	HTTPClient Doer
	URL        string
}

// NewClient creates a client for url. A nil httpClient gets a 10 s timeout.
func NewClient(httpClient Doer, url string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if url == "" {
		url = DefaultURL
	}
	return &Client{HTTPClient: httpClient, URL: url}
}

// Fetch GETs the driver table.
func (c *Client) Fetch(ctx context.Context) ([]Driver, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching drivers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetching drivers: %w %d: %s", ErrBadStatus, resp.StatusCode, body)
	}

	var ds []Driver
	if err := json.NewDecoder(resp.Body).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decoding drivers: %w", err)
	}
	return ds, nil
}

// Source says where a driver set came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// LoadResult is the outcome of Load. Err is set when the fallback was used
// because the fetch failed; it is informational only.
type LoadResult struct {
	Drivers []Driver `json:"drivers"`
	Source  Source   `json:"source"`
	Err     error    `json:"-"`
}

// Load fetches drivers and substitutes Fallback on any failure. A nil
// fetcher goes straight to the fallback.
func Load(ctx context.Context, f Fetcher) LoadResult {
	if f == nil {
		return LoadResult{Drivers: Fallback(), Source: SourceFallback}
	}
	ds, err := f.Fetch(ctx)
	if err != nil {
		return LoadResult{Drivers: Fallback(), Source: SourceFallback, Err: err}
	}
	return LoadResult{Drivers: ds, Source: SourceRemote}
}
