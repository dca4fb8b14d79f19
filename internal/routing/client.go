// Package routing calls the route service to calculate a route between two
// addresses.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cxd309/lifeflow-engine/internal/route"
)

// DefaultBaseURL is the route service address.
const DefaultBaseURL = "http://0.0.0.0:8082"

// Request asks for a route from StartLocation to EndLocation, optionally
// through Waypoints in order.
type Request struct {
	StartLocation string   `json:"start_location"`
	EndLocation   string   `json:"end_location"`
	Waypoints     []string `json:"waypoints,omitempty"`
}

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("route service returned %d: %s", e.Code, e.Body)
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the route service.
type Client struct {
	HTTPClient Doer
	BaseURL    string
}

// NewClient creates a client for baseURL. A nil httpClient gets a 30 s
// timeout.
func NewClient(httpClient Doer, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{HTTPClient: httpClient, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Calculate POSTs req to /shortest-path and returns the ordered steps.
// An empty result is route.ErrNoRoute.
func (c *Client) Calculate(ctx context.Context, req Request) ([]route.Step, error) {
	if strings.TrimSpace(req.StartLocation) == "" || strings.TrimSpace(req.EndLocation) == "" {
		return nil, fmt.Errorf("start and end locations are required")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/shortest-path", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calculating route: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var steps []route.Step
	if err := json.NewDecoder(resp.Body).Decode(&steps); err != nil {
		return nil, fmt.Errorf("decoding route: %w", err)
	}
	if len(steps) == 0 {
		return nil, route.ErrNoRoute
	}
	return steps, nil
}
