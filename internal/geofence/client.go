package geofence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the geofence endpoints on behalf of a guard session. It
// satisfies Checker, so a Monitor can be pointed at a remote server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient constructs a Client with the session's bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Check invokes the position evaluation endpoint.
func (c *Client) Check(ctx context.Context, pos Position) (*CheckResult, error) {
	var result CheckResult
	if err := c.post(ctx, "/api/geofence/check", pos, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetBaseline invokes the baseline endpoint.
func (c *Client) SetBaseline(ctx context.Context, pos Position) error {
	var resp struct {
		Success      bool   `json:"success"`
		RequiresAuth bool   `json:"requiresAuth"`
		Error        string `json:"error"`
	}
	if err := c.post(ctx, "/api/geofence/baseline", pos, &resp); err != nil {
		return err
	}
	if resp.RequiresAuth {
		return fmt.Errorf("geofence client: baseline requires authentication")
	}
	if !resp.Success {
		return fmt.Errorf("geofence client: baseline rejected: %s", resp.Error)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, pos Position, out any) error {
	body, err := json.Marshal(map[string]float64{
		"currentLat": pos.Lat,
		"currentLng": pos.Lng,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	// The baseline endpoint soft-fails with 200; anything non-200 elsewhere
	// is surfaced as an error and treated as "assume safe" by callers.
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("geofence client: %s returned %d", path, res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
