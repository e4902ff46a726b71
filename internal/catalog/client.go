package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/noah-isme/backend-konveksi/internal/resilience"
)

// ErrNotFound indicates the backend catalog has no such product.
var ErrNotFound = errors.New("catalog: product not found")

// ErrOptionUnavailable indicates a requested size or material is not
// offered (or not currently available) for the product.
var ErrOptionUnavailable = errors.New("catalog: option unavailable")

// Client fetches product snapshots from the backend catalog API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    resilience.HTTPClient
}

// Product retrieves the pricing snapshot for one product.
func (c *Client) Product(ctx context.Context, productID string) (ProductSnapshot, error) {
	if c == nil || c.BaseURL == "" {
		return ProductSnapshot{}, errors.New("catalog: client not configured")
	}
	url := fmt.Sprintf("%s/api/v1/products/%s", c.BaseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ProductSnapshot{}, err
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}
	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return ProductSnapshot{}, fmt.Errorf("catalog: fetch product: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ProductSnapshot{}, ErrNotFound
	default:
		return ProductSnapshot{}, fmt.Errorf("catalog: unexpected status %s", resp.Status)
	}

	var payload struct {
		Data ProductSnapshot `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ProductSnapshot{}, fmt.Errorf("catalog: decode product: %w", err)
	}
	if payload.Data.ID == "" {
		payload.Data.ID = productID
	}
	return payload.Data, nil
}
