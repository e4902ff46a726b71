package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/noah-isme/backend-konveksi/internal/pricing"
	"github.com/noah-isme/backend-konveksi/internal/resilience"
)

// ErrNotFound indicates the backend has no order with the requested id.
var ErrNotFound = errors.New("order: not found")

// ErrRejected indicates the backend refused the submission payload.
var ErrRejected = errors.New("order: submission rejected")

// SubmitLine is one order line as sent to the backend. PriceDetails is
// the breakdown computed at cart or entry time, embedded verbatim.
type SubmitLine struct {
	ProductID     string                  `json:"productId"`
	ProductName   string                  `json:"productName,omitempty"`
	Material      *pricing.MaterialOption `json:"material,omitempty"`
	CustomDesign  *pricing.CustomDesign   `json:"customDesign,omitempty"`
	SizeBreakdown []pricing.SizeQuantity  `json:"sizeBreakdown"`
	PriceDetails  pricing.Breakdown       `json:"priceDetails"`
}

// Submission is the order payload posted to the backend.
type Submission struct {
	UserID          string        `json:"userId"`
	Source          string        `json:"source"`
	PaymentType     string        `json:"paymentType"`
	DPPercentage    float64       `json:"dpPercentage,omitempty"`
	Items           []SubmitLine  `json:"items"`
	Subtotal        pricing.Money `json:"subtotal"`
	Total           pricing.Money `json:"total"`
	DepositAmount   pricing.Money `json:"depositAmount"`
	RemainingAmount pricing.Money `json:"remainingAmount"`
	CustomerName    string        `json:"customerName,omitempty"`
	CustomerPhone   string        `json:"customerPhone,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}

// Order is the backend's view of a submitted order. Price fields are
// stored at submission time and returned as-is on detail reads.
type Order struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	Status          string        `json:"status"`
	Source          string        `json:"source"`
	PaymentType     string        `json:"paymentType"`
	DPPercentage    float64       `json:"dpPercentage,omitempty"`
	Items           []SubmitLine  `json:"items"`
	Subtotal        pricing.Money `json:"subtotal"`
	Total           pricing.Money `json:"total"`
	DepositAmount   pricing.Money `json:"depositAmount"`
	RemainingAmount pricing.Money `json:"remainingAmount"`
	CustomerName    string        `json:"customerName,omitempty"`
	CustomerPhone   string        `json:"customerPhone,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// Client submits orders to the backend order API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    resilience.HTTPClient
}

// Submit posts a new order. The idempotency key lets the backend
// deduplicate retried submissions.
func (c *Client) Submit(ctx context.Context, sub Submission, idempotencyKey string) (Order, error) {
	if c == nil || c.BaseURL == "" {
		return Order{}, errors.New("order: client not configured")
	}
	body, err := json.Marshal(sub)
	if err != nil {
		return Order{}, fmt.Errorf("order: encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/orders", bytes.NewReader(body))
	if err != nil {
		return Order{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}
	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return Order{}, fmt.Errorf("order: submit: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return Order{}, fmt.Errorf("backend status %s: %w", resp.Status, ErrRejected)
	default:
		return Order{}, fmt.Errorf("order: unexpected status %s", resp.Status)
	}
	return decodeOrder(resp)
}

// Detail fetches a stored order. The returned price fields are whatever
// was submitted; nothing is recomputed.
func (c *Client) Detail(ctx context.Context, orderID string) (Order, error) {
	if c == nil || c.BaseURL == "" {
		return Order{}, errors.New("order: client not configured")
	}
	url := fmt.Sprintf("%s/api/v1/orders/%s", c.BaseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Order{}, err
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}
	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return Order{}, fmt.Errorf("order: fetch detail: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Order{}, ErrNotFound
	default:
		return Order{}, fmt.Errorf("order: unexpected status %s", resp.Status)
	}
	return decodeOrder(resp)
}

func decodeOrder(resp *http.Response) (Order, error) {
	var payload struct {
		Data Order `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Order{}, fmt.Errorf("order: decode response: %w", err)
	}
	return payload.Data, nil
}
