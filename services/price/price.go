// Package price looks up currency spot prices
package price

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

const defaultBaseURL = "https://api.coinbase.com"

// ErrNotFound marks an unknown currency symbol
var ErrNotFound = errors.New("symbol not found")

// Client queries the Coinbase spot price API
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a price client with a bounded request timeout
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Spot returns the USD spot price for a currency symbol
func (c *Client) Spot(ctx context.Context, symbol string) (float64, error) {
	u := fmt.Sprintf("%s/v2/prices/%s-USD/spot", c.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return 0, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return 0, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price upstream status %d", resp.StatusCode)
	}

	amount := gjson.GetBytes(body, "data.amount")
	if !amount.Exists() {
		// Coinbase reports unknown pairs inside an errors array
		if gjson.GetBytes(body, "errors").Exists() {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("unexpected price response shape")
	}

	value, err := strconv.ParseFloat(amount.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", amount.String(), err)
	}
	return value, nil
}
