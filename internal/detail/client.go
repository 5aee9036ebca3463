// Package detail fetches per-item product data from the detail provider.
package detail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kayz/scout/internal/debug"
	"github.com/kayz/scout/internal/logger"
	"github.com/kayz/scout/internal/product"
)

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("detail client requires an api key")
	}
	if baseURL == "" {
		baseURL = "https://api.rainforestapi.com"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

type detailPayload struct {
	Product struct {
		Title          string   `json:"title"`
		Description    string   `json:"description"`
		FeatureBullets []string `json:"feature_bullets"`
	} `json:"product"`
}

// Fetch retrieves the detail record for one item. The provider tolerates
// concurrent calls, so the orchestrator may run many of these in parallel.
func (c *Client) Fetch(ctx context.Context, id, marketplace string) (*product.DetailRecord, error) {
	u := fmt.Sprintf("%s/request?api_key=%s&asin=%s&type=product&amazon_domain=%s",
		c.baseURL, c.apiKey, id, marketplace)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}

	logger.Debug("Fetching product data for %s from %s", id, marketplace)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detail fetch %s: %w", id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("detail fetch %s: %w", id, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detail fetch %s: api error %d: %s",
			id, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	debug.Log("detail response for %s: %d bytes", id, len(body))

	var payload detailPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("detail fetch %s: parse response: %w", id, err)
	}

	return &product.DetailRecord{
		ID:             id,
		Title:          payload.Product.Title,
		Description:    payload.Product.Description,
		FeatureBullets: payload.Product.FeatureBullets,
		Raw:            json.RawMessage(body),
	}, nil
}
