// Package reviews collects customer reviews through an asynchronous
// scraping actor: start a run, poll it to completion, then download the
// result dataset. The provider is quota-constrained and must never be
// called concurrently.
package reviews

import (
	"bytes"
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

type Options struct {
	APIToken     string
	Actor        string
	BaseURL      string
	MaxReviews   int
	MaxWait      time.Duration
	PollInterval time.Duration
}

type Client struct {
	token        string
	actor        string
	baseURL      string
	maxReviews   int
	maxWait      time.Duration
	pollInterval time.Duration
	client       *http.Client
}

func NewClient(opts Options) (*Client, error) {
	if opts.APIToken == "" {
		return nil, fmt.Errorf("reviews client requires an api token")
	}
	if opts.Actor == "" {
		return nil, fmt.Errorf("reviews client requires an actor id")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.apify.com/v2"
	}
	if opts.MaxReviews <= 0 {
		opts.MaxReviews = 100
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 20 * time.Minute
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}
	return &Client{
		token:        opts.APIToken,
		actor:        opts.Actor,
		baseURL:      opts.BaseURL,
		maxReviews:   opts.MaxReviews,
		maxWait:      opts.MaxWait,
		pollInterval: opts.PollInterval,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Fetch runs the review actor for one item and returns its normalized
// reviews. One call per item, strictly sequential at the call site.
func (c *Client) Fetch(ctx context.Context, id, marketplace string) (product.ReviewSet, error) {
	input := map[string]any{
		"productUrls": []map[string]string{
			{"url": fmt.Sprintf("https://www.%s/dp/%s", marketplace, id)},
		},
		"maxReviews":      c.maxReviews,
		"filterByRatings": []string{"allStars"},
	}

	runID, err := c.startRun(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("reviews fetch %s: %w", id, err)
	}

	if err := c.waitForCompletion(ctx, runID); err != nil {
		return nil, fmt.Errorf("reviews fetch %s: %w", id, err)
	}

	status, err := c.runStatus(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("reviews fetch %s: %w", id, err)
	}
	if status.DatasetID == "" {
		return nil, fmt.Errorf("reviews fetch %s: no dataset id in run data", id)
	}

	items, err := c.datasetItems(ctx, status.DatasetID)
	if err != nil {
		return nil, fmt.Errorf("reviews fetch %s: %w", id, err)
	}

	set := make(product.ReviewSet, 0, len(items))
	for _, item := range items {
		set = append(set, normalize(item))
	}
	return set, nil
}

func (c *Client) startRun(ctx context.Context, input map[string]any) (string, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/acts/%s/runs", c.baseURL, c.actor)
	req, err := http.NewRequestWithContext(ctx, "POST", u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	logger.Info("Starting review actor: %s", c.actor)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("start run: api error %d: %s",
			resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("start run: parse response: %w", err)
	}
	if parsed.Data.ID == "" {
		return "", fmt.Errorf("start run: no run id in response")
	}

	logger.Debug("Actor run started: %s", parsed.Data.ID)
	return parsed.Data.ID, nil
}

type runStatus struct {
	Status    string `json:"status"`
	DatasetID string `json:"defaultDatasetId"`
}

func (c *Client) runStatus(ctx context.Context, runID string) (*runStatus, error) {
	u := fmt.Sprintf("%s/actor-runs/%s", c.baseURL, runID)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("run status: api error %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Data runStatus `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("run status: parse response: %w", err)
	}
	return &parsed.Data, nil
}

// waitForCompletion polls the run until it reaches a terminal status or the
// bounded wait expires. Progress is logged at most every 30 seconds.
func (c *Client) waitForCompletion(ctx context.Context, runID string) error {
	start := time.Now()
	lastLog := start

	logger.Info("Waiting for actor run %s to complete (max wait: %s)", runID, c.maxWait)

	for time.Since(start) < c.maxWait {
		status, err := c.runStatus(ctx, runID)
		if err != nil {
			return err
		}

		if time.Since(lastLog) >= 30*time.Second {
			logger.Info("Run status: %s (elapsed: %s)", status.Status, time.Since(start).Round(time.Second))
			lastLog = time.Now()
		}

		switch status.Status {
		case "SUCCEEDED":
			logger.Info("Actor run completed successfully")
			return nil
		case "FAILED", "ABORTED", "TIMED-OUT":
			return fmt.Errorf("actor run failed with status %s", status.Status)
		}

		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("timeout waiting for run %s after %s", runID, c.maxWait)
}

func (c *Client) datasetItems(ctx context.Context, datasetID string) ([]map[string]any, error) {
	u := fmt.Sprintf("%s/datasets/%s/items", c.baseURL, datasetID)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset items: api error %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	debug.Log("dataset %s: %d bytes", datasetID, len(body))

	var items []map[string]any
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("dataset items: parse response: %w", err)
	}

	logger.Info("Retrieved %d items from dataset", len(items))
	return items, nil
}

// normalize maps one raw dataset item onto a Review. Field names vary by
// actor version, so each field tries the known aliases in order.
func normalize(item map[string]any) product.Review {
	return product.Review{
		Rating: pickNumber(item, "ratingScore", "rating", "stars"),
		Title:  pickString(item, "reviewTitle", "title"),
		Body:   pickString(item, "reviewDescription", "text", "body"),
		Date:   pickString(item, "date", "reviewedAt"),
	}
}

func pickNumber(item map[string]any, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := item[k].(float64); ok {
			return v
		}
	}
	return 0
}

func pickString(item map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := item[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
