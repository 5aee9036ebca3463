package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kayz/scout/internal/debug"
	"github.com/kayz/scout/internal/logger"
	"github.com/kayz/scout/internal/product"
)

type SerpEngine struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSerpEngine(config EngineConfig) (Engine, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("serpapi engine requires an api key")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://serpapi.com"
	}

	name := config.Name
	if name == "" {
		name = "serpapi"
	}

	return &SerpEngine{
		name:    name,
		apiKey:  config.APIKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (e *SerpEngine) Name() string { return e.name }

func (e *SerpEngine) Type() string { return "serpapi" }

type serpPage struct {
	Products       []product.Candidate `json:"products"`
	OrganicResults []product.Candidate `json:"organic_results"`
	Pagination     struct {
		Next string `json:"next"`
	} `json:"serpapi_pagination"`
}

// Search walks the result pages in order, collecting candidates. It stops
// early when a page comes back empty or the provider reports no next page;
// a transport failure or non-success status fails the whole call.
func (e *SerpEngine) Search(ctx context.Context, query string, params Params) ([]product.Candidate, error) {
	var all []product.Candidate

	for page := 1; page <= params.Pages; page++ {
		logger.Info("Fetching page %d/%d", page, params.Pages)

		result, err := e.fetchPage(ctx, query, params, page)
		if err != nil {
			return nil, fmt.Errorf("search page %d: %w", page, err)
		}

		candidates := result.Products
		if len(candidates) == 0 {
			candidates = result.OrganicResults
		}
		if len(candidates) == 0 {
			logger.Warn("No products found on page %d", page)
			break
		}

		logger.Info("Found %d products on page %d", len(candidates), page)
		all = append(all, candidates...)

		if result.Pagination.Next == "" {
			logger.Info("No more pages available after page %d", page)
			break
		}

		if page < params.Pages && params.Delay > 0 {
			select {
			case <-time.After(params.Delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	logger.Info("Total products collected: %d", len(all))
	return all, nil
}

func (e *SerpEngine) fetchPage(ctx context.Context, query string, params Params, page int) (*serpPage, error) {
	q := url.Values{}
	q.Set("engine", "amazon")
	q.Set("k", query)
	q.Set("amazon_domain", params.Marketplace)
	q.Set("api_key", e.apiKey)
	q.Set("page", strconv.Itoa(page))

	if params.Language != "" {
		q.Set("language", params.Language)
	}
	if params.ShippingLocation != "" {
		q.Set("shipping_location", params.ShippingLocation)
	}
	if params.Sort != "" {
		q.Set("s", params.Sort)
	}

	var rhParts []string
	if params.Prime != "" {
		rhParts = append(rhParts, "p_n_prime_domestic:"+params.Prime)
	}
	if params.PriceBand != "" {
		rhParts = append(rhParts, "p_36:"+params.PriceBand)
	}
	if len(rhParts) > 0 {
		q.Set("rh", strings.Join(rhParts, ","))
	}

	req, err := http.NewRequestWithContext(ctx, "GET", e.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	debug.Log("serpapi page %d response: %d bytes", page, len(body))

	var result serpPage
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}
