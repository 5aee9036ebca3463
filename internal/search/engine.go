package search

import (
	"context"
	"time"

	"github.com/kayz/scout/internal/product"
)

// Params are the provider-side knobs for one paginated search.
type Params struct {
	Marketplace      string
	Language         string
	ShippingLocation string
	Pages            int
	Delay            time.Duration
	Sort             string
	Prime            string
	PriceBand        string
}

// Engine is one marketplace search provider. Search fetches up to
// params.Pages result pages, stopping early on an empty page or when the
// provider signals there is no next page.
type Engine interface {
	Name() string
	Type() string
	Search(ctx context.Context, query string, params Params) ([]product.Candidate, error)
}

// EngineConfig configures a single engine instance.
type EngineConfig struct {
	Name    string
	Type    string
	APIKey  string
	BaseURL string
}

type EngineFactory func(config EngineConfig) (Engine, error)
