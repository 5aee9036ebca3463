package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Query            string            `yaml:"query"`
	Marketplace      string            `yaml:"marketplace"`
	Language         string            `yaml:"language,omitempty"`
	ShippingLocation string            `yaml:"shipping_location,omitempty"`
	Pages            int               `yaml:"pages"`
	Delay            float64           `yaml:"delay"`
	Sort             string            `yaml:"sort,omitempty"`
	Refinements      RefinementsConfig `yaml:"refinements,omitempty"`
	Filters          FiltersConfig     `yaml:"filters,omitempty"`
	Search           SearchConfig      `yaml:"search"`
	Detail           DetailConfig      `yaml:"detail"`
	Reviews          ReviewsConfig     `yaml:"reviews"`
	Analysis         AnalysisConfig    `yaml:"analysis"`
	Logging          LoggingConfig     `yaml:"logging,omitempty"`
	DataDir          string            `yaml:"data_dir,omitempty"`
	OpenReport       bool              `yaml:"open_report"`
	Schedule         string            `yaml:"schedule,omitempty"`
}

// RefinementsConfig carries provider-side search refinement codes. They are
// passed through opaquely; the report derives human-readable labels from them.
type RefinementsConfig struct {
	Prime     string `yaml:"prime,omitempty"`
	PriceBand string `yaml:"price_band,omitempty"`
}

// FiltersConfig holds the client-side shortlist filters. Nil thresholds mean
// "not configured"; a configured threshold also excludes candidates whose
// corresponding field is absent.
type FiltersConfig struct {
	MinRating  *float64 `yaml:"min_rating,omitempty"`
	MinReviews *int     `yaml:"min_reviews,omitempty"`
	Limit      int      `yaml:"limit,omitempty"`
}

type SearchConfig struct {
	Engine  string `yaml:"engine,omitempty"`
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

type DetailConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

type ReviewsConfig struct {
	APIToken     string `yaml:"api_token,omitempty"`
	Actor        string `yaml:"actor,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
	MaxReviews   int    `yaml:"max_reviews,omitempty"`
	MaxWaitSec   int    `yaml:"max_wait_seconds,omitempty"`
	PollInterSec int    `yaml:"poll_interval_seconds,omitempty"`
}

type AnalysisConfig struct {
	Provider string `yaml:"provider,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Marketplace: "amazon.com",
		Pages:       5,
		Delay:       1.0,
		Filters: FiltersConfig{
			Limit: 10,
		},
		Search: SearchConfig{
			Engine: "serpapi",
		},
		Reviews: ReviewsConfig{
			Actor:        "junglee~amazon-reviews-scraper",
			MaxReviews:   100,
			MaxWaitSec:   1200,
			PollInterSec: 10,
		},
		Analysis: AnalysisConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		DataDir:    "data",
		OpenReport: true,
	}
}

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "scout.yaml"

func Load() (*Config, error) {
	return LoadFromPath(DefaultPath)
}

// LoadFromPath reads the yaml config at path on top of the defaults. A
// missing file yields the defaults; credentials can still come from the
// environment via ApplyEnv.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ApplyEnv fills credentials that were not set in the file from the
// environment. File values win over env values.
func (c *Config) ApplyEnv() {
	if c.Search.APIKey == "" {
		c.Search.APIKey = os.Getenv("SERP_API_KEY")
	}
	if c.Detail.APIKey == "" {
		c.Detail.APIKey = os.Getenv("DETAIL_API_KEY")
	}
	if c.Reviews.APIToken == "" {
		c.Reviews.APIToken = os.Getenv("REVIEWS_API_TOKEN")
	}
	if c.Analysis.APIKey == "" {
		switch c.Analysis.Provider {
		case "openai":
			c.Analysis.APIKey = os.Getenv("OPENAI_API_KEY")
		default:
			c.Analysis.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
}

// Validate reports the first fatal configuration problem. Missing
// credentials are startup errors: the run never begins without them.
func (c *Config) Validate() error {
	if c.Query == "" {
		return fmt.Errorf("config: query is required")
	}
	if c.Pages < 1 {
		return fmt.Errorf("config: pages must be >= 1")
	}
	if c.Filters.Limit < 1 {
		return fmt.Errorf("config: filters.limit must be >= 1")
	}
	if c.Search.APIKey == "" {
		return fmt.Errorf("config: search api key is required (search.api_key or SERP_API_KEY)")
	}
	if c.Detail.APIKey == "" {
		return fmt.Errorf("config: detail api key is required (detail.api_key or DETAIL_API_KEY)")
	}
	if c.Reviews.APIToken == "" {
		return fmt.Errorf("config: reviews api token is required (reviews.api_token or REVIEWS_API_TOKEN)")
	}
	if c.Analysis.APIKey == "" {
		return fmt.Errorf("config: analysis api key is required (analysis.api_key or provider env var)")
	}
	return nil
}
