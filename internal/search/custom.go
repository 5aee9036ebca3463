package search

import "fmt"

// NewCustomEngine builds an engine speaking the same wire contract as
// serpapi against a self-hosted endpoint. The base URL is mandatory here.
func NewCustomEngine(config EngineConfig) (Engine, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("custom engine requires a base url")
	}
	if config.Name == "" {
		config.Name = "custom"
	}
	return NewSerpEngine(config)
}
