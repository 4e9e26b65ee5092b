package providers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// Registry resolves providers by name
type Registry interface {
	Register(p Provider) error
	// Get returns a configured provider or an error wrapping
	// ErrUnknownProvider or ErrNotConfigured
	Get(name string) (Provider, error)
	// Available lists the configured providers by name
	Available() []string
}

type registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) Registry {
	r := &registry{providers: make(map[string]Provider)}
	for _, p := range providers {
		_ = r.Register(p)
	}
	return r
}

type Config struct {
	AnthropicAPIKey string
	ClaudeModel     string
	GoogleAPIKey    string
	GeminiModel     string
	HTTPClient      *http.Client
}

// NewDefaultRegistry registers Claude and Gemini
func NewDefaultRegistry(cfg Config) Registry {
	return NewRegistry(
		NewClaude(ClaudeConfig{APIKey: cfg.AnthropicAPIKey, Model: cfg.ClaudeModel, HTTPClient: cfg.HTTPClient}),
		NewGemini(GeminiConfig{APIKey: cfg.GoogleAPIKey, Model: cfg.GeminiModel, HTTPClient: cfg.HTTPClient}),
	)
}

func (r *registry) Register(p Provider) error {
	if p == nil {
		return fmt.Errorf("provider cannot be nil")
	}
	name := strings.ToLower(p.Name())
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %q is already registered", name)
	}
	r.providers[name] = p
	return nil
}

func (r *registry) Get(name string) (Provider, error) {
	name = strings.ToLower(name)

	r.mu.RLock()
	p, exists := r.providers[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	if !p.Available() {
		return nil, fmt.Errorf("provider %s: %w", name, ErrNotConfigured)
	}
	return p, nil
}

func (r *registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name, p := range r.providers {
		if p.Available() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
