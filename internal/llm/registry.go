package llm

import (
	"context"
	"fmt"
	"sort"
)

// ProviderConfig is the resolved connection data for one selectable model.
type ProviderConfig struct {
	Model    string
	Kind     Kind
	Upstream string
	BaseURL  string
	APIKey   string
}

// Registry maps model identifiers to ready-to-use providers. It is built
// once at process start and is read-only afterwards, so it is safe for
// concurrent use.
type Registry struct {
	configs     map[string]ProviderConfig
	providers   map[string]Provider
	unavailable map[string]Kind
}

type registryOptions struct {
	factory ProviderFactory
	inst    Instrumentation
}

// RegistryOption customizes NewRegistry.
type RegistryOption func(*registryOptions)

// WithFactory replaces the wire-level provider constructor. Decorators
// are still applied to whatever the factory returns.
func WithFactory(f ProviderFactory) RegistryOption {
	return func(o *registryOptions) { o.factory = f }
}

// WithSinks sets the logger and event repository every provider reports to.
func WithSinks(inst Instrumentation) RegistryOption {
	return func(o *registryOptions) { o.inst = inst }
}

// NewRegistry validates cfg and builds one decorated provider per catalog
// model whose kind has credentials. It fails with ErrNoProviders when no
// model can be served.
func NewRegistry(ctx context.Context, cfg Config, opts ...RegistryOption) (*Registry, error) {
	o := registryOptions{factory: NewBaseProvider}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Registry{
		configs:     make(map[string]ProviderConfig),
		providers:   make(map[string]Provider),
		unavailable: make(map[string]Kind),
	}

	for _, entry := range cfg.Models {
		if !cfg.Configured(entry.Kind) {
			r.unavailable[entry.ID] = entry.Kind
			continue
		}

		pc := providerConfigFor(cfg, entry)
		base, err := o.factory(ctx, pc)
		if err != nil {
			return nil, err
		}

		r.configs[entry.ID] = pc
		r.providers[entry.ID] = Decorate(base, pc.Kind, cfg, o.inst)
	}

	if len(r.providers) == 0 {
		return nil, fmt.Errorf("%w: no catalog model uses a configured provider", ErrNoProviders)
	}

	return r, nil
}

// Resolve returns the provider configuration for model. Resolution never
// touches the network.
func (r *Registry) Resolve(model string) (ProviderConfig, error) {
	if pc, ok := r.configs[model]; ok {
		return pc, nil
	}
	if kind, ok := r.unavailable[model]; ok {
		return ProviderConfig{}, &ErrUnknownModel{
			Model:  model,
			Reason: fmt.Sprintf("provider kind %q has no credentials configured", kind),
		}
	}
	return ProviderConfig{}, &ErrUnknownModel{Model: model}
}

// Provider returns the decorated provider serving model.
func (r *Registry) Provider(model string) (Provider, error) {
	if _, err := r.Resolve(model); err != nil {
		return nil, err
	}
	return r.providers[model], nil
}

// Models returns the servable models sorted by identifier.
func (r *Registry) Models() []ProviderConfig {
	out := make([]ProviderConfig, 0, len(r.configs))
	for _, pc := range r.configs {
		out = append(out, pc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out
}

// Unavailable returns catalog models skipped for missing credentials,
// keyed by model identifier.
func (r *Registry) Unavailable() map[string]Kind {
	out := make(map[string]Kind, len(r.unavailable))
	for m, k := range r.unavailable {
		out[m] = k
	}
	return out
}

func providerConfigFor(cfg Config, entry ModelEntry) ProviderConfig {
	pc := ProviderConfig{
		Model:    entry.ID,
		Kind:     entry.Kind,
		Upstream: entry.Upstream,
	}
	if pc.Upstream == "" {
		pc.Upstream = entry.ID
	}

	switch entry.Kind {
	case KindOpenAI:
		pc.BaseURL, pc.APIKey = cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey
	case KindGemini:
		pc.BaseURL, pc.APIKey = cfg.Gemini.BaseURL, cfg.Gemini.APIKey
	case KindCompatible:
		pc.BaseURL, pc.APIKey = cfg.Compatible.BaseURL, cfg.Compatible.APIKey
	case KindAnthropic:
		pc.BaseURL, pc.APIKey = cfg.Anthropic.BaseURL, cfg.Anthropic.APIKey
	}
	return pc
}
