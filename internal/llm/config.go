package llm

import (
	"fmt"
	"time"
)

// Config holds all LLM provider configuration. It is built once at process
// start and passed explicitly to NewRegistry.
type Config struct {
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	Compatible CompatibleConfig
	Anthropic  AnthropicConfig

	// EnableMock registers models of kind "mock". Off by default so a
	// production process never answers with echo text.
	EnableMock bool

	// Models is the catalog of selectable model identifiers.
	Models []ModelEntry

	Retry RetryConfig

	// Timeout is the ceiling for a single provider call. Each retry
	// attempt gets its own timeout. Default: 45s.
	Timeout time.Duration

	// MaxTokens is the response token budget for every call.
	MaxTokens int

	// Temperature for generation calls. Evaluation always runs at 0.
	Temperature float64
}

// ModelEntry maps a user-facing model identifier to a provider kind.
type ModelEntry struct {
	ID   string `mapstructure:"id" yaml:"id"`
	Kind Kind   `mapstructure:"kind" yaml:"kind"`
	// Upstream is the model name sent on the wire. Empty means ID.
	Upstream string `mapstructure:"upstream" yaml:"upstream"`
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // Optional. Override for proxies.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string
	BaseURL string // Optional. Used by tests and private endpoints.
}

// CompatibleConfig holds the generic gateway configuration.
type CompatibleConfig struct {
	BaseURL string
	APIKey  string
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	BaseURL string // Optional.
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	// MaxAttempts counts the first call, so 3 means at most 2 retries.
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultModels is the catalog served when configuration does not
// provide one.
func DefaultModels() []ModelEntry {
	return []ModelEntry{
		{ID: "gpt-4", Kind: KindCompatible},
		{ID: "gpt-3.5", Kind: KindCompatible},
		{ID: "gpt-oss:120b", Kind: KindCompatible},
		{ID: "gemini-2.5-flash", Kind: KindGemini},
		{ID: "gemini-2.0-flash", Kind: KindGemini},
		{ID: "gpt-4o", Kind: KindOpenAI},
		{ID: "gpt-4o-mini", Kind: KindOpenAI},
		{ID: "claude-haiku", Kind: KindAnthropic},
		{ID: "claude-sonnet", Kind: KindAnthropic},
		{ID: "mock", Kind: KindMock},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Models: DefaultModels(),
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout:     45 * time.Second,
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

// Configured reports whether the given kind has usable credentials.
func (c Config) Configured(k Kind) bool {
	switch k {
	case KindOpenAI:
		return c.OpenAI.APIKey != ""
	case KindGemini:
		return c.Gemini.APIKey != ""
	case KindCompatible:
		return c.Compatible.BaseURL != ""
	case KindAnthropic:
		return c.Anthropic.APIKey != ""
	case KindMock:
		return c.EnableMock
	}
	return false
}

// Validate checks that at least one provider is usable and that the
// numeric settings are sane.
func (c Config) Validate() error {
	if c.Compatible.APIKey != "" && c.Compatible.BaseURL == "" {
		return fmt.Errorf("BISAI_BASE_URL is required when BISAI_API_KEY is set")
	}

	usable := false
	for _, k := range Kinds {
		if c.Configured(k) {
			usable = true
			break
		}
	}
	if !usable {
		return ErrNoProviders
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("LLM timeout must be positive, got %s", c.Timeout)
	}

	seen := make(map[string]bool, len(c.Models))
	for _, m := range c.Models {
		if m.ID == "" {
			return fmt.Errorf("model catalog entry without id")
		}
		if _, err := ParseKind(string(m.Kind)); err != nil {
			return fmt.Errorf("model %q: %w", m.ID, err)
		}
		if seen[m.ID] {
			return fmt.Errorf("model %q listed twice", m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}
