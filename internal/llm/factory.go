package llm

import (
	"context"
	"fmt"
)

// ProviderFactory builds the undecorated provider for one registry entry.
type ProviderFactory func(ctx context.Context, pc ProviderConfig) (Provider, error)

// NewBaseProvider creates the wire-level Provider for pc's kind.
func NewBaseProvider(ctx context.Context, pc ProviderConfig) (Provider, error) {
	var base Provider
	var err error

	switch pc.Kind {
	case KindOpenAI:
		base, err = NewOpenAIProvider(OpenAIConfig{APIKey: pc.APIKey, BaseURL: pc.BaseURL}, pc.Upstream)
	case KindGemini:
		base, err = NewGeminiProvider(ctx, GeminiConfig{APIKey: pc.APIKey, BaseURL: pc.BaseURL}, pc.Upstream)
	case KindCompatible:
		base, err = NewCompatibleProvider(CompatibleConfig{BaseURL: pc.BaseURL, APIKey: pc.APIKey}, pc.Upstream)
	case KindAnthropic:
		base, err = NewAnthropicProvider(AnthropicConfig{APIKey: pc.APIKey, BaseURL: pc.BaseURL}, pc.Upstream)
	case KindMock:
		return NewEchoProvider(pc.Upstream), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider kind: %q", pc.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider for %q: %w", pc.Kind, pc.Model, err)
	}
	return base, nil
}

// Decorate wraps a base provider with middleware:
// caller → retry → timeout → instrumentation → base
func Decorate(base Provider, kind Kind, cfg Config, inst Instrumentation) Provider {
	instrumented := WithInstrumentation(base, kind, inst)
	bounded := WithTimeout(instrumented, cfg.Timeout)
	return WithRetry(bounded, cfg.Retry)
}
