package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFactory builds MockProviders and records which configs it saw.
type countingFactory struct {
	built []ProviderConfig
}

func (f *countingFactory) build(_ context.Context, pc ProviderConfig) (Provider, error) {
	f.built = append(f.built, pc)
	return NewMockProviderFor(pc.Upstream, MockResponse{Text: "hello from " + pc.Model}), nil
}

func testRegistryConfig() Config {
	cfg := DefaultConfig()
	cfg.Retry = retryConfig()
	return cfg
}

func TestNewRegistry_NoCredentialsFailsFast(t *testing.T) {
	f := &countingFactory{}
	_, err := NewRegistry(context.Background(), testRegistryConfig(), WithFactory(f.build))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoProviders)
	assert.Empty(t, f.built, "no provider may be built without credentials")
}

func TestNewRegistry_RegistersConfiguredKindsOnly(t *testing.T) {
	cfg := testRegistryConfig()
	cfg.Gemini.APIKey = "g-key"

	f := &countingFactory{}
	r, err := NewRegistry(context.Background(), cfg, WithFactory(f.build))
	require.NoError(t, err)

	var models []string
	for _, pc := range r.Models() {
		models = append(models, pc.Model)
		assert.Equal(t, KindGemini, pc.Kind)
		assert.Equal(t, "g-key", pc.APIKey)
	}
	assert.Equal(t, []string{"gemini-2.0-flash", "gemini-2.5-flash"}, models)
	assert.Len(t, f.built, 2)

	unavailable := r.Unavailable()
	assert.Equal(t, KindCompatible, unavailable["gpt-4"])
	assert.Equal(t, KindMock, unavailable["mock"])
}

func TestRegistry_ResolveUnknownModel(t *testing.T) {
	cfg := testRegistryConfig()
	cfg.EnableMock = true

	r, err := NewRegistry(context.Background(), cfg, WithFactory((&countingFactory{}).build))
	require.NoError(t, err)

	_, err = r.Resolve("gpt-7-ultra")
	var unknown *ErrUnknownModel
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "gpt-7-ultra", unknown.Model)
	assert.Empty(t, unknown.Reason)

	_, err = r.Provider("gpt-7-ultra")
	require.ErrorAs(t, err, &unknown)
}

func TestRegistry_ResolveModelWithoutCredentials(t *testing.T) {
	cfg := testRegistryConfig()
	cfg.EnableMock = true

	r, err := NewRegistry(context.Background(), cfg, WithFactory((&countingFactory{}).build))
	require.NoError(t, err)

	_, err = r.Resolve("claude-haiku")
	var unknown *ErrUnknownModel
	require.ErrorAs(t, err, &unknown)
	assert.Contains(t, unknown.Reason, "anthropic")
	assert.True(t, strings.Contains(err.Error(), "claude-haiku"))
}

func TestRegistry_ProviderIsDecorated(t *testing.T) {
	cfg := testRegistryConfig()
	cfg.Compatible.BaseURL = "http://gateway.local"

	var mock *MockProvider
	factory := func(_ context.Context, pc ProviderConfig) (Provider, error) {
		if pc.Model == "gpt-4" {
			mock = NewMockProviderFor(pc.Upstream,
				MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("502")}},
				MockResponse{Text: "recovered"},
			)
			return mock, nil
		}
		return NewMockProviderFor(pc.Upstream), nil
	}

	r, err := NewRegistry(context.Background(), cfg, WithFactory(factory))
	require.NoError(t, err)

	p, err := r.Provider("gpt-4")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", p.ModelID())

	resp, err := p.Generate(context.Background(), UserRequest("", "x"))
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Text)
	assert.Equal(t, 2, mock.CallCount(), "transient failure should be retried")
}

func TestRegistry_UpstreamOverride(t *testing.T) {
	cfg := testRegistryConfig()
	cfg.OpenAI.APIKey = "sk-test"
	cfg.Models = []ModelEntry{{ID: "fast", Kind: KindOpenAI, Upstream: "gpt-4o-mini"}}

	f := &countingFactory{}
	r, err := NewRegistry(context.Background(), cfg, WithFactory(f.build))
	require.NoError(t, err)

	pc, err := r.Resolve("fast")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", pc.Upstream)
	assert.Equal(t, KindOpenAI, pc.Kind)
}

func TestRegistry_CatalogWithoutServableModel(t *testing.T) {
	cfg := testRegistryConfig()
	cfg.OpenAI.APIKey = "sk-test"
	cfg.Models = []ModelEntry{{ID: "gemini-2.5-flash", Kind: KindGemini}}

	_, err := NewRegistry(context.Background(), cfg, WithFactory((&countingFactory{}).build))
	assert.ErrorIs(t, err, ErrNoProviders)
}

func TestRegistry_FactoryErrorAborts(t *testing.T) {
	cfg := testRegistryConfig()
	cfg.EnableMock = true

	boom := errors.New("boom")
	_, err := NewRegistry(context.Background(), cfg, WithFactory(func(context.Context, ProviderConfig) (Provider, error) {
		return nil, boom
	}))
	assert.ErrorIs(t, err, boom)
}

func TestNewBaseProvider_BuildsEveryKind(t *testing.T) {
	tests := []struct {
		pc   ProviderConfig
		want string
	}{
		{ProviderConfig{Model: "gpt-4o", Kind: KindOpenAI, Upstream: "gpt-4o", APIKey: "k"}, "*llm.OpenAIProvider"},
		{ProviderConfig{Model: "gpt-4", Kind: KindCompatible, Upstream: "gpt-4", BaseURL: "http://gw"}, "*llm.CompatibleProvider"},
		{ProviderConfig{Model: "claude-haiku", Kind: KindAnthropic, Upstream: "claude-haiku", APIKey: "k"}, "*llm.AnthropicProvider"},
		{ProviderConfig{Model: "gemini-2.5-flash", Kind: KindGemini, Upstream: "gemini-2.5-flash", APIKey: "k"}, "*llm.GeminiProvider"},
		{ProviderConfig{Model: "mock", Kind: KindMock, Upstream: "mock"}, "*llm.EchoProvider"},
	}
	for _, tt := range tests {
		p, err := NewBaseProvider(context.Background(), tt.pc)
		require.NoError(t, err, tt.pc.Model)
		assert.Equal(t, tt.want, typeName(p), tt.pc.Model)
	}

	_, err := NewBaseProvider(context.Background(), ProviderConfig{Kind: "smoke-signal"})
	assert.Error(t, err)
}

func typeName(v any) string {
	switch v.(type) {
	case *OpenAIProvider:
		return "*llm.OpenAIProvider"
	case *CompatibleProvider:
		return "*llm.CompatibleProvider"
	case *AnthropicProvider:
		return "*llm.AnthropicProvider"
	case *GeminiProvider:
		return "*llm.GeminiProvider"
	case *EchoProvider:
		return "*llm.EchoProvider"
	}
	return "unknown"
}
