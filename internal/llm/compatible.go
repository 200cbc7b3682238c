package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// compatiblePath is where OpenAI-compatible gateways (Open WebUI and
// friends) mount their chat-completions route.
const compatiblePath = "/api/"

// CompatibleProvider talks to a self-hosted or gateway endpoint that
// speaks the OpenAI chat-completions schema at {base}/api/chat/completions.
// Structured output is not requested natively because gateway support
// varies; the prompt carries the schema instead.
type CompatibleProvider struct {
	client openai.Client
	model  string
}

// NewCompatibleProvider creates a gateway provider for one model.
func NewCompatibleProvider(cfg CompatibleConfig, model string) (*CompatibleProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("compatible gateway base URL is required")
	}

	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + compatiblePath),
		// Retries are owned by WithRetry.
		option.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	return &CompatibleProvider{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (p *CompatibleProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: buildCompatibleMessages(req),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, mapCompatibleError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ErrMalformedResponse{
			Err: fmt.Errorf("no choices in gateway response"),
		}
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return nil, &ErrMalformedResponse{
			Err: fmt.Errorf("empty message content in gateway response"),
		}
	}

	stop := "end"
	if resp.Choices[0].FinishReason == "length" {
		stop = "max_tokens"
	}

	model := resp.Model
	if model == "" {
		model = p.model
	}

	return &Response{
		Text: text,
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
		Model:      model,
		StopReason: stop,
	}, nil
}

func (p *CompatibleProvider) ModelID() string {
	return p.model
}

func buildCompatibleMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		if m.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(m.Content))
	}
	return messages
}

func mapCompatibleError(err error) error {
	if ctxErr := contextError(err); ctxErr != nil {
		return ctxErr
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Response != nil {
			return classifyStatus(apiErr.StatusCode, parseRetryAfter(apiErr.Response.Header), err)
		}
		return classifyStatus(apiErr.StatusCode, 0, err)
	}
	return &ErrProviderUnavailable{Err: err}
}
