package llm

import (
	"context"
	"strings"
)

// EchoProvider answers every request with the prompt it received, like
// the llm-mock service used for local pipeline runs. It never touches
// the network.
type EchoProvider struct {
	model string
}

// NewEchoProvider creates an echo provider reporting the given model.
func NewEchoProvider(model string) *EchoProvider {
	return &EchoProvider{model: model}
}

func (p *EchoProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var prompt strings.Builder
	for _, m := range req.Messages {
		if m.Role == RoleUser {
			prompt.WriteString(m.Content)
		}
	}

	text := "[MOCK LLM RESPONSE]\nPrompt received:\n" + prompt.String()
	words := len(strings.Fields(prompt.String()))
	return &Response{
		Text: text,
		Usage: Usage{
			InputTokens:  words,
			OutputTokens: words + 5,
			TotalTokens:  2*words + 5,
		},
		Model:      p.model,
		StopReason: "end",
	}, nil
}

func (p *EchoProvider) ModelID() string {
	return p.model
}
