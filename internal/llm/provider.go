package llm

import (
	"context"
)

// Provider is the core abstraction for LLM interaction.
// Every provider kind implements the same contract; the request shape and
// the response envelope differences stay inside the implementation.
type Provider interface {
	// Generate sends a prompt to the LLM and returns the reply normalized
	// to plain text. When the request carries a Schema, providers that
	// support native structured output use it; the text is still returned
	// unparsed and callers extract the record themselves.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history. Exercise generation and
	// evaluation are single-turn, so this holds one user message.
	Messages []Message

	// Schema is the JSON Schema the response should conform to.
	// Optional; providers without native structured output ignore it.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Default: 0.0 (deterministic) when not set.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema (used as schema name for OpenAI and as
	// the cache key for compiled validators). Kebab-case, e.g. "uml-exercise".
	Name string

	// Description is a human-readable description of what this schema
	// represents. Sent to the LLM to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Text is the message text extracted from the provider envelope.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserRequest builds the single-turn request shape used by the generator
// and the evaluator.
func UserRequest(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}
