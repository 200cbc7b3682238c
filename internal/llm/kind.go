package llm

import (
	"fmt"
	"strings"
)

// Kind is the closed set of provider wire formats.
type Kind string

const (
	// KindOpenAI is the OpenAI chat-completions API.
	KindOpenAI Kind = "openai"
	// KindGemini is the Gemini generateContent API.
	KindGemini Kind = "gemini"
	// KindCompatible is a self-hosted or gateway endpoint speaking the
	// OpenAI chat-completions schema under {base}/api.
	KindCompatible Kind = "compatible"
	// KindAnthropic is the Anthropic messages API.
	KindAnthropic Kind = "anthropic"
	// KindMock echoes the prompt back without network I/O.
	KindMock Kind = "mock"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindOpenAI, KindGemini, KindCompatible, KindAnthropic, KindMock}

// ParseKind converts a configuration string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown provider kind %q", s)
}

func (k Kind) String() string { return string(k) }
