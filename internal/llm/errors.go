package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrNoProviders is returned at startup when no provider kind has a usable
// credential. The process must not serve generation requests in that state.
var ErrNoProviders = errors.New("no LLM provider configured: set OPENAI_API_KEY, GEMINI_API_KEY, BISAI_BASE_URL/BISAI_API_KEY or ANTHROPIC_API_KEY")

// ErrUnknownModel indicates a model identifier that is not in the registry.
// Resolution happens before any network I/O.
type ErrUnknownModel struct {
	Model string
	// Reason is set when the model is in the catalog but its provider kind
	// has no credentials configured.
	Reason string
}

func (e *ErrUnknownModel) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported model %q: %s", e.Model, e.Reason)
	}
	return fmt.Sprintf("unsupported model %q", e.Model)
}

// ErrAuth indicates the provider rejected the credential (401/403).
type ErrAuth struct {
	StatusCode int
	Err        error
}

func (e *ErrAuth) Error() string {
	return fmt.Sprintf("provider rejected credentials (status %d): %v", e.StatusCode, e.Err)
}

func (e *ErrAuth) Unwrap() error { return e.Err }

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates a transient failure: the provider is
// down or unreachable, answered 5xx, or the per-call timeout expired.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMalformedResponse indicates a successful HTTP exchange whose envelope
// carries no extractable message text.
type ErrMalformedResponse struct {
	Err error
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("malformed LLM response: %v", e.Err)
}

func (e *ErrMalformedResponse) Unwrap() error { return e.Err }

// ErrRequestRejected indicates a 4xx answer that is neither an auth
// failure nor throttling, e.g. an invalid request body for the model.
type ErrRequestRejected struct {
	StatusCode int
	Err        error
}

func (e *ErrRequestRejected) Error() string {
	return fmt.Sprintf("provider rejected request (status %d): %v", e.StatusCode, e.Err)
}

func (e *ErrRequestRejected) Unwrap() error { return e.Err }

// classifyStatus maps an HTTP status from any provider SDK to the error
// taxonomy. Status 0 means the request never produced a response.
func classifyStatus(status int, retryAfter time.Duration, err error) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &ErrAuth{StatusCode: status, Err: err}
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: retryAfter, Err: err}
	case status == http.StatusRequestTimeout:
		return &ErrProviderUnavailable{Err: err}
	case status >= 400 && status < 500:
		return &ErrRequestRejected{StatusCode: status, Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// parseRetryAfter reads a Retry-After header in its delay-seconds form.
// The HTTP-date form is rare for LLM APIs and is ignored.
func parseRetryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// IsRetryable reports whether err belongs to the retryable part of the
// taxonomy (rate limit or transient).
func IsRetryable(err error) bool {
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return true
	}
	var unavail *ErrProviderUnavailable
	return errors.As(err, &unavail)
}
