package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// AgentClient is the single port for the upstream LLM call. Every transport
// (SDK or direct REST) plugs in here, so retry and deadline handling stay
// identical regardless of which one is configured.
type AgentClient interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Upstream failure kinds. The first three are transient and retried;
// everything else propagates immediately.
var (
	ErrRateLimited        = errors.New("upstream rate limited")
	ErrServiceUnavailable = errors.New("upstream service unavailable")
	ErrAPIFailure         = errors.New("upstream api failure")
	ErrUpstreamRejected   = errors.New("upstream rejected request")
)

// ErrMalformedResponse marks agent output that failed schema validation.
// Never retried: a parse failure is a defect, not a transient condition.
var ErrMalformedResponse = errors.New("malformed agent response")

// IsRetryable reports whether an upstream failure is worth another attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrAPIFailure)
}

// classifyUpstreamStatus maps an upstream HTTP status to a failure kind.
func classifyUpstreamStatus(code int, detail string) error {
	switch {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d: %s", ErrRateLimited, code, detail)
	case code == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, code, detail)
	case code >= 500:
		return fmt.Errorf("%w: status %d: %s", ErrAPIFailure, code, detail)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrUpstreamRejected, code, detail)
	}
}
