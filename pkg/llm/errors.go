package llm

import (
	"errors"
	"fmt"
	"strings"
)

// RateLimitError marks a completion failure as rate-limit-class, the only
// retryable failure mode of the completion contract. Everything else is
// fatal and must not be retried.
type RateLimitError struct {
	// Cause is the underlying transport error, if any.
	Cause error
}

func (e *RateLimitError) Error() string {
	if e.Cause == nil {
		return "rate limited"
	}
	return fmt.Sprintf("rate limited: %v", e.Cause)
}

func (e *RateLimitError) Unwrap() error { return e.Cause }

// IsRateLimit reports whether err is retryable. Typed *RateLimitError is
// the contract; the "429" substring check covers clients that surface raw
// provider errors without classifying them.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}
	return strings.Contains(err.Error(), "429")
}
