/*
Package llm holds the completion-service support types that sit next to,
but outside, the node dispatch: the retryable-failure classification
(RateLimitError, IsRateLimit) and the cross-run ClientCache of completion
clients keyed by model configuration.
*/
package llm
