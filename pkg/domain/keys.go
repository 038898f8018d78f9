package domain

// Reserved state keys. These carry runtime signals through the state map so
// they show up in audit diffs (or, for the metering key, are extracted and
// cleared by the executor before the diff is computed).
const (
	// KeyLastError holds the message of the most recent recoverable tool
	// failure. Cleared by ClearErrorNode.
	KeyLastError = "last_error"

	// KeyRouterDecision records the route key returned by the most recent
	// router decision, so the choice is visible in the audit diff.
	KeyRouterDecision = "_router_decision"

	// KeyRunMetadata is the one-step metering channel. LLM nodes write token
	// usage here; the executor folds it into the run summary and clears it
	// immediately after capture, so it never leaks into the durable diff.
	KeyRunMetadata = "__last_run_metadata"

	// KeyFullState is the sentinel input key meaning "pass the entire state
	// to the tool" instead of individual fields.
	KeyFullState = "__state__"
)
