package analysis

import "errors"

// Request-level failures: rejected before any external call.
var (
	ErrDocumentRequired = errors.New("document text is required")
	ErrUnknownSector    = errors.New("unknown sector")
)

// ErrUpstreamGeneration indicates the completion provider failed or timed
// out. Retryable from the caller's point of view.
var ErrUpstreamGeneration = errors.New("ai analysis failed")

// ErrInvalidAIOutput indicates the model replied but the guardrail could not
// parse its output. Kept distinct from ErrUpstreamGeneration so operators can
// tell "model unreachable" from "model replied with garbage".
var ErrInvalidAIOutput = errors.New("ai produced invalid output")
