package workflow

import "errors"

// Sentinel errors for the workflow failure taxonomy. Wrapped errors stay
// errors.Is-comparable against these.
var (
	// ErrNoAgentAvailable indicates no online or assigned agent could be
	// selected.
	ErrNoAgentAvailable = errors.New("no agent available")
	// ErrOperationTimeout indicates a per-agent operation exceeded its
	// timeout.
	ErrOperationTimeout = errors.New("operation timed out")
	// ErrValidationFailure indicates a plan or predicate was rejected,
	// including validator errors.
	ErrValidationFailure = errors.New("validation failed")
	// ErrConsensusUnavailable indicates zero proposals survived or the
	// resolver failed.
	ErrConsensusUnavailable = errors.New("consensus unavailable")
	// ErrRetryExhausted indicates every retry attempt failed.
	ErrRetryExhausted = errors.New("retry attempts exhausted")
	// ErrInsufficientSuccesses indicates the parallel quorum was not met.
	ErrInsufficientSuccesses = errors.New("insufficient successful agents")
)
