package workflow

// StepKind discriminates the outcome variants of one execution attempt.
type StepKind int

const (
	// StepSuccess carries the output and artifacts of a completed run.
	StepSuccess StepKind = iota
	// StepFailure carries the error and whether a re-enqueue may help.
	StepFailure
	// StepWaitingInput indicates the run is blocked on the named agents.
	StepWaitingInput
)

// String returns a human-readable representation of the step kind.
func (k StepKind) String() string {
	switch k {
	case StepSuccess:
		return "success"
	case StepFailure:
		return "failure"
	case StepWaitingInput:
		return "waiting_input"
	default:
		return "unknown"
	}
}

// Step is the tagged result of one execution attempt. It is the only channel
// through which an executor reports its outcome; callers switch on Kind and
// apply task-status transitions from the tag, never from executor internals.
type Step struct {
	Kind StepKind

	// Output and Artifacts are set for StepSuccess.
	Output    string
	Artifacts map[string]string

	// Error and Retryable are set for StepFailure.
	Error     string
	Retryable bool

	// WaitingForAgents is set for StepWaitingInput.
	WaitingForAgents []string
}

// SuccessStep builds a success result.
func SuccessStep(output string, artifacts map[string]string) Step {
	return Step{Kind: StepSuccess, Output: output, Artifacts: artifacts}
}

// FailureStep builds a failure result.
func FailureStep(err error, retryable bool) Step {
	return Step{Kind: StepFailure, Error: err.Error(), Retryable: retryable}
}

// WaitingStep builds a waiting-for-input result.
func WaitingStep(agentIDs []string) Step {
	return Step{Kind: StepWaitingInput, WaitingForAgents: agentIDs}
}
