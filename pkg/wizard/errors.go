package wizard

import "errors"

var (
	// ErrSubmissionPending is returned while a submission is outstanding; the
	// flow is frozen until the gateway answers.
	ErrSubmissionPending = errors.New("wizard: submission pending")
	// ErrStepNotVisited is returned when jumping to a step past the current one.
	ErrStepNotVisited = errors.New("wizard: step not visited")
	// ErrStepOutOfRange is returned for step numbers outside 1..N.
	ErrStepOutOfRange = errors.New("wizard: step out of range")
	// ErrNotFinalStep is returned when submitting before the last step.
	ErrNotFinalStep = errors.New("wizard: submit is only allowed on the final step")
	// ErrStepInvalid wraps validation failures surfaced as errors.
	ErrStepInvalid = errors.New("wizard: step is not valid")
	// ErrCompleted is returned for any mutation after a successful submission.
	ErrCompleted = errors.New("wizard: flow completed")
	// ErrAbandoned is returned for any mutation after Abandon.
	ErrAbandoned = errors.New("wizard: flow abandoned")
	// ErrNoGateway is returned when submitting a flow built without a gateway.
	ErrNoGateway = errors.New("wizard: no gateway configured")
	// ErrInvalidSteps is returned by New for malformed step tables.
	ErrInvalidSteps = errors.New("wizard: invalid steps")
)

// StepError reports a blocked step together with its user-facing message.
type StepError struct {
	Step    int
	Message string
}

func (e *StepError) Error() string {
	return "wizard: step " + itoa(e.Step) + ": " + e.Message
}

// Unwrap lets errors.Is match ErrStepInvalid.
func (e *StepError) Unwrap() error {
	return ErrStepInvalid
}
