package wizard

import "github.com/goliatone/go-memora/pkg/validation"

// Validator inspects the form record and reports whether a step is complete.
// Validators must be pure.
type Validator[T any] func(form *T) validation.Result

// Step is one page of a flow.
type Step[T any] struct {
	Number      int
	Title       string
	Description string
	Validate    Validator[T]
}

// StepState is the display state of a step at a point in time.
type StepState struct {
	Number      int               `json:"number"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Current     bool              `json:"current"`
	Visited     bool              `json:"visited"`
	Result      validation.Result `json:"result"`
}

// FinalStep builds a review step that recomputes every prior gate before its
// own check. own may be nil for review-only steps.
func FinalStep[T any](number int, title, description string, prior []Step[T], own Validator[T]) Step[T] {
	gates := make([]Validator[T], 0, len(prior)+1)
	for _, step := range prior {
		if step.Validate != nil {
			gates = append(gates, step.Validate)
		}
	}
	if own != nil {
		gates = append(gates, own)
	}

	return Step[T]{
		Number:      number,
		Title:       title,
		Description: description,
		Validate: func(form *T) validation.Result {
			for _, gate := range gates {
				if result := gate(form); !result.Valid {
					return result
				}
			}
			return validation.OK()
		},
	}
}

func checkSteps[T any](steps []Step[T]) error {
	if len(steps) == 0 {
		return ErrInvalidSteps
	}
	for idx, step := range steps {
		if step.Number != idx+1 {
			return &stepTableError{index: idx, reason: "numbered " + itoa(step.Number) + ", want " + itoa(idx+1)}
		}
		if step.Validate == nil {
			return &stepTableError{index: idx, reason: "missing validator"}
		}
	}
	return nil
}

type stepTableError struct {
	index  int
	reason string
}

func (e *stepTableError) Error() string {
	return "wizard: invalid steps: entry " + itoa(e.index) + " " + e.reason
}

func (e *stepTableError) Unwrap() error { return ErrInvalidSteps }
