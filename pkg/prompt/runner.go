package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/goliatone/go-memora/pkg/gateway"
	"github.com/goliatone/go-memora/pkg/wizard"
)

// Page collects the data of one step, editing the record through flow.Edit.
type Page[T any] func(ctx context.Context, s Screen, flow *wizard.Flow[T]) error

// Review renders the record for the final step.
type Review[T any] func(form *T) (string, error)

// Navigation choices offered after each page.
const (
	ChoiceContinue = "Continue"
	ChoiceBack     = "Back"
	ChoiceJump     = "Edit an earlier step"
	ChoiceSubmit   = "Submit"
	ChoiceCancel   = "Cancel"
)

// RunnerOption configures a Runner.
type RunnerOption[T any] func(*Runner[T])

// WithReview sets the renderer shown before the submit choice.
func WithReview[T any](review Review[T]) RunnerOption[T] {
	return func(r *Runner[T]) {
		r.review = review
	}
}

// WithStyles overrides the progress and error styles.
func WithStyles[T any](styles Styles) RunnerOption[T] {
	return func(r *Runner[T]) {
		r.screen.Styles = styles
	}
}

// Runner walks a flow interactively: page, then continue/back/submit, until
// the flow completes or the user cancels.
type Runner[T any] struct {
	flow   *wizard.Flow[T]
	screen Screen
	pages  map[int]Page[T]
	review Review[T]
}

// NewRunner binds pages (keyed by step number) to flow.
func NewRunner[T any](flow *wizard.Flow[T], driver Driver, pages map[int]Page[T], options ...RunnerOption[T]) *Runner[T] {
	r := &Runner[T]{
		flow:   flow,
		screen: Screen{Driver: driver, Styles: DefaultStyles()},
		pages:  pages,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Run drives the flow to completion. Cancelling returns ErrAborted. Any
// return without a successful submission abandons the flow, releasing its
// previews.
func (r *Runner[T]) Run(ctx context.Context) (gateway.Outcome, error) {
	defer func() {
		if !r.flow.Completed() {
			r.flow.Abandon()
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return gateway.Outcome{}, err
		}

		step := r.flow.Current()
		if err := r.screen.Show(ctx, r.screen.Styles.Progress(r.flow.Steps())); err != nil {
			return gateway.Outcome{}, err
		}

		page, ok := r.pages[step]
		if !ok && step != r.flow.Total() {
			return gateway.Outcome{}, fmt.Errorf("%w %d", ErrNoPage, step)
		}
		if ok {
			if err := page(ctx, r.screen, r.flow); err != nil {
				return gateway.Outcome{}, err
			}
		}

		if step == r.flow.Total() {
			outcome, done, err := r.final(ctx)
			if err != nil || done {
				return outcome, err
			}
			continue
		}

		choice, err := r.choose(ctx, "Next?", ChoiceContinue, ChoiceBack, ChoiceJump, ChoiceCancel)
		if err != nil {
			return gateway.Outcome{}, err
		}
		switch choice {
		case ChoiceContinue:
			result, err := r.flow.Advance()
			if err != nil {
				return gateway.Outcome{}, err
			}
			if !result.Valid {
				if err := r.screen.Problem(ctx, result.Error); err != nil {
					return gateway.Outcome{}, err
				}
			}
		case ChoiceBack:
			if err := r.flow.Retreat(); err != nil {
				return gateway.Outcome{}, err
			}
		case ChoiceJump:
			if err := r.jump(ctx); err != nil {
				return gateway.Outcome{}, err
			}
		default:
			return gateway.Outcome{}, ErrAborted
		}
	}
}

func (r *Runner[T]) final(ctx context.Context) (gateway.Outcome, bool, error) {
	if r.review != nil {
		var (
			text string
			err  error
		)
		r.flow.View(func(form *T) { text, err = r.review(form) })
		if err != nil {
			return gateway.Outcome{}, true, err
		}
		if err := r.screen.Show(ctx, text); err != nil {
			return gateway.Outcome{}, true, err
		}
	}

	choice, err := r.choose(ctx, "Ready?", ChoiceSubmit, ChoiceBack, ChoiceJump, ChoiceCancel)
	if err != nil {
		return gateway.Outcome{}, true, err
	}
	switch choice {
	case ChoiceSubmit:
	case ChoiceBack:
		return gateway.Outcome{}, false, r.flow.Retreat()
	case ChoiceJump:
		return gateway.Outcome{}, false, r.jump(ctx)
	default:
		return gateway.Outcome{}, true, ErrAborted
	}

	if err := r.screen.Show(ctx, r.screen.Styles.Muted.Render("Submitting…")); err != nil {
		return gateway.Outcome{}, true, err
	}
	outcome, err := r.flow.Submit(ctx)
	var stepErr *wizard.StepError
	switch {
	case errors.As(err, &stepErr):
		return gateway.Outcome{}, false, r.screen.Problem(ctx, stepErr.Message)
	case err != nil:
		return gateway.Outcome{}, true, err
	case !outcome.Success:
		return gateway.Outcome{}, false, r.screen.Problem(ctx, outcome.Error)
	}
	return outcome, true, r.screen.Show(ctx, r.screen.Styles.Success.Render("Submitted ("+outcome.ID+")"))
}

func (r *Runner[T]) jump(ctx context.Context) error {
	var options []string
	var numbers []int
	for _, state := range r.flow.Steps() {
		if state.Number >= r.flow.Current() {
			break
		}
		options = append(options, strconv.Itoa(state.Number)+". "+state.Title)
		numbers = append(numbers, state.Number)
	}
	if len(options) == 0 {
		return nil
	}
	idx, err := r.screen.Choose(ctx, ChoicePrompt{Label: "Go to step", Options: options})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(numbers) {
		return nil
	}
	return r.flow.JumpTo(numbers[idx])
}

func (r *Runner[T]) choose(ctx context.Context, message string, options ...string) (string, error) {
	if r.flow.Current() == 1 {
		options = without(options, ChoiceBack, ChoiceJump)
	}
	idx, err := r.screen.Choose(ctx, ChoicePrompt{Label: message, Options: options})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(options) {
		return ChoiceCancel, nil
	}
	return options[idx], nil
}

func without(options []string, drop ...string) []string {
	out := make([]string, 0, len(options))
	for _, option := range options {
		skip := false
		for _, d := range drop {
			if option == d {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, option)
		}
	}
	return out
}

func itoa(n int) string { return strconv.Itoa(n) }
