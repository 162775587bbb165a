package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-memora/pkg/gateway"
	"github.com/goliatone/go-memora/pkg/validation"
)

// Definition describes one kind of flow: its steps, how its record becomes a
// submission and how the record's resources are released.
type Definition[T any] struct {
	Name     string
	Steps    []Step[T]
	Assemble func(form *T) gateway.Submission
	Teardown func(form *T)
}

// Flow owns one form record from creation until successful submission or
// abandonment. It is safe for concurrent use; while a submission is pending
// every mutating call returns ErrSubmissionPending.
type Flow[T any] struct {
	mu        sync.Mutex
	def       Definition[T]
	form      *T
	seq       *Sequencer
	visited   int
	opts      settings
	pending   bool
	submitErr string
	outcome   *gateway.Outcome
	completed bool
	abandoned bool
	done      chan struct{}
	closeOnce sync.Once
}

// New builds a flow positioned on step 1 over form.
func New[T any](def Definition[T], form *T, options ...Option) (*Flow[T], error) {
	if form == nil {
		return nil, fmt.Errorf("wizard: form record is required")
	}
	if err := checkSteps(def.Steps); err != nil {
		return nil, err
	}
	if def.Assemble == nil {
		return nil, fmt.Errorf("wizard: flow %q has no assembler", def.Name)
	}
	seq, err := NewSequencer(len(def.Steps))
	if err != nil {
		return nil, err
	}

	cfg := settings{
		logger:   slog.New(slog.DiscardHandler),
		timeout:  DefaultSubmitTimeout,
		recorder: nopRecorder{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	cfg.logger = cfg.logger.With("flow", def.Name, "flow_id", cfg.id)

	return &Flow[T]{
		def:     def,
		form:    form,
		seq:     seq,
		visited: 1,
		opts:    cfg,
		done:    make(chan struct{}),
	}, nil
}

// ID returns the flow identifier.
func (f *Flow[T]) ID() string { return f.opts.id }

// Name returns the flow kind.
func (f *Flow[T]) Name() string { return f.def.Name }

// Current returns the current step number.
func (f *Flow[T]) Current() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seq.Current()
}

// Total returns the number of steps.
func (f *Flow[T]) Total() int { return len(f.def.Steps) }

// Step returns the definition of step n.
func (f *Flow[T]) Step(n int) (Step[T], error) {
	if n < 1 || n > len(f.def.Steps) {
		return Step[T]{}, fmt.Errorf("%w: %d", ErrStepOutOfRange, n)
	}
	return f.def.Steps[n-1], nil
}

// Steps returns the display state of every step, validated against the
// current record.
func (f *Flow[T]) Steps() []StepState {
	f.mu.Lock()
	defer f.mu.Unlock()

	states := make([]StepState, 0, len(f.def.Steps))
	for _, step := range f.def.Steps {
		states = append(states, StepState{
			Number:      step.Number,
			Title:       step.Title,
			Description: step.Description,
			Current:     step.Number == f.seq.Current(),
			Visited:     step.Number <= f.visited,
			Result:      step.Validate(f.form),
		})
	}
	return states
}

// Validate runs step n's validator against the current record.
func (f *Flow[T]) Validate(n int) (validation.Result, error) {
	step, err := f.Step(n)
	if err != nil {
		return validation.Result{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return step.Validate(f.form), nil
}

// ValidateCurrent runs the current step's validator.
func (f *Flow[T]) ValidateCurrent() validation.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentResult()
}

// Advance moves to the next step when the current one is valid. The returned
// result carries the message to surface when it is not. On the last step the
// call validates but never moves.
func (f *Flow[T]) Advance() (validation.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.mutable(); err != nil {
		return validation.Result{}, err
	}

	from := f.seq.Current()
	result := f.currentResult()
	if !result.Valid {
		f.opts.recorder.Blocked(f.def.Name, from)
		f.opts.logger.Debug("advance blocked", "step", from, "reason", result.Error)
		return result, nil
	}
	if f.seq.Advance(result) {
		f.moved(from)
	}
	return result, nil
}

// Retreat moves back one step. It is never gated.
func (f *Flow[T]) Retreat() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.mutable(); err != nil {
		return err
	}
	from := f.seq.Current()
	if f.seq.Retreat() {
		f.moved(from)
	}
	return nil
}

// JumpTo moves to an already visited step at or before the current one.
func (f *Flow[T]) JumpTo(step int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.mutable(); err != nil {
		return err
	}
	from := f.seq.Current()
	if err := f.seq.JumpTo(step); err != nil {
		return err
	}
	if step != from {
		f.moved(from)
	}
	return nil
}

// Edit applies fn to the record. Edits never validate; they clear a previous
// submission error.
func (f *Flow[T]) Edit(fn func(form *T)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.mutable(); err != nil {
		return err
	}
	f.submitErr = ""
	if fn != nil {
		fn(f.form)
	}
	return nil
}

// View gives fn read access to the record.
func (f *Flow[T]) View(fn func(form *T)) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.form)
}

// Submit assembles the record and hands it to the gateway. It is only
// allowed on the final step, re-runs every gate first and rejects re-entry
// while a call is outstanding. Gateway failures keep the flow on the final
// step with the record intact; transport errors surface as the generic
// failure message. Success completes the flow and releases its resources.
// If the flow is abandoned while the call is outstanding the outcome is
// dropped and ErrAbandoned is returned.
func (f *Flow[T]) Submit(ctx context.Context) (gateway.Outcome, error) {
	f.mu.Lock()
	if err := f.mutable(); err != nil {
		f.mu.Unlock()
		return gateway.Outcome{}, err
	}
	if f.opts.gateway == nil {
		f.mu.Unlock()
		return gateway.Outcome{}, ErrNoGateway
	}
	if !f.seq.Last() {
		f.mu.Unlock()
		return gateway.Outcome{}, ErrNotFinalStep
	}
	if result := f.currentResult(); !result.Valid {
		step := f.seq.Current()
		f.mu.Unlock()
		f.opts.recorder.Blocked(f.def.Name, step)
		return gateway.Outcome{}, &StepError{Step: step, Message: result.Error}
	}

	submission := f.def.Assemble(f.form)
	if submission.Flow == "" {
		submission.Flow = f.def.Name
	}
	if f.opts.session != nil {
		submission.Token = f.opts.session.Token()
	}
	f.pending = true
	f.submitErr = ""
	f.mu.Unlock()

	callCtx := ctx
	if f.opts.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, f.opts.timeout)
		defer cancel()
	}

	started := time.Now()
	outcome, err := f.opts.gateway.Submit(callCtx, submission)
	elapsed := time.Since(started)
	if err != nil {
		f.opts.logger.Error("submission failed", "error", err)
		outcome = gateway.Failed(gateway.MessageUnexpected)
	} else if !outcome.Success {
		outcome = gateway.Failed(outcome.Error)
	}
	f.opts.recorder.Submitted(f.def.Name, outcome.Success, elapsed)

	f.mu.Lock()
	f.pending = false
	if f.abandoned {
		f.mu.Unlock()
		f.opts.logger.Info("submission dropped, flow abandoned", "success", outcome.Success, "elapsed", elapsed)
		return gateway.Outcome{}, ErrAbandoned
	}
	if !outcome.Success {
		f.submitErr = outcome.Error
		f.mu.Unlock()
		f.opts.logger.Info("submission rejected", "error", outcome.Error, "elapsed", elapsed)
		return outcome, nil
	}
	f.outcome = &outcome
	f.completed = true
	f.mu.Unlock()

	f.opts.logger.Info("submission accepted", "id", outcome.ID, "elapsed", elapsed)
	f.finish()
	return outcome, nil
}

// SubmitError returns the message of the last failed submission, cleared by
// the next edit or submit attempt.
func (f *Flow[T]) SubmitError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitErr
}

// Outcome returns the successful outcome once the flow has completed.
func (f *Flow[T]) Outcome() (gateway.Outcome, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outcome == nil {
		return gateway.Outcome{}, false
	}
	return *f.outcome, true
}

// Pending reports whether a submission is outstanding.
func (f *Flow[T]) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Completed reports whether a submission succeeded.
func (f *Flow[T]) Completed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// Abandoned reports whether Abandon was called.
func (f *Flow[T]) Abandoned() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.abandoned
}

// Abandon discards the flow and releases its resources. It is allowed while a
// submission is pending; the late outcome is then dropped. Calling it on a
// completed flow is a no-op.
func (f *Flow[T]) Abandon() {
	f.mu.Lock()
	if f.completed || f.abandoned {
		f.mu.Unlock()
		return
	}
	f.abandoned = true
	f.mu.Unlock()

	f.opts.logger.Info("flow abandoned")
	f.finish()
}

// Done is closed once the flow completes or is abandoned.
func (f *Flow[T]) Done() <-chan struct{} {
	return f.done
}

func (f *Flow[T]) finish() {
	f.closeOnce.Do(func() {
		if f.def.Teardown != nil {
			f.mu.Lock()
			f.def.Teardown(f.form)
			f.mu.Unlock()
		}
		close(f.done)
	})
}

func (f *Flow[T]) mutable() error {
	switch {
	case f.pending:
		return ErrSubmissionPending
	case f.completed:
		return ErrCompleted
	case f.abandoned:
		return ErrAbandoned
	}
	return nil
}

func (f *Flow[T]) currentResult() validation.Result {
	return f.def.Steps[f.seq.Current()-1].Validate(f.form)
}

func (f *Flow[T]) moved(from int) {
	to := f.seq.Current()
	if to > f.visited {
		f.visited = to
	}
	f.opts.recorder.Transition(f.def.Name, from, to)
	f.opts.logger.Debug("step changed", "from", from, "to", to)
}
