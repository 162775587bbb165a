package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-memora/pkg/gateway"
	"github.com/goliatone/go-memora/pkg/validation"
)

type testForm struct {
	Title    string
	Tags     []string
	Note     string
	released int
}

func testSteps() []Step[testForm] {
	prior := []Step[testForm]{
		{Number: 1, Title: "Details", Validate: func(f *testForm) validation.Result {
			return validation.RequireText(f.Title, "Please give your album a title")
		}},
		{Number: 2, Title: "Tags", Validate: func(f *testForm) validation.Result {
			return validation.SelectionCount(len(f.Tags), validation.Bounds{Min: 1, Max: 3}, "style")
		}},
		{Number: 3, Title: "Note", Validate: func(f *testForm) validation.Result {
			return validation.OK()
		}},
	}
	return append(prior, FinalStep(4, "Review", "", prior, nil))
}

func testDefinition() Definition[testForm] {
	return Definition[testForm]{
		Name:  "test",
		Steps: testSteps(),
		Assemble: func(f *testForm) gateway.Submission {
			return gateway.Submission{
				Fields:  map[string]string{"title": f.Title, "note": f.Note},
				Options: map[string][]string{"tags": append([]string(nil), f.Tags...)},
			}
		},
		Teardown: func(f *testForm) { f.released++ },
	}
}

type countingRecorder struct {
	mu          sync.Mutex
	transitions int
	blocked     int
	submitted   []bool
}

func (r *countingRecorder) Transition(string, int, int) {
	r.mu.Lock()
	r.transitions++
	r.mu.Unlock()
}

func (r *countingRecorder) Blocked(string, int) {
	r.mu.Lock()
	r.blocked++
	r.mu.Unlock()
}

func (r *countingRecorder) Submitted(_ string, success bool, _ time.Duration) {
	r.mu.Lock()
	r.submitted = append(r.submitted, success)
	r.mu.Unlock()
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestFlow(t *testing.T, form *testForm, options ...Option) *Flow[testForm] {
	t.Helper()
	flow, err := New(testDefinition(), form, options...)
	if err != nil {
		t.Fatalf("new flow: %v", err)
	}
	return flow
}

func walkToReview(t *testing.T, flow *Flow[testForm]) {
	t.Helper()
	for flow.Current() < flow.Total() {
		result, err := flow.Advance()
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
		if !result.Valid {
			t.Fatalf("advance blocked on step %d: %s", flow.Current(), result.Error)
		}
	}
}

func TestNew_RejectsMalformedSteps(t *testing.T) {
	def := testDefinition()
	def.Steps[1].Number = 5
	if _, err := New(def, &testForm{}); !errors.Is(err, ErrInvalidSteps) {
		t.Fatalf("expected ErrInvalidSteps, got %v", err)
	}

	def = testDefinition()
	def.Steps[0].Validate = nil
	if _, err := New(def, &testForm{}); !errors.Is(err, ErrInvalidSteps) {
		t.Fatalf("expected ErrInvalidSteps for missing validator, got %v", err)
	}

	if _, err := New(testDefinition(), nil); err == nil {
		t.Fatalf("expected error for nil form")
	}
}

func TestFlow_AdvanceBlockedLeavesStep(t *testing.T) {
	recorder := &countingRecorder{}
	flow := newTestFlow(t, &testForm{}, WithRecorder(recorder))

	for i := 0; i < 3; i++ {
		result, err := flow.Advance()
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
		want := validation.Fail("Please give your album a title")
		if diff := cmp.Diff(want, result); diff != "" {
			t.Fatalf("result mismatch (-want +got):\n%s", diff)
		}
		if flow.Current() != 1 {
			t.Fatalf("expected step 1, got %d", flow.Current())
		}
	}
	if recorder.blocked != 3 || recorder.transitions != 0 {
		t.Fatalf("unexpected recorder counts: %+v", recorder)
	}
}

func TestFlow_ValidateIsPure(t *testing.T) {
	form := &testForm{Title: "x", Tags: []string{"a", "b", "c", "d"}}
	flow := newTestFlow(t, form)

	first, err := flow.Validate(2)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	second, _ := flow.Validate(2)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("validate not idempotent (-first +second):\n%s", diff)
	}
	if first.Error != "Please select at most 3 styles" {
		t.Fatalf("unexpected message %q", first.Error)
	}
	if len(form.Tags) != 4 || flow.Current() != 1 {
		t.Fatalf("validate must not touch the form or the step")
	}
	if _, err := flow.Validate(9); !errors.Is(err, ErrStepOutOfRange) {
		t.Fatalf("expected ErrStepOutOfRange, got %v", err)
	}
}

func TestFlow_JumpToOnlyVisited(t *testing.T) {
	flow := newTestFlow(t, &testForm{Title: "x", Tags: []string{"a"}})
	if _, err := flow.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if err := flow.JumpTo(flow.Current() + 1); !errors.Is(err, ErrStepNotVisited) {
		t.Fatalf("expected ErrStepNotVisited, got %v", err)
	}
	if err := flow.JumpTo(1); err != nil {
		t.Fatalf("jump back: %v", err)
	}
	if err := flow.Retreat(); err != nil || flow.Current() != 1 {
		t.Fatalf("retreat at 1 must be a no-op, got step %d err %v", flow.Current(), err)
	}

	states := flow.Steps()
	if !states[0].Current || !states[1].Visited || states[2].Visited {
		t.Fatalf("unexpected step states: %+v", states)
	}
}

func TestFlow_ReviewRecomputesPriorGates(t *testing.T) {
	form := &testForm{Title: "Sarah's Graduation", Tags: []string{"graduation_warm_01"}}
	flow := newTestFlow(t, form)
	walkToReview(t, flow)

	if result := flow.ValidateCurrent(); !result.Valid {
		t.Fatalf("expected review to be valid, got %+v", result)
	}

	if err := flow.JumpTo(1); err != nil {
		t.Fatalf("jump: %v", err)
	}
	if err := flow.Edit(func(f *testForm) { f.Title = "   " }); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if result, _ := flow.Advance(); result.Valid {
		t.Fatalf("blank title must block step 1")
	}

	if err := flow.Edit(func(f *testForm) { f.Title = "Renamed" }); err != nil {
		t.Fatalf("edit: %v", err)
	}
	walkToReview(t, flow)
	if result := flow.ValidateCurrent(); !result.Valid {
		t.Fatalf("review must reflect the edited title, got %+v", result)
	}

	if err := flow.Edit(func(f *testForm) { f.Tags = nil }); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if result := flow.ValidateCurrent(); result.Error != "Please select at least one style" {
		t.Fatalf("review must catch cleared selection, got %+v", result)
	}
}

func TestFlow_SubmitOnlyOnFinalStep(t *testing.T) {
	gw := gateway.Func(func(context.Context, gateway.Submission) (gateway.Outcome, error) {
		return gateway.Succeeded("id"), nil
	})
	flow := newTestFlow(t, &testForm{Title: "x"}, WithGateway(gw))
	if _, err := flow.Submit(context.Background()); !errors.Is(err, ErrNotFinalStep) {
		t.Fatalf("expected ErrNotFinalStep, got %v", err)
	}

	noGateway := newTestFlow(t, &testForm{})
	if _, err := noGateway.Submit(context.Background()); !errors.Is(err, ErrNoGateway) {
		t.Fatalf("expected ErrNoGateway, got %v", err)
	}
}

func TestFlow_SubmitRevalidates(t *testing.T) {
	calls := 0
	gw := gateway.Func(func(context.Context, gateway.Submission) (gateway.Outcome, error) {
		calls++
		return gateway.Succeeded("id"), nil
	})
	flow := newTestFlow(t, &testForm{Title: "x", Tags: []string{"a"}}, WithGateway(gw))
	walkToReview(t, flow)
	_ = flow.Edit(func(f *testForm) { f.Title = "" })

	_, err := flow.Submit(context.Background())
	var stepErr *StepError
	if !errors.As(err, &stepErr) || !errors.Is(err, ErrStepInvalid) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if stepErr.Message != "Please give your album a title" || stepErr.Step != 4 {
		t.Fatalf("unexpected step error: %+v", stepErr)
	}
	if calls != 0 {
		t.Fatalf("gateway must not be called for an invalid form")
	}
}

func TestFlow_SubmitFailureKeepsDataAndAllowsRetry(t *testing.T) {
	var mu sync.Mutex
	fail := true
	var seen []gateway.Submission
	gw := gateway.Func(func(_ context.Context, s gateway.Submission) (gateway.Outcome, error) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
		if fail {
			return gateway.Failed("Failed to create album"), nil
		}
		return gateway.Succeeded("album_1"), nil
	})

	form := &testForm{Title: "Sarah's Graduation", Tags: []string{"graduation_warm_01"}, Note: "n"}
	recorder := &countingRecorder{}
	flow := newTestFlow(t, form, WithGateway(gw), WithRecorder(recorder), WithSession(staticToken("tok")))
	walkToReview(t, flow)

	outcome, err := flow.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Success || outcome.Error != "Failed to create album" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if flow.Current() != 4 || flow.Completed() || flow.SubmitError() != "Failed to create album" {
		t.Fatalf("flow must stay on the final step with the error visible")
	}
	want := testForm{Title: "Sarah's Graduation", Tags: []string{"graduation_warm_01"}, Note: "n"}
	if diff := cmp.Diff(want, *form, cmp.AllowUnexported(testForm{})); diff != "" {
		t.Fatalf("form changed after failure (-want +got):\n%s", diff)
	}

	mu.Lock()
	fail = false
	mu.Unlock()

	outcome, err = flow.Submit(context.Background())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if diff := cmp.Diff(gateway.Succeeded("album_1"), outcome); diff != "" {
		t.Fatalf("outcome mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(seen[0], seen[1]); diff != "" {
		t.Fatalf("retry must resubmit the same data (-first +second):\n%s", diff)
	}
	if seen[0].Flow != "test" || seen[0].Token != "tok" {
		t.Fatalf("submission missing flow name or token: %+v", seen[0])
	}
	if !flow.Completed() || flow.SubmitError() != "" {
		t.Fatalf("flow must be completed without an error")
	}
	if got, ok := flow.Outcome(); !ok || got.ID != "album_1" {
		t.Fatalf("unexpected stored outcome %+v", got)
	}
	if form.released != 1 {
		t.Fatalf("teardown must run once on completion, ran %d", form.released)
	}
	select {
	case <-flow.Done():
	default:
		t.Fatalf("done channel must be closed after completion")
	}
	if _, err := flow.Advance(); !errors.Is(err, ErrCompleted) {
		t.Fatalf("expected ErrCompleted, got %v", err)
	}
	if diff := cmp.Diff([]bool{false, true}, recorder.submitted); diff != "" {
		t.Fatalf("recorded outcomes mismatch (-want +got):\n%s", diff)
	}
}

func TestFlow_EditClearsSubmitError(t *testing.T) {
	gw := gateway.Func(func(context.Context, gateway.Submission) (gateway.Outcome, error) {
		return gateway.Failed("Failed to create album"), nil
	})
	flow := newTestFlow(t, &testForm{Title: "x", Tags: []string{"a"}}, WithGateway(gw))
	walkToReview(t, flow)
	_, _ = flow.Submit(context.Background())
	if flow.SubmitError() == "" {
		t.Fatalf("expected submit error")
	}
	_ = flow.Edit(func(f *testForm) { f.Note = "more" })
	if flow.SubmitError() != "" {
		t.Fatalf("edit must clear the submit error")
	}
}

func TestFlow_TransportErrorBecomesGenericFailure(t *testing.T) {
	gw := gateway.Func(func(context.Context, gateway.Submission) (gateway.Outcome, error) {
		return gateway.Outcome{}, errors.New("connection refused")
	})
	flow := newTestFlow(t, &testForm{Title: "x", Tags: []string{"a"}}, WithGateway(gw))
	walkToReview(t, flow)

	outcome, err := flow.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Error != gateway.MessageUnexpected || flow.SubmitError() != gateway.MessageUnexpected {
		t.Fatalf("expected generic failure, got %+v", outcome)
	}
}

func TestFlow_SubmitTimeout(t *testing.T) {
	gw := gateway.Func(func(ctx context.Context, _ gateway.Submission) (gateway.Outcome, error) {
		<-ctx.Done()
		return gateway.Outcome{}, ctx.Err()
	})
	flow := newTestFlow(t, &testForm{Title: "x", Tags: []string{"a"}}, WithGateway(gw), WithSubmitTimeout(20*time.Millisecond))
	walkToReview(t, flow)

	outcome, err := flow.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Success || flow.Pending() || flow.Current() != 4 {
		t.Fatalf("timed out submission must leave the flow on the final step, got %+v", outcome)
	}
}

func TestFlow_FrozenWhilePending(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	gw := gateway.Func(func(context.Context, gateway.Submission) (gateway.Outcome, error) {
		close(entered)
		<-release
		return gateway.Succeeded("album_1"), nil
	})
	form := &testForm{Title: "x", Tags: []string{"a"}}
	flow := newTestFlow(t, form, WithGateway(gw))
	walkToReview(t, flow)

	result := make(chan error, 1)
	go func() {
		_, err := flow.Submit(context.Background())
		result <- err
	}()
	<-entered

	if !flow.Pending() {
		t.Fatalf("expected pending submission")
	}
	if _, err := flow.Submit(context.Background()); !errors.Is(err, ErrSubmissionPending) {
		t.Fatalf("re-entrant submit: expected ErrSubmissionPending, got %v", err)
	}
	if _, err := flow.Advance(); !errors.Is(err, ErrSubmissionPending) {
		t.Fatalf("advance: expected ErrSubmissionPending, got %v", err)
	}
	if err := flow.Retreat(); !errors.Is(err, ErrSubmissionPending) {
		t.Fatalf("retreat: expected ErrSubmissionPending, got %v", err)
	}
	if err := flow.JumpTo(1); !errors.Is(err, ErrSubmissionPending) {
		t.Fatalf("jump: expected ErrSubmissionPending, got %v", err)
	}
	if err := flow.Edit(func(f *testForm) { f.Title = "changed" }); !errors.Is(err, ErrSubmissionPending) {
		t.Fatalf("edit: expected ErrSubmissionPending, got %v", err)
	}

	close(release)
	if err := <-result; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !flow.Completed() {
		t.Fatalf("expected completion")
	}
	flow.View(func(f *testForm) {
		if f.Title != "x" {
			t.Fatalf("frozen edit leaked into the form: %q", f.Title)
		}
	})
}

func TestFlow_Abandon(t *testing.T) {
	form := &testForm{Title: "x"}
	flow := newTestFlow(t, form)
	flow.Abandon()
	flow.Abandon()

	if form.released != 1 {
		t.Fatalf("teardown must run exactly once, ran %d", form.released)
	}
	if !flow.Abandoned() {
		t.Fatalf("expected abandoned flow")
	}
	if err := flow.Edit(func(*testForm) {}); !errors.Is(err, ErrAbandoned) {
		t.Fatalf("expected ErrAbandoned, got %v", err)
	}
	select {
	case <-flow.Done():
	case <-time.After(time.Second):
		t.Fatalf("done channel not closed")
	}
}

func TestFlow_AbandonWhilePendingDropsOutcome(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	gw := gateway.Func(func(context.Context, gateway.Submission) (gateway.Outcome, error) {
		close(entered)
		<-release
		return gateway.Succeeded("album_late"), nil
	})
	form := &testForm{Title: "x", Tags: []string{"a"}}
	flow := newTestFlow(t, form, WithGateway(gw))
	walkToReview(t, flow)

	type submitResult struct {
		outcome gateway.Outcome
		err     error
	}
	result := make(chan submitResult, 1)
	go func() {
		outcome, err := flow.Submit(context.Background())
		result <- submitResult{outcome: outcome, err: err}
	}()
	<-entered

	flow.Abandon()
	if form.released != 1 {
		t.Fatalf("abandon must release resources immediately, released %d", form.released)
	}
	close(release)

	got := <-result
	if !errors.Is(got.err, ErrAbandoned) {
		t.Fatalf("expected ErrAbandoned, got %v", got.err)
	}
	if diff := cmp.Diff(gateway.Outcome{}, got.outcome); diff != "" {
		t.Fatalf("late outcome leaked (-want +got):\n%s", diff)
	}
	if flow.Completed() || flow.Pending() {
		t.Fatalf("abandoned flow must be neither completed nor pending")
	}
	if _, ok := flow.Outcome(); ok {
		t.Fatalf("late outcome must not be stored")
	}
	if form.released != 1 {
		t.Fatalf("teardown must run once, ran %d", form.released)
	}
}

func TestFinalStep_OwnCheckRunsLast(t *testing.T) {
	steps := testSteps()[:3]
	final := FinalStep(4, "Vision", "", steps, func(f *testForm) validation.Result {
		return validation.MinLength(f.Note, 10, "Please provide more detail")
	})

	form := &testForm{Title: "", Note: "short"}
	if got := final.Validate(form); got.Error != "Please give your album a title" {
		t.Fatalf("expected prior gate first, got %+v", got)
	}
	form.Title, form.Tags = "x", []string{"a"}
	if got := final.Validate(form); got.Error != "Please provide more detail" {
		t.Fatalf("expected own gate, got %+v", got)
	}
	form.Note = "a much longer vision"
	if got := final.Validate(form); !got.Valid {
		t.Fatalf("expected valid, got %+v", got)
	}
}
