package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/venturelab/ideaforge/pkg/models"
)

// drainEvents collects all events from an orchestrator in the background.
// The returned func waits for the channel to close and hands back the
// collected events.
func drainEvents(o *Orchestrator) func() []Event {
	var events []Event
	done := make(chan struct{})
	go func() {
		for e := range o.Events() {
			events = append(events, e)
		}
		close(done)
	}()
	return func() []Event {
		<-done
		return events
	}
}

func succeed(out any) StepFunc {
	return func(context.Context, *models.PipelineStep, map[string]any) (any, error) {
		return out, nil
	}
}

func fail(err error) StepFunc {
	return func(context.Context, *models.PipelineStep, map[string]any) (any, error) {
		return nil, err
	}
}

func TestExecuteLinear(t *testing.T) {
	o := New()
	o.Register("first", succeed("one"))
	o.Register("second", func(_ context.Context, _ *models.PipelineStep, deps map[string]any) (any, error) {
		if deps["a"] != "one" {
			return nil, fmt.Errorf("dependency output not passed: %v", deps)
		}
		return "two", nil
	})

	run := NewExecution("strat-1", []*models.PipelineStep{
		{ID: "a", Phase: models.PhaseGeneration, Operation: "first"},
		{ID: "b", Phase: models.PhaseScoring, Operation: "second", DependsOn: []string{"a"}},
	})
	wait := drainEvents(o)

	if err := o.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	wait()

	if run.Status != models.RunStatusCompleted {
		t.Errorf("run status = %s, want completed", run.Status)
	}
	if run.Progress != 100 {
		t.Errorf("progress = %.0f, want 100", run.Progress)
	}
	if run.Results["b"] != "two" {
		t.Errorf("results[b] = %v, want two", run.Results["b"])
	}
	if run.Step("a").Output != "one" {
		t.Errorf("step a output = %v, want one", run.Step("a").Output)
	}
	if run.CompletedAt == nil {
		t.Error("CompletedAt not set")
	}
}

func TestExecuteFailureCascade(t *testing.T) {
	// a -> b, a -> c, {b,c} -> d: when a fails, everything downstream is
	// skipped and the run lands on failed with full progress.
	o := New()
	boom := errors.New("boom")
	o.Register("broken", fail(boom))
	o.Register("fine", succeed(nil))

	run := NewExecution("strat-1", []*models.PipelineStep{
		{ID: "a", Phase: models.PhaseGeneration, Operation: "broken"},
		{ID: "b", Phase: models.PhaseGeneration, Operation: "fine", DependsOn: []string{"a"}},
		{ID: "c", Phase: models.PhaseScoring, Operation: "fine", DependsOn: []string{"a"}},
		{ID: "d", Phase: models.PhaseAnalysis, Operation: "fine", DependsOn: []string{"b", "c"}},
	})
	wait := drainEvents(o)

	if err := o.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute() error = %v, step failures must not surface here", err)
	}
	events := wait()

	if run.Status != models.RunStatusFailed {
		t.Errorf("run status = %s, want failed", run.Status)
	}
	if run.Progress != 100 {
		t.Errorf("progress = %.0f, want 100 (all steps terminal)", run.Progress)
	}
	if got := run.Step("a").Status; got != models.StepStatusFailed {
		t.Errorf("step a status = %s, want failed", got)
	}
	if run.Step("a").Error == "" {
		t.Error("step a error not recorded")
	}
	for _, id := range []string{"b", "c", "d"} {
		if got := run.Step(id).Status; got != models.StepStatusSkipped {
			t.Errorf("step %s status = %s, want skipped", id, got)
		}
	}

	var failed, skipped int
	for _, e := range events {
		switch e.Type {
		case EventStepFailed:
			failed++
			if !errors.Is(e.Err, boom) {
				t.Errorf("step_failed event err = %v, want boom", e.Err)
			}
		case EventStepSkipped:
			skipped++
		}
	}
	if failed != 1 || skipped != 3 {
		t.Errorf("events: %d failed, %d skipped, want 1 and 3", failed, skipped)
	}
}

func TestExecuteIndependentBranchSurvives(t *testing.T) {
	o := New()
	o.Register("broken", fail(errors.New("boom")))
	o.Register("fine", succeed("ok"))

	run := NewExecution("strat-1", []*models.PipelineStep{
		{ID: "a", Phase: models.PhaseGeneration, Operation: "broken"},
		{ID: "b", Phase: models.PhaseGeneration, Operation: "fine", DependsOn: []string{"a"}},
		{ID: "c", Phase: models.PhaseEnrichment, Operation: "fine"},
	})
	wait := drainEvents(o)

	if err := o.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	wait()

	if got := run.Step("c").Status; got != models.StepStatusCompleted {
		t.Errorf("independent step c status = %s, want completed", got)
	}
	if run.Results["c"] != "ok" {
		t.Errorf("results[c] = %v, want ok", run.Results["c"])
	}
	if run.Status != models.RunStatusFailed {
		t.Errorf("run status = %s, want failed", run.Status)
	}
}

func TestExecuteBoundedConcurrency(t *testing.T) {
	const limit = 2

	var mu sync.Mutex
	inflight, peak := 0, 0

	o := New(WithMaxParallelSteps(limit))
	o.Register("work", func(context.Context, *models.PipelineStep, map[string]any) (any, error) {
		mu.Lock()
		inflight++
		if inflight > peak {
			peak = inflight
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inflight--
		mu.Unlock()
		return nil, nil
	})

	var steps []*models.PipelineStep
	for i := 0; i < 6; i++ {
		steps = append(steps, &models.PipelineStep{
			ID:        fmt.Sprintf("s%d", i),
			Phase:     models.PhaseGeneration,
			Operation: "work",
		})
	}
	run := NewExecution("strat-1", steps)
	wait := drainEvents(o)

	if err := o.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	wait()

	if peak > limit {
		t.Errorf("peak concurrent steps = %d, want <= %d", peak, limit)
	}
	if run.Status != models.RunStatusCompleted {
		t.Errorf("run status = %s, want completed", run.Status)
	}
}

func TestExecuteCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	release := make(chan struct{})

	o := New(WithMaxParallelSteps(1))
	o.Register("slow", func(context.Context, *models.PipelineStep, map[string]any) (any, error) {
		close(started)
		<-release
		return "partial", nil
	})
	o.Register("fast", succeed(nil))

	run := NewExecution("strat-1", []*models.PipelineStep{
		{ID: "a", Phase: models.PhaseGeneration, Operation: "slow"},
		{ID: "b", Phase: models.PhaseScoring, Operation: "fast", DependsOn: []string{"a"}},
	})
	wait := drainEvents(o)

	go func() {
		<-started
		cancel()
		close(release)
	}()

	if err := o.Execute(ctx, run); err != nil {
		t.Fatalf("Execute() error = %v, cancellation is a recorded outcome", err)
	}
	wait()

	if run.Status != models.RunStatusCancelled {
		t.Errorf("run status = %s, want cancelled", run.Status)
	}
	// The in-flight step drains to completion; the unlaunched dependent
	// stays pending.
	if got := run.Step("a").Status; got != models.StepStatusCompleted {
		t.Errorf("in-flight step a status = %s, want completed", got)
	}
	if got := run.Step("b").Status; got != models.StepStatusPending {
		t.Errorf("unlaunched step b status = %s, want pending", got)
	}
	if run.Results["a"] != "partial" {
		t.Errorf("results[a] = %v, in-flight output should be retained", run.Results["a"])
	}
}

func TestExecuteUnregisteredOperation(t *testing.T) {
	o := New()
	run := NewExecution("strat-1", []*models.PipelineStep{
		{ID: "a", Phase: models.PhaseGeneration, Operation: "nope"},
	})
	wait := drainEvents(o)

	err := o.Execute(context.Background(), run)
	wait()
	if err == nil {
		t.Fatal("Execute() with unregistered operation should fail")
	}
}

func TestExecuteCyclicGraph(t *testing.T) {
	o := New()
	o.Register("fine", succeed(nil))
	run := NewExecution("strat-1", []*models.PipelineStep{
		{ID: "a", Phase: models.PhaseGeneration, Operation: "fine", DependsOn: []string{"b"}},
		{ID: "b", Phase: models.PhaseGeneration, Operation: "fine", DependsOn: []string{"a"}},
	})
	wait := drainEvents(o)

	err := o.Execute(context.Background(), run)
	wait()
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("Execute() error = %v, want ErrCycleDetected", err)
	}
}

func TestExecuteDiamondDependencyOutputs(t *testing.T) {
	// d sees both b's and c's outputs, keyed by step ID.
	o := New()
	o.Register("root", succeed("root-out"))
	o.Register("left", succeed("left-out"))
	o.Register("right", succeed("right-out"))
	o.Register("join", func(_ context.Context, _ *models.PipelineStep, deps map[string]any) (any, error) {
		if deps["b"] != "left-out" || deps["c"] != "right-out" {
			return nil, fmt.Errorf("unexpected deps: %v", deps)
		}
		if _, ok := deps["a"]; ok {
			return nil, fmt.Errorf("transitive dependency a leaked into deps")
		}
		return "joined", nil
	})

	run := NewExecution("strat-1", []*models.PipelineStep{
		{ID: "a", Phase: models.PhaseGeneration, Operation: "root"},
		{ID: "b", Phase: models.PhaseGeneration, Operation: "left", DependsOn: []string{"a"}},
		{ID: "c", Phase: models.PhaseGeneration, Operation: "right", DependsOn: []string{"a"}},
		{ID: "d", Phase: models.PhaseAnalysis, Operation: "join", DependsOn: []string{"b", "c"}},
	})
	wait := drainEvents(o)

	if err := o.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	wait()

	if run.Status != models.RunStatusCompleted {
		t.Errorf("run status = %s, want completed", run.Status)
	}
	if run.Results["d"] != "joined" {
		t.Errorf("results[d] = %v, want joined", run.Results["d"])
	}
}

func TestExecuteEventOrder(t *testing.T) {
	o := New()
	o.Register("fine", succeed(nil))
	run := NewExecution("strat-1", []*models.PipelineStep{
		{ID: "a", Phase: models.PhaseGeneration, Operation: "fine"},
	})
	wait := drainEvents(o)

	if err := o.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	events := wait()

	if len(events) < 4 {
		t.Fatalf("got %d events, want at least run_started/step_started/step_completed/run_done", len(events))
	}
	if events[0].Type != EventRunStarted {
		t.Errorf("first event = %s, want run_started", events[0].Type)
	}
	last := events[len(events)-1]
	if last.Type != EventRunDone {
		t.Errorf("last event = %s, want run_done", last.Type)
	}
	if last.Message != string(models.RunStatusCompleted) {
		t.Errorf("run_done message = %q, want completed", last.Message)
	}
	if last.Progress != 100 {
		t.Errorf("run_done progress = %.0f, want 100", last.Progress)
	}
}
