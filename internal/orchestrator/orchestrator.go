package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/venturelab/ideaforge/pkg/models"
)

// StepFunc executes one pipeline step. It receives the outputs of the
// step's dependencies keyed by step ID. Returned output is captured on the
// step and in the run's accumulated results.
type StepFunc func(ctx context.Context, step *models.PipelineStep, deps map[string]any) (any, error)

// Orchestrator executes one workflow's step DAG. It is the only component
// that mutates PipelineStep and WorkflowExecution state, and it does so
// from a single goroutine, so no locking is needed around those records.
//
// An orchestrator runs a single execution: create one per run, the way a
// new run is required to retry a failed one.
type Orchestrator struct {
	ops         map[string]StepFunc
	maxParallel int
	events      chan Event
	dropped     atomic.Uint64
	logger      *DebugLogger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxParallelSteps bounds how many steps run concurrently. The default
// is 4.
func WithMaxParallelSteps(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxParallel = n
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *DebugLogger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEventBuffer sets the event channel capacity. Events are dropped, not
// blocked on, when the consumer falls behind.
func WithEventBuffer(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.events = make(chan Event, n)
		}
	}
}

// New creates an orchestrator with the given step operations registered.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		ops:         make(map[string]StepFunc),
		maxParallel: 4,
		events:      make(chan Event, 100),
		logger:      &DebugLogger{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register binds an operation name to its implementation. Every step in an
// executed workflow must reference a registered operation.
func (o *Orchestrator) Register(operation string, fn StepFunc) {
	o.ops[operation] = fn
}

// Events returns the event channel. It is closed when Execute returns.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// DroppedEventCount returns how many events were dropped because the
// consumer fell behind.
func (o *Orchestrator) DroppedEventCount() uint64 {
	return o.dropped.Load()
}

// NewExecution creates a pending workflow execution for the given steps.
func NewExecution(strategyID string, steps []*models.PipelineStep) *models.WorkflowExecution {
	for _, s := range steps {
		if s.Status == "" {
			s.Status = models.StepStatusPending
		}
	}
	return &models.WorkflowExecution{
		ID:         uuid.New().String()[:8],
		StrategyID: strategyID,
		Steps:      steps,
		Status:     models.RunStatusPending,
		Results:    make(map[string]any),
	}
}

// stepResult carries one finished step back to the run loop.
type stepResult struct {
	id     string
	output any
	err    error
}

// Execute runs the workflow to a terminal status. Only configuration-level
// problems (cycles, unknown dependencies, unregistered operations) are
// returned as errors; step failures are recorded on their steps and
// propagate as skips to dependents while unrelated branches keep running.
//
// On context cancellation no new steps are launched, in-flight steps are
// allowed to finish, and the run's terminal status is cancelled; Execute
// still returns nil because cancellation is a recorded outcome, not a
// failure of the orchestrator itself.
func (o *Orchestrator) Execute(ctx context.Context, run *models.WorkflowExecution) error {
	defer close(o.events)

	graph := NewDependencyGraph()
	if err := graph.Build(run.Steps); err != nil {
		return fmt.Errorf("build step graph: %w", err)
	}
	for _, step := range run.Steps {
		if _, ok := o.ops[step.Operation]; !ok {
			return fmt.Errorf("step %s references unregistered operation %q", step.ID, step.Operation)
		}
	}
	if run.Results == nil {
		run.Results = make(map[string]any)
	}

	run.Status = models.RunStatusRunning
	run.StartedAt = time.Now().UTC()
	o.emit(Event{Type: EventRunStarted, RunID: run.ID, Message: fmt.Sprintf("%d steps", len(run.Steps))})
	o.logger.Log("[orchestrator] run %s started with %d steps", run.ID, len(run.Steps))

	completionCh := make(chan stepResult)
	inflight := 0

	for {
		o.propagateSkips(run, graph)

		// Launch ready steps up to the parallelism ceiling, unless the
		// caller has cancelled.
		if ctx.Err() == nil {
			for _, id := range graph.Ready() {
				if inflight >= o.maxParallel {
					break
				}
				o.launch(ctx, run, graph, id, completionCh)
				inflight++
			}
		}

		if inflight == 0 {
			if o.finalize(ctx, run) {
				return nil
			}
			// Nothing in flight and nothing terminal-ready: the graph
			// still has pending steps but no launches happened, which
			// only occurs when skips just cascaded. Loop again.
			continue
		}

		res := <-completionCh
		inflight--
		o.complete(run, graph, res)
	}
}

// launch transitions a step to running and starts its operation.
func (o *Orchestrator) launch(ctx context.Context, run *models.WorkflowExecution, graph *DependencyGraph, id string, completionCh chan<- stepResult) {
	step := graph.Step(id)
	now := time.Now().UTC()
	step.Status = models.StepStatusRunning
	step.StartedAt = &now

	// Snapshot dependency outputs before the goroutine starts so the step
	// never reads run state concurrently with the loop's writes.
	deps := make(map[string]any, len(graph.Dependencies(id)))
	for _, depID := range graph.Dependencies(id) {
		deps[depID] = graph.Step(depID).Output
	}

	o.emit(Event{Type: EventStepStarted, RunID: run.ID, StepID: id, Phase: step.Phase, Progress: run.Progress})
	o.logger.Log("[orchestrator] step %s (%s) started", id, step.Phase)

	fn := o.ops[step.Operation]
	go func() {
		output, err := fn(ctx, step, deps)
		completionCh <- stepResult{id: id, output: output, err: err}
	}()
}

// complete applies a finished step's outcome.
func (o *Orchestrator) complete(run *models.WorkflowExecution, graph *DependencyGraph, res stepResult) {
	step := graph.Step(res.id)
	now := time.Now().UTC()
	step.CompletedAt = &now

	if res.err != nil {
		step.Status = models.StepStatusFailed
		step.Error = res.err.Error()
		run.RecomputeProgress()
		o.emit(Event{Type: EventStepFailed, RunID: run.ID, StepID: res.id, Phase: step.Phase, Err: res.err, Progress: run.Progress})
		o.logger.Log("[orchestrator] step %s failed: %v", res.id, res.err)
		return
	}

	step.Status = models.StepStatusCompleted
	step.Output = res.output
	run.Results[res.id] = res.output
	run.RecomputeProgress()
	o.emit(Event{Type: EventStepCompleted, RunID: run.ID, StepID: res.id, Phase: step.Phase, Progress: run.Progress})
	o.logger.Log("[orchestrator] step %s completed", res.id)
}

// propagateSkips marks pending steps whose dependencies failed or were
// skipped. Cascades until a fixpoint so transitive dependents settle in one
// pass.
func (o *Orchestrator) propagateSkips(run *models.WorkflowExecution, graph *DependencyGraph) {
	for {
		doomed := graph.Doomed()
		if len(doomed) == 0 {
			return
		}
		for _, id := range doomed {
			step := graph.Step(id)
			now := time.Now().UTC()
			step.Status = models.StepStatusSkipped
			step.CompletedAt = &now
			run.RecomputeProgress()
			o.emit(Event{Type: EventStepSkipped, RunID: run.ID, StepID: id, Phase: step.Phase, Progress: run.Progress})
			o.logger.Log("[orchestrator] step %s skipped (dependency failed or skipped)", id)
		}
	}
}

// finalize settles the run's terminal status once nothing is in flight.
// Returns false if pending steps remain runnable.
func (o *Orchestrator) finalize(ctx context.Context, run *models.WorkflowExecution) bool {
	pending := 0
	failed := 0
	for _, step := range run.Steps {
		switch step.Status {
		case models.StepStatusPending:
			pending++
		case models.StepStatusFailed:
			failed++
		}
	}

	switch {
	case pending > 0 && ctx.Err() != nil:
		// Cancelled with work left undone: the unlaunched steps stay
		// pending and the run records the distinct cancelled outcome.
		run.Status = models.RunStatusCancelled
	case pending > 0:
		return false
	case failed > 0:
		run.Status = models.RunStatusFailed
	default:
		run.Status = models.RunStatusCompleted
	}

	now := time.Now().UTC()
	run.CompletedAt = &now
	run.RecomputeProgress()
	o.emit(Event{Type: EventRunDone, RunID: run.ID, Message: string(run.Status), Progress: run.Progress})
	o.logger.Log("[orchestrator] run %s done: %s (%.0f%%)", run.ID, run.Status, run.Progress)
	return true
}

// emit sends an event without blocking the run loop; events are dropped
// when the consumer falls behind.
func (o *Orchestrator) emit(e Event) {
	e.Timestamp = time.Now().UTC()
	select {
	case o.events <- e:
	default:
		o.dropped.Add(1)
	}
}
