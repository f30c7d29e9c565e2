package orchestrator

import (
	"time"

	"github.com/venturelab/ideaforge/pkg/models"
)

// EventType represents the type of orchestrator event.
type EventType string

const (
	// EventRunStarted indicates a workflow execution has started.
	EventRunStarted EventType = "run_started"
	// EventStepStarted indicates a step has started executing.
	EventStepStarted EventType = "step_started"
	// EventStepCompleted indicates a step completed successfully.
	EventStepCompleted EventType = "step_completed"
	// EventStepFailed indicates a step failed.
	EventStepFailed EventType = "step_failed"
	// EventStepSkipped indicates a step was skipped because a dependency
	// failed or was skipped.
	EventStepSkipped EventType = "step_skipped"
	// EventRunDone indicates the execution reached a terminal status.
	EventRunDone EventType = "run_done"
)

// Event is emitted by the orchestrator as the execution progresses. Events
// feed the CLI's progress display and are informational only; the
// WorkflowExecution record is the source of truth.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// RunID is the workflow execution ID.
	RunID string
	// StepID is the related step, if applicable.
	StepID string
	// Phase is the related step's phase, if applicable.
	Phase models.Phase
	// Message provides additional context.
	Message string
	// Err carries failure detail for step_failed events.
	Err error
	// Progress is the run progress percentage at emission time.
	Progress float64
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
