package models

import "time"

// Phase labels a stage of the overall workflow. Phases carry no runtime
// behavior; they group pipeline steps for reporting.
type Phase string

const (
	// PhaseEnrichment covers taxonomy enrichment steps.
	PhaseEnrichment Phase = "enrichment"
	// PhaseGeneration covers seed and concept generation steps.
	PhaseGeneration Phase = "generation"
	// PhaseScoring covers viability scoring steps.
	PhaseScoring Phase = "scoring"
	// PhaseBranding covers brand-identity steps.
	PhaseBranding Phase = "branding"
	// PhaseProductization covers product-definition steps.
	PhaseProductization Phase = "productization"
	// PhaseDeployment covers deployment steps.
	PhaseDeployment Phase = "deployment"
	// PhaseExperimentation covers experiment-design steps.
	PhaseExperimentation Phase = "experimentation"
	// PhaseAnalysis covers ranking and analysis steps.
	PhaseAnalysis Phase = "analysis"
)

// Valid returns true if the phase is a known value.
func (p Phase) Valid() bool {
	switch p {
	case PhaseEnrichment, PhaseGeneration, PhaseScoring, PhaseBranding,
		PhaseProductization, PhaseDeployment, PhaseExperimentation, PhaseAnalysis:
		return true
	default:
		return false
	}
}

// StepStatus represents the state of a pipeline step.
type StepStatus string

const (
	// StepStatusPending indicates the step has not started.
	StepStatusPending StepStatus = "pending"
	// StepStatusRunning indicates the step is executing.
	StepStatusRunning StepStatus = "running"
	// StepStatusCompleted indicates the step finished successfully.
	StepStatusCompleted StepStatus = "completed"
	// StepStatusFailed indicates the step finished with an error.
	StepStatusFailed StepStatus = "failed"
	// StepStatusSkipped indicates a dependency failed or was skipped, so
	// the step will never run in this execution.
	StepStatusSkipped StepStatus = "skipped"
)

// Valid returns true if the status is a known value.
func (s StepStatus) Valid() bool {
	switch s {
	case StepStatusPending, StepStatusRunning, StepStatusCompleted,
		StepStatusFailed, StepStatusSkipped:
		return true
	default:
		return false
	}
}

// Terminal returns true if the step will not transition again.
func (s StepStatus) Terminal() bool {
	switch s {
	case StepStatusCompleted, StepStatusFailed, StepStatusSkipped:
		return true
	default:
		return false
	}
}

// PipelineStep is one node of a workflow's step DAG. Steps are mutated only
// by the pipeline orchestrator.
type PipelineStep struct {
	// ID is the unique step identifier within its execution.
	ID string `json:"id"`
	// Phase is the workflow phase label for this step.
	Phase Phase `json:"phase"`
	// Operation names the registered operation this step invokes.
	Operation string `json:"operation"`
	// Input holds structured input for the operation.
	Input map[string]any `json:"input,omitempty"`
	// DependsOn lists step IDs that must complete before this step runs.
	DependsOn []string `json:"depends_on,omitempty"`
	// Status is the current state of the step.
	Status StepStatus `json:"status"`
	// Error holds the captured failure message, if the step failed.
	Error string `json:"error,omitempty"`
	// Output holds the captured operation output, if any.
	Output any `json:"output,omitempty"`
	// StartedAt is when the step began running.
	StartedAt *time.Time `json:"started_at,omitempty"`
	// CompletedAt is when the step reached a terminal status.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunStatus represents the overall state of a workflow execution.
type RunStatus string

const (
	// RunStatusPending indicates the execution has not started.
	RunStatusPending RunStatus = "pending"
	// RunStatusRunning indicates steps are executing.
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted indicates every step completed.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed indicates at least one step failed and nothing
	// runnable remains.
	RunStatusFailed RunStatus = "failed"
	// RunStatusCancelled indicates the caller cancelled the run. In-flight
	// steps were allowed to finish; nothing new was launched.
	RunStatusCancelled RunStatus = "cancelled"
)

// Valid returns true if the status is a known value.
func (s RunStatus) Valid() bool {
	switch s {
	case RunStatusPending, RunStatusRunning, RunStatusCompleted,
		RunStatusFailed, RunStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal returns true if the execution will not transition again.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	default:
		return false
	}
}

// WorkflowExecution is one run of a step DAG for a strategy. Executions are
// created when a run starts and are never reused across runs.
type WorkflowExecution struct {
	// ID is the unique execution identifier.
	ID string `json:"id"`
	// StrategyID is the strategy this execution ran for.
	StrategyID string `json:"strategy_id"`
	// Steps is the DAG of pipeline steps.
	Steps []*PipelineStep `json:"steps"`
	// Status is the overall run state.
	Status RunStatus `json:"status"`
	// Progress is the percentage (0-100) of steps in a terminal state,
	// recomputed after every step transition.
	Progress float64 `json:"progress"`
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
	// CompletedAt is when the run reached a terminal status.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	// Results accumulates run-level outputs keyed by step ID.
	Results map[string]any `json:"results,omitempty"`
}

// Step returns the step with the given ID, or nil if not found.
func (w *WorkflowExecution) Step(id string) *PipelineStep {
	for _, s := range w.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// RecomputeProgress updates Progress from the current step statuses.
func (w *WorkflowExecution) RecomputeProgress() {
	if len(w.Steps) == 0 {
		w.Progress = 0
		return
	}
	terminal := 0
	for _, s := range w.Steps {
		if s.Status.Terminal() {
			terminal++
		}
	}
	w.Progress = float64(terminal) / float64(len(w.Steps)) * 100
}
