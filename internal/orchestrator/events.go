package orchestrator

import "time"

// ProgressEventType is the tagged variant discriminator for
// ProgressEvent (spec.md §3, §6).
type ProgressEventType string

const (
	EventProcessingStarted  ProgressEventType = "processing_started"
	EventAnalysisComplete   ProgressEventType = "analysis_complete"
	EventRoutingComplete    ProgressEventType = "routing_complete"
	EventExecutionProgress  ProgressEventType = "execution_progress"
	EventArbitrationDecision ProgressEventType = "arbitration_decision"
	EventSynthesisProgress  ProgressEventType = "synthesis_progress"
	EventFinalResponse      ProgressEventType = "final_response"
	EventError              ProgressEventType = "error"
	EventProgressDropped    ProgressEventType = "progress_dropped"
)

// IsTerminal reports whether this event type ends a request's event
// stream. Per spec.md §4.10, terminal events are never dropped by the
// bus's overflow policy, and spec.md §8 invariant 1 requires exactly one
// terminal event per request.
func (t ProgressEventType) IsTerminal() bool {
	return t == EventFinalResponse || t == EventError
}

// ProgressEvent is one entry in a request's ordered progress stream.
type ProgressEvent struct {
	Type      ProgressEventType
	Timestamp time.Time
	RequestID string
	Payload   any
}

// AnalysisCompletePayload is the payload for EventAnalysisComplete.
type AnalysisCompletePayload struct {
	Intent     Intent
	Complexity Complexity
	Degraded   bool
}

// RoutingAssignment is one entry of RoutingCompletePayload.Assignments.
type RoutingAssignment struct {
	SubtaskID            string
	TaskKind             TaskKind
	ModelID              string
	Provider             string
	Reason               string
	EstCost              float64
	EstTime              time.Duration
	AlternativesConsidered int
}

// RoutingCompletePayload is the payload for EventRoutingComplete.
type RoutingCompletePayload struct {
	Assignments   []RoutingAssignment
	TotalSubtasks int
}

// ExecutionStatus is the per-subtask outcome reported in
// ExecutionProgressPayload.
type ExecutionStatus string

const (
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
)

// ExecutionProgressPayload is the payload for EventExecutionProgress.
type ExecutionProgressPayload struct {
	SubtaskID          string
	ModelID            string
	Provider           string
	Status             ExecutionStatus
	Confidence         float64
	Cost               float64
	ExecutionTime      time.Duration
	UsedFallback       bool
	PrimaryModelFailed string
	FallbackReason     string
	ErrorMessage       string
}

// ArbitrationChoice is one entry of ArbitrationDecisionPayload.Decisions.
type ArbitrationChoice struct {
	ChosenResponseID string
	Reasoning        string
	Confidence       float64
}

// ArbitrationDecisionPayload is the payload for EventArbitrationDecision.
type ArbitrationDecisionPayload struct {
	ConflictsDetected  int
	Decisions          []ArbitrationChoice
	ConflictingResults []string
}

// SynthesisStage is the stage discriminator for
// SynthesisProgressPayload.
type SynthesisStage string

const (
	SynthesisStarted  SynthesisStage = "started"
	SynthesisComplete SynthesisStage = "complete"
)

// SynthesisProgressPayload is the payload for EventSynthesisProgress.
type SynthesisProgressPayload struct {
	Stage             SynthesisStage
	OverallConfidence float64
	ModelsUsed        []string
}

// FinalResponsePayload is the payload for EventFinalResponse.
type FinalResponsePayload struct {
	Content              string
	OverallConfidence    float64
	Success              bool
	ModelsUsed           []string
	CostBreakdown        CostBreakdown
	ExecutionMetadata    Metadata
	ProviderSelectionLog []SelectionLogEntry
	ProviderUsageSummary map[string]ProviderUsage
	ErrorMessage         string
}

// ErrorPayload is the payload for EventError.
type ErrorPayload struct {
	Code    Code
	Message string
}
