// Package orchestrator contains the shared data model and the request
// driver for the multi-provider orchestration core.
package orchestrator

import "time"

// ExecutionMode controls the latency/cost/quality tradeoff for a request.
type ExecutionMode string

const (
	ModeFast        ExecutionMode = "fast"
	ModeBalanced    ExecutionMode = "balanced"
	ModeBestQuality ExecutionMode = "best_quality"
)

// Intent is the coarse purpose the Analyzer assigns to a request.
type Intent string

const (
	IntentQuestion   Intent = "question"
	IntentGeneration Intent = "generation"
	IntentReasoning  Intent = "reasoning"
	IntentFactCheck  Intent = "fact_check"
)

// Complexity is the Analyzer's estimate of how much decomposition a
// request needs.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// TaskKind is the semantic category that determines which models are
// eligible to handle a Subtask.
type TaskKind string

const (
	KindReasoning      TaskKind = "reasoning"
	KindResearch       TaskKind = "research"
	KindCodeGeneration TaskKind = "code_generation"
	KindCreativeOutput TaskKind = "creative_output"
	KindFactChecking   TaskKind = "fact_checking"
	KindDebugging      TaskKind = "debugging"
)

// Request is the immutable unit of work submitted to the orchestrator.
type Request struct {
	ID          string
	Content     string
	Mode        ExecutionMode
	ArrivalTime time.Time
}

// Subtask is an atomic unit of work produced by the Analyzer.
type Subtask struct {
	ID                  string
	ParentID            string
	Content             string
	Kind                TaskKind
	Priority            int
	Risk                float64
	AccuracyRequirement float64
}

// DefaultAccuracyRequirement returns the mode-derived accuracy floor used
// when the Analyzer does not override it per spec.md §4.4.
func DefaultAccuracyRequirement(mode ExecutionMode) float64 {
	switch mode {
	case ModeFast:
		return 0.7
	case ModeBestQuality:
		return 0.95
	default:
		return 0.8
	}
}

// ModelDescriptor is a catalog entry in the Model Registry.
type ModelDescriptor struct {
	ModelID           string
	Provider          string
	ProviderModelName string
	Capabilities      []TaskKind
	CostPerInputToken float64
	CostPerOutputToken float64
	TypicalLatency    time.Duration
	ContextWindow     int
	Reliability       float64
	IsLocal           bool
}

// SupportsKind reports whether the descriptor declares the given
// capability.
func (m ModelDescriptor) SupportsKind(kind TaskKind) bool {
	for _, k := range m.Capabilities {
		if k == kind {
			return true
		}
	}
	return false
}

// CandidateEntry is one ranked candidate for a Subtask.
type CandidateEntry struct {
	ModelID      string
	Provider     string
	Score        float64
	Reasoning    string
	EstimatedCost float64
	EstimatedTime time.Duration
}

// CandidateRanking is an ordered, deduplicated sequence of candidates for
// one subtask. The first element is the primary; the rest are fallbacks.
type CandidateRanking struct {
	SubtaskID  string
	Candidates []CandidateEntry
}

// Primary returns the top-ranked candidate, or false if the ranking is
// empty.
func (r CandidateRanking) Primary() (CandidateEntry, bool) {
	if len(r.Candidates) == 0 {
		return CandidateEntry{}, false
	}
	return r.Candidates[0], true
}

// Fallbacks returns every candidate after the primary.
func (r CandidateRanking) Fallbacks() []CandidateEntry {
	if len(r.Candidates) < 2 {
		return nil
	}
	return r.Candidates[1:]
}

// SelfAssessment is a provider invoker's (or post-response heuristic's)
// estimate of the quality and cost of a single invocation.
type SelfAssessment struct {
	Confidence float64
	Risk       float64
	EstCost    float64
	TokensIn   int
	TokensOut  int
	ExecTime   time.Duration
}

// AgentResponse is the outcome of invoking one model for one subtask.
type AgentResponse struct {
	SubtaskID      string
	ModelID        string
	Provider       string
	Content        string
	Success        bool
	SelfAssessment SelfAssessment
	Error          error
}

// FinalResponse is the synthesized answer returned to the caller.
type FinalResponse struct {
	Content           string
	OverallConfidence float64
	ModelsUsed        []string
	CostBreakdown     CostBreakdown
	Metadata          Metadata
	Success           bool
	ErrorMessage      string
}

// Metadata carries the execution metadata and selection log attached to
// a FinalResponse.
type Metadata struct {
	Intent               Intent
	Complexity           Complexity
	ExecutionTime         time.Duration
	ProviderSelectionLog  []SelectionLogEntry
	ProviderUsageSummary  map[string]ProviderUsage
}

// ProviderUsage is a per-provider rollup distinct from the per-model cost
// breakdown, supplementing the spec per original_source's
// provider_usage_summary (see SPEC_FULL.md §11).
type ProviderUsage struct {
	Provider      string
	SubtaskCount  int
	TotalCost     float64
	TokensIn      int
	TokensOut     int
}

// PerModelCost is one line item of a CostBreakdown.
type PerModelCost struct {
	ModelID  string
	Provider string
	Cost     float64
}

// TokenUsage is one line item of token accounting in a CostBreakdown.
type TokenUsage struct {
	ModelID   string
	TokensIn  int
	TokensOut int
}

// CostBreakdown aggregates the cost of a request. The sum of PerModel
// costs must equal TotalCost within 1e-6 (spec.md §8 invariant 3).
type CostBreakdown struct {
	TotalCost     float64
	PerModelCost  []PerModelCost
	PerProviderCost map[string]float64
	TokenUsage    []TokenUsage
	ExecutionTime time.Duration
}

// ProviderHealthStatus is the status reported by the Health Checker.
type ProviderHealthStatus string

const (
	HealthHealthy      ProviderHealthStatus = "healthy"
	HealthDegraded     ProviderHealthStatus = "degraded"
	HealthDown         ProviderHealthStatus = "down"
	HealthNotConfigured ProviderHealthStatus = "not_configured"
)

// ProviderHealth is a cached health reading for one provider.
type ProviderHealth struct {
	Provider      string
	Status        ProviderHealthStatus
	LastCheckTime time.Time
	ResponseMs    *int64
	Error         string
}

// SelectionLogEntry records one routing/execution decision for a
// subtask, accumulated across a request per SPEC_FULL.md §11.
type SelectionLogEntry struct {
	SubtaskID    string
	ChosenModel  string
	Provider     string
	Reason       string
	Alternatives []string
	Timestamp    time.Time
}
