package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AnalyzerStrategy is the minimal surface the Orchestrator needs from
// the analyzer package, expressed here (rather than imported) to keep
// this package the dependency root per spec.md §9's DAG rule:
// Orchestrator → Executor → Invoker, no back edges.
type AnalyzerStrategy interface {
	Analyze(content string, mode ExecutionMode) (intent Intent, complexity Complexity, subtasks []Subtask, degraded bool)
}

// RouterStrategy ranks one subtask's candidates.
type RouterStrategy interface {
	Rank(subtask Subtask, mode ExecutionMode, available map[string]bool) CandidateRanking
}

// ExecutorStrategy runs a batch of ranked subtasks.
type ExecutorStrategy interface {
	Run(ctx context.Context, units []ExecutionUnit) ([]AgentResponse, error)
}

// ExecutionUnit pairs a Subtask with its CandidateRanking, mirroring
// executor.Unit without importing the executor package.
type ExecutionUnit struct {
	Subtask Subtask
	Ranking CandidateRanking
}

// ArbiterStrategy resolves duplicate successful responses per subtask.
type ArbiterStrategy interface {
	Resolve(responses []AgentResponse) (winners map[string]AgentResponse, decisions []ArbitrationChoice, conflicts int)
}

// SynthesizerStrategy merges arbitrated responses into a FinalResponse.
type SynthesizerStrategy interface {
	Synthesize(subtaskOrder []string, winners map[string]AgentResponse, mode ExecutionMode) FinalResponse
}

// AvailabilityView is the subset of the availability Oracle the
// Orchestrator consults. Refresh re-derives the available set from the
// Health Checker (spec.md §4.9 step 2: "Refresh available_providers
// once at start"); implementations with no Health Checker wired may
// make it a no-op.
type AvailabilityView interface {
	HasAnyConfigured() bool
	Available() []string
	Refresh(ctx context.Context)
}

// CostAggregator turns a request's responses into a CostBreakdown plus
// per-provider usage, mirroring costing.Aggregate without importing it.
type CostAggregator interface {
	Aggregate(responses []AgentResponse, execTimeMs int64) (CostBreakdown, map[string]ProviderUsage)
	ToRecorderUsage(responses []AgentResponse) []ProviderCostUsage
}

// Orchestrator drives one request end-to-end (spec.md §4.9).
type Orchestrator struct {
	analyzer     AnalyzerStrategy
	router       RouterStrategy
	executor     ExecutorStrategy
	arbiter      ArbiterStrategy
	synthesizer  SynthesizerStrategy
	availability AvailabilityView
	cost         CostAggregator
	recorder     CostRecorder
	sink         ProgressSink
	now          func() time.Time

	overallTimeout func(ExecutionMode) time.Duration
}

// New constructs an Orchestrator from its collaborators. sink may be
// nil, in which case progress events are simply not emitted.
func New(
	analyzer AnalyzerStrategy,
	router RouterStrategy,
	executor ExecutorStrategy,
	arbiter ArbiterStrategy,
	synthesizer SynthesizerStrategy,
	availability AvailabilityView,
	cost CostAggregator,
	recorder CostRecorder,
	sink ProgressSink,
) *Orchestrator {
	return &Orchestrator{
		analyzer:       analyzer,
		router:         router,
		executor:       executor,
		arbiter:        arbiter,
		synthesizer:    synthesizer,
		availability:   availability,
		cost:           cost,
		recorder:       recorder,
		sink:           sink,
		now:            time.Now,
		overallTimeout: OverallTimeout,
	}
}

// OverallTimeout returns the mode-derived per-request deadline
// (spec.md §5).
func OverallTimeout(mode ExecutionMode) time.Duration {
	switch mode {
	case ModeFast:
		return 30 * time.Second
	case ModeBestQuality:
		return 300 * time.Second
	default:
		return 120 * time.Second
	}
}

// Process drives req through the full pipeline and returns its
// FinalResponse. It never panics; every failure up to and including
// execution is represented as a failed FinalResponse plus a terminal
// error event. When synthesis yields no successful content, the stream
// ends with a final_response event whose Success is false.
func (o *Orchestrator) Process(ctx context.Context, req Request) FinalResponse {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	start := o.now()

	ctx, cancel := context.WithTimeout(ctx, o.overallTimeout(req.Mode))
	defer cancel()

	o.emit(req.ID, EventProcessingStarted, nil)

	o.availability.Refresh(ctx)
	if !o.availability.HasAnyConfigured() {
		return o.fail(req.ID, CodeNoProvidersAvailable, "no providers are configured")
	}
	availableSet := toSet(o.availability.Available())

	intent, complexity, subtasks, degraded, analysisErr := o.runAnalysis(req)
	if analysisErr != nil {
		return o.fail(req.ID, CodeAnalysisFailed, analysisErr.Error())
	}
	o.emit(req.ID, EventAnalysisComplete, AnalysisCompletePayload{
		Intent: intent, Complexity: complexity, Degraded: degraded,
	})

	units, rankings, selectionLog := o.route(subtasks, req.Mode, availableSet)
	if allEmpty(rankings) {
		return o.fail(req.ID, CodeNoCapableModel, "no candidate model for any subtask")
	}
	o.emitRoutingComplete(req.ID, subtasks, rankings)

	select {
	case <-ctx.Done():
		return o.fail(req.ID, CodeTimeout, "request deadline exceeded during routing")
	default:
	}

	responses, execErr := o.executor.Run(ctx, units)
	if execErr != nil {
		if ctx.Err() == context.Canceled {
			return o.failWithPartialCost(req.ID, CodeCancelled, "request cancelled during execution", responses, start)
		}
		if ctx.Err() != nil {
			return o.failWithPartialCost(req.ID, CodeTimeout, "request deadline exceeded during execution", responses, start)
		}
		return o.fail(req.ID, CodeInternal, execErr.Error())
	}

	winners, decisions, conflicts := o.arbiter.Resolve(responses)
	o.emit(req.ID, EventArbitrationDecision, ArbitrationDecisionPayload{
		ConflictsDetected: conflicts,
		Decisions:         decisions,
	})

	subtaskOrder := make([]string, 0, len(subtasks))
	for _, st := range subtasks {
		subtaskOrder = append(subtaskOrder, st.ID)
	}
	final := o.synthesizer.Synthesize(subtaskOrder, winners, req.Mode)

	execTime := o.now().Sub(start)
	breakdown, usage := o.cost.Aggregate(responses, execTime.Milliseconds())
	breakdown.ExecutionTime = execTime
	final.CostBreakdown = breakdown
	final.Metadata = Metadata{
		Intent:               intent,
		Complexity:           complexity,
		ExecutionTime:        execTime,
		ProviderSelectionLog: selectionLog,
		ProviderUsageSummary: usage,
	}

	o.emit(req.ID, EventFinalResponse, FinalResponsePayload{
		Content:              final.Content,
		OverallConfidence:    final.OverallConfidence,
		Success:              final.Success,
		ModelsUsed:           final.ModelsUsed,
		CostBreakdown:        final.CostBreakdown,
		ExecutionMetadata:    final.Metadata,
		ProviderSelectionLog: selectionLog,
		ProviderUsageSummary: usage,
		ErrorMessage:         final.ErrorMessage,
	})

	o.recordCost(req.ID, responses)
	return final
}

func (o *Orchestrator) runAnalysis(req Request) (intent Intent, complexity Complexity, subtasks []Subtask, degraded bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewError(CodeAnalysisFailed, "analyzer panicked", nil)
		}
	}()
	intent, complexity, subtasks, degraded = o.analyzer.Analyze(req.Content, req.Mode)
	return
}

func (o *Orchestrator) route(subtasks []Subtask, mode ExecutionMode, available map[string]bool) ([]ExecutionUnit, []CandidateRanking, []SelectionLogEntry) {
	units := make([]ExecutionUnit, 0, len(subtasks))
	rankings := make([]CandidateRanking, 0, len(subtasks))
	log := make([]SelectionLogEntry, 0, len(subtasks))

	for _, st := range subtasks {
		ranking := o.router.Rank(st, mode, available)
		rankings = append(rankings, ranking)
		units = append(units, ExecutionUnit{Subtask: st, Ranking: ranking})

		if primary, ok := ranking.Primary(); ok {
			alts := make([]string, 0, len(ranking.Fallbacks()))
			for _, f := range ranking.Fallbacks() {
				alts = append(alts, f.ModelID)
			}
			log = append(log, SelectionLogEntry{
				SubtaskID:    st.ID,
				ChosenModel:  primary.ModelID,
				Provider:     primary.Provider,
				Reason:       primary.Reasoning,
				Alternatives: alts,
				Timestamp:    o.now(),
			})
		}
	}
	return units, rankings, log
}

func (o *Orchestrator) emitRoutingComplete(requestID string, subtasks []Subtask, rankings []CandidateRanking) {
	assignments := make([]RoutingAssignment, 0, len(rankings))
	for i, ranking := range rankings {
		primary, ok := ranking.Primary()
		if !ok {
			continue
		}
		assignments = append(assignments, RoutingAssignment{
			SubtaskID:              ranking.SubtaskID,
			TaskKind:               subtasks[i].Kind,
			ModelID:                primary.ModelID,
			Provider:               primary.Provider,
			Reason:                 primary.Reasoning,
			EstCost:                primary.EstimatedCost,
			EstTime:                primary.EstimatedTime,
			AlternativesConsidered: len(ranking.Fallbacks()),
		})
	}
	o.emit(requestID, EventRoutingComplete, RoutingCompletePayload{
		Assignments:   assignments,
		TotalSubtasks: len(subtasks),
	})
}

func (o *Orchestrator) fail(requestID string, code Code, message string) FinalResponse {
	o.emit(requestID, EventError, ErrorPayload{Code: code, Message: message})
	return FinalResponse{Success: false, ErrorMessage: message}
}

func (o *Orchestrator) failWithPartialCost(requestID string, code Code, message string, responses []AgentResponse, start time.Time) FinalResponse {
	breakdown, _ := o.cost.Aggregate(responses, o.now().Sub(start).Milliseconds())
	o.emit(requestID, EventError, ErrorPayload{Code: code, Message: message})
	return FinalResponse{Success: false, ErrorMessage: message, CostBreakdown: breakdown}
}

func (o *Orchestrator) recordCost(requestID string, responses []AgentResponse) {
	if o.recorder == nil {
		return
	}
	defer func() { _ = recover() }()
	o.recorder.Record(requestID, o.cost.ToRecorderUsage(responses))
}

func (o *Orchestrator) emit(requestID string, eventType ProgressEventType, payload any) {
	if o.sink == nil {
		return
	}
	o.sink.Emit(ProgressEvent{
		Type:      eventType,
		Timestamp: o.now(),
		RequestID: requestID,
		Payload:   payload,
	})
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[it] = true
	}
	return out
}

func allEmpty(rankings []CandidateRanking) bool {
	for _, r := range rankings {
		if len(r.Candidates) > 0 {
			return false
		}
	}
	return true
}
