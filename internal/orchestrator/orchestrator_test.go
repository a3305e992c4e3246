package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes implementing the Orchestrator's collaborator interfaces ---

type fakeAnalyzer struct {
	intent     Intent
	complexity Complexity
	subtasks   []Subtask
	degraded   bool
}

func (f fakeAnalyzer) Analyze(content string, mode ExecutionMode) (Intent, Complexity, []Subtask, bool) {
	return f.intent, f.complexity, f.subtasks, f.degraded
}

type fakeRouter struct {
	rankings map[string]CandidateRanking
}

func (f fakeRouter) Rank(subtask Subtask, mode ExecutionMode, available map[string]bool) CandidateRanking {
	return f.rankings[subtask.ID]
}

type fakeExecutor struct {
	responses map[string]AgentResponse
	err       error
}

func (f fakeExecutor) Run(ctx context.Context, units []ExecutionUnit) ([]AgentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]AgentResponse, 0, len(units))
	for _, u := range units {
		out = append(out, f.responses[u.Subtask.ID])
	}
	return out, nil
}

type fakeArbiter struct{}

func (fakeArbiter) Resolve(responses []AgentResponse) (map[string]AgentResponse, []ArbitrationChoice, int) {
	winners := make(map[string]AgentResponse)
	for _, r := range responses {
		if r.Success {
			winners[r.SubtaskID] = r
		}
	}
	return winners, nil, 0
}

type fakeSynthesizer struct{}

func (fakeSynthesizer) Synthesize(order []string, winners map[string]AgentResponse, mode ExecutionMode) FinalResponse {
	if len(winners) == 0 {
		return FinalResponse{Success: false, ErrorMessage: "nothing succeeded"}
	}
	var content string
	var models []string
	for _, id := range order {
		if r, ok := winners[id]; ok {
			content += r.Content
			models = append(models, r.ModelID)
		}
	}
	return FinalResponse{Content: content, Success: true, ModelsUsed: models, OverallConfidence: 0.9}
}

type fakeAvailability struct {
	configured bool
	available  []string
}

func (f fakeAvailability) HasAnyConfigured() bool   { return f.configured }
func (f fakeAvailability) Available() []string      { return f.available }
func (f fakeAvailability) Refresh(ctx context.Context) {}

type fakeCost struct{}

func (fakeCost) Aggregate(responses []AgentResponse, execTimeMs int64) (CostBreakdown, map[string]ProviderUsage) {
	return CostBreakdown{}, map[string]ProviderUsage{}
}
func (fakeCost) ToRecorderUsage(responses []AgentResponse) []ProviderCostUsage { return nil }

type fakeRecorder struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeRecorder) Record(requestID string, usage []ProviderCostUsage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
}

type collectingSink struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (c *collectingSink) Emit(e ProgressEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collectingSink) types() []ProgressEventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ProgressEventType, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

func TestOrchestrator_HappyPathSingleSubtask(t *testing.T) {
	sink := &collectingSink{}
	subtask := Subtask{ID: "s1", Kind: KindReasoning}
	o := New(
		fakeAnalyzer{intent: IntentQuestion, complexity: ComplexitySimple, subtasks: []Subtask{subtask}},
		fakeRouter{rankings: map[string]CandidateRanking{
			"s1": {SubtaskID: "s1", Candidates: []CandidateEntry{{ModelID: "m1", Provider: "p1"}}},
		}},
		fakeExecutor{responses: map[string]AgentResponse{
			"s1": {SubtaskID: "s1", ModelID: "m1", Provider: "p1", Content: "4", Success: true, SelfAssessment: SelfAssessment{Confidence: 0.9}},
		}},
		fakeArbiter{},
		fakeSynthesizer{},
		fakeAvailability{configured: true, available: []string{"p1"}},
		fakeCost{},
		&fakeRecorder{},
		sink,
	)

	resp := o.Process(context.Background(), Request{Content: "What is 2+2?", Mode: ModeBalanced})
	require.True(t, resp.Success)
	assert.Equal(t, []string{"m1"}, resp.ModelsUsed)

	evts := sink.types()
	assert.Contains(t, evts, EventProcessingStarted)
	assert.Contains(t, evts, EventAnalysisComplete)
	assert.Contains(t, evts, EventRoutingComplete)
	assert.Contains(t, evts, EventFinalResponse)
	assert.NotContains(t, evts, EventError)
}

func TestOrchestrator_NoProvidersAvailable(t *testing.T) {
	sink := &collectingSink{}
	o := New(
		fakeAnalyzer{}, fakeRouter{}, fakeExecutor{}, fakeArbiter{}, fakeSynthesizer{},
		fakeAvailability{configured: false},
		fakeCost{}, &fakeRecorder{}, sink,
	)
	resp := o.Process(context.Background(), Request{Content: "hi", Mode: ModeBalanced})
	assert.False(t, resp.Success)
	assert.Contains(t, sink.types(), EventError)
}

func TestOrchestrator_NoCapableModelWhenAllRankingsEmpty(t *testing.T) {
	sink := &collectingSink{}
	o := New(
		fakeAnalyzer{subtasks: []Subtask{{ID: "s1"}}},
		fakeRouter{rankings: map[string]CandidateRanking{}},
		fakeExecutor{},
		fakeArbiter{},
		fakeSynthesizer{},
		fakeAvailability{configured: true, available: []string{"p1"}},
		fakeCost{}, &fakeRecorder{}, sink,
	)
	resp := o.Process(context.Background(), Request{Content: "hi", Mode: ModeBalanced})
	assert.False(t, resp.Success)
	assert.Contains(t, sink.types(), EventError)
}

func TestOrchestrator_ExactlyOneTerminalEvent(t *testing.T) {
	sink := &collectingSink{}
	subtask := Subtask{ID: "s1", Kind: KindReasoning}
	o := New(
		fakeAnalyzer{subtasks: []Subtask{subtask}},
		fakeRouter{rankings: map[string]CandidateRanking{
			"s1": {SubtaskID: "s1", Candidates: []CandidateEntry{{ModelID: "m1", Provider: "p1"}}},
		}},
		fakeExecutor{responses: map[string]AgentResponse{
			"s1": {SubtaskID: "s1", ModelID: "m1", Provider: "p1", Content: "ok", Success: true},
		}},
		fakeArbiter{}, fakeSynthesizer{},
		fakeAvailability{configured: true, available: []string{"p1"}},
		fakeCost{}, &fakeRecorder{}, sink,
	)
	o.Process(context.Background(), Request{Content: "hi", Mode: ModeBalanced})

	terminalCount := 0
	for _, ty := range sink.types() {
		if ty.IsTerminal() {
			terminalCount++
		}
	}
	assert.Equal(t, 1, terminalCount)
}

func TestOrchestrator_CostRecorderCalledFireAndForget(t *testing.T) {
	rec := &fakeRecorder{}
	subtask := Subtask{ID: "s1"}
	o := New(
		fakeAnalyzer{subtasks: []Subtask{subtask}},
		fakeRouter{rankings: map[string]CandidateRanking{
			"s1": {SubtaskID: "s1", Candidates: []CandidateEntry{{ModelID: "m1", Provider: "p1"}}},
		}},
		fakeExecutor{responses: map[string]AgentResponse{
			"s1": {SubtaskID: "s1", ModelID: "m1", Provider: "p1", Content: "ok", Success: true},
		}},
		fakeArbiter{}, fakeSynthesizer{},
		fakeAvailability{configured: true, available: []string{"p1"}},
		fakeCost{}, rec, nil,
	)
	o.Process(context.Background(), Request{Content: "hi", Mode: ModeBalanced})
	assert.Equal(t, 1, rec.calls)
}

func TestOrchestrator_AssignsRequestIDWhenAbsent(t *testing.T) {
	sink := &collectingSink{}
	o := New(
		fakeAnalyzer{subtasks: []Subtask{{ID: "s1"}}},
		fakeRouter{rankings: map[string]CandidateRanking{}},
		fakeExecutor{}, fakeArbiter{}, fakeSynthesizer{},
		fakeAvailability{configured: true, available: []string{"p1"}},
		fakeCost{}, &fakeRecorder{}, sink,
	)
	_ = o.Process(context.Background(), Request{Content: "hi", Mode: ModeBalanced})
	require.NotEmpty(t, sink.events)
	for _, e := range sink.events {
		assert.NotEmpty(t, e.RequestID)
	}
}

type refreshCountingAvailability struct {
	fakeAvailability
	refreshes int
}

func (f *refreshCountingAvailability) Refresh(ctx context.Context) { f.refreshes++ }

func TestOrchestrator_RefreshesAvailabilityOnceAtStart(t *testing.T) {
	avail := &refreshCountingAvailability{fakeAvailability: fakeAvailability{configured: true, available: []string{"p1"}}}
	o := New(
		fakeAnalyzer{subtasks: []Subtask{{ID: "s1"}}},
		fakeRouter{rankings: map[string]CandidateRanking{}},
		fakeExecutor{}, fakeArbiter{}, fakeSynthesizer{},
		avail,
		fakeCost{}, &fakeRecorder{}, nil,
	)
	_ = o.Process(context.Background(), Request{Content: "hi", Mode: ModeBalanced})
	assert.Equal(t, 1, avail.refreshes)
}

func TestOrchestrator_OverallTimeoutByMode(t *testing.T) {
	assert.Equal(t, 30*time.Second, OverallTimeout(ModeFast))
	assert.Equal(t, 120*time.Second, OverallTimeout(ModeBalanced))
	assert.Equal(t, 300*time.Second, OverallTimeout(ModeBestQuality))
}
