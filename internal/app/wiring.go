// Package app is the composition root: it adapts the concrete analyzer,
// router, executor, arbiter, synthesizer, and costing packages to the
// small interfaces orchestrator.Orchestrator depends on, keeping the
// strict DAG spec.md §9 requires (Orchestrator → Executor → Invoker;
// Breaker passed in; no back edges) by never letting those leaf
// packages import orchestrator.Orchestrator itself.
package app

import (
	"context"

	"github.com/council-ai/orchestrator-core/internal/analyzer"
	"github.com/council-ai/orchestrator-core/internal/arbiter"
	"github.com/council-ai/orchestrator-core/internal/availability"
	"github.com/council-ai/orchestrator-core/internal/breaker"
	"github.com/council-ai/orchestrator-core/internal/costing"
	"github.com/council-ai/orchestrator-core/internal/executor"
	"github.com/council-ai/orchestrator-core/internal/health"
	"github.com/council-ai/orchestrator-core/internal/orchestrator"
	"github.com/council-ai/orchestrator-core/internal/registry"
	"github.com/council-ai/orchestrator-core/internal/router"
	"github.com/council-ai/orchestrator-core/internal/synthesizer"
)

type analyzerAdapter struct{ strategy analyzer.Strategy }

func (a analyzerAdapter) Analyze(content string, mode orchestrator.ExecutionMode) (orchestrator.Intent, orchestrator.Complexity, []orchestrator.Subtask, bool) {
	res := a.strategy.Analyze(content, mode)
	return res.Intent, res.Complexity, res.Subtasks, res.Degraded
}

type routerAdapter struct{ r *router.Router }

func (r routerAdapter) Rank(subtask orchestrator.Subtask, mode orchestrator.ExecutionMode, available map[string]bool) orchestrator.CandidateRanking {
	return r.r.Rank(subtask, mode, available)
}

type executorAdapter struct{ e *executor.Executor }

func (e executorAdapter) Run(ctx context.Context, units []orchestrator.ExecutionUnit) ([]orchestrator.AgentResponse, error) {
	converted := make([]executor.Unit, len(units))
	for i, u := range units {
		converted[i] = executor.Unit{Subtask: u.Subtask, Ranking: u.Ranking}
	}
	return e.e.Run(ctx, converted)
}

type arbiterAdapter struct{ a *arbiter.Arbiter }

func (a arbiterAdapter) Resolve(responses []orchestrator.AgentResponse) (map[string]orchestrator.AgentResponse, []orchestrator.ArbitrationChoice, int) {
	res := a.a.Resolve(responses)
	choices := make([]orchestrator.ArbitrationChoice, 0, len(res.Decisions))
	for _, d := range res.Decisions {
		choices = append(choices, orchestrator.ArbitrationChoice{
			ChosenResponseID: d.ChosenResponseID,
			Reasoning:        d.Reasoning,
			Confidence:       d.Confidence,
		})
	}
	return res.Winners, choices, res.Conflicts
}

type synthesizerAdapter struct{ s *synthesizer.Synthesizer }

func (s synthesizerAdapter) Synthesize(order []string, winners map[string]orchestrator.AgentResponse, mode orchestrator.ExecutionMode) orchestrator.FinalResponse {
	return s.s.Synthesize(order, winners, mode)
}

type costAdapter struct{}

func (costAdapter) Aggregate(responses []orchestrator.AgentResponse, execTimeMs int64) (orchestrator.CostBreakdown, map[string]orchestrator.ProviderUsage) {
	return costing.Aggregate(responses, execTimeMs)
}

func (costAdapter) ToRecorderUsage(responses []orchestrator.AgentResponse) []orchestrator.ProviderCostUsage {
	return costing.ToRecorderUsage(responses)
}

// availabilityAdapter exposes availability.Oracle through
// orchestrator.AvailabilityView, refreshing the derived available set
// from the Health Checker once per request (spec.md §4.9 step 2). A nil
// checker makes Refresh a no-op, leaving Oracle's env-detected view in
// place — the pre-Health-Checker behavior.
type availabilityAdapter struct {
	o       *availability.Oracle
	checker *health.Checker
}

func (a availabilityAdapter) HasAnyConfigured() bool { return a.o.HasAnyConfigured() }
func (a availabilityAdapter) Available() []string    { return a.o.Available() }

func (a availabilityAdapter) Refresh(ctx context.Context) {
	if a.checker == nil {
		return
	}
	for _, provider := range a.o.Configured() {
		status := a.checker.Status(ctx, provider)
		a.o.SetAvailable(provider, status.Status != orchestrator.HealthDown)
	}
}

// Dependencies bundles the concrete collaborators Build wires together.
type Dependencies struct {
	Registry            *registry.Registry
	Availability        *availability.Oracle
	Breakers            *breaker.Registry
	HealthChecker       *health.Checker // optional; nil disables health-driven availability refresh and provider degradation
	Invoker             orchestrator.ProviderInvoker
	Sink                orchestrator.ProgressSink
	Recorder            orchestrator.CostRecorder
	AnalyzerStrategy    analyzer.Strategy
	SynthStrategy       synthesizer.Strategy
	Mode                orchestrator.ExecutionMode
	ParallelismOverride int
}

// Build constructs a fully wired Orchestrator from Dependencies.
func Build(deps Dependencies) *orchestrator.Orchestrator {
	if deps.AnalyzerStrategy == nil {
		deps.AnalyzerStrategy = analyzer.NewDefault()
	}

	r := router.New(deps.Registry)
	execOpts := []executor.Option{
		executor.WithParallelism(executor.Parallelism(deps.Mode, deps.ParallelismOverride)),
	}
	if deps.HealthChecker != nil {
		execOpts = append(execOpts, executor.WithHealthReporter(deps.HealthChecker))
	}
	ex := executor.New(deps.Invoker, deps.Breakers, deps.Sink, deps.Mode, execOpts...)
	arb := arbiter.New()
	synth := synthesizer.New(deps.SynthStrategy, deps.Sink)

	return orchestrator.New(
		analyzerAdapter{deps.AnalyzerStrategy},
		routerAdapter{r},
		executorAdapter{ex},
		arbiterAdapter{arb},
		synthesizerAdapter{synth},
		availabilityAdapter{o: deps.Availability, checker: deps.HealthChecker},
		costAdapter{},
		deps.Recorder,
		deps.Sink,
	)
}
