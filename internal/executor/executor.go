// Package executor implements the Executor (spec.md §4.6): runs
// subtasks under bounded parallelism, invokes the chosen model through
// a ProviderInvoker, enforces per-call timeouts, records breaker
// outcomes, and walks the fallback list on failure. Grounded on the
// teacher's providers.ExecuteWithRetry generic retry loop and
// agent.AgentService's goroutine-per-unit-of-work pattern, reworked
// around golang.org/x/sync/errgroup + semaphore for the bounded pool and
// sourcegraph/conc/panics for panic-safe worker goroutines.
package executor

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/council-ai/orchestrator-core/internal/breaker"
	"github.com/council-ai/orchestrator-core/internal/orchestrator"
)

// Parallelism returns the mode-derived worker pool size (spec.md §4.6),
// overridden by override if override > 0 (ORCH_PARALLELISM_OVERRIDE).
func Parallelism(mode orchestrator.ExecutionMode, override int) int {
	if override > 0 {
		return override
	}
	switch mode {
	case orchestrator.ModeFast:
		return 3
	case orchestrator.ModeBestQuality:
		return 7
	default:
		return 5
	}
}

// CallTimeout returns the mode-derived per-attempt timeout.
func CallTimeout(mode orchestrator.ExecutionMode) time.Duration {
	switch mode {
	case orchestrator.ModeFast:
		return 15 * time.Second
	case orchestrator.ModeBestQuality:
		return 60 * time.Second
	default:
		return 30 * time.Second
	}
}

// Breakers is the subset of breaker.Registry the Executor needs.
type Breakers interface {
	For(provider string) *breaker.Breaker
}

// HealthReporter lets the Executor push a Degraded signal into the
// Health Checker when an invocation fails for a reason that indicates
// the provider itself is unhealthy, rather than the request (spec.md
// §6: "auth and bad_request... mark the provider Degraded in the
// health view").
type HealthReporter interface {
	MarkDegraded(provider string)
}

// Executor runs subtasks against ranked candidates with bounded
// parallelism and breaker-aware fallback.
type Executor struct {
	invoker     orchestrator.ProviderInvoker
	breakers    Breakers
	health      HealthReporter
	sink        orchestrator.ProgressSink
	parallelism int
	callTimeout time.Duration
	now         func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithParallelism overrides the worker pool size.
func WithParallelism(n int) Option {
	return func(e *Executor) { e.parallelism = n }
}

// WithCallTimeout overrides the per-attempt timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Executor) { e.callTimeout = d }
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// WithHealthReporter wires a HealthReporter so DegradesProvider errors
// are pushed into the Health Checker. Optional; nil means no-op.
func WithHealthReporter(h HealthReporter) Option {
	return func(e *Executor) { e.health = h }
}

// New constructs an Executor for one request.
func New(invoker orchestrator.ProviderInvoker, breakers Breakers, sink orchestrator.ProgressSink, mode orchestrator.ExecutionMode, opts ...Option) *Executor {
	e := &Executor{
		invoker:     invoker,
		breakers:    breakers,
		sink:        sink,
		parallelism: Parallelism(mode, 0),
		callTimeout: CallTimeout(mode),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Unit pairs a Subtask with its CandidateRanking.
type Unit struct {
	Subtask orchestrator.Subtask
	Ranking orchestrator.CandidateRanking
}

// Run executes every unit under the Executor's bounded parallelism and
// returns one AgentResponse per unit, in the same order as units. It
// never returns an error itself; per-unit failure is represented in
// AgentResponse.Success/Error. The only error returned is from ctx
// cancellation racing the pool, surfaced so the Orchestrator can map it
// to Cancelled or Timeout.
func (e *Executor) Run(ctx context.Context, units []Unit) ([]orchestrator.AgentResponse, error) {
	responses := make([]orchestrator.AgentResponse, len(units))
	sem := semaphore.NewWeighted(int64(e.parallelism))
	g, gctx := errgroup.WithContext(ctx)

	for i, u := range units {
		i, u := i, u
		if err := sem.Acquire(gctx, 1); err != nil {
			return responses, err
		}
		g.Go(func() error {
			defer sem.Release(1)
			var rec panics.Catcher
			rec.Try(func() {
				responses[i] = e.runOne(gctx, u)
			})
			if recovered := rec.Recovered(); recovered != nil {
				responses[i] = orchestrator.AgentResponse{
					SubtaskID: u.Subtask.ID,
					Success:   false,
					Error:     orchestrator.NewError(orchestrator.CodeInternal, "executor worker panicked", recovered.AsError()),
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return responses, err
	}
	return responses, nil
}

// runOne walks a single unit's candidate list until one succeeds or the
// list is exhausted.
func (e *Executor) runOne(ctx context.Context, u Unit) orchestrator.AgentResponse {
	candidates := u.Ranking.Candidates
	if len(candidates) == 0 {
		err := orchestrator.NewError(orchestrator.CodeNoCapableModel, "no candidates for subtask", nil)
		e.emitFailure(u.Subtask, "", "", false, "", "no capable model", err)
		return orchestrator.AgentResponse{SubtaskID: u.Subtask.ID, Success: false, Error: err}
	}

	var lastErr error
	var lastFailedModel string
	for idx, cand := range candidates {
		select {
		case <-ctx.Done():
			err := orchestrator.NewError(orchestrator.CodeCancelled, "request cancelled", ctx.Err())
			return orchestrator.AgentResponse{SubtaskID: u.Subtask.ID, Success: false, Error: err}
		default:
		}

		b := e.breakers.For(cand.Provider)
		usedFallback := idx > 0
		if !b.IsAvailable(e.now()) {
			e.emitSkipped(u.Subtask, cand, usedFallback, lastFailedModel, "BreakerOpen")
			lastErr = orchestrator.NewError(orchestrator.CodeBreakerOpen, "breaker open for "+cand.Provider, nil)
			lastFailedModel = cand.ModelID
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		start := e.now()
		result, err := e.invoker.Invoke(callCtx, cand.Provider, cand.ModelID, u.Subtask.Content, orchestrator.InvokeParams{
			Timeout:     e.callTimeout,
			Temperature: 0.2,
		})
		elapsed := e.now().Sub(start)
		cancel()

		if err == nil {
			b.RecordSuccess()
			resp := orchestrator.AgentResponse{
				SubtaskID: u.Subtask.ID,
				ModelID:   cand.ModelID,
				Provider:  cand.Provider,
				Content:   result.Text,
				Success:   true,
				SelfAssessment: orchestrator.SelfAssessment{
					Confidence: confidenceFor(cand, result),
					Risk:       u.Subtask.Risk,
					EstCost:    costOf(cand, result),
					TokensIn:   result.InputTokens,
					TokensOut:  result.OutputTokens,
					ExecTime:   elapsed,
				},
			}
			e.emitSuccess(u.Subtask, cand, resp, usedFallback, lastFailedModel)
			return resp
		}

		category := categoryOf(err)
		if category.CountsAsBreakerFailure() {
			b.RecordFailure(e.now())
		}
		if category.DegradesProvider() && e.health != nil {
			e.health.MarkDegraded(cand.Provider)
		}
		e.emitFailure(u.Subtask, cand.ModelID, cand.Provider, usedFallback, lastFailedModel, err.Error(), err)
		lastErr = err
		lastFailedModel = cand.ModelID
	}

	failErr := orchestrator.NewError(orchestrator.CodeProviderTransport, "all candidates exhausted", lastErr)
	return orchestrator.AgentResponse{SubtaskID: u.Subtask.ID, Success: false, Error: failErr}
}

func confidenceFor(cand orchestrator.CandidateEntry, result orchestrator.InvokeResult) float64 {
	if result.Text == "" {
		return 0
	}
	return 0.5 + 0.5*clampUnit(cand.Score/100.0)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func costOf(cand orchestrator.CandidateEntry, result orchestrator.InvokeResult) float64 {
	return cand.EstimatedCost * float64(result.InputTokens+result.OutputTokens)
}

func categoryOf(err error) orchestrator.InvokeErrorCategory {
	if ie, ok := err.(*orchestrator.InvokeError); ok {
		return ie.Category
	}
	return orchestrator.InvokeUnknown
}

func (e *Executor) emitSuccess(st orchestrator.Subtask, cand orchestrator.CandidateEntry, resp orchestrator.AgentResponse, usedFallback bool, primaryFailed string) {
	if e.sink == nil {
		return
	}
	e.sink.Emit(orchestrator.ProgressEvent{
		Type:      orchestrator.EventExecutionProgress,
		Timestamp: e.now(),
		Payload: orchestrator.ExecutionProgressPayload{
			SubtaskID:          st.ID,
			ModelID:            cand.ModelID,
			Provider:           cand.Provider,
			Status:             orchestrator.ExecutionCompleted,
			Confidence:         resp.SelfAssessment.Confidence,
			Cost:               resp.SelfAssessment.EstCost,
			ExecutionTime:      resp.SelfAssessment.ExecTime,
			UsedFallback:       usedFallback,
			PrimaryModelFailed: primaryFailed,
		},
	})
}

func (e *Executor) emitFailure(st orchestrator.Subtask, modelID, provider string, usedFallback bool, primaryFailed, reason string, err error) {
	if e.sink == nil {
		return
	}
	e.sink.Emit(orchestrator.ProgressEvent{
		Type:      orchestrator.EventExecutionProgress,
		Timestamp: e.now(),
		Payload: orchestrator.ExecutionProgressPayload{
			SubtaskID:          st.ID,
			ModelID:            modelID,
			Provider:           provider,
			Status:             orchestrator.ExecutionFailed,
			UsedFallback:       usedFallback,
			PrimaryModelFailed: primaryFailed,
			FallbackReason:     reason,
			ErrorMessage:       err.Error(),
		},
	})
}

func (e *Executor) emitSkipped(st orchestrator.Subtask, cand orchestrator.CandidateEntry, usedFallback bool, primaryFailed, reason string) {
	if e.sink == nil {
		return
	}
	e.sink.Emit(orchestrator.ProgressEvent{
		Type:      orchestrator.EventExecutionProgress,
		Timestamp: e.now(),
		Payload: orchestrator.ExecutionProgressPayload{
			SubtaskID:          st.ID,
			ModelID:            cand.ModelID,
			Provider:           cand.Provider,
			Status:             orchestrator.ExecutionFailed,
			UsedFallback:       usedFallback,
			PrimaryModelFailed: primaryFailed,
			FallbackReason:     reason,
		},
	})
}
