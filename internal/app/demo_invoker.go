package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/council-ai/orchestrator-core/internal/orchestrator"
)

// DemoInvoker is a stand-in ProviderInvoker for the demo CLI: it never
// calls a real provider, just simulates latency and an occasional
// transient failure so the fallback/breaker machinery has something to
// exercise. Not suitable for production use; a real deployment supplies
// its own ProviderInvoker per provider (spec.md §1, §6).
type DemoInvoker struct {
	rng        *rand.Rand
	failRate   float64
	minLatency time.Duration
	maxLatency time.Duration
}

// NewDemoInvoker constructs a DemoInvoker with a fixed seed for
// reproducible demo runs.
func NewDemoInvoker(seed int64, failRate float64) *DemoInvoker {
	return &DemoInvoker{
		rng:        rand.New(rand.NewSource(seed)),
		failRate:   failRate,
		minLatency: 50 * time.Millisecond,
		maxLatency: 400 * time.Millisecond,
	}
}

// Invoke implements orchestrator.ProviderInvoker.
func (d *DemoInvoker) Invoke(ctx context.Context, provider, modelName, prompt string, params orchestrator.InvokeParams) (orchestrator.InvokeResult, error) {
	latency := d.minLatency + time.Duration(d.rng.Int63n(int64(d.maxLatency-d.minLatency)))

	select {
	case <-time.After(latency):
	case <-ctx.Done():
		return orchestrator.InvokeResult{}, &orchestrator.InvokeError{Category: orchestrator.InvokeTimeout, Message: ctx.Err().Error()}
	}

	if d.rng.Float64() < d.failRate {
		return orchestrator.InvokeResult{}, &orchestrator.InvokeError{
			Category: orchestrator.InvokeTransport,
			Message:  fmt.Sprintf("simulated transport error from %s/%s", provider, modelName),
		}
	}

	inputTokens := len(prompt) / 4
	if inputTokens == 0 {
		inputTokens = 1
	}
	outputTokens := 40 + d.rng.Intn(200)

	return orchestrator.InvokeResult{
		Text:         fmt.Sprintf("[%s/%s] response to: %s", provider, modelName, prompt),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		ElapsedMs:    latency.Milliseconds(),
	}, nil
}

// DemoProber is a stand-in health.Prober for the demo CLI: it simulates
// a probe with the same failure rate as DemoInvoker so the Health
// Checker has something real to report instead of always-healthy.
type DemoProber struct {
	rng      *rand.Rand
	failRate float64
}

// NewDemoProber constructs a DemoProber sharing the demo's failure rate.
func NewDemoProber(seed int64, failRate float64) *DemoProber {
	return &DemoProber{rng: rand.New(rand.NewSource(seed)), failRate: failRate}
}

// Probe implements health.Prober.
func (d *DemoProber) Probe(ctx context.Context, provider string) error {
	select {
	case <-time.After(10 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	if d.rng.Float64() < d.failRate {
		return fmt.Errorf("simulated probe failure for %s", provider)
	}
	return nil
}

// DemoCostRecorder logs recorded usage instead of persisting it anywhere.
type DemoCostRecorder struct {
	OnRecord func(requestID string, usage []orchestrator.ProviderCostUsage)
}

// Record implements orchestrator.CostRecorder.
func (d *DemoCostRecorder) Record(requestID string, usage []orchestrator.ProviderCostUsage) {
	if d.OnRecord != nil {
		d.OnRecord(requestID, usage)
	}
}
