package orchestrator

import (
	"context"
	"time"
)

// InvokeParams carries per-call parameters to a ProviderInvoker.
type InvokeParams struct {
	Timeout     time.Duration
	Temperature float64
}

// InvokeResult is what a successful ProviderInvoker.Invoke call returns.
type InvokeResult struct {
	Text         string
	InputTokens  int
	OutputTokens int
	ElapsedMs    int64
}

// ProviderInvoker is the external collaborator that actually calls a
// named model with a prompt (spec.md §6). The core never implements
// concrete provider HTTP clients; it only consumes this capability.
type ProviderInvoker interface {
	Invoke(ctx context.Context, provider, modelName, prompt string, params InvokeParams) (InvokeResult, error)
}

// ProgressSink is the external collaborator events are emitted to. Emit
// must be non-blocking from the caller's viewpoint and idempotent.
type ProgressSink interface {
	Emit(event ProgressEvent)
}

// ProviderCostUsage is one line of the per-provider cost report handed
// to CostRecorder.
type ProviderCostUsage struct {
	Model        string
	SubtaskCount int
	TotalCost    float64
	TokensIn     int
	TokensOut    int
}

// CostRecorder persists per-provider cost aggregates. Recording failures
// must never fail the user-visible request (spec.md §7).
type CostRecorder interface {
	Record(requestID string, usage []ProviderCostUsage)
}
