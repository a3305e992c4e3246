package progress

import (
	"context"
	"time"

	"github.com/council-ai/orchestrator-core/internal/orchestrator"
)

// EventBus specializes Bus for orchestrator.ProgressEvent and implements
// orchestrator.ProgressSink, so it can be handed straight to an
// Orchestrator as its sink.
type EventBus struct {
	bus *Bus[orchestrator.ProgressEvent]
}

// NewEventBus constructs an EventBus with the spec's default buffer
// size (64 events per subscriber).
func NewEventBus() *EventBus {
	return &EventBus{bus: New[orchestrator.ProgressEvent](isTerminalEvent)}
}

func isTerminalEvent(e orchestrator.ProgressEvent) bool {
	return e.Type.IsTerminal()
}

// Emit implements orchestrator.ProgressSink.
func (b *EventBus) Emit(event orchestrator.ProgressEvent) {
	dropped := orchestrator.ProgressEvent{
		Type:      orchestrator.EventProgressDropped,
		Timestamp: time.Now(),
		RequestID: event.RequestID,
	}
	b.bus.Publish(event, dropped)
}

// Subscribe registers a new consumer of this bus's events.
func (b *EventBus) Subscribe(ctx context.Context) <-chan orchestrator.ProgressEvent {
	return b.bus.Subscribe(ctx)
}

// Close shuts the underlying bus down.
func (b *EventBus) Close() { b.bus.Close() }
