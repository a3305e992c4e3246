// Package registry implements the Model Registry (spec.md §4.1): a
// thread-safe catalog of known models, adapted from the teacher's
// internal/llm/models.ModelRegistry (sync.RWMutex-guarded map, stable
// iteration via sorted keys, mutation through explicit Register/Remove
// calls rather than direct map access).
package registry

import (
	"sort"
	"sync"

	"github.com/council-ai/orchestrator-core/internal/orchestrator"
)

// Registry is a thread-safe catalog of ModelDescriptor entries keyed by
// ModelID.
type Registry struct {
	mu     sync.RWMutex
	models map[string]orchestrator.ModelDescriptor
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		models: make(map[string]orchestrator.ModelDescriptor),
	}
}

// Register adds or replaces a ModelDescriptor.
func (r *Registry) Register(m orchestrator.ModelDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[m.ModelID] = m
}

// RegisterAll registers every descriptor in ms.
func (r *Registry) RegisterAll(ms []orchestrator.ModelDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range ms {
		r.models[m.ModelID] = m
	}
}

// Remove deletes a model from the catalog, if present.
func (r *Registry) Remove(modelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.models, modelID)
}

// Get returns the descriptor for modelID, if present.
func (r *Registry) Get(modelID string) (orchestrator.ModelDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[modelID]
	return m, ok
}

// All returns every registered descriptor, sorted by ModelID for
// deterministic iteration order.
func (r *Registry) All() []orchestrator.ModelDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]orchestrator.ModelDescriptor, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelID < out[j].ModelID })
	return out
}

// CapableOf returns every registered descriptor that declares support
// for kind, sorted by ModelID for deterministic tie-breaking downstream
// in the Router.
func (r *Registry) CapableOf(kind orchestrator.TaskKind) []orchestrator.ModelDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]orchestrator.ModelDescriptor, 0)
	for _, m := range r.models {
		if m.SupportsKind(kind) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelID < out[j].ModelID })
	return out
}

// ByProvider returns every registered descriptor for the given provider,
// sorted by ModelID.
func (r *Registry) ByProvider(provider string) []orchestrator.ModelDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]orchestrator.ModelDescriptor, 0)
	for _, m := range r.models {
		if m.Provider == provider {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelID < out[j].ModelID })
	return out
}

// Len reports how many models are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}
