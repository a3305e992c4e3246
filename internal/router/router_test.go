package router

import (
	"testing"
	"time"

	"github.com/council-ai/orchestrator-core/internal/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	models []orchestrator.ModelDescriptor
}

func (f fakeCatalog) CapableOf(kind orchestrator.TaskKind) []orchestrator.ModelDescriptor {
	var out []orchestrator.ModelDescriptor
	for _, m := range f.models {
		if m.SupportsKind(kind) {
			out = append(out, m)
		}
	}
	return out
}

func TestRouter_EmptyCatalogYieldsEmptyRanking(t *testing.T) {
	r := New(fakeCatalog{})
	ranking := r.Rank(orchestrator.Subtask{ID: "s1", Kind: orchestrator.KindReasoning}, orchestrator.ModeBalanced, nil)
	assert.Empty(t, ranking.Candidates)
}

func TestRouter_PrimaryIsAvailableProvider(t *testing.T) {
	catalog := fakeCatalog{models: []orchestrator.ModelDescriptor{
		{ModelID: "m1", Provider: "p1", Capabilities: []orchestrator.TaskKind{orchestrator.KindReasoning}, Reliability: 0.5, TypicalLatency: 3 * time.Second},
		{ModelID: "m2", Provider: "p2", Capabilities: []orchestrator.TaskKind{orchestrator.KindReasoning}, Reliability: 0.95, TypicalLatency: time.Second},
	}}
	r := New(catalog)
	ranking := r.Rank(orchestrator.Subtask{ID: "s1", Kind: orchestrator.KindReasoning}, orchestrator.ModeBalanced, map[string]bool{"p2": true})

	primary, ok := ranking.Primary()
	require.True(t, ok)
	assert.Equal(t, "p2", primary.Provider)
}

func TestRouter_TieBreakByModelID(t *testing.T) {
	catalog := fakeCatalog{models: []orchestrator.ModelDescriptor{
		{ModelID: "zeta", Provider: "p1", Capabilities: []orchestrator.TaskKind{orchestrator.KindReasoning}, Reliability: 0.9},
		{ModelID: "alpha", Provider: "p1", Capabilities: []orchestrator.TaskKind{orchestrator.KindReasoning}, Reliability: 0.9},
	}}
	r := New(catalog)
	ranking := r.Rank(orchestrator.Subtask{ID: "s1", Kind: orchestrator.KindReasoning}, orchestrator.ModeBalanced, map[string]bool{"p1": true})
	require.Len(t, ranking.Candidates, 2)
	assert.Equal(t, "alpha", ranking.Candidates[0].ModelID)
}

func TestRouter_CapsAtFiveFallbacks(t *testing.T) {
	var models []orchestrator.ModelDescriptor
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	for _, id := range ids {
		models = append(models, orchestrator.ModelDescriptor{
			ModelID:      id,
			Provider:     "p1",
			Capabilities: []orchestrator.TaskKind{orchestrator.KindReasoning},
			Reliability:  0.8,
		})
	}
	r := New(fakeCatalog{models: models})
	ranking := r.Rank(orchestrator.Subtask{ID: "s1", Kind: orchestrator.KindReasoning}, orchestrator.ModeBalanced, map[string]bool{"p1": true})
	assert.LessOrEqual(t, len(ranking.Candidates), 6)
}

func TestRouter_UnavailableCandidateNeverWinsOnScoreAlone(t *testing.T) {
	catalog := fakeCatalog{models: []orchestrator.ModelDescriptor{
		// Free, instant, reliable, but its provider is not available: must
		// never be returned even though it would out-score p2 on every
		// scored axis.
		{ModelID: "unavailable-great", Provider: "p1", Capabilities: []orchestrator.TaskKind{orchestrator.KindReasoning}, Reliability: 0.99, CostPerInputToken: 0, CostPerOutputToken: 0, TypicalLatency: 0},
		// Expensive, slow, unreliable, but available: must win since it is
		// the only available candidate.
		{ModelID: "available-mediocre", Provider: "p2", Capabilities: []orchestrator.TaskKind{orchestrator.KindReasoning}, Reliability: 0.2, CostPerInputToken: 0.00008, CostPerOutputToken: 0.00008, TypicalLatency: 6 * time.Second},
	}}
	r := New(catalog)
	ranking := r.Rank(orchestrator.Subtask{ID: "s1", Kind: orchestrator.KindReasoning}, orchestrator.ModeBalanced, map[string]bool{"p2": true})

	require.Len(t, ranking.Candidates, 1)
	primary, ok := ranking.Primary()
	require.True(t, ok)
	assert.Equal(t, "p2", primary.Provider)
	assert.Equal(t, "available-mediocre", primary.ModelID)
}

func TestRouter_BestQualityFavorsReliabilityOverCost(t *testing.T) {
	catalog := fakeCatalog{models: []orchestrator.ModelDescriptor{
		{ModelID: "cheap", Provider: "p1", Capabilities: []orchestrator.TaskKind{orchestrator.KindReasoning}, Reliability: 0.5, CostPerInputToken: 0.0, CostPerOutputToken: 0.0},
		{ModelID: "reliable", Provider: "p1", Capabilities: []orchestrator.TaskKind{orchestrator.KindReasoning}, Reliability: 0.99, CostPerInputToken: 0.00005, CostPerOutputToken: 0.00005},
	}}
	r := New(catalog)
	avail := map[string]bool{"p1": true}
	ranking := r.Rank(orchestrator.Subtask{ID: "s1", Kind: orchestrator.KindReasoning}, orchestrator.ModeBestQuality, avail)
	primary, ok := ranking.Primary()
	require.True(t, ok)
	assert.Equal(t, "reliable", primary.ModelID)
}
