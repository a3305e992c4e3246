// Package router implements the Router / Cost Optimizer (spec.md §4.5):
// for one subtask it filters the Model Registry to available+capable
// descriptors, scores them with a weighted formula, and returns an
// ordered CandidateRanking. Grounded on the teacher's weighted scoring
// approach in internal/llm/models/selector.go's calculateModelScore
// (quality/cost/speed weighting adjusted by preferred-speed), adapted to
// the spec's fixed five-component formula and mode adjustments.
package router

import (
	"sort"

	"github.com/council-ai/orchestrator-core/internal/orchestrator"
)

const maxFallbacks = 5

// referenceMaxCostPerToken and referenceMaxLatencyNormal normalize the Cost and
// Latency score components into [0,100]; Fast mode tightens the latency
// reference to prefer snappier models per spec.md §4.5.
const (
	referenceMaxCostPerToken  = 0.00008
	referenceMaxLatencyNormal = 6 * 1_000_000_000 // 6s, expressed in ns via time.Duration at call sites
)

// Catalog is the read subset of the Model Registry the Router needs.
type Catalog interface {
	CapableOf(kind orchestrator.TaskKind) []orchestrator.ModelDescriptor
}

// Router scores and ranks candidates for a subtask.
type Router struct {
	catalog Catalog
}

// New constructs a Router over catalog.
func New(catalog Catalog) *Router {
	return &Router{catalog: catalog}
}

// weights for one execution mode, per spec.md §4.5's adjustment rule.
// availability no longer carries a score weight: an unavailable provider
// is filtered out of the candidate pool before scoring, not penalized
// within it, per spec.md §4.5's two-stage filter-then-score rule.
type weights struct {
	cost, latency, capability, reliability float64
	referenceMaxLatencyNs                  float64
}

func weightsFor(mode orchestrator.ExecutionMode) weights {
	w := weights{
		cost:                  0.25,
		latency:               0.15,
		capability:            0.10,
		reliability:           0.10,
		referenceMaxLatencyNs: float64(referenceMaxLatencyNormal),
	}
	switch mode {
	case orchestrator.ModeFast:
		w.referenceMaxLatencyNs = float64(2 * 1_000_000_000)
	case orchestrator.ModeBestQuality:
		w.cost -= 0.10
		w.reliability += 0.10
	}
	return w
}

// Rank returns the CandidateRanking for subtask given the set of
// currently available providers. Candidates are first filtered to
// descriptors whose capability set contains subtask.Kind AND whose
// provider is in available, then scored and sorted; an unavailable
// provider never enters the pool, so Primary()'s provider is always in
// available whenever the ranking is non-empty (spec.md §8 invariant 6).
// An empty ranking signals NoCapableModel (fatal for the subtask, per
// spec.md §4.5).
func (r *Router) Rank(subtask orchestrator.Subtask, mode orchestrator.ExecutionMode, available map[string]bool) orchestrator.CandidateRanking {
	w := weightsFor(mode)
	candidates := r.catalog.CapableOf(subtask.Kind)

	type scored struct {
		desc  orchestrator.ModelDescriptor
		score float64
	}
	var pool []scored
	for _, d := range candidates {
		if !available[d.Provider] {
			continue
		}
		pool = append(pool, scored{desc: d, score: score(d, w)})
	}

	sort.Slice(pool, func(i, j int) bool {
		if pool[i].score != pool[j].score {
			return pool[i].score > pool[j].score
		}
		ci := avgTokenCost(pool[i].desc)
		cj := avgTokenCost(pool[j].desc)
		if ci != cj {
			return ci < cj
		}
		return pool[i].desc.ModelID < pool[j].desc.ModelID
	})

	entries := make([]orchestrator.CandidateEntry, 0, len(pool))
	for _, p := range pool {
		entries = append(entries, orchestrator.CandidateEntry{
			ModelID:       p.desc.ModelID,
			Provider:      p.desc.Provider,
			Score:         p.score,
			Reasoning:     "capable and available",
			EstimatedCost: avgTokenCost(p.desc),
			EstimatedTime: p.desc.TypicalLatency,
		})
	}
	if len(entries) > 1+maxFallbacks {
		entries = entries[:1+maxFallbacks]
	}

	return orchestrator.CandidateRanking{SubtaskID: subtask.ID, Candidates: entries}
}

func score(d orchestrator.ModelDescriptor, w weights) float64 {
	cost := avgTokenCost(d)
	costScore := 100.0 * (1 - cost/referenceMaxCostPerToken)
	costScore = clamp(costScore, 0, 100)

	latencyNs := float64(d.TypicalLatency)
	latencyScore := 100.0 * (1 - latencyNs/w.referenceMaxLatencyNs)
	latencyScore = clamp(latencyScore, 0, 100)

	capScore := 20.0 * float64(len(d.Capabilities))
	capScore = clamp(capScore, 0, 100)

	reliabilityScore := clamp(100.0*d.Reliability, 0, 100)

	return w.cost*costScore +
		w.latency*latencyScore +
		w.capability*capScore +
		w.reliability*reliabilityScore
}

func avgTokenCost(d orchestrator.ModelDescriptor) float64 {
	return (d.CostPerInputToken + d.CostPerOutputToken) / 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
