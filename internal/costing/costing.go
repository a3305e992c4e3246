// Package costing aggregates per-request cost data from AgentResponses
// into the CostBreakdown and ProviderUsage views the Orchestrator
// attaches to a FinalResponse and hands to the CostRecorder collaborator
// (spec.md §4.9, §8 invariant 3). Grounded on the teacher's
// config.CostSummary/ModelCostSummary/ProviderCostSummary rollup shape
// in internal/config/cost_tracker.go, and on original_source's
// provider_usage_summary accumulation (SPEC_FULL.md §11).
package costing

import (
	"sort"

	"github.com/council-ai/orchestrator-core/internal/orchestrator"
)

// Aggregate builds a CostBreakdown and a per-provider usage summary from
// a request's AgentResponses. execTime is the wall-clock time of the
// whole request, not the sum of per-subtask times.
func Aggregate(responses []orchestrator.AgentResponse, execTime int64) (orchestrator.CostBreakdown, map[string]orchestrator.ProviderUsage) {
	perModel := make(map[string]*orchestrator.PerModelCost)
	perModelOrder := make([]string, 0)
	tokenUsage := make(map[string]*orchestrator.TokenUsage)
	perProvider := make(map[string]float64)
	usage := make(map[string]orchestrator.ProviderUsage)

	var total float64
	for _, r := range responses {
		if !r.Success || r.ModelID == "" {
			continue
		}
		cost := r.SelfAssessment.EstCost
		total += cost

		if _, ok := perModel[r.ModelID]; !ok {
			perModel[r.ModelID] = &orchestrator.PerModelCost{ModelID: r.ModelID, Provider: r.Provider}
			perModelOrder = append(perModelOrder, r.ModelID)
		}
		perModel[r.ModelID].Cost += cost

		if _, ok := tokenUsage[r.ModelID]; !ok {
			tokenUsage[r.ModelID] = &orchestrator.TokenUsage{ModelID: r.ModelID}
		}
		tokenUsage[r.ModelID].TokensIn += r.SelfAssessment.TokensIn
		tokenUsage[r.ModelID].TokensOut += r.SelfAssessment.TokensOut

		perProvider[r.Provider] += cost

		pu := usage[r.Provider]
		pu.Provider = r.Provider
		pu.SubtaskCount++
		pu.TotalCost += cost
		pu.TokensIn += r.SelfAssessment.TokensIn
		pu.TokensOut += r.SelfAssessment.TokensOut
		usage[r.Provider] = pu
	}

	sort.Strings(perModelOrder)
	perModelList := make([]orchestrator.PerModelCost, 0, len(perModelOrder))
	tokenList := make([]orchestrator.TokenUsage, 0, len(perModelOrder))
	for _, id := range perModelOrder {
		perModelList = append(perModelList, *perModel[id])
		tokenList = append(tokenList, *tokenUsage[id])
	}

	breakdown := orchestrator.CostBreakdown{
		TotalCost:       total,
		PerModelCost:    perModelList,
		PerProviderCost: perProvider,
		TokenUsage:      tokenList,
	}
	return breakdown, usage
}

// ToRecorderUsage groups successful responses into the slice shape
// CostRecorder.Record expects, one entry per model for the per-model
// granularity spec.md §6 describes for the collaborator call.
func ToRecorderUsage(responses []orchestrator.AgentResponse) []orchestrator.ProviderCostUsage {
	byModel := make(map[string]*orchestrator.ProviderCostUsage)
	order := make([]string, 0)
	for _, r := range responses {
		if !r.Success || r.ModelID == "" {
			continue
		}
		if _, ok := byModel[r.ModelID]; !ok {
			byModel[r.ModelID] = &orchestrator.ProviderCostUsage{Model: r.ModelID}
			order = append(order, r.ModelID)
		}
		u := byModel[r.ModelID]
		u.SubtaskCount++
		u.TotalCost += r.SelfAssessment.EstCost
		u.TokensIn += r.SelfAssessment.TokensIn
		u.TokensOut += r.SelfAssessment.TokensOut
	}
	sort.Strings(order)
	out := make([]orchestrator.ProviderCostUsage, 0, len(order))
	for _, id := range order {
		out = append(out, *byModel[id])
	}
	return out
}
