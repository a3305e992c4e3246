package costing

import (
	"math"
	"testing"

	"github.com/council-ai/orchestrator-core/internal/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_SumOfPerModelEqualsTotal(t *testing.T) {
	responses := []orchestrator.AgentResponse{
		{SubtaskID: "s1", ModelID: "m1", Provider: "p1", Success: true, SelfAssessment: orchestrator.SelfAssessment{EstCost: 0.01, TokensIn: 100, TokensOut: 50}},
		{SubtaskID: "s2", ModelID: "m2", Provider: "p2", Success: true, SelfAssessment: orchestrator.SelfAssessment{EstCost: 0.02, TokensIn: 200, TokensOut: 80}},
	}
	breakdown, usage := Aggregate(responses, 1000)

	var sum float64
	for _, pm := range breakdown.PerModelCost {
		sum += pm.Cost
	}
	assert.InDelta(t, breakdown.TotalCost, sum, 1e-9)
	assert.True(t, math.Abs(breakdown.TotalCost-0.03) < 1e-9)

	require.Contains(t, usage, "p1")
	assert.Equal(t, 1, usage["p1"].SubtaskCount)
}

func TestAggregate_IgnoresFailedResponses(t *testing.T) {
	responses := []orchestrator.AgentResponse{
		{SubtaskID: "s1", ModelID: "m1", Provider: "p1", Success: false, SelfAssessment: orchestrator.SelfAssessment{EstCost: 99}},
	}
	breakdown, usage := Aggregate(responses, 0)
	assert.Equal(t, 0.0, breakdown.TotalCost)
	assert.Empty(t, usage)
}

func TestToRecorderUsage_AggregatesPerModel(t *testing.T) {
	responses := []orchestrator.AgentResponse{
		{SubtaskID: "s1", ModelID: "m1", Success: true, SelfAssessment: orchestrator.SelfAssessment{EstCost: 0.01, TokensIn: 10, TokensOut: 5}},
		{SubtaskID: "s2", ModelID: "m1", Success: true, SelfAssessment: orchestrator.SelfAssessment{EstCost: 0.02, TokensIn: 20, TokensOut: 10}},
	}
	out := ToRecorderUsage(responses)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].SubtaskCount)
	assert.InDelta(t, 0.03, out[0].TotalCost, 1e-9)
}
