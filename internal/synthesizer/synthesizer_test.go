package synthesizer

import (
	"testing"

	"github.com/council-ai/orchestrator-core/internal/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingSink struct {
	events []orchestrator.ProgressEvent
}

func (c *capturingSink) Emit(e orchestrator.ProgressEvent) {
	c.events = append(c.events, e)
}

func TestSynthesizer_EmitsStartedThenComplete(t *testing.T) {
	sink := &capturingSink{}
	s := New(nil, sink)
	winners := map[string]orchestrator.AgentResponse{
		"s1": {SubtaskID: "s1", ModelID: "m1", Content: "answer", SelfAssessment: orchestrator.SelfAssessment{Confidence: 0.8}},
	}
	resp := s.Synthesize([]string{"s1"}, winners, orchestrator.ModeBalanced)

	require.True(t, resp.Success)
	assert.Equal(t, "answer", resp.Content)
	require.Len(t, sink.events, 2)
	started := sink.events[0].Payload.(orchestrator.SynthesisProgressPayload)
	complete := sink.events[1].Payload.(orchestrator.SynthesisProgressPayload)
	assert.Equal(t, orchestrator.SynthesisStarted, started.Stage)
	assert.Equal(t, orchestrator.SynthesisComplete, complete.Stage)
}

func TestSynthesizer_BestQualityTakesMinConfidence(t *testing.T) {
	s := New(nil, nil)
	winners := map[string]orchestrator.AgentResponse{
		"s1": {SubtaskID: "s1", ModelID: "m1", Content: "a", SelfAssessment: orchestrator.SelfAssessment{Confidence: 0.9}},
		"s2": {SubtaskID: "s2", ModelID: "m2", Content: "b", SelfAssessment: orchestrator.SelfAssessment{Confidence: 0.4}},
	}
	resp := s.Synthesize([]string{"s1", "s2"}, winners, orchestrator.ModeBestQuality)
	assert.Equal(t, 0.4, resp.OverallConfidence)
}

func TestSynthesizer_PreservesSubtaskOrder(t *testing.T) {
	s := New(nil, nil)
	winners := map[string]orchestrator.AgentResponse{
		"s2": {SubtaskID: "s2", ModelID: "m2", Content: "second"},
		"s1": {SubtaskID: "s1", ModelID: "m1", Content: "first"},
	}
	resp := s.Synthesize([]string{"s1", "s2"}, winners, orchestrator.ModeBalanced)
	assert.Equal(t, "first\n\nsecond", resp.Content)
}

func TestSynthesizer_BestQualityFailsOnPartialSubtaskFailure(t *testing.T) {
	s := New(nil, nil)
	winners := map[string]orchestrator.AgentResponse{
		"s1": {SubtaskID: "s1", ModelID: "m1", Content: "a", SelfAssessment: orchestrator.SelfAssessment{Confidence: 0.9}},
		// s2 has no winner: it failed.
	}
	resp := s.Synthesize([]string{"s1", "s2"}, winners, orchestrator.ModeBestQuality)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.ErrorMessage)
}

func TestSynthesizer_BalancedModeStillMergesOnPartialSubtaskFailure(t *testing.T) {
	s := New(nil, nil)
	winners := map[string]orchestrator.AgentResponse{
		"s1": {SubtaskID: "s1", ModelID: "m1", Content: "a", SelfAssessment: orchestrator.SelfAssessment{Confidence: 0.9}},
	}
	resp := s.Synthesize([]string{"s1", "s2"}, winners, orchestrator.ModeBalanced)
	assert.True(t, resp.Success)
	assert.Equal(t, "a", resp.Content)
}

func TestSynthesizer_NoWinnersYieldsFailure(t *testing.T) {
	s := New(nil, nil)
	resp := s.Synthesize([]string{"s1"}, map[string]orchestrator.AgentResponse{}, orchestrator.ModeBalanced)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.ErrorMessage)
}

func TestSynthesizer_DistinctModelsUsed(t *testing.T) {
	s := New(nil, nil)
	winners := map[string]orchestrator.AgentResponse{
		"s1": {SubtaskID: "s1", ModelID: "m1", Content: "a"},
		"s2": {SubtaskID: "s2", ModelID: "m1", Content: "b"},
	}
	resp := s.Synthesize([]string{"s1", "s2"}, winners, orchestrator.ModeBalanced)
	assert.Equal(t, []string{"m1"}, resp.ModelsUsed)
}
