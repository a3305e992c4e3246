// Package synthesizer implements the Synthesizer (spec.md §4.8):
// merges arbitrated per-subtask responses into a single FinalResponse.
// Content merging is a pluggable Strategy, like the Analyzer, since the
// spec leaves the merge algorithm unspecified (SPEC_FULL.md §12).
package synthesizer

import (
	"strings"

	"github.com/council-ai/orchestrator-core/internal/orchestrator"
)

// Strategy merges ordered winning responses into final content.
type Strategy interface {
	Merge(ordered []orchestrator.AgentResponse) string
}

// DefaultJoin concatenates subtask contents in order with a blank line
// between them, the deterministic fallback the spec calls for.
type DefaultJoin struct{}

// Merge implements Strategy.
func (DefaultJoin) Merge(ordered []orchestrator.AgentResponse) string {
	parts := make([]string, 0, len(ordered))
	for _, r := range ordered {
		if strings.TrimSpace(r.Content) == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(r.Content))
	}
	return strings.Join(parts, "\n\n")
}

// Synthesizer produces a FinalResponse from arbitrated responses.
type Synthesizer struct {
	strategy Strategy
	sink     orchestrator.ProgressSink
}

// New constructs a Synthesizer. strategy defaults to DefaultJoin if nil.
func New(strategy Strategy, sink orchestrator.ProgressSink) *Synthesizer {
	if strategy == nil {
		strategy = DefaultJoin{}
	}
	return &Synthesizer{strategy: strategy, sink: sink}
}

// Synthesize merges winners (keyed by subtask id) in subtaskOrder,
// emitting SynthesisProgress{started} before and
// SynthesisProgress{complete} after, per spec.md §4.8. mode controls
// the overall_confidence aggregation: BestQuality takes the minimum of
// contributing confidences; other modes take the length-weighted mean.
//
// A partial subtask failure (some subtasks succeeded, at least one did
// not) is recovered as a minimum-viable merge of the winners that did
// succeed, per spec.md §7's propagation rule — except in BestQuality,
// which the spec explicitly excludes from that recovery path: a partial
// failure there surfaces as a failed FinalResponse instead of a
// silently-reduced success.
func (s *Synthesizer) Synthesize(subtaskOrder []string, winners map[string]orchestrator.AgentResponse, mode orchestrator.ExecutionMode) orchestrator.FinalResponse {
	s.emit(orchestrator.SynthesisProgressPayload{Stage: orchestrator.SynthesisStarted})

	ordered := make([]orchestrator.AgentResponse, 0, len(subtaskOrder))
	for _, id := range subtaskOrder {
		if r, ok := winners[id]; ok {
			ordered = append(ordered, r)
		}
	}

	if len(ordered) == 0 {
		resp := orchestrator.FinalResponse{
			Success:      false,
			ErrorMessage: "no successful responses to synthesize",
		}
		s.emit(orchestrator.SynthesisProgressPayload{Stage: orchestrator.SynthesisComplete})
		return resp
	}

	if mode == orchestrator.ModeBestQuality && len(ordered) < len(subtaskOrder) {
		resp := orchestrator.FinalResponse{
			Success:      false,
			ErrorMessage: "one or more subtasks failed; best_quality mode does not permit a partial merge",
		}
		s.emit(orchestrator.SynthesisProgressPayload{Stage: orchestrator.SynthesisComplete})
		return resp
	}

	content := s.strategy.Merge(ordered)
	confidence := aggregateConfidence(ordered, mode)
	modelsUsed := distinctModels(ordered)

	s.emit(orchestrator.SynthesisProgressPayload{
		Stage:             orchestrator.SynthesisComplete,
		OverallConfidence: confidence,
		ModelsUsed:        modelsUsed,
	})

	return orchestrator.FinalResponse{
		Content:           content,
		OverallConfidence: confidence,
		ModelsUsed:        modelsUsed,
		Success:           true,
	}
}

func (s *Synthesizer) emit(payload orchestrator.SynthesisProgressPayload) {
	if s.sink == nil {
		return
	}
	s.sink.Emit(orchestrator.ProgressEvent{
		Type:    orchestrator.EventSynthesisProgress,
		Payload: payload,
	})
}

func aggregateConfidence(ordered []orchestrator.AgentResponse, mode orchestrator.ExecutionMode) float64 {
	if mode == orchestrator.ModeBestQuality {
		min := ordered[0].SelfAssessment.Confidence
		for _, r := range ordered[1:] {
			if r.SelfAssessment.Confidence < min {
				min = r.SelfAssessment.Confidence
			}
		}
		return min
	}

	var weightedSum, totalWeight float64
	for _, r := range ordered {
		weight := float64(len(r.Content))
		if weight == 0 {
			weight = 1
		}
		weightedSum += r.SelfAssessment.Confidence * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

func distinctModels(ordered []orchestrator.AgentResponse) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range ordered {
		if r.ModelID == "" || seen[r.ModelID] {
			continue
		}
		seen[r.ModelID] = true
		out = append(out, r.ModelID)
	}
	return out
}
