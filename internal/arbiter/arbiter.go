// Package arbiter implements the Arbiter (spec.md §4.7): when multiple
// successful AgentResponses exist for the same subtask, it picks a
// winner and records the reasoning. Grounded on the teacher's
// calculateModelScore tie-break ladder in
// internal/llm/models/selector.go (the same descending-then-ascending
// tie-break chain is reused here for confidence/risk/cost/model_id).
package arbiter

import (
	"sort"

	"github.com/council-ai/orchestrator-core/internal/orchestrator"
)

// Decision is one resolved conflict.
type Decision struct {
	SubtaskID        string
	ChosenResponseID string // model_id of the winning response
	Reasoning        string
	Confidence       float64
}

// Result is the Arbiter's output for a whole request.
type Result struct {
	Winners   map[string]orchestrator.AgentResponse // subtask_id -> winner
	Decisions []Decision
	Conflicts int
}

// Arbiter resolves duplicate successful responses per subtask.
type Arbiter struct{}

// New constructs an Arbiter. The default policy has no configuration.
func New() *Arbiter { return &Arbiter{} }

// Resolve groups responses by SubtaskID and picks one winner per group.
// Failed responses are ignored for arbitration purposes; a subtask with
// zero successful responses has no entry in Result.Winners.
func (a *Arbiter) Resolve(responses []orchestrator.AgentResponse) Result {
	bySubtask := make(map[string][]orchestrator.AgentResponse)
	order := make([]string, 0)
	for _, r := range responses {
		if !r.Success {
			continue
		}
		if _, seen := bySubtask[r.SubtaskID]; !seen {
			order = append(order, r.SubtaskID)
		}
		bySubtask[r.SubtaskID] = append(bySubtask[r.SubtaskID], r)
	}

	res := Result{Winners: make(map[string]orchestrator.AgentResponse)}
	for _, subtaskID := range order {
		group := bySubtask[subtaskID]
		winner := pickWinner(group)
		res.Winners[subtaskID] = winner

		if len(group) > 1 {
			res.Conflicts++
			res.Decisions = append(res.Decisions, Decision{
				SubtaskID:        subtaskID,
				ChosenResponseID: winner.ModelID,
				Reasoning:        "highest self-assessed confidence, tie-broken by risk/cost/model_id",
				Confidence:       winner.SelfAssessment.Confidence,
			})
		}
	}
	return res
}

func pickWinner(group []orchestrator.AgentResponse) orchestrator.AgentResponse {
	best := group[0]
	for _, cand := range group[1:] {
		if better(cand, best) {
			best = cand
		}
	}
	return best
}

func better(a, b orchestrator.AgentResponse) bool {
	if a.SelfAssessment.Confidence != b.SelfAssessment.Confidence {
		return a.SelfAssessment.Confidence > b.SelfAssessment.Confidence
	}
	if a.SelfAssessment.Risk != b.SelfAssessment.Risk {
		return a.SelfAssessment.Risk < b.SelfAssessment.Risk
	}
	if a.SelfAssessment.EstCost != b.SelfAssessment.EstCost {
		return a.SelfAssessment.EstCost < b.SelfAssessment.EstCost
	}
	return a.ModelID < b.ModelID
}

// SortedSubtaskIDs is a helper for callers that need deterministic
// iteration over a Result's winners.
func SortedSubtaskIDs(winners map[string]orchestrator.AgentResponse) []string {
	ids := make([]string, 0, len(winners))
	for id := range winners {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
