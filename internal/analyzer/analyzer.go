// Package analyzer implements the Analyzer component (spec.md §4.4):
// converting a raw request into (Intent, Complexity, []Subtask). The
// algorithm itself is an Open Question the spec leaves pluggable (see
// SPEC_FULL.md §12), so this package exposes a Strategy interface with
// one rule-based default implementation, in the style of the teacher's
// ModelSelector heuristics in internal/llm/models/selector.go (plain
// string/length matching, no ML).
package analyzer

import (
	"strings"

	"github.com/google/uuid"

	"github.com/council-ai/orchestrator-core/internal/orchestrator"
)

// MaxContentLength is the length cap past which content is treated as
// unusable input (spec.md §4.4 failure mode).
const MaxContentLength = 5000

// Result is the Strategy's output for one request.
type Result struct {
	Intent     orchestrator.Intent
	Complexity orchestrator.Complexity
	Subtasks   []orchestrator.Subtask
	Degraded   bool
}

// Strategy converts request content into an analysis Result. A Strategy
// must not block on network I/O; model-assisted strategies should run
// their own bounded calls internally and fall back to the default rules
// on failure.
type Strategy interface {
	Analyze(content string, mode orchestrator.ExecutionMode) Result
}

// Default is the rule-based Strategy grounded on simple heuristics: length
// and punctuation decide complexity, a handful of lexical cues decide
// intent and per-sentence decomposition, matching the teacher's
// non-ML, string-matching approach to selection heuristics.
type Default struct {
	// IDGenerator produces subtask ids; defaults to uuid.NewString.
	IDGenerator func() string
}

// NewDefault returns a ready-to-use Default strategy.
func NewDefault() *Default {
	return &Default{IDGenerator: uuid.NewString}
}

func (d *Default) genID() string {
	if d.IDGenerator != nil {
		return d.IDGenerator()
	}
	return uuid.NewString()
}

// Analyze implements Strategy.
func (d *Default) Analyze(content string, mode orchestrator.ExecutionMode) Result {
	trimmed := strings.TrimSpace(content)
	accuracy := orchestrator.DefaultAccuracyRequirement(mode)

	if trimmed == "" || len(trimmed) > MaxContentLength {
		degradedContent := trimmed
		if degradedContent == "" {
			degradedContent = content
		}
		return Result{
			Intent:     orchestrator.IntentQuestion,
			Complexity: orchestrator.ComplexitySimple,
			Degraded:   true,
			Subtasks: []orchestrator.Subtask{{
				ID:                  d.genID(),
				Content:             degradedContent,
				Kind:                orchestrator.KindReasoning,
				Priority:            0,
				Risk:                0.5,
				AccuracyRequirement: accuracy,
			}},
		}
	}

	intent := classifyIntent(trimmed)
	sentences := splitSentences(trimmed)
	complexity := classifyComplexity(trimmed, sentences)

	if complexity == orchestrator.ComplexitySimple || len(sentences) <= 1 {
		return Result{
			Intent:     intent,
			Complexity: orchestrator.ComplexitySimple,
			Subtasks: []orchestrator.Subtask{{
				ID:                  d.genID(),
				Content:             trimmed,
				Kind:                kindFor(intent, trimmed),
				Priority:            0,
				Risk:                riskFor(complexity),
				AccuracyRequirement: accuracy,
			}},
		}
	}

	subtasks := make([]orchestrator.Subtask, 0, len(sentences))
	for i, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		subtasks = append(subtasks, orchestrator.Subtask{
			ID:                  d.genID(),
			Content:             s,
			Kind:                kindFor(intent, s),
			Priority:            i,
			Risk:                riskFor(complexity),
			AccuracyRequirement: accuracy,
		})
	}
	if len(subtasks) == 0 {
		subtasks = append(subtasks, orchestrator.Subtask{
			ID:                  d.genID(),
			Content:             trimmed,
			Kind:                kindFor(intent, trimmed),
			Priority:            0,
			Risk:                riskFor(complexity),
			AccuracyRequirement: accuracy,
		})
	}

	return Result{Intent: intent, Complexity: complexity, Subtasks: subtasks}
}

func classifyIntent(content string) orchestrator.Intent {
	lower := strings.ToLower(content)
	switch {
	case strings.Contains(lower, "verify") || strings.Contains(lower, "is it true") || strings.Contains(lower, "fact check"):
		return orchestrator.IntentFactCheck
	case strings.Contains(lower, "write") || strings.Contains(lower, "generate") || strings.Contains(lower, "create") || strings.Contains(lower, "draft"):
		return orchestrator.IntentGeneration
	case strings.Contains(lower, "why") || strings.Contains(lower, "explain") || strings.Contains(lower, "reason") || strings.Contains(lower, "prove"):
		return orchestrator.IntentReasoning
	default:
		return orchestrator.IntentQuestion
	}
}

func classifyComplexity(content string, sentences []string) orchestrator.Complexity {
	switch {
	case len(sentences) >= 4 || len(content) > 800:
		return orchestrator.ComplexityComplex
	case len(sentences) >= 2 || len(content) > 200:
		return orchestrator.ComplexityModerate
	default:
		return orchestrator.ComplexitySimple
	}
}

func riskFor(c orchestrator.Complexity) float64 {
	switch c {
	case orchestrator.ComplexityComplex:
		return 0.6
	case orchestrator.ComplexityModerate:
		return 0.35
	default:
		return 0.15
	}
}

func kindFor(intent orchestrator.Intent, content string) orchestrator.TaskKind {
	lower := strings.ToLower(content)
	switch {
	case strings.Contains(lower, "code") || strings.Contains(lower, "function") || strings.Contains(lower, "bug") || strings.Contains(lower, "implement"):
		if strings.Contains(lower, "fix") || strings.Contains(lower, "bug") || strings.Contains(lower, "error") {
			return orchestrator.KindDebugging
		}
		return orchestrator.KindCodeGeneration
	case intent == orchestrator.IntentFactCheck:
		return orchestrator.KindFactChecking
	case intent == orchestrator.IntentGeneration:
		return orchestrator.KindCreativeOutput
	case strings.Contains(lower, "research") || strings.Contains(lower, "sources") || strings.Contains(lower, "compare"):
		return orchestrator.KindResearch
	default:
		return orchestrator.KindReasoning
	}
}

// splitSentences is a minimal sentence splitter on '.', '?', '!'
// boundaries, intentionally unsophisticated since decomposition quality
// itself is out of scope (spec.md §1 non-goals).
func splitSentences(content string) []string {
	var out []string
	var b strings.Builder
	for _, r := range content {
		b.WriteRune(r)
		if r == '.' || r == '?' || r == '!' {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if strings.TrimSpace(b.String()) != "" {
		out = append(out, b.String())
	}
	if len(out) == 0 {
		out = append(out, content)
	}
	return out
}
