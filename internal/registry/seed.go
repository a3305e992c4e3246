package registry

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/council-ai/orchestrator-core/internal/orchestrator"
)

// seedFile mirrors the shape of the TOML catalog (the compiled-in
// DefaultCatalogTOML, or an operator-supplied file), analogous to the
// teacher's hardcoded frontier-model table in models.ModelRegistry but
// kept as TOML so operators can add models without a rebuild.
type seedFile struct {
	Model []seedModel `toml:"model"`
}

type seedModel struct {
	ModelID            string   `toml:"model_id"`
	Provider           string   `toml:"provider"`
	ProviderModelName  string   `toml:"provider_model_name"`
	Capabilities       []string `toml:"capabilities"`
	CostPerInputToken  float64  `toml:"cost_per_input_token"`
	CostPerOutputToken float64  `toml:"cost_per_output_token"`
	TypicalLatencyMs   int64    `toml:"typical_latency_ms"`
	ContextWindow      int      `toml:"context_window"`
	Reliability        float64  `toml:"reliability"`
	IsLocal            bool     `toml:"is_local"`
}

// LoadTOML parses a TOML catalog document and registers every entry. It
// returns the number of models registered.
func (r *Registry) LoadTOML(data []byte) (int, error) {
	var sf seedFile
	if _, err := toml.Decode(string(data), &sf); err != nil {
		return 0, fmt.Errorf("registry: decode seed catalog: %w", err)
	}

	descs := make([]orchestrator.ModelDescriptor, 0, len(sf.Model))
	for _, sm := range sf.Model {
		kinds := make([]orchestrator.TaskKind, 0, len(sm.Capabilities))
		for _, c := range sm.Capabilities {
			kinds = append(kinds, orchestrator.TaskKind(c))
		}
		descs = append(descs, orchestrator.ModelDescriptor{
			ModelID:            sm.ModelID,
			Provider:           sm.Provider,
			ProviderModelName:  sm.ProviderModelName,
			Capabilities:       kinds,
			CostPerInputToken:  sm.CostPerInputToken,
			CostPerOutputToken: sm.CostPerOutputToken,
			TypicalLatency:     time.Duration(sm.TypicalLatencyMs) * time.Millisecond,
			ContextWindow:      sm.ContextWindow,
			Reliability:        sm.Reliability,
			IsLocal:            sm.IsLocal,
		})
	}
	r.RegisterAll(descs)
	return len(descs), nil
}

// DefaultCatalogTOML is the built-in seed catalog used when no
// operator-supplied file is configured, grounded on the frontier models
// hardcoded in the teacher's models.ModelRegistry (Claude/GPT/Gemini
// tiers) plus a local fallback entry.
const DefaultCatalogTOML = `
[[model]]
model_id = "claude-opus-4"
provider = "anthropic"
provider_model_name = "claude-opus-4-20250514"
capabilities = ["reasoning", "research", "code_generation", "creative_output", "fact_checking", "debugging"]
cost_per_input_token = 0.000015
cost_per_output_token = 0.000075
typical_latency_ms = 4500
context_window = 200000
reliability = 0.97
is_local = false

[[model]]
model_id = "claude-sonnet-4"
provider = "anthropic"
provider_model_name = "claude-sonnet-4-20250514"
capabilities = ["reasoning", "code_generation", "creative_output", "debugging"]
cost_per_input_token = 0.000003
cost_per_output_token = 0.000015
typical_latency_ms = 2200
context_window = 200000
reliability = 0.96
is_local = false

[[model]]
model_id = "gpt-4o"
provider = "openai"
provider_model_name = "gpt-4o"
capabilities = ["reasoning", "research", "code_generation", "fact_checking"]
cost_per_input_token = 0.0000025
cost_per_output_token = 0.00001
typical_latency_ms = 1800
context_window = 128000
reliability = 0.95
is_local = false

[[model]]
model_id = "gpt-4o-mini"
provider = "openai"
provider_model_name = "gpt-4o-mini"
capabilities = ["code_generation", "debugging", "fact_checking"]
cost_per_input_token = 0.00000015
cost_per_output_token = 0.0000006
typical_latency_ms = 900
context_window = 128000
reliability = 0.94
is_local = false

[[model]]
model_id = "gemini-2.0-flash"
provider = "google"
provider_model_name = "gemini-2.0-flash"
capabilities = ["research", "creative_output", "fact_checking"]
cost_per_input_token = 0.0000001
cost_per_output_token = 0.0000004
typical_latency_ms = 1100
context_window = 1000000
reliability = 0.93
is_local = false

[[model]]
model_id = "llama-3.1-70b-local"
provider = "local"
provider_model_name = "llama-3.1-70b-instruct"
capabilities = ["reasoning", "code_generation", "debugging"]
cost_per_input_token = 0.0
cost_per_output_token = 0.0
typical_latency_ms = 3200
context_window = 128000
reliability = 0.88
is_local = true
`
