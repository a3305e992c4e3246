// Package availability implements the Provider Availability Oracle
// (spec.md §4.2): at construction it reads the process environment to
// decide which providers are configured, grounded on the teacher's
// determineProviderType/credential-lookup heuristics in
// internal/llm/providers/factory.go and on original_source's
// provider_health_checker.py per-provider client construction from
// environment variables.
package availability

import (
	"os"
	"sort"
	"sync"
)

// ProviderSpec names the environment variable(s) that make a provider
// configured: a credential var for hosted providers, or an endpoint var
// for the local provider.
type ProviderSpec struct {
	Provider       string
	CredentialVar  string
	EndpointVar    string
}

// Oracle is process-wide, read-only after construction except for the
// derived availability view, which the Health Checker refreshes.
type Oracle struct {
	specs []ProviderSpec

	mu          sync.RWMutex
	configured  map[string]string // provider -> credential or endpoint value
	available   map[string]bool
}

// New constructs an Oracle by reading the environment for each spec. A
// provider is configured iff its credential variable (or, for specs with
// only an EndpointVar, its endpoint variable) is set and non-empty.
func New(specs []ProviderSpec, lookup func(string) string) *Oracle {
	if lookup == nil {
		lookup = os.Getenv
	}
	o := &Oracle{
		specs:      specs,
		configured: make(map[string]string),
		available:  make(map[string]bool),
	}
	for _, s := range specs {
		var value string
		switch {
		case s.CredentialVar != "":
			value = lookup(s.CredentialVar)
		case s.EndpointVar != "":
			value = lookup(s.EndpointVar)
		}
		if value != "" {
			o.configured[s.Provider] = value
			o.available[s.Provider] = true
		}
	}
	return o
}

// Configured returns the set of providers considered configured,
// sorted for deterministic iteration.
func (o *Oracle) Configured() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]string, 0, len(o.configured))
	for p := range o.configured {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Credential returns the configured credential/endpoint value for
// provider, if any.
func (o *Oracle) Credential(provider string) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.configured[provider]
	return v, ok
}

// IsConfigured reports whether provider has a credential/endpoint set.
func (o *Oracle) IsConfigured(provider string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.configured[provider]
	return ok
}

// Available returns the subset of configured providers currently deemed
// usable, sorted. Until SetAvailable is called for a provider, a
// configured provider defaults to available.
func (o *Oracle) Available() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]string, 0, len(o.available))
	for p, ok := range o.available {
		if ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// IsAvailable reports whether provider is both configured and currently
// marked available.
func (o *Oracle) IsAvailable(provider string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.available[provider]
}

// SetAvailable updates the derived availability view for provider. The
// app wiring's availability adapter calls this on each Refresh from the
// Health Checker's Status; it is the only mutation path after
// construction.
func (o *Oracle) SetAvailable(provider string, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, configured := o.configured[provider]; !configured {
		return
	}
	o.available[provider] = ok
}

// HasAnyConfigured reports whether at least one provider is configured;
// the Orchestrator refuses new requests when this is false.
func (o *Oracle) HasAnyConfigured() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.configured) > 0
}
