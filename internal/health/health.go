// Package health implements the Provider Health Checker (spec.md
// §4.11): refreshes per-provider status with a short TTL cache and a
// bounded probe budget, integrating with the Circuit Breaker to
// classify Open providers as Down and HalfOpen providers as Degraded
// regardless of probe outcome. Grounded on original_source's
// provider_health_checker.py (CACHE_TTL=60, TIMEOUT=10.0, per-provider
// client construction) and the teacher's
// providers.ProviderHealthChecker breaker-registration pattern in
// internal/llm/providers/retry.go.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/council-ai/orchestrator-core/internal/breaker"
	"github.com/council-ai/orchestrator-core/internal/orchestrator"
)

const (
	defaultCacheTTL    = 60 * time.Second
	defaultProbeBudget = 10 * time.Second
)

// Prober performs a single on-demand liveness probe for provider. It
// must respect ctx's deadline; Checker wraps every call with its probe
// budget (defaultProbeBudget unless set with WithProbeBudget).
type Prober interface {
	Probe(ctx context.Context, provider string) error
}

// ProberFunc adapts a plain function to Prober.
type ProberFunc func(ctx context.Context, provider string) error

func (f ProberFunc) Probe(ctx context.Context, provider string) error { return f(ctx, provider) }

// Breakers is the subset of breaker.Registry the Checker needs.
type Breakers interface {
	For(provider string) *breaker.Breaker
}

// Checker caches ProviderHealth readings with a TTL and refreshes them
// via Prober on demand.
type Checker struct {
	mu        sync.Mutex
	cache     map[string]orchestrator.ProviderHealth
	prober    Prober
	breakers  Breakers
	ttl       time.Duration
	probeTime time.Duration
	now       func() time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithTTL overrides the default 60s cache TTL.
func WithTTL(d time.Duration) Option { return func(c *Checker) { c.ttl = d } }

// WithProbeBudget overrides the default 10s probe timeout.
func WithProbeBudget(d time.Duration) Option { return func(c *Checker) { c.probeTime = d } }

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option { return func(c *Checker) { c.now = now } }

// New constructs a Checker.
func New(prober Prober, breakers Breakers, opts ...Option) *Checker {
	c := &Checker{
		cache:     make(map[string]orchestrator.ProviderHealth),
		prober:    prober,
		breakers:  breakers,
		ttl:       defaultCacheTTL,
		probeTime: defaultProbeBudget,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the cached ProviderHealth for provider, triggering a
// fresh probe if the cache entry is absent or stale.
func (c *Checker) Status(ctx context.Context, provider string) orchestrator.ProviderHealth {
	c.mu.Lock()
	cached, ok := c.cache[provider]
	fresh := ok && c.now().Sub(cached.LastCheckTime) < c.ttl
	c.mu.Unlock()

	if fresh {
		return c.applyBreakerOverride(provider, cached)
	}
	return c.refresh(ctx, provider)
}

// refresh always performs a probe (bounded by the probe budget) and
// updates the cache, regardless of TTL.
func (c *Checker) refresh(ctx context.Context, provider string) orchestrator.ProviderHealth {
	probeCtx, cancel := context.WithTimeout(ctx, c.probeTime)
	defer cancel()

	start := c.now()
	err := c.prober.Probe(probeCtx, provider)
	elapsed := c.now().Sub(start)
	ms := elapsed.Milliseconds()

	health := orchestrator.ProviderHealth{
		Provider:      provider,
		LastCheckTime: c.now(),
		ResponseMs:    &ms,
	}
	if err != nil {
		health.Status = orchestrator.HealthDown
		health.Error = err.Error()
	} else {
		health.Status = orchestrator.HealthHealthy
	}

	c.mu.Lock()
	c.cache[provider] = health
	c.mu.Unlock()

	return c.applyBreakerOverride(provider, health)
}

// applyBreakerOverride enforces spec.md §4.11's integration rule: an
// Open breaker always reports Down; a HalfOpen breaker always reports
// Degraded, independent of the underlying probe result.
func (c *Checker) applyBreakerOverride(provider string, health orchestrator.ProviderHealth) orchestrator.ProviderHealth {
	if c.breakers == nil {
		return health
	}
	switch c.breakers.For(provider).State() {
	case breaker.Open:
		health.Status = orchestrator.HealthDown
	case breaker.HalfOpen:
		health.Status = orchestrator.HealthDegraded
	}
	return health
}

// Invalidate drops the cached entry for provider, forcing the next
// Status call to probe.
func (c *Checker) Invalidate(provider string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, provider)
}

// MarkDegraded immediately records provider as Degraded in the cache,
// bypassing the TTL. Per spec.md §6, an invocation failing with an
// auth/bad_request category is fatal for that attempt but must also
// mark the provider Degraded in the health view, independent of the
// next scheduled probe.
func (c *Checker) MarkDegraded(provider string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cached := c.cache[provider]
	cached.Provider = provider
	cached.Status = orchestrator.HealthDegraded
	cached.LastCheckTime = c.now()
	c.cache[provider] = cached
}
