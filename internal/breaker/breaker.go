// Package breaker implements the per-provider Circuit Breaker
// (spec.md §4.3), adapted from the teacher's
// internal/llm/providers.CircuitBreaker: a three-state
// (closed/open/half-open) failure gate with a failure threshold and a
// doubling-capped open timeout, generalized here into a standalone
// package with an explicit State/Stats surface instead of being
// embedded directly in the retry executor.
package breaker

import (
	"sync"
	"time"
)

// State is one of the three circuit breaker states.
type State string

const (
	Closed   State = "closed"
	Open     State = "open"
	HalfOpen State = "half_open"
)

const (
	defaultFailureThreshold = 5
	defaultBaseTimeout      = 60 * time.Second
	defaultMaxTimeout       = 10 * time.Minute
)

// Stats is a point-in-time snapshot of one breaker's counters.
type Stats struct {
	State            State
	ConsecutiveFails int
	TotalFailures    int
	TotalSuccesses   int
	OpenedAt         time.Time
	CurrentTimeout   time.Duration
}

// Breaker guards a single provider. Zero value is not usable; construct
// with New.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	baseTimeout      time.Duration
	maxTimeout       time.Duration

	state            State
	consecutiveFails int
	totalFailures    int
	totalSuccesses   int
	openedAt         time.Time
	currentTimeout   time.Duration
}

// Option configures a Breaker at construction.
type Option func(*Breaker)

// WithFailureThreshold overrides the default consecutive-failure count
// (5) that trips the breaker from Closed to Open.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) { b.failureThreshold = n }
}

// WithBaseTimeout overrides the default Open-state timeout (60s) before
// the breaker moves to HalfOpen.
func WithBaseTimeout(d time.Duration) Option {
	return func(b *Breaker) { b.baseTimeout = d }
}

// WithMaxTimeout overrides the cap on the doubling Open-state timeout.
func WithMaxTimeout(d time.Duration) Option {
	return func(b *Breaker) { b.maxTimeout = d }
}

// New constructs a Breaker in the Closed state.
func New(opts ...Option) *Breaker {
	b := &Breaker{
		failureThreshold: defaultFailureThreshold,
		baseTimeout:       defaultBaseTimeout,
		maxTimeout:        defaultMaxTimeout,
		state:             Closed,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.currentTimeout = b.baseTimeout
	return b
}

// IsAvailable reports whether a call should be attempted right now. A
// HalfOpen transition (Open timeout elapsed) is performed as a side
// effect of this check, matching the teacher's lazy-transition style.
func (b *Breaker) IsAvailable(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeTransitionToHalfOpenLocked(now)
	return b.state != Open
}

func (b *Breaker) maybeTransitionToHalfOpenLocked(now time.Time) {
	if b.state == Open && now.Sub(b.openedAt) >= b.currentTimeout {
		b.state = HalfOpen
	}
}

// RecordSuccess reports a successful call. In HalfOpen, a success closes
// the breaker and resets its failure counters and timeout. In Closed, it
// simply resets the consecutive-failure counter.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.totalSuccesses++
	b.consecutiveFails = 0
	if b.state == HalfOpen || b.state == Open {
		b.state = Closed
		b.currentTimeout = b.baseTimeout
	}
}

// RecordFailure reports a failed call. In Closed, it trips the breaker
// to Open once the consecutive-failure threshold is reached. In
// HalfOpen, any failure reopens the breaker and doubles its timeout
// (capped at maxTimeout), mirroring the teacher's backoff-on-probe-fail
// behavior.
func (b *Breaker) RecordFailure(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.totalFailures++
	b.consecutiveFails++

	switch b.state {
	case HalfOpen:
		b.openBreakerLocked(now, true)
	case Closed:
		if b.consecutiveFails >= b.failureThreshold {
			b.openBreakerLocked(now, false)
		}
	case Open:
		// already open; nothing to escalate beyond the existing timeout
	}
}

func (b *Breaker) openBreakerLocked(now time.Time, escalate bool) {
	if escalate {
		b.currentTimeout *= 2
		if b.currentTimeout > b.maxTimeout {
			b.currentTimeout = b.maxTimeout
		}
	} else {
		b.currentTimeout = b.baseTimeout
	}
	b.state = Open
	b.openedAt = now
}

// State returns the current state without performing a lazy transition.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// StatsSnapshot returns a snapshot of the breaker's counters.
func (b *Breaker) StatsSnapshot() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		State:            b.state,
		ConsecutiveFails: b.consecutiveFails,
		TotalFailures:    b.totalFailures,
		TotalSuccesses:   b.totalSuccesses,
		OpenedAt:         b.openedAt,
		CurrentTimeout:   b.currentTimeout,
	}
}

// Reset forces the breaker back to Closed with all counters cleared, for
// operator intervention or test setup.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Closed
	b.consecutiveFails = 0
	b.totalFailures = 0
	b.totalSuccesses = 0
	b.currentTimeout = b.baseTimeout
	b.openedAt = time.Time{}
}

// Registry tracks one Breaker per provider, created lazily, mirroring
// the teacher's ProviderHealthChecker's per-provider breaker map.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
	opts     []Option
}

// NewRegistry returns an empty breaker Registry; every Breaker it
// creates lazily is configured with opts.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		breakers: make(map[string]*Breaker),
		opts:     opts,
	}
}

// For returns the Breaker for provider, creating one in the Closed state
// on first use.
func (r *Registry) For(provider string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.breakers[provider]
	if !ok {
		b = New(r.opts...)
		r.breakers[provider] = b
	}
	return b
}

// FallbackCandidate returns the first provider in order whose breaker is
// currently available, or "" if none are.
func (r *Registry) FallbackCandidate(now time.Time, order []string) (string, bool) {
	for _, p := range order {
		if r.For(p).IsAvailable(now) {
			return p, true
		}
	}
	return "", false
}

// Snapshot returns the current Stats for every provider with a breaker,
// keyed by provider name.
func (r *Registry) Snapshot() map[string]Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Stats, len(r.breakers))
	for p, b := range r.breakers {
		out[p] = b.StatsSnapshot()
	}
	return out
}
