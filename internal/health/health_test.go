package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/council-ai/orchestrator-core/internal/breaker"
	"github.com/council-ai/orchestrator-core/internal/orchestrator"
)

func TestChecker_HealthyProbe(t *testing.T) {
	prober := ProberFunc(func(ctx context.Context, provider string) error { return nil })
	c := New(prober, nil)
	status := c.Status(context.Background(), "p1")
	assert.Equal(t, orchestrator.HealthHealthy, status.Status)
}

func TestChecker_FailedProbeReportsDown(t *testing.T) {
	prober := ProberFunc(func(ctx context.Context, provider string) error { return errors.New("unreachable") })
	c := New(prober, nil)
	status := c.Status(context.Background(), "p1")
	assert.Equal(t, orchestrator.HealthDown, status.Status)
	assert.NotEmpty(t, status.Error)
}

func TestChecker_CachesWithinTTL(t *testing.T) {
	calls := 0
	prober := ProberFunc(func(ctx context.Context, provider string) error {
		calls++
		return nil
	})
	c := New(prober, nil, WithTTL(time.Minute))
	c.Status(context.Background(), "p1")
	c.Status(context.Background(), "p1")
	assert.Equal(t, 1, calls)
}

func TestChecker_RefreshesAfterTTLExpires(t *testing.T) {
	calls := 0
	prober := ProberFunc(func(ctx context.Context, provider string) error {
		calls++
		return nil
	})
	now := time.Now()
	clock := &now
	c := New(prober, nil, WithTTL(10*time.Millisecond), WithClock(func() time.Time { return *clock }))
	c.Status(context.Background(), "p1")
	*clock = clock.Add(20 * time.Millisecond)
	c.Status(context.Background(), "p1")
	assert.Equal(t, 2, calls)
}

func TestChecker_OpenBreakerOverridesToDown(t *testing.T) {
	prober := ProberFunc(func(ctx context.Context, provider string) error { return nil })
	breakers := breaker.NewRegistry(breaker.WithFailureThreshold(1))
	breakers.For("p1").RecordFailure(time.Now())
	require.Equal(t, breaker.Open, breakers.For("p1").State())

	c := New(prober, breakers)
	status := c.Status(context.Background(), "p1")
	assert.Equal(t, orchestrator.HealthDown, status.Status)
}

func TestChecker_HalfOpenBreakerOverridesToDegradedEvenOnHealthyProbe(t *testing.T) {
	prober := ProberFunc(func(ctx context.Context, provider string) error { return nil })
	breakers := breaker.NewRegistry(breaker.WithFailureThreshold(1), breaker.WithBaseTimeout(time.Millisecond))
	breakers.For("p1").RecordFailure(time.Now())
	time.Sleep(5 * time.Millisecond)
	breakers.For("p1").IsAvailable(time.Now())
	require.Equal(t, breaker.HalfOpen, breakers.For("p1").State())

	c := New(prober, breakers)
	status := c.Status(context.Background(), "p1")
	assert.Equal(t, orchestrator.HealthDegraded, status.Status)
}

func TestChecker_MarkDegradedOverridesCachedStatus(t *testing.T) {
	prober := ProberFunc(func(ctx context.Context, provider string) error { return nil })
	c := New(prober, nil, WithTTL(time.Minute))
	status := c.Status(context.Background(), "p1")
	require.Equal(t, orchestrator.HealthHealthy, status.Status)

	c.MarkDegraded("p1")
	status = c.Status(context.Background(), "p1")
	assert.Equal(t, orchestrator.HealthDegraded, status.Status)
}

func TestChecker_Invalidate(t *testing.T) {
	calls := 0
	prober := ProberFunc(func(ctx context.Context, provider string) error {
		calls++
		return nil
	})
	c := New(prober, nil, WithTTL(time.Minute))
	c.Status(context.Background(), "p1")
	c.Invalidate("p1")
	c.Status(context.Background(), "p1")
	assert.Equal(t, 2, calls)
}
