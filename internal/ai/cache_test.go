package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/windoze95/saltybytes-finder/internal/models"
	"github.com/windoze95/saltybytes-finder/internal/resilience"
)

type countingProvider struct {
	vec   []float32
	errs  []error
	calls int
}

func (p *countingProvider) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	p.calls++
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return p.vec, nil
}

func (p *countingProvider) ModelID() string { return "test-model" }

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCachedEmbedder_HitSkipsProvider(t *testing.T) {
	_, rdb := newTestRedis(t)
	inner := &countingProvider{vec: []float32{0.1, 0.2}}
	c := NewCachedEmbedder(inner, rdb, time.Hour)

	for i := 0; i < 3; i++ {
		vec, err := c.GenerateEmbedding(context.Background(), "Ingredients: eggs.")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(vec) != 2 || vec[0] != 0.1 {
			t.Fatalf("call %d: vec = %v", i, vec)
		}
	}
	if inner.calls != 1 {
		t.Errorf("provider calls = %d, want 1", inner.calls)
	}

	if _, err := c.GenerateEmbedding(context.Background(), "Ingredients: rice."); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("different text should miss, calls = %d", inner.calls)
	}
}

func TestCachedEmbedder_TTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	inner := &countingProvider{vec: []float32{1}}
	c := NewCachedEmbedder(inner, rdb, time.Minute)

	_, _ = c.GenerateEmbedding(context.Background(), "q")
	mr.FastForward(2 * time.Minute)
	_, _ = c.GenerateEmbedding(context.Background(), "q")
	if inner.calls != 2 {
		t.Errorf("expired entry should miss, calls = %d", inner.calls)
	}
}

func TestCachedEmbedder_RedisDownFallsThrough(t *testing.T) {
	mr, rdb := newTestRedis(t)
	mr.Close()
	inner := &countingProvider{vec: []float32{0.3}}
	c := NewCachedEmbedder(inner, rdb, time.Hour)

	vec, err := c.GenerateEmbedding(context.Background(), "q")
	if err != nil {
		t.Fatalf("cache outage should not fail the call: %v", err)
	}
	if len(vec) != 1 || inner.calls != 1 {
		t.Errorf("vec = %v, calls = %d", vec, inner.calls)
	}
}

func TestCachedEmbedder_ErrorsNotCached(t *testing.T) {
	_, rdb := newTestRedis(t)
	inner := &countingProvider{vec: []float32{0.3}, errs: []error{models.ErrUpstreamUnavailable}}
	c := NewCachedEmbedder(inner, rdb, time.Hour)

	if _, err := c.GenerateEmbedding(context.Background(), "q"); !errors.Is(err, models.ErrUpstreamUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if _, err := c.GenerateEmbedding(context.Background(), "q"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("calls = %d, want 2", inner.calls)
	}
}

func TestCachedEmbedder_CorruptEntry(t *testing.T) {
	mr, rdb := newTestRedis(t)
	inner := &countingProvider{vec: []float32{0.7}}
	c := NewCachedEmbedder(inner, rdb, time.Hour)

	if err := mr.Set(c.key("q"), "not-json"); err != nil {
		t.Fatal(err)
	}
	vec, err := c.GenerateEmbedding(context.Background(), "q")
	if err != nil || len(vec) != 1 || vec[0] != 0.7 {
		t.Errorf("vec = %v, err = %v", vec, err)
	}
	if c.ModelID() != "test-model" {
		t.Errorf("ModelID = %q", c.ModelID())
	}
}

func TestResilientEmbedder_RetriesTransient(t *testing.T) {
	inner := &countingProvider{vec: []float32{0.1}, errs: []error{models.ErrUpstreamUnavailable, nil}}
	r := NewResilientEmbedder(inner, resilience.Config{MaxAttempts: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond})

	vec, err := r.GenerateEmbedding(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 1 || inner.calls != 2 {
		t.Errorf("vec = %v, calls = %d", vec, inner.calls)
	}
}

func TestResilientEmbedder_DoesNotRetryConfiguration(t *testing.T) {
	inner := &countingProvider{errs: []error{models.ErrConfiguration}}
	r := NewResilientEmbedder(inner, resilience.Config{MaxAttempts: 3, InitialInterval: time.Millisecond})

	_, err := r.GenerateEmbedding(context.Background(), "q")
	if !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1", inner.calls)
	}
}

func TestResilientEmbedder_OpenBreakerIsUpstreamUnavailable(t *testing.T) {
	inner := &countingProvider{errs: []error{models.ErrUpstreamUnavailable, models.ErrUpstreamUnavailable}}
	r := NewResilientEmbedder(inner, resilience.Config{
		MaxAttempts:         1,
		ConsecutiveFailures: 1,
		OpenTimeout:         time.Minute,
	})

	_, _ = r.GenerateEmbedding(context.Background(), "q")
	_, err := r.GenerateEmbedding(context.Background(), "q")
	if !errors.Is(err, models.ErrUpstreamUnavailable) || !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("err = %v, want open-circuit upstream error", err)
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1", inner.calls)
	}
}
