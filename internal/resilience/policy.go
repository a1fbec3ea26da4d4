// Package resilience wraps calls to remote collaborators with a bounded
// exponential retry and a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/windoze95/saltybytes-finder/internal/logger"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Config tunes a Policy.
type Config struct {
	// MaxAttempts bounds the total number of calls, including the first.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// Retryable reports whether an error is transient. Non-retryable errors
	// end the call immediately and do not count against the breaker.
	Retryable func(error) bool

	// Breaker settings. The breaker opens after ConsecutiveFailures
	// transient failures and probes again after OpenTimeout.
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration

	// OnStateChange is notified on breaker transitions.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultConfig returns the retry budget used for the embedding and index calls.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:         2,
		InitialInterval:     100 * time.Millisecond,
		MaxInterval:         time.Second,
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
	}
}

// Policy is a named retry + breaker pair. It is safe for concurrent use.
type Policy struct {
	name    string
	cfg     Config
	breaker *gobreaker.CircuitBreaker[any]
}

// NewPolicy builds a Policy, filling unset fields from DefaultConfig.
func NewPolicy(name string, cfg Config) *Policy {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = def.ConsecutiveFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.Retryable == nil {
		cfg.Retryable = func(error) bool { return true }
	}

	threshold := cfg.ConsecutiveFailures
	retryable := cfg.Retryable
	onChange := cfg.OnStateChange

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !retryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Get().Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if onChange != nil {
				onChange(name, from, to)
			}
		},
	})

	return &Policy{name: name, cfg: cfg, breaker: breaker}
}

// Name returns the policy name.
func (p *Policy) Name() string {
	return p.name
}

// State returns the breaker state.
func (p *Policy) State() gobreaker.State {
	return p.breaker.State()
}

// Do runs op under p. Transient failures are retried with exponential
// backoff until MaxAttempts is spent or ctx is done; the last error is
// returned. A rejected call returns an error wrapping ErrCircuitOpen.
func Do[T any](ctx context.Context, p *Policy, op func(context.Context) (T, error)) (T, error) {
	var result T
	attempt := 0

	operation := func() error {
		attempt++
		out, err := p.breaker.Execute(func() (any, error) {
			return op(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(fmt.Errorf("%s: %w", p.name, ErrCircuitOpen))
			}
			if !p.cfg.Retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		if out != nil {
			result = out.(T)
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.FromContext(ctx).Warn("retrying upstream call",
			zap.String("policy", p.name),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.InitialInterval
	b.MaxInterval = p.cfg.MaxInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.cfg.MaxAttempts-1)), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
