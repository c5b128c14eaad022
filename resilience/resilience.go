// Package resilience wraps the upstream call step of respcache.Middleware
// with failsafe-go retry and circuit-breaker policies, adapted from the
// teacher's Transport-level ResilienceConfig to the server-side
// middleware's upstream-caller hook.
package resilience

import (
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// result is the value failsafe-go policies observe and retry on; it
// mirrors the (statusCode, header, body) tuple respcache's upstream
// caller hook returns.
type result struct {
	statusCode int
	header     http.Header
	body       []byte
}

// Config holds the configuration for resilience policies. Both fields
// are optional; a nil policy disables that layer.
type Config struct {
	// RetryPolicy configures retry behavior using failsafe-go.
	// If nil, retry is disabled.
	RetryPolicy retrypolicy.RetryPolicy[*result]

	// CircuitBreaker configures circuit breaker behavior using failsafe-go.
	// If nil, circuit breaker is disabled.
	CircuitBreaker circuitbreaker.CircuitBreaker[*result]
}

// RetryPolicyBuilder returns a pre-configured retry policy builder:
// retries on network errors and 5xx status codes, max 3 retries,
// exponential backoff from 100ms to 10s. Customize further before
// calling Build().
func RetryPolicyBuilder() retrypolicy.Builder[*result] {
	return retrypolicy.NewBuilder[*result]().
		HandleIf(func(r *result, err error) bool {
			if err != nil {
				return true
			}
			return r != nil && r.statusCode >= 500
		}).
		WithMaxRetries(3).
		WithBackoff(100*time.Millisecond, 10*time.Second)
}

// CircuitBreakerBuilder returns a pre-configured circuit breaker
// builder: opens on network errors and 5xx status codes, 5 consecutive
// failures, 2 successes to close, 60s delay before half-open.
func CircuitBreakerBuilder() circuitbreaker.Builder[*result] {
	return circuitbreaker.NewBuilder[*result]().
		HandleIf(func(r *result, err error) bool {
			if err != nil {
				return true
			}
			return r != nil && r.statusCode >= 500
		}).
		WithFailureThreshold(5).
		WithSuccessThreshold(2).
		WithDelay(60 * time.Second)
}

// Caller wraps an upstream call function with the configured resilience
// policies. Its Call method matches the signature expected by
// respcache.WithUpstreamCaller.
type Caller struct {
	cfg    Config
	invoke func(next http.Handler, req *http.Request) (statusCode int, header http.Header, body []byte)
}

// NewCaller builds a Caller that runs invoke through cfg's policies.
// invoke is typically the package default upstream recorder; pass nil
// to fall back to a basic http.Handler-driven recorder equivalent to
// respcache's own default.
func NewCaller(cfg Config, invoke func(next http.Handler, req *http.Request) (statusCode int, header http.Header, body []byte)) *Caller {
	if invoke == nil {
		invoke = recordUpstream
	}
	return &Caller{cfg: cfg, invoke: invoke}
}

// Call executes the upstream handler through the configured retry and
// circuit-breaker policies, innermost-to-outermost (retry first,
// circuit breaker wrapping it), mirroring the teacher's
// executeWithResilience ordering. statusCode 0 signals total failure
// (e.g. circuit open) to the caller, which treats it as a bad gateway.
func (c *Caller) Call(next http.Handler, req *http.Request) (statusCode int, header http.Header, body []byte) {
	var policies []failsafe.Policy[*result]
	if c.cfg.RetryPolicy != nil {
		policies = append(policies, c.cfg.RetryPolicy)
	}
	if c.cfg.CircuitBreaker != nil {
		policies = append(policies, c.cfg.CircuitBreaker)
	}

	fn := func() (*result, error) {
		sc, h, b := c.invoke(next, req)
		if sc == 0 {
			return nil, errUpstreamUnavailable
		}
		return &result{statusCode: sc, header: h, body: b}, nil
	}

	if len(policies) == 0 {
		r, err := fn()
		if err != nil {
			return 0, nil, nil
		}
		return r.statusCode, r.header, r.body
	}

	r, err := failsafe.With(policies...).Get(fn)
	if err != nil {
		return 0, nil, nil
	}
	return r.statusCode, r.header, r.body
}
