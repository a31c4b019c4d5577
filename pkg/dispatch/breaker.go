package dispatch

import (
	"sync"
	"time"
)

// CircuitState is the current state of a circuit breaker.
type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"
	CircuitOpen     CircuitState = "open"
	CircuitHalfOpen CircuitState = "half_open"
)

// CircuitBreaker is a three-state gate guarding one host.
//
// closed passes all requests; open rejects immediately; half_open allows a
// single probe. Three consecutive failures open the circuit; after the
// recovery timeout has elapsed on the monotonic clock the next request is
// allowed through as a probe. Success in closed resets the failure counter.
//
// Safe for concurrent use: all state is guarded by one short critical
// section. Elapsed time is measured with time.Since, which uses the
// monotonic reading carried by time.Time, so wall-clock changes cannot
// reopen or close the circuit spuriously.
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	recoveryTimeout  time.Duration

	failures      int
	state         CircuitState
	lastFailure   time.Time
	halfOpenCalls int

	// now is the clock source; replaced in tests.
	now func() time.Time
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(failureThreshold int, recoveryTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		state:            CircuitClosed,
		now:              time.Now,
	}
}

// State returns the current circuit state.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the current consecutive failure count.
func (b *CircuitBreaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// CanExecute reports whether a request may proceed, transitioning
// open → half_open once the recovery timeout has elapsed and reserving the
// single half-open probe slot for the caller.
func (b *CircuitBreaker) CanExecute() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if b.lastFailure.IsZero() {
			return true
		}
		if b.now().Sub(b.lastFailure) >= b.recoveryTimeout {
			b.state = CircuitHalfOpen
			b.halfOpenCalls = 1
			return true
		}
		return false
	default: // half_open
		if b.halfOpenCalls < 1 {
			b.halfOpenCalls = 1
			return true
		}
		return false
	}
}

// RecordSuccess resets the breaker to closed.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.halfOpenCalls = 0
	b.state = CircuitClosed
}

// RecordFailure increments the failure counter, opening the circuit at the
// threshold. A failed half-open probe reopens immediately.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()

	if b.state == CircuitHalfOpen || b.failures >= b.failureThreshold {
		b.state = CircuitOpen
	}
}

// Reset returns the breaker to its initial closed state.
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.halfOpenCalls = 0
	b.state = CircuitClosed
	b.lastFailure = time.Time{}
}
