package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests advance the breaker's monotonic time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker() (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	b := NewCircuitBreaker(3, 30*time.Second)
	b.now = clock.now
	return b, clock
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker()

	assert.Equal(t, CircuitClosed, b.State())
	for i := 0; i < 2; i++ {
		assert.True(t, b.CanExecute())
		b.RecordFailure()
		assert.Equal(t, CircuitClosed, b.State())
	}

	assert.True(t, b.CanExecute())
	b.RecordFailure()
	assert.Equal(t, CircuitOpen, b.State())
	assert.False(t, b.CanExecute())
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	b, _ := newTestBreaker()

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	assert.Equal(t, 0, b.Failures())

	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, CircuitClosed, b.State())
}

func TestBreakerRecoversAfterTimeout(t *testing.T) {
	b, clock := newTestBreaker()

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	assert.Equal(t, CircuitOpen, b.State())

	clock.advance(29 * time.Second)
	assert.False(t, b.CanExecute())

	clock.advance(1 * time.Second)
	assert.True(t, b.CanExecute())
	assert.Equal(t, CircuitHalfOpen, b.State())

	// Only one probe is allowed while half-open.
	assert.False(t, b.CanExecute())

	b.RecordSuccess()
	assert.Equal(t, CircuitClosed, b.State())
	assert.True(t, b.CanExecute())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b, clock := newTestBreaker()

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	clock.advance(30 * time.Second)
	assert.True(t, b.CanExecute())

	b.RecordFailure()
	assert.Equal(t, CircuitOpen, b.State())
	assert.False(t, b.CanExecute())

	// And it stays open until the timeout elapses again.
	clock.advance(30 * time.Second)
	assert.True(t, b.CanExecute())
}

func TestBreakerReset(t *testing.T) {
	b, _ := newTestBreaker()

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	b.Reset()

	assert.Equal(t, CircuitClosed, b.State())
	assert.Equal(t, 0, b.Failures())
	assert.True(t, b.CanExecute())
}
