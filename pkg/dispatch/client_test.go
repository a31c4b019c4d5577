package dispatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return NewClient(WithRetryIntervals(time.Millisecond, 5*time.Millisecond))
}

func TestRequestSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"sql": "SELECT 1", "task_id": "t1"}`))
	}))
	defer server.Close()

	var out struct {
		SQL    string `json:"sql"`
		TaskID string `json:"task_id"`
	}
	err := newTestClient().Post(context.Background(), server.URL, OpSQLGeneration,
		map[string]string{"question": "one"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", out.SQL)
	assert.Equal(t, "t1", out.TaskID)
}

func TestRequestRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	err := newTestClient().Get(context.Background(), server.URL, OpDefault, nil)

	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestRequestRetryBound(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	err := newTestClient().Get(context.Background(), server.URL, OpDefault, nil)

	require.Error(t, err)
	assert.Equal(t, int32(maxAttempts), attempts.Load())
}

func TestRequestClientErrorsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	err := newTestClient().Get(context.Background(), server.URL, OpDefault, nil)

	require.Error(t, err)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := client.Get(ctx, server.URL, OpSQLGeneration, nil)
		require.Error(t, err)
	}
	seen := requests.Load()

	// Fourth call fails fast without touching the network.
	err := client.Get(ctx, server.URL, OpSQLGeneration, nil)
	var circuitErr *CircuitOpenError
	require.ErrorAs(t, err, &circuitErr)

	u, _ := url.Parse(server.URL)
	assert.Equal(t, u.Host, circuitErr.Host)
	assert.Equal(t, seen, requests.Load())
	assert.Equal(t, CircuitOpen, client.BreakerState(u.Host))
}

func TestCircuitRecoversAfterTimeout(t *testing.T) {
	var healthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.Error(t, client.Get(ctx, server.URL, OpDefault, nil))
	}

	u, _ := url.Parse(server.URL)
	require.Equal(t, CircuitOpen, client.BreakerState(u.Host))

	// Advance the breaker's clock past the recovery timeout.
	client.mu.Lock()
	breaker := client.breakers[u.Host]
	client.mu.Unlock()
	breaker.mu.Lock()
	base := breaker.now()
	breaker.now = func() time.Time { return base.Add(30 * time.Second) }
	breaker.mu.Unlock()

	healthy.Store(true)
	require.NoError(t, client.Get(ctx, server.URL, OpDefault, nil))
	assert.Equal(t, CircuitClosed, client.BreakerState(u.Host))
}

func TestCircuitOpenErrorNotRetried(t *testing.T) {
	client := newTestClient()
	breaker := client.breakerFor("example.invalid:9999")
	for i := 0; i < 3; i++ {
		breaker.RecordFailure()
	}

	start := time.Now()
	err := client.Get(context.Background(), "http://example.invalid:9999/generate", OpDefault, nil)

	var circuitErr *CircuitOpenError
	require.ErrorAs(t, err, &circuitErr)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestTimeoutConfigFor(t *testing.T) {
	cfg := DefaultTimeouts()

	tests := []struct {
		op   OperationType
		want time.Duration
	}{
		{OpHealthCheck, 5 * time.Second},
		{OpSQLGeneration, 60 * time.Second},
		{OpSchemaFetch, 10 * time.Second},
		{OpDefault, 30 * time.Second},
		{OperationType("mystery"), 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.For(tt.op))
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	client := NewClient(
		WithRetryIntervals(time.Millisecond, 5*time.Millisecond),
		WithTimeouts(TimeoutConfig{
			HealthCheck: 20 * time.Millisecond, SQLGeneration: 20 * time.Millisecond,
			SchemaFetch: 20 * time.Millisecond, Default: 20 * time.Millisecond,
		}))

	err := client.Get(context.Background(), server.URL, OpHealthCheck, nil)
	require.Error(t, err)
}
