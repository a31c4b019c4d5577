package dispatch

import "fmt"

// CircuitOpenError is returned when the per-host circuit breaker rejects a
// request without issuing a network call. It is never retried.
type CircuitOpenError struct {
	Host string
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for %s", e.Host)
}

// HTTPError is a non-2xx response from a candidate endpoint. 5xx responses
// are retryable; 4xx responses are not.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the response status is worth retrying.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode >= 500
}
