package youtube

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"google.golang.org/api/googleapi"
)

// RetryPolicy controls how FetchThread re-issues a page after a transient failure.
// The wait between attempts is fixed, not exponential.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// DefaultRetryPolicy waits 5s between attempts and gives up on a page after 5 retries.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 5,
	Backoff:    5 * time.Second,
}

// statusCode extracts the HTTP status from a googleapi error. Returns 0 for
// errors that never produced a response (transport failures, decode errors).
func statusCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// isRetryable reports whether a failed page request is worth re-issuing.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if code := statusCode(err); code != 0 {
		return isRetryableStatus(code)
	}

	// Connection dropped mid-response.
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// options builds the backoff.Retry options for one page: a constant wait,
// MaxRetries+1 total attempts, and an elapsed-time bound that never cuts the
// attempts short.
func (p RetryPolicy) options(notify backoff.Notify) []backoff.RetryOption {
	tries := max(p.MaxRetries, 0) + 1
	wait := max(p.Backoff, 0)
	return []backoff.RetryOption{
		backoff.WithBackOff(backoff.NewConstantBackOff(wait)),
		backoff.WithMaxTries(uint(tries)),
		backoff.WithMaxElapsedTime(time.Duration(tries)*wait + time.Minute),
		backoff.WithNotify(notify),
	}
}
