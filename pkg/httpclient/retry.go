package httpclient

import (
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// DelayFunc returns how long to wait before the next attempt. The attempt
// argument is the number of attempts made so far, starting at 1 after the
// first failure.
type DelayFunc func(attempt int) time.Duration

// RetryPolicy determines which failed requests are retried, how often,
// and how long to back off between attempts. The zero value disables
// retries; use DefaultRetryPolicy for the standard policy.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// Methods is the set of HTTP methods eligible for retry. When empty,
	// GET and POST are retryable.
	Methods map[string]bool

	// StatusCodes is the set of response status codes eligible for retry.
	// When empty, a default set of transient statuses is used.
	StatusCodes map[int]bool

	// Delay computes the backoff before the next attempt. When nil,
	// DefaultDelay is used.
	Delay DelayFunc
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	defaultMaxAttempts = 3
	delayBase          = 250 * time.Millisecond
	delayJitterWindow  = 100 * time.Millisecond
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: defaultMaxAttempts,
		Methods:     defaultRetryMethods(),
		StatusCodes: defaultRetryStatusCodes(),
		Delay:       DefaultDelay,
	}
}

func defaultRetryMethods() map[string]bool {
	return map[string]bool{
		http.MethodGet:  true,
		http.MethodPost: true,
	}
}

func defaultRetryStatusCodes() map[int]bool {
	return map[int]bool{
		http.StatusRequestTimeout:      true,
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusBadGateway:          true,
		http.StatusServiceUnavailable:  true,
		http.StatusGatewayTimeout:      true,
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// DefaultDelay grows quadratically with the attempt count and adds
// symmetric random jitter within a bounded window, never returning a
// negative duration.
func DefaultDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := time.Duration(attempt*attempt) * delayBase
	jitter := time.Duration(rand.Int64N(int64(2*delayJitterWindow))) - delayJitterWindow
	if delay += jitter; delay < 0 {
		delay = 0
	}
	return delay
}

func (p RetryPolicy) retryMethod(method string) bool {
	if p.MaxAttempts <= 1 {
		return false
	}
	methods := p.Methods
	if len(methods) == 0 {
		methods = defaultRetryMethods()
	}
	return methods[strings.ToUpper(strings.TrimSpace(method))]
}

func (p RetryPolicy) retryStatus(code int) bool {
	codes := p.StatusCodes
	if len(codes) == 0 {
		codes = defaultRetryStatusCodes()
	}
	return codes[code]
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	if p.Delay != nil {
		return p.Delay(attempt)
	}
	return DefaultDelay(attempt)
}
