package extractor

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultRetryAfter = time.Minute

// RateLimitError is returned when a provider rejects a call for quota reasons (HTTP 429 or
// gRPC ResourceExhausted). FallbackExtractor opens the provider's circuit for RetryAfter.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

// NewRateLimitError wraps err for provider. A non-positive retryAfter becomes one minute.
func NewRateLimitError(provider string, err error, retryAfter time.Duration) *RateLimitError {
	if retryAfter <= 0 {
		retryAfter = defaultRetryAfter
	}
	return &RateLimitError{Provider: provider, RetryAfter: retryAfter, Err: err}
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited, retry in %s: %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// StatusError is a non-2xx answer from a provider's HTTP API.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// ParseRetryAfter reads a Retry-After header given either as delta seconds or as an HTTP
// date relative to now. Unparseable or past values yield 0.
func ParseRetryAfter(val string, now time.Time) time.Duration {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	at, err := http.ParseTime(val)
	if err != nil || !at.After(now) {
		return 0
	}
	return at.Sub(now).Round(time.Second)
}
