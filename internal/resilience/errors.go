// Package resilience provides retry with backoff for the generation calls.
// The Anthropic API sheds load with 429/529 responses; those are worth a
// second attempt, malformed requests are not.
package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError marks an error as safe to retry.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is worth retrying: an explicit
// TransientError, a network timeout, a dropped connection, or an API
// overload response surfaced through the SDK's error text.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	// The SDK wraps HTTP failures into plain errors; match the retryable ones
	// by message.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"rate_limit_error",
		"overloaded_error",
		"api_error",
		"429",
		"529",
		"connection reset by peer",
		"broken pipe",
		"i/o timeout",
		"tls handshake timeout",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
