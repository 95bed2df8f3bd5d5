package errors

// Transport retry semantics shared by the fetch client and the batcher

import (
	"context"
	stderrs "errors"
	"net/http"
)

// FromStatus maps an upstream HTTP status to the project taxonomy
// 5xx is Unavailable (retryable), 429 TooManyRequests, other 4xx are terminal client errors
func FromStatus(status int, msg string) error {
	var code ErrorCode
	switch {
	case status == http.StatusTooManyRequests:
		code = ErrorCodeTooManyRequests
	case status == http.StatusNotFound:
		code = ErrorCodeNotFound
	case status == http.StatusUnauthorized:
		code = ErrorCodeUnauthorized
	case status == http.StatusForbidden:
		code = ErrorCodeForbidden
	case status == http.StatusConflict:
		code = ErrorCodeConflict
	case status >= 500:
		code = ErrorCodeUnavailable
	case status >= 400:
		code = ErrorCodeInvalidArgument
	default:
		code = ErrorCodeUnknown
	}
	return &Error{code: code, msg: msg, status: status}
}

// Retryable reports whether the error is transient
// Network, 5xx and 429 retry; 404 and 401 never do; caller cancellation never does
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch StatusOf(err) {
	case http.StatusNotFound, http.StatusUnauthorized:
		return false
	}
	switch CodeOf(err) {
	case ErrorCodeNetwork, ErrorCodeUnavailable, ErrorCodeTooManyRequests:
		return true
	default:
		return false
	}
}

// IsRateLimited reports whether err came from an upstream 429 or a local cooldown
func IsRateLimited(err error) bool {
	c := CodeOf(err)
	return c == ErrorCodeTooManyRequests || c == ErrorCodeCooldown
}

// IsClient reports a terminal 4xx (excluding 429)
func IsClient(err error) bool {
	s := StatusOf(err)
	return s >= 400 && s < 500 && s != http.StatusTooManyRequests
}
