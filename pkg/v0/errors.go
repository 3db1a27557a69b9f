package v0

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

type ErrorKind string

const (
	KindAPIKey     ErrorKind = "API_KEY_ERROR"
	KindValidation ErrorKind = "VALIDATION_ERROR"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindRateLimit  ErrorKind = "RATE_LIMIT_EXCEEDED"
	KindAPI        ErrorKind = "API_ERROR"
	KindUnknown    ErrorKind = "UNKNOWN_ERROR"
)

// Error is the only error type returned by Client. Kind is decided once, here,
// and callers must not reclassify it.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether a retry could plausibly succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindAPIKey, KindValidation, KindNotFound, KindRateLimit:
		return false
	default:
		return true
	}
}

func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func newAPIKeyError() *Error {
	return &Error{Kind: KindAPIKey, Message: "V0 API key is not configured"}
}

// KindOf returns the kind of a *Error anywhere in the chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// IsRetryable treats foreign errors as transient.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable()
	}
	return err != nil
}

// Classify turns a transport or remote failure into an *Error. status is the
// HTTP status when one was received, 0 otherwise.
func Classify(err error, status int, fallback string) *Error {
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}

	msg := ""
	if err != nil {
		msg = errorMessage(err)
	}

	if kind, ok := kindFromStatus(status); ok {
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &Error{Kind: kind, Message: msg, Status: status, Err: err}
	}

	if err == nil || errors.Is(err, context.Canceled) || strings.TrimSpace(msg) == "" {
		if msg == "" {
			msg = "An unknown error occurred"
		}
		return &Error{Kind: KindUnknown, Message: msg, Status: status, Err: err}
	}

	if !isTimeout(err) {
		lower := strings.ToLower(msg)
		switch {
		case strings.Contains(lower, "api key"), strings.Contains(lower, "unauthorized"), strings.Contains(lower, "401"):
			return &Error{Kind: KindAPIKey, Message: msg, Status: status, Err: err}
		case strings.Contains(lower, "rate limit"), strings.Contains(lower, "429"):
			return &Error{Kind: KindRateLimit, Message: msg, Status: status, Err: err}
		case strings.Contains(lower, "not found"), strings.Contains(lower, "404"):
			return &Error{Kind: KindNotFound, Message: msg, Status: status, Err: err}
		}
	}

	return &Error{
		Kind:    KindAPI,
		Message: fmt.Sprintf("%s: %s", fallback, msg),
		Status:  status,
		Err:     err,
	}
}

func kindFromStatus(status int) (ErrorKind, bool) {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAPIKey, true
	case http.StatusTooManyRequests:
		return KindRateLimit, true
	case http.StatusNotFound:
		return KindNotFound, true
	}
	return "", false
}

// errorMessage drops the request URL from transport errors so ids in the
// path cannot trip the substring matching.
func errorMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
