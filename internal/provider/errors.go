package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrMalformed marks a response that could not be decoded or that carried
	// an upstream error envelope.
	ErrMalformed = errors.New("malformed response")
	// ErrUnsupported is returned when a provider is asked for an operation it
	// does not implement.
	ErrUnsupported = errors.New("operation not supported")
)

// StatusError is a non-2xx answer from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Failure classifies an error returned by a provider call.
type Failure string

const (
	FailureNone        Failure = ""
	FailureRateLimited Failure = "rate_limited"
	FailureServer      Failure = "server_error"
	FailureTimeout     Failure = "timeout"
	FailureNetwork     Failure = "network"
	FailureAuth        Failure = "auth"
	FailureClient      Failure = "client_error"
	FailureMalformed   Failure = "malformed"
	FailureCanceled    Failure = "canceled"
	FailureUnsupported Failure = "unsupported"
	FailureUnknown     Failure = "unknown"
)

// Transient reports whether the failure class is worth retrying.
func (f Failure) Transient() bool {
	switch f {
	case FailureRateLimited, FailureServer, FailureTimeout, FailureNetwork:
		return true
	}
	return false
}

// Classify maps err onto a failure class.
func Classify(err error) Failure {
	if err == nil {
		return FailureNone
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return FailureRateLimited
		case statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden:
			return FailureAuth
		case statusErr.StatusCode >= 500:
			return FailureServer
		default:
			return FailureClient
		}
	}

	switch {
	case errors.Is(err, ErrUnsupported):
		return FailureUnsupported
	case errors.Is(err, ErrMalformed):
		return FailureMalformed
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return FailureTimeout
		}
		return FailureNetwork
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return FailureNetwork
	}
	return FailureUnknown
}
