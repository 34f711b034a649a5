// Package api implements the resilient request layer shared by every feature
// service: failure classification, timeout handling, retry with exponential
// backoff, and the response envelope contract.
//
// Every call resolves to either a decoded *Envelope or an *Error carrying
// exactly one Kind. Feature code branches on kinds, never on raw status
// codes; Classify is the only place status codes are interpreted.
package api

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure classifications.
type Kind string

const (
	// KindTimeout means no response arrived inside the deadline.
	KindTimeout Kind = "TIMEOUT"

	// KindNetwork means a transport-level fault (DNS, connection refused).
	KindNetwork Kind = "NETWORK_ERROR"

	// KindTokenExpired means the server rejected the credential (401).
	KindTokenExpired Kind = "TOKEN_EXPIRED"

	// KindRequestFailed means a non-2xx response with a structured error body.
	KindRequestFailed Kind = "REQUEST_FAILED"

	// KindUnknown is the fallback for anything not classifiable.
	KindUnknown Kind = "UNKNOWN_ERROR"
)

// Error is the only error type that crosses the api package boundary.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf extracts the classification from err. Errors that did not come out
// of this package report KindUnknown.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// retryableStatus is the idempotent-failure set. Responses outside it are
// never retried automatically.
var retryableStatus = map[int]bool{
	408: true,
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// retryable reports whether the failure may be attempted again. Timeouts map
// to the 408 class; token expiry and other client errors are terminal.
func (e *Error) retryable() bool {
	if e.Kind == KindTimeout {
		return true
	}
	return e.Kind == KindRequestFailed && retryableStatus[e.StatusCode]
}
