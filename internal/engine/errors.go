package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// TransportError marks a failure to complete a model request: connection
// problems, timeouts, or server-side errors. Transport errors are the only
// fatal errors in a run; everything the dispatcher produces is fed back to
// the model instead.
type TransportError struct {
	Err        error
	HTTPStatus int           // 0 when no response was received
	Timeout    bool          // request deadline expired
	Connect    bool          // failed before the request reached the server
	RetryAfter time.Duration // from a Retry-After header, if present
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError classifies err into a TransportError. httpStatus and
// retryAfter are zero when unknown.
func NewTransportError(err error, httpStatus int, retryAfter time.Duration) *TransportError {
	te := &TransportError{
		Err:        err,
		HTTPStatus: httpStatus,
		RetryAfter: retryAfter,
	}
	if errors.Is(err, context.DeadlineExceeded) {
		te.Timeout = true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		te.Timeout = true
	}
	if isConnectionError(err) {
		te.Connect = true
	}
	return te
}

// Retryable reports whether retrying the request is safe. Only failures
// where the request never reached the server (and is therefore idempotent
// to resend) qualify.
func (e *TransportError) Retryable() bool {
	return e.Connect
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network is unreachable",
		"dial tcp",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsTransportError reports whether err is (or wraps) a transport failure.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ToolValidationError reports tool arguments that failed schema validation.
// It is recoverable: the dispatcher turns it into an error tool-result.
type ToolValidationError struct {
	ToolName string
	Problems []string
}

func (e *ToolValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.ToolName, strings.Join(e.Problems, "; "))
}

// UnknownToolError reports a call to a tool name outside the registry.
// Recoverable; the model is told the tool is unsupported and the run
// continues.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unsupported tool: %s", e.Name)
}
