package omni

import (
	"fmt"
	"time"
)

// TransportError reports an HTTP exchange that failed before the
// execution service produced any protocol-level reply.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("omni %s request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ExecutionError reports a non-success status from the execution service.
type ExecutionError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("omni %s failed status=%d body=%s", e.Op, e.StatusCode, e.Body)
}

// MalformedResponseError reports a run response whose fragments could
// not be interpreted: a fragment that is not valid JSON, or a body that
// yielded neither an inline result nor job ids.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed omni response: %s: %v", e.Reason, e.Err)
	}
	return "malformed omni response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// PollTimeoutError reports that none of the outstanding jobs surfaced a
// result within the poll deadline.
type PollTimeoutError struct {
	JobIDs  []string
	Timeout time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("jobs %v did not complete within %s", e.JobIDs, e.Timeout)
}

// DecodeError reports an encoded result that could not be turned into a
// table: bad base64 or an invalid columnar stream.
type DecodeError struct {
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode omni result: %s: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
