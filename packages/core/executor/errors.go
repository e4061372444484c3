package executor

import (
	"fmt"
)

// TransportError means the proxy could not be reached or failed before it
// produced a structured reply. No response is available.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError means the target server answered with a non-2xx status.
// The response is available on the Outcome.
type UpstreamError struct {
	Status     int
	StatusText string
}

func (e *UpstreamError) Error() string {
	if e.StatusText == "" {
		return fmt.Sprintf("upstream returned %d", e.Status)
	}
	return fmt.Sprintf("upstream returned %d %s", e.Status, e.StatusText)
}
