package cmd

import (
	"errors"
)

// Exit codes for hitstudio CLI
const (
	// ExitSuccess indicates the request succeeded
	ExitSuccess = 0

	// ExitUpstreamError indicates the target answered with a non-2xx status
	ExitUpstreamError = 1

	// ExitParseError indicates a request or environment file could not be read
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates the proxy could not be reached
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries the process exit code. A silent error has already
// been rendered by the formatter.
type exitError struct {
	code   int
	err    error
	silent bool
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func exitCodeFor(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsageError
}

func isOutcomeError(err error) bool {
	var ee *exitError
	return errors.As(err, &ee) && ee.silent
}
