// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hooktool

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
	"github.com/kballard/go-shellquote"
)

// ErrGateway is matched by every *GatewayError.
const ErrGateway = errors.ConstError("hook tool failed")

// GatewayError is returned when a hook tool could not be run, exited
// with a non-zero status, or produced output that could not be parsed.
type GatewayError struct {
	// Command is the tool name followed by its arguments.
	Command []string
	// ExitCode is the exit status of the tool, or zero when the tool
	// did not run or ran successfully.
	ExitCode int
	// Stderr holds anything the tool wrote to stderr.
	Stderr string
	// Err is the underlying error.
	Err error
}

// Error implements error.
func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("running %s", shellquote.Join(e.Command...))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, ErrGateway) to match.
func (e *GatewayError) Is(target error) bool {
	return target == ErrGateway
}
