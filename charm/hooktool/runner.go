// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package hooktool runs the hook tools the unit agent provides to a charm
// and translates their output into charm-side types.
package hooktool

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/kballard/go-shellquote"
)

var logger = loggo.GetLogger("juju.charm.hooktool")

// Runner runs a hook tool and returns what it wrote to stdout.
type Runner interface {
	Run(ctx context.Context, tool string, args ...string) ([]byte, error)
}

// ExecRunner runs hook tools as child processes.
type ExecRunner struct {
	toolsDir string
	clock    clock.Clock
}

// NewExecRunner returns a Runner that executes tools found in toolsDir,
// or on PATH when toolsDir is empty.
func NewExecRunner(toolsDir string, clk clock.Clock) *ExecRunner {
	if clk == nil {
		clk = clock.WallClock
	}
	return &ExecRunner{
		toolsDir: toolsDir,
		clock:    clk,
	}
}

// Run implements Runner. A tool that cannot be started or that exits
// with a non-zero status results in a *GatewayError.
func (r *ExecRunner) Run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	path := tool
	if r.toolsDir != "" {
		path = filepath.Join(r.toolsDir, tool)
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := r.clock.Now()
	err := cmd.Run()
	command := append([]string{tool}, args...)
	logger.Debugf("ran %s in %v", shellquote.Join(command...), r.clock.Now().Sub(start))
	if err != nil {
		gatewayErr := &GatewayError{
			Command: command,
			Stderr:  stderr.String(),
			Err:     err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			gatewayErr.ExitCode = exitErr.ExitCode()
		}
		return nil, gatewayErr
	}
	return stdout.Bytes(), nil
}

// runJSON runs tool with args and decodes its JSON output into out.
func runJSON(ctx context.Context, runner Runner, out interface{}, tool string, args ...string) error {
	stdout, err := runner.Run(ctx, tool, args...)
	if err != nil {
		return errors.Trace(err)
	}
	if err := json.Unmarshal(stdout, out); err != nil {
		return &GatewayError{
			Command: append([]string{tool}, args...),
			Err:     errors.Annotatef(err, "decoding output %q", bytes.TrimSpace(stdout)),
		}
	}
	return nil
}
