// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm_test

import (
	"context"
	"strings"

	"github.com/juju/errors"
)

// fakeRunner answers hook tool invocations from a table of canned
// outputs, keyed by the space separated command line.
type fakeRunner struct {
	outputs map[string]string
	calls   []string
}

func newFakeRunner(outputs map[string]string) *fakeRunner {
	return &fakeRunner{outputs: outputs}
}

func (r *fakeRunner) Run(_ context.Context, tool string, args ...string) ([]byte, error) {
	command := strings.Join(append([]string{tool}, args...), " ")
	r.calls = append(r.calls, command)
	if tool == "status-set" || tool == "relation-set" {
		return nil, nil
	}
	out, ok := r.outputs[command]
	if !ok {
		return nil, errors.Errorf("unexpected hook tool call %q", command)
	}
	return []byte(out), nil
}
