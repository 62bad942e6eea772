// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hooktool

import (
	"context"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/schema"

	"github.com/juju/charmkit/core/status"
)

// Scope selects whether a status applies to the unit or to the whole
// application.
type Scope string

const (
	UnitScope        Scope = "unit"
	ApplicationScope Scope = "application"
)

// Validate returns an error if the scope is not known.
func (s Scope) Validate() error {
	switch s {
	case UnitScope, ApplicationScope:
		return nil
	}
	return errors.NotValidf("status scope %q", s)
}

func (s Scope) args() []string {
	if s == ApplicationScope {
		return []string{"--application"}
	}
	return nil
}

// Application-wide status-get output nests the application's own status
// under one of these keys, next to the status of every unit.
var applicationStatusKeys = []string{"application-status", "service-status"}

var statusSchema = schema.FieldMap(
	schema.Fields{
		"status":      schema.String(),
		"message":     schema.String(),
		"status-data": schema.OneOf(schema.Const(nil), schema.StringMap(schema.Any())),
	},
	schema.Defaults{
		"message":     "",
		"status-data": schema.Omit,
	},
)

// StatusGateway reads and writes workload status with the status-get and
// status-set hook tools. Calls are never retried.
type StatusGateway struct {
	runner Runner
}

// NewStatusGateway returns a StatusGateway that runs tools with runner.
func NewStatusGateway(runner Runner) *StatusGateway {
	return &StatusGateway{runner: runner}
}

// Read returns the current workload status for scope. The second result
// is false when the agent reports a status a charm cannot set, such as
// "unknown".
func (g *StatusGateway) Read(ctx context.Context, scope Scope) (status.Workload, bool, error) {
	if err := scope.Validate(); err != nil {
		return status.Workload{}, false, errors.Trace(err)
	}
	args := append(scope.args(), "--include-data", "--format", "json")
	var out map[string]interface{}
	if err := runJSON(ctx, g.runner, &out, "status-get", args...); err != nil {
		return status.Workload{}, false, errors.Trace(err)
	}
	if scope == ApplicationScope {
		for _, key := range applicationStatusKeys {
			if nested, ok := out[key].(map[string]interface{}); ok {
				out = nested
				break
			}
		}
	}
	coerced, err := statusSchema.Coerce(out, nil)
	if err != nil {
		return status.Workload{}, false, &GatewayError{
			Command: append([]string{"status-get"}, args...),
			Err:     errors.Annotate(err, "invalid status-get output"),
		}
	}
	fields := coerced.(map[string]interface{})
	code := status.Status(fields["status"].(string))
	message := fields["message"].(string)

	value, err := status.NewWorkload(code, message)
	if err != nil {
		logger.Debugf("%s status %q is not settable by the charm", scope, code)
		return status.Workload{}, false, nil
	}
	return value, true, nil
}

// Write sets the workload status for scope.
func (g *StatusGateway) Write(ctx context.Context, scope Scope, value status.Workload) error {
	if err := scope.Validate(); err != nil {
		return errors.Trace(err)
	}
	if !value.IsValid() {
		return errors.NotValidf("workload status %q", value.Status())
	}
	args := append(scope.args(), value.Status().String())
	if strings.HasPrefix(value.Message(), "-") {
		args = append(args, "--")
	}
	args = append(args, value.Message())
	if _, err := g.runner.Run(ctx, "status-set", args...); err != nil {
		return errors.Trace(err)
	}
	logger.Debugf("set %s status to %s", scope, value)
	return nil
}
