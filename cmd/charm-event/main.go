// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Command charm-event reports the event a hook was invoked for, as seen
// by the unit running it. It is meant to be run from a hook or dispatch
// script.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo/v2"
	"github.com/juju/version/v2"

	"github.com/juju/charmkit/charm"
	"github.com/juju/charmkit/charm/event"
	"github.com/juju/charmkit/juju/osenv"
)

var logger = loggo.GetLogger("juju.cmd.charmevent")

const (
	exitOK    = 0
	exitError = 1
)

const usageDoc = `
usage: charm-event [--format yaml|json] [--logging-config SPEC]

Prints the event dispatched to the current hook, the relation it
concerns and the unit and model it runs in. Logging is configured
from --logging-config, or from JUJU_LOGGING_CONFIG when not given.
`

// eventInfo is the printed description of a hook invocation.
type eventInfo struct {
	Kind          string `json:"kind" yaml:"kind"`
	Endpoint      string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	RelationId    *int   `json:"relation-id,omitempty" yaml:"relation-id,omitempty"`
	RemoteUnit    string `json:"remote-unit,omitempty" yaml:"remote-unit,omitempty"`
	DepartingUnit string `json:"departing-unit,omitempty" yaml:"departing-unit,omitempty"`
	Unit          string `json:"unit" yaml:"unit"`
	Application   string `json:"application" yaml:"application"`
	Model         string `json:"model,omitempty" yaml:"model,omitempty"`
	ModelUUID     string `json:"model-uuid,omitempty" yaml:"model-uuid,omitempty"`
	JujuVersion   string `json:"juju-version,omitempty" yaml:"juju-version,omitempty"`
}

func describe(uc *charm.UnitContext) eventInfo {
	info := eventInfo{
		Kind:        string(uc.Event().Kind()),
		Unit:        uc.Unit().Id(),
		Application: uc.Application(),
		Model:       uc.Model().Name,
		ModelUUID:   uc.Model().UUID,
	}
	if v := uc.JujuVersion(); v != version.Zero {
		info.JujuVersion = v.String()
	}
	if e, ok := uc.Event().(event.RelationEvent); ok {
		id := e.Relation().Id()
		info.Endpoint = e.Endpoint()
		info.RelationId = &id
	}
	switch e := uc.Event().(type) {
	case event.RelationJoinedEvent:
		info.RemoteUnit = e.RemoteUnit().Id()
	case event.RelationChangedEvent:
		info.RemoteUnit = e.RemoteUnit().Id()
	case event.RelationDepartedEvent:
		if unit, ok := e.RemoteUnit(); ok {
			info.RemoteUnit = unit.Id()
		}
		info.DepartingUnit = e.DepartingUnit().Id()
	}
	return info
}

// run parses args, builds the unit context from params and writes the
// event description to stdout. It returns the process exit code.
func run(ctx context.Context, args []string, params charm.ContextParams, stdout, stderr io.Writer) int {
	if params.Environ == nil {
		params.Environ = osenv.Snapshot(osenv.OSEnviron{}, osenv.HookKeys...)
	}

	flags := gnuflag.NewFlagSet("charm-event", gnuflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprint(stderr, usageDoc[1:])
	}
	format := newFormatterValue("yaml", formatters)
	flags.Var(format, "format", format.doc())
	var loggingConfig string
	flags.StringVar(&loggingConfig, "logging-config", osenv.Optional(params.Environ, osenv.JujuLoggingConfigEnvKey),
		"specify log levels for modules")
	if err := flags.Parse(true, args); err != nil {
		if errors.Is(err, gnuflag.ErrHelp) {
			return exitOK
		}
		return exitError
	}
	if len(flags.Args()) > 0 {
		fmt.Fprintf(stderr, "ERROR unrecognized args: %q\n", flags.Args())
		return exitError
	}

	if loggingConfig != "" {
		if err := loggo.ConfigureLoggers(loggingConfig); err != nil {
			fmt.Fprintf(stderr, "ERROR %v\n", errors.Annotate(err, "configuring logging"))
			return exitError
		}
	}

	uc, err := charm.NewUnitContext(ctx, params)
	if err != nil {
		logger.Debugf("building unit context: %s", errors.ErrorStack(err))
		fmt.Fprintf(stderr, "ERROR %v\n", err)
		return exitError
	}
	if err := format.write(stdout, describe(uc)); err != nil {
		fmt.Fprintf(stderr, "ERROR %v\n", err)
		return exitError
	}
	return exitOK
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], charm.ContextParams{}, os.Stdout, os.Stderr))
}
