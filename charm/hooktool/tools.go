// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hooktool

import (
	"context"

	"github.com/juju/errors"
	"github.com/mitchellh/mapstructure"
)

// Tools runs the hook tools that report on leadership and charm config.
type Tools struct {
	runner Runner
}

// NewTools returns Tools that run hook tools with runner.
func NewTools(runner Runner) *Tools {
	return &Tools{runner: runner}
}

// IsLeader reports whether the unit is the leader of its application.
func (t *Tools) IsLeader(ctx context.Context) (bool, error) {
	var leader bool
	if err := runJSON(ctx, t.runner, &leader, "is-leader", "--format", "json"); err != nil {
		return false, errors.Annotate(err, "leadership status unknown")
	}
	return leader, nil
}

// Config returns every charm config option that has a value or default.
func (t *Tools) Config(ctx context.Context) (Config, error) {
	var config Config
	if err := runJSON(ctx, t.runner, &config, "config-get", "--all", "--format", "json"); err != nil {
		return nil, errors.Annotate(err, "reading charm config")
	}
	if config == nil {
		config = Config{}
	}
	return config, nil
}

// Config holds charm config as reported by config-get.
type Config map[string]interface{}

// Get returns the value of the named option.
func (c Config) Get(key string) (interface{}, bool) {
	v, ok := c[key]
	return v, ok
}

// Decode copies the config into the struct pointed to by target. Fields
// are matched to options with a `config:"name"` tag. JSON numbers are
// converted to the field's numeric type.
func (c Config) Decode(target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Annotate(decoder.Decode(map[string]interface{}(c)), "decoding charm config")
}
