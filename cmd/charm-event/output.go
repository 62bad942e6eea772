// Copyright 2012, 2013 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

// formatter converts an arbitrary object into a []byte.
type formatter func(value interface{}) ([]byte, error)

func formatYaml(value interface{}) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return yaml.Marshal(value)
}

func formatJson(value interface{}) ([]byte, error) {
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

var formatters = map[string]formatter{
	"yaml": formatYaml,
	"json": formatJson,
}

// formatterValue implements gnuflag.Value for the --format flag.
type formatterValue struct {
	name       string
	formatters map[string]formatter
}

func newFormatterValue(initial string, formatters map[string]formatter) *formatterValue {
	v := &formatterValue{formatters: formatters}
	if err := v.Set(initial); err != nil {
		panic(err)
	}
	return v
}

// Set stores the chosen formatter name in v.name.
func (v *formatterValue) Set(value string) error {
	if v.formatters[value] == nil {
		return errors.NotValidf("format %q", value)
	}
	v.name = value
	return nil
}

// String returns the chosen formatter name.
func (v *formatterValue) String() string {
	return v.name
}

// doc returns documentation for the --format flag.
func (v *formatterValue) doc() string {
	choices := make([]string, 0, len(v.formatters))
	for name := range v.formatters {
		choices = append(choices, name)
	}
	sort.Strings(choices)
	return "specify output format (" + strings.Join(choices, "|") + ")"
}

// write formats value with the chosen formatter and writes it to target.
func (v *formatterValue) write(target io.Writer, value interface{}) error {
	out, err := v.formatters[v.name](value)
	if err != nil {
		return errors.Annotatef(err, "formatting %s output", v.name)
	}
	_, err = target.Write(out)
	return errors.Trace(err)
}
