// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package relation models the relation data a charm sees during a hook:
// the settings published by every unit and application taking part in a
// relation, and views over them from the point of view of the local unit.
package relation

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/names/v5"
)

// ErrDataIntegrity is returned when relation data does not have the
// shape the unit agent guarantees.
const ErrDataIntegrity = errors.ConstError("relation data integrity violated")

// Settings holds the key/value pairs published by one unit or application.
type Settings map[string]string

// Copy returns an independent copy of s.
func (s Settings) Copy() Settings {
	copied := make(Settings, len(s))
	for k, v := range s {
		copied[k] = v
	}
	return copied
}

// Relation is a single established relation on one of the charm's
// endpoints. Its data is keyed by unit and application tags.
type Relation struct {
	id       int
	endpoint string
	data     map[names.Tag]Settings
}

// New returns a relation with the given id on endpoint, backed by data.
// The data map is used directly; mutations made through views are
// visible to whoever supplied it.
func New(id int, endpoint string, data map[names.Tag]Settings) *Relation {
	if data == nil {
		data = make(map[names.Tag]Settings)
	}
	return &Relation{
		id:       id,
		endpoint: endpoint,
		data:     data,
	}
}

// Id returns the relation id, unique within the model.
func (r *Relation) Id() int {
	return r.id
}

// Endpoint returns the name of the local endpoint the relation is
// established on.
func (r *Relation) Endpoint() string {
	return r.endpoint
}

// String returns the relation id in the form used by hook tools,
// eg "db:7".
func (r *Relation) String() string {
	return fmt.Sprintf("%s:%d", r.endpoint, r.id)
}

// Data returns the backing data of the relation.
func (r *Relation) Data() map[names.Tag]Settings {
	return r.data
}

// Units returns the units present in the relation data, sorted by name.
func (r *Relation) Units() []names.UnitTag {
	var units []names.UnitTag
	for tag := range r.data {
		if unit, ok := tag.(names.UnitTag); ok {
			units = append(units, unit)
		}
	}
	sort.Slice(units, func(i, j int) bool {
		return units[i].Id() < units[j].Id()
	})
	return units
}

// settings returns the settings for tag, creating an empty entry when
// there is none.
func (r *Relation) settings(tag names.Tag) Settings {
	s, ok := r.data[tag]
	if !ok || s == nil {
		s = make(Settings)
		r.data[tag] = s
	}
	return s
}

// ParseData converts relation data keyed by unit or application name
// into data keyed by tag.
func ParseData(raw map[string]map[string]string) (map[names.Tag]Settings, error) {
	data := make(map[names.Tag]Settings, len(raw))
	for key, settings := range raw {
		tag, err := ParseKey(key)
		if err != nil {
			return nil, errors.Trace(err)
		}
		data[tag] = Settings(settings)
	}
	return data, nil
}

// ParseKey converts a unit or application name into its tag.
func ParseKey(key string) (names.Tag, error) {
	switch {
	case names.IsValidUnit(key):
		return names.NewUnitTag(key), nil
	case names.IsValidApplication(key):
		return names.NewApplicationTag(key), nil
	}
	return nil, errors.NotValidf("relation data key %q", key)
}

// Source supplies the relations currently established on an endpoint.
type Source interface {
	// Relations returns the relations established on endpoint.
	Relations(ctx context.Context, endpoint string) ([]*Relation, error)
}

// MapSource is a Source backed by relations held in memory, keyed by
// endpoint name.
type MapSource map[string][]*Relation

// Relations implements Source.
func (m MapSource) Relations(_ context.Context, endpoint string) ([]*Relation, error) {
	return m[endpoint], nil
}

// ParseId parses a relation id as given to and by hook tools, either
// "<endpoint>:<id>" or a bare "<id>".
func ParseId(value string) (int, error) {
	raw := value
	if i := strings.LastIndex(value, ":"); i >= 0 {
		raw = value[i+1:]
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, errors.NotValidf("relation id %q", value)
	}
	return id, nil
}
