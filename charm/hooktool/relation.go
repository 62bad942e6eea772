// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hooktool

import (
	"context"
	"sort"
	"strconv"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/names/v5"

	"github.com/juju/charmkit/charm/relation"
)

// RelationSource loads relations and their data with the relation-ids,
// relation-list and relation-get hook tools, and writes changes to the
// local unit's and application's settings back with relation-set.
//
// Relations are loaded once per endpoint; later calls return the same
// instances.
type RelationSource struct {
	runner Runner
	unit   names.UnitTag
	app    names.ApplicationTag
	leader bool

	loaded    map[string][]*relation.Relation
	snapshots map[*relation.Relation]localSettings
}

// localSettings records the local settings as they were when a relation
// was loaded.
type localSettings struct {
	unit relation.Settings
	app  relation.Settings
}

var _ relation.Source = (*RelationSource)(nil)

// NewRelationSource returns a RelationSource for unit. Only a leader can
// read and write its application's settings.
func NewRelationSource(runner Runner, unit names.UnitTag, leader bool) *RelationSource {
	appName, _ := names.UnitApplication(unit.Id())
	return &RelationSource{
		runner:    runner,
		unit:      unit,
		app:       names.NewApplicationTag(appName),
		leader:    leader,
		loaded:    make(map[string][]*relation.Relation),
		snapshots: make(map[*relation.Relation]localSettings),
	}
}

// Relations implements relation.Source.
func (s *RelationSource) Relations(ctx context.Context, endpoint string) ([]*relation.Relation, error) {
	if rels, ok := s.loaded[endpoint]; ok {
		return rels, nil
	}
	var ids []string
	if err := runJSON(ctx, s.runner, &ids, "relation-ids", "--format", "json", endpoint); err != nil {
		return nil, errors.Annotatef(err, "listing relations for endpoint %q", endpoint)
	}
	rels := make([]*relation.Relation, 0, len(ids))
	for _, raw := range ids {
		id, err := relation.ParseId(raw)
		if err != nil {
			return nil, errors.Trace(err)
		}
		rel, err := s.load(ctx, endpoint, id)
		if err != nil {
			return nil, errors.Annotatef(err, "loading relation %s:%d", endpoint, id)
		}
		rels = append(rels, rel)
	}
	s.loaded[endpoint] = rels
	return rels, nil
}

func (s *RelationSource) load(ctx context.Context, endpoint string, id int) (*relation.Relation, error) {
	relId := endpoint + ":" + strconv.Itoa(id)

	var units []string
	if err := runJSON(ctx, s.runner, &units, "relation-list", "-r", relId, "--format", "json"); err != nil {
		return nil, errors.Trace(err)
	}
	var remoteApp string
	if err := runJSON(ctx, s.runner, &remoteApp, "relation-list", "-r", relId, "--app", "--format", "json"); err != nil {
		return nil, errors.Trace(err)
	}

	data := make(map[names.Tag]relation.Settings)
	for _, name := range append([]string{s.unit.Id()}, units...) {
		if !names.IsValidUnit(name) {
			return nil, errors.NotValidf("related unit %q", name)
		}
		settings, err := s.get(ctx, relId, name, false)
		if err != nil {
			return nil, errors.Trace(err)
		}
		data[names.NewUnitTag(name)] = settings
	}
	if remoteApp != "" && remoteApp != s.app.Id() {
		settings, err := s.get(ctx, relId, remoteApp, true)
		if err != nil {
			return nil, errors.Trace(err)
		}
		data[names.NewApplicationTag(remoteApp)] = settings
	}
	data[s.app] = relation.Settings{}
	if s.leader {
		settings, err := s.get(ctx, relId, s.app.Id(), true)
		if err != nil {
			return nil, errors.Trace(err)
		}
		data[s.app] = settings
	}

	rel := relation.New(id, endpoint, data)
	s.snapshots[rel] = localSettings{
		unit: data[s.unit].Copy(),
		app:  data[s.app].Copy(),
	}
	return rel, nil
}

func (s *RelationSource) get(ctx context.Context, relId, entity string, app bool) (relation.Settings, error) {
	args := []string{"-r", relId}
	if app {
		args = append(args, "--app")
	}
	args = append(args, "--format", "json", "-", entity)
	var settings relation.Settings
	if err := runJSON(ctx, s.runner, &settings, "relation-get", args...); err != nil {
		return nil, errors.Annotatef(err, "reading settings of %q", entity)
	}
	if settings == nil {
		settings = relation.Settings{}
	}
	return settings, nil
}

// Flush writes any change made to the local unit's settings, and the
// application's settings when the unit is leader, back to the agent.
func (s *RelationSource) Flush(ctx context.Context) error {
	endpoints := make([]string, 0, len(s.loaded))
	for endpoint := range s.loaded {
		endpoints = append(endpoints, endpoint)
	}
	sort.Strings(endpoints)
	for _, endpoint := range endpoints {
		for _, rel := range s.loaded[endpoint] {
			if err := s.flush(ctx, rel); err != nil {
				return errors.Annotatef(err, "writing settings for relation %s", rel)
			}
		}
	}
	return nil
}

func (s *RelationSource) flush(ctx context.Context, rel *relation.Relation) error {
	snapshot := s.snapshots[rel]
	current := rel.Data()

	if changes := settingsChanges(snapshot.unit, current[s.unit]); len(changes) > 0 {
		args := append([]string{"-r", rel.String()}, changes...)
		if _, err := s.runner.Run(ctx, "relation-set", args...); err != nil {
			return errors.Trace(err)
		}
		snapshot.unit = current[s.unit].Copy()
	}
	if changes := settingsChanges(snapshot.app, current[s.app]); len(changes) > 0 {
		if !s.leader {
			return errors.Forbiddenf("changing application settings as non-leader unit %q", s.unit.Id())
		}
		args := append([]string{"-r", rel.String(), "--app"}, changes...)
		if _, err := s.runner.Run(ctx, "relation-set", args...); err != nil {
			return errors.Trace(err)
		}
		snapshot.app = current[s.app].Copy()
	}
	s.snapshots[rel] = snapshot
	return nil
}

// settingsChanges returns relation-set arguments turning before into
// after, sorted by key. Removed keys are set to the empty string, which
// deletes them.
func settingsChanges(before, after relation.Settings) []string {
	keys := set.NewStrings()
	for k := range before {
		keys.Add(k)
	}
	for k := range after {
		keys.Add(k)
	}
	var changes []string
	for _, k := range keys.SortedValues() {
		old, hadOld := before[k]
		value, hasNew := after[k]
		switch {
		case hasNew && (!hadOld || old != value):
			changes = append(changes, k+"="+value)
		case !hasNew && hadOld:
			changes = append(changes, k+"=")
		}
	}
	return changes
}
