// Copyright 2013 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package event

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/names/v5"

	"github.com/juju/charmkit/charm/relation"
	"github.com/juju/charmkit/juju/osenv"
)

var logger = loggo.GetLogger("juju.charm.event")

const (
	// ErrUnrecognizedEvent is returned when a hook name matches no known
	// hook.
	ErrUnrecognizedEvent = errors.ConstError("unrecognized event")

	// ErrRelationNotFound is returned when no relation on the hook's
	// endpoint has the hook's relation id.
	ErrRelationNotFound = errors.ConstError("relation not found")

	// ErrAmbiguousRelation is returned when several relations on the
	// hook's endpoint share the hook's relation id.
	ErrAmbiguousRelation = errors.ConstError("ambiguous relation")
)

var staticEvents = map[string]func() Event{
	string(ConfigChanged):         func() Event { return ConfigChangedEvent{} },
	string(Install):               func() Event { return InstallEvent{} },
	string(LeaderElected):         func() Event { return LeaderElectedEvent{} },
	string(LeaderSettingsChanged): func() Event { return LeaderSettingsChangedEvent{} },
	string(PostSeriesUpgrade):     func() Event { return PostSeriesUpgradeEvent{} },
	string(PreSeriesUpgrade):      func() Event { return PreSeriesUpgradeEvent{} },
	string(Remove):                func() Event { return RemoveEvent{} },
	string(Start):                 func() Event { return StartEvent{} },
	string(Stop):                  func() Event { return StopEvent{} },
	string(UpdateStatus):          func() Event { return UpdateStatusEvent{} },
	string(UpgradeCharm):          func() Event { return UpgradeCharmEvent{} },
}

type relationEventFunc func(base relationEvent, env osenv.Environ) (Event, error)

// relationEvents is scanned in order. No suffix is a suffix of another,
// so the order does not change which entry matches.
var relationEvents = []struct {
	kind  Kind
	build relationEventFunc
}{
	{RelationBroken, func(base relationEvent, _ osenv.Environ) (Event, error) {
		return RelationBrokenEvent{relationEvent: base}, nil
	}},
	{RelationChanged, func(base relationEvent, env osenv.Environ) (Event, error) {
		unit, err := requireUnit(env, osenv.JujuRemoteUnitEnvKey)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return RelationChangedEvent{relationEvent: base, remoteUnit: unit}, nil
	}},
	{RelationCreated, func(base relationEvent, _ osenv.Environ) (Event, error) {
		return RelationCreatedEvent{relationEvent: base}, nil
	}},
	{RelationDeparted, func(base relationEvent, env osenv.Environ) (Event, error) {
		departing, err := requireUnit(env, osenv.JujuDepartingUnitEnvKey)
		if err != nil {
			return nil, errors.Trace(err)
		}
		var remote names.UnitTag
		if name := osenv.Optional(env, osenv.JujuRemoteUnitEnvKey); name != "" {
			if remote, err = parseUnit(osenv.JujuRemoteUnitEnvKey, name); err != nil {
				return nil, errors.Trace(err)
			}
		}
		return RelationDepartedEvent{
			relationEvent: base,
			remoteUnit:    remote,
			departingUnit: departing,
		}, nil
	}},
	{RelationJoined, func(base relationEvent, env osenv.Environ) (Event, error) {
		unit, err := requireUnit(env, osenv.JujuRemoteUnitEnvKey)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return RelationJoinedEvent{relationEvent: base, remoteUnit: unit}, nil
	}},
}

// HookName returns the name of the hook being run. The unit agent sets
// JUJU_HOOK_NAME; charms run through the dispatch script also get
// JUJU_DISPATCH_PATH, eg "hooks/db-relation-joined".
func HookName(env osenv.Environ) (string, error) {
	if name := osenv.Optional(env, osenv.JujuHookNameEnvKey); name != "" {
		return name, nil
	}
	if path := osenv.Optional(env, osenv.JujuDispatchPathEnvKey); path != "" {
		return filepath.Base(path), nil
	}
	return "", errors.Annotatef(osenv.ErrMissingEnvironment,
		"%s or %s", osenv.JujuHookNameEnvKey, osenv.JujuDispatchPathEnvKey)
}

// Classify returns the event for the hook called name. Relation hooks
// are resolved against the relations supplied by relations, using the
// relation id found in env.
func Classify(ctx context.Context, name string, env osenv.Environ, relations relation.Source) (Event, error) {
	if newEvent, ok := staticEvents[name]; ok {
		logger.Debugf("hook %q is a %T", name, newEvent())
		return newEvent(), nil
	}
	for _, candidate := range relationEvents {
		suffix := "-" + string(candidate.kind)
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		endpoint := strings.TrimSuffix(name, suffix)
		if endpoint == "" {
			break
		}
		rel, err := resolveRelation(ctx, endpoint, env, relations)
		if err != nil {
			return nil, errors.Annotatef(err, "%s hook", name)
		}
		ev, err := candidate.build(relationEvent{endpoint: endpoint, relation: rel}, env)
		if err != nil {
			return nil, errors.Annotatef(err, "%s hook", name)
		}
		logger.Debugf("hook %q is a %s on relation %s", name, candidate.kind, rel)
		return ev, nil
	}
	return nil, errors.Annotatef(ErrUnrecognizedEvent, "hook %q", name)
}

func resolveRelation(ctx context.Context, endpoint string, env osenv.Environ, relations relation.Source) (*relation.Relation, error) {
	if name := osenv.Optional(env, osenv.JujuRelationEnvKey); name != "" && name != endpoint {
		return nil, errors.NotValidf("%s %q for endpoint %q", osenv.JujuRelationEnvKey, name, endpoint)
	}
	raw, err := osenv.Require(env, osenv.JujuRelationIdEnvKey)
	if err != nil {
		return nil, errors.Trace(err)
	}
	id, err := relation.ParseId(raw)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if relations == nil {
		return nil, errors.Annotatef(ErrRelationNotFound, "no relations known for endpoint %q", endpoint)
	}
	candidates, err := relations.Relations(ctx, endpoint)
	if err != nil {
		return nil, errors.Annotatef(err, "reading relations for endpoint %q", endpoint)
	}
	var found []*relation.Relation
	for _, rel := range candidates {
		if rel.Id() == id {
			found = append(found, rel)
		}
	}
	switch len(found) {
	case 0:
		return nil, errors.Annotatef(ErrRelationNotFound, "endpoint %q relation id %d", endpoint, id)
	case 1:
		return found[0], nil
	default:
		return nil, errors.Annotatef(ErrAmbiguousRelation, "endpoint %q has %d relations with id %d", endpoint, len(found), id)
	}
}

func requireUnit(env osenv.Environ, key string) (names.UnitTag, error) {
	name, err := osenv.Require(env, key)
	if err != nil {
		return names.UnitTag{}, errors.Trace(err)
	}
	return parseUnit(key, name)
}

func parseUnit(key, name string) (names.UnitTag, error) {
	if !names.IsValidUnit(name) {
		return names.UnitTag{}, errors.NotValidf("%s %q", key, name)
	}
	return names.NewUnitTag(name), nil
}
