// Copyright 2013 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package event determines which hook the unit agent invoked the charm
// for, and what data that hook carries.
package event

import (
	"github.com/juju/names/v5"

	"github.com/juju/charmkit/charm/relation"
)

// Kind identifies a hook.
type Kind string

const (
	// ConfigChanged runs after install, after upgrade-charm, and whenever
	// the charm config changes.
	ConfigChanged Kind = "config-changed"

	// Install runs once, before any other hook.
	Install Kind = "install"

	// LeaderElected runs when the unit becomes leader.
	LeaderElected Kind = "leader-elected"

	// LeaderSettingsChanged runs on non-leaders when the leader
	// settings change.
	LeaderSettingsChanged Kind = "leader-settings-changed"

	// PostSeriesUpgrade runs after the machine's series is upgraded.
	PostSeriesUpgrade Kind = "post-series-upgrade"

	// PreSeriesUpgrade runs before the machine's series is upgraded.
	PreSeriesUpgrade Kind = "pre-series-upgrade"

	// Remove runs last, as the unit is removed.
	Remove Kind = "remove"

	// Start runs after the first config-changed.
	Start Kind = "start"

	// Stop runs before remove.
	Stop Kind = "stop"

	// UpdateStatus runs periodically.
	UpdateStatus Kind = "update-status"

	// UpgradeCharm runs after the charm is upgraded.
	UpgradeCharm Kind = "upgrade-charm"

	// Relation hooks are named after the endpoint, eg "db-relation-joined".
	// RelationBroken runs when the relation is removed.
	RelationBroken Kind = "relation-broken"

	// RelationChanged runs when a remote unit's settings change.
	RelationChanged Kind = "relation-changed"

	// RelationCreated runs when the relation is established.
	RelationCreated Kind = "relation-created"

	// RelationDeparted runs when a remote unit leaves the relation.
	RelationDeparted Kind = "relation-departed"

	// RelationJoined runs when a remote unit joins the relation.
	RelationJoined Kind = "relation-joined"
)

// IsRelation returns whether the Kind represents a relation hook.
func (kind Kind) IsRelation() bool {
	switch kind {
	case RelationBroken, RelationChanged, RelationCreated, RelationDeparted, RelationJoined:
		return true
	}
	return false
}

// Event is a hook invocation. The concrete type identifies the hook.
type Event interface {
	Kind() Kind
}

// RelationEvent is implemented by every relation hook.
type RelationEvent interface {
	Event
	// Endpoint returns the local endpoint of the relation.
	Endpoint() string
	// Relation returns the relation the hook fired for.
	Relation() *relation.Relation
}

// ConfigChangedEvent is delivered for the config-changed hook.
type ConfigChangedEvent struct{}

// Kind implements Event.
func (ConfigChangedEvent) Kind() Kind { return ConfigChanged }

// InstallEvent is delivered for the install hook.
type InstallEvent struct{}

// Kind implements Event.
func (InstallEvent) Kind() Kind { return Install }

// LeaderElectedEvent is delivered for the leader-elected hook.
type LeaderElectedEvent struct{}

// Kind implements Event.
func (LeaderElectedEvent) Kind() Kind { return LeaderElected }

// LeaderSettingsChangedEvent is delivered for the leader-settings-changed hook.
type LeaderSettingsChangedEvent struct{}

// Kind implements Event.
func (LeaderSettingsChangedEvent) Kind() Kind { return LeaderSettingsChanged }

// PostSeriesUpgradeEvent is delivered for the post-series-upgrade hook.
type PostSeriesUpgradeEvent struct{}

// Kind implements Event.
func (PostSeriesUpgradeEvent) Kind() Kind { return PostSeriesUpgrade }

// PreSeriesUpgradeEvent is delivered for the pre-series-upgrade hook.
type PreSeriesUpgradeEvent struct{}

// Kind implements Event.
func (PreSeriesUpgradeEvent) Kind() Kind { return PreSeriesUpgrade }

// RemoveEvent is delivered for the remove hook.
type RemoveEvent struct{}

// Kind implements Event.
func (RemoveEvent) Kind() Kind { return Remove }

// StartEvent is delivered for the start hook.
type StartEvent struct{}

// Kind implements Event.
func (StartEvent) Kind() Kind { return Start }

// StopEvent is delivered for the stop hook.
type StopEvent struct{}

// Kind implements Event.
func (StopEvent) Kind() Kind { return Stop }

// UpdateStatusEvent is delivered for the update-status hook.
type UpdateStatusEvent struct{}

// Kind implements Event.
func (UpdateStatusEvent) Kind() Kind { return UpdateStatus }

// UpgradeCharmEvent is delivered for the upgrade-charm hook.
type UpgradeCharmEvent struct{}

// Kind implements Event.
func (UpgradeCharmEvent) Kind() Kind { return UpgradeCharm }

type relationEvent struct {
	endpoint string
	relation *relation.Relation
}

// Endpoint is part of the RelationEvent interface.
func (e relationEvent) Endpoint() string {
	return e.endpoint
}

// Relation is part of the RelationEvent interface.
func (e relationEvent) Relation() *relation.Relation {
	return e.relation
}

// RelationCreatedEvent is the first hook run for a new relation.
type RelationCreatedEvent struct {
	relationEvent
}

// Kind implements Event.
func (RelationCreatedEvent) Kind() Kind { return RelationCreated }

// RelationBrokenEvent is the last hook run for a relation being removed.
type RelationBrokenEvent struct {
	relationEvent
}

// Kind implements Event.
func (RelationBrokenEvent) Kind() Kind { return RelationBroken }

// BreakingRelation returns the relation being removed.
func (e RelationBrokenEvent) BreakingRelation() *relation.Relation {
	return e.relation
}

// RelationChangedEvent reports that a remote unit changed its settings.
type RelationChangedEvent struct {
	relationEvent
	remoteUnit names.UnitTag
}

// Kind implements Event.
func (RelationChangedEvent) Kind() Kind { return RelationChanged }

// RemoteUnit returns the unit whose settings changed.
func (e RelationChangedEvent) RemoteUnit() names.UnitTag {
	return e.remoteUnit
}

// RelationJoinedEvent reports that a remote unit entered the relation.
type RelationJoinedEvent struct {
	relationEvent
	remoteUnit names.UnitTag
}

// Kind implements Event.
func (RelationJoinedEvent) Kind() Kind { return RelationJoined }

// RemoteUnit returns the unit that joined.
func (e RelationJoinedEvent) RemoteUnit() names.UnitTag {
	return e.remoteUnit
}

// RelationDepartedEvent reports that a unit is leaving the relation.
type RelationDepartedEvent struct {
	relationEvent
	remoteUnit    names.UnitTag
	departingUnit names.UnitTag
}

// Kind implements Event.
func (RelationDepartedEvent) Kind() Kind { return RelationDeparted }

// RemoteUnit returns the remote unit the hook is run for, and false when
// the agent did not name one.
func (e RelationDepartedEvent) RemoteUnit() (names.UnitTag, bool) {
	return e.remoteUnit, e.remoteUnit != names.UnitTag{}
}

// DepartingUnit returns the unit that is leaving the relation. It may be
// the local unit.
func (e RelationDepartedEvent) DepartingUnit() names.UnitTag {
	return e.departingUnit
}
