// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package relation

import (
	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/names/v5"
)

var logger = loggo.GetLogger("juju.charm.relation")

// View is a relation as seen by the local unit.
type View struct {
	relation *Relation
	unit     names.UnitTag
	app      names.ApplicationTag
}

// NewView returns a view over relation from the point of view of unit.
func NewView(relation *Relation, unit names.UnitTag) *View {
	appName, _ := names.UnitApplication(unit.Id())
	return &View{
		relation: relation,
		unit:     unit,
		app:      names.NewApplicationTag(appName),
	}
}

// Relation returns the relation being viewed.
func (v *View) Relation() *Relation {
	return v.relation
}

// LocalUnitData returns the settings of the local unit. Changes to the
// returned map are written to the relation.
func (v *View) LocalUnitData() Settings {
	return v.relation.settings(v.unit)
}

// SetLocalUnitData replaces the settings of the local unit.
func (v *View) SetLocalUnitData(settings Settings) {
	v.relation.data[v.unit] = settings.Copy()
}

// ClearLocalUnitData removes every setting of the local unit. The unit
// stays in the relation with empty settings.
func (v *View) ClearLocalUnitData() {
	clearSettings(v.relation.settings(v.unit))
}

// LocalAppData returns the settings of the local application. Changes to
// the returned map are written to the relation.
func (v *View) LocalAppData() Settings {
	return v.relation.settings(v.app)
}

// SetLocalAppData replaces the settings of the local application.
func (v *View) SetLocalAppData(settings Settings) {
	v.relation.data[v.app] = settings.Copy()
}

// ClearLocalAppData removes every setting of the local application. The
// application stays in the relation with empty settings.
func (v *View) ClearLocalAppData() {
	clearSettings(v.relation.settings(v.app))
}

// Peers returns the settings of every unit of the named application.
func (v *View) Peers(application string) map[names.UnitTag]Settings {
	peers := make(map[names.UnitTag]Settings)
	for tag, settings := range v.relation.data {
		unit, ok := tag.(names.UnitTag)
		if !ok {
			continue
		}
		if app, _ := names.UnitApplication(unit.Id()); app == application {
			peers[unit] = settings
		}
	}
	return peers
}

// LocalPeers returns the settings of every unit of the local application,
// including the local unit.
func (v *View) LocalPeers() map[names.UnitTag]Settings {
	return v.Peers(v.app.Id())
}

// breakingEvent is implemented by hook events that report a relation
// being torn down.
type breakingEvent interface {
	BreakingRelation() *Relation
}

// IsBreaking reports whether event is the relation-broken hook for the
// relation being viewed. The relation must be the same instance, not
// merely one with the same id.
func (v *View) IsBreaking(event interface{}) bool {
	broken, ok := event.(breakingEvent)
	if !ok {
		return false
	}
	return broken.BreakingRelation() == v.relation
}

func clearSettings(s Settings) {
	for k := range s {
		delete(s, k)
	}
}

// RemoteView is a view over a relation with another application.
type RemoteView struct {
	*View
}

// NewRemoteView returns a view over a relation between the application of
// unit and a single remote application.
func NewRemoteView(relation *Relation, unit names.UnitTag) *RemoteView {
	return &RemoteView{View: NewView(relation, unit)}
}

// RemoteApplicationName returns the name of the remote application: the
// only application in the relation data other than the local one.
func (v *RemoteView) RemoteApplicationName() (string, error) {
	remote := set.NewStrings()
	for tag := range v.relation.data {
		app, ok := tag.(names.ApplicationTag)
		if !ok || app == v.app {
			continue
		}
		remote.Add(app.Id())
	}
	if remote.Size() != 1 {
		logger.Errorf("relation %s has remote applications %v", v.relation, remote.SortedValues())
		return "", errors.Annotatef(ErrDataIntegrity,
			"relation %s: expected 1 remote application, found %d", v.relation, remote.Size())
	}
	return remote.Values()[0], nil
}

// RemoteAppData returns the settings published by the remote application.
func (v *RemoteView) RemoteAppData() (Settings, error) {
	name, err := v.RemoteApplicationName()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return v.relation.settings(names.NewApplicationTag(name)), nil
}

// RemoteUnits returns the settings of every unit of the remote
// application.
func (v *RemoteView) RemoteUnits() (map[names.UnitTag]Settings, error) {
	name, err := v.RemoteApplicationName()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return v.Peers(name), nil
}
