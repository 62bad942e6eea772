// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package charm gives a charm everything it can learn about the hook it
// was invoked for: which unit it runs as, the event that fired, the
// relations the unit takes part in and the workload status it reports.
//
// A UnitContext is built once per hook invocation:
//
//	uc, err := charm.NewUnitContext(ctx, charm.ContextParams{})
//	if err != nil {
//		return errors.Trace(err)
//	}
//	switch e := uc.Event().(type) {
//	case event.RelationJoinedEvent:
//		view := uc.RemoteRelationView(e.Relation())
//		...
//	}
//	return uc.Flush(ctx)
package charm

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/names/v5"
	"github.com/juju/version/v2"

	"github.com/juju/charmkit/charm/event"
	"github.com/juju/charmkit/charm/hooktool"
	"github.com/juju/charmkit/charm/relation"
	"github.com/juju/charmkit/core/status"
	"github.com/juju/charmkit/juju/osenv"
)

var logger = loggo.GetLogger("juju.charm")

// MetadataFile is the name of the charm metadata file in the charm
// directory.
const MetadataFile = "metadata.yaml"

// ContextParams holds what NewUnitContext needs. Every field is
// optional.
type ContextParams struct {
	// Environ is the hook environment. It defaults to a snapshot of
	// the process environment.
	Environ osenv.Environ

	// Runner runs hook tools. It defaults to an ExecRunner looking
	// tools up on PATH.
	Runner hooktool.Runner

	// Relations supplies relation data. It defaults to a source that
	// reads and writes relation settings through the hook tools.
	Relations relation.Source

	// Meta is the charm metadata. When nil it is read from the charm
	// directory named by the environment, if any.
	Meta *Meta
}

// Model identifies the model the unit is deployed in.
type Model struct {
	Name string
	UUID string
}

// UnitContext describes the current hook invocation from the point of
// view of the unit running it.
type UnitContext struct {
	unit        names.UnitTag
	model       Model
	jujuVersion version.Number
	event       event.Event
	meta        *Meta

	relations relation.Source
	status    *hooktool.StatusGateway
	tools     *hooktool.Tools

	leader *bool
}

// NewUnitContext reads the hook environment, classifies the event
// being dispatched and returns the resulting UnitContext.
func NewUnitContext(ctx context.Context, params ContextParams) (*UnitContext, error) {
	env := params.Environ
	if env == nil {
		env = osenv.Snapshot(osenv.OSEnviron{}, osenv.HookKeys...)
	}
	runner := params.Runner
	if runner == nil {
		runner = hooktool.NewExecRunner("", clock.WallClock)
	}

	unitName, err := osenv.Require(env, osenv.JujuUnitNameEnvKey)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !names.IsValidUnit(unitName) {
		return nil, errors.NotValidf("%s %q", osenv.JujuUnitNameEnvKey, unitName)
	}
	uc := &UnitContext{
		unit: names.NewUnitTag(unitName),
		model: Model{
			Name: osenv.Optional(env, osenv.JujuModelNameEnvKey),
			UUID: osenv.Optional(env, osenv.JujuModelUUIDEnvKey),
		},
		status: hooktool.NewStatusGateway(runner),
		tools:  hooktool.NewTools(runner),
	}
	if uc.model.UUID != "" {
		if _, err := uuid.Parse(uc.model.UUID); err != nil {
			return nil, errors.NotValidf("%s %q", osenv.JujuModelUUIDEnvKey, uc.model.UUID)
		}
	}
	if v := osenv.Optional(env, osenv.JujuVersionEnvKey); v != "" {
		if uc.jujuVersion, err = version.Parse(v); err != nil {
			return nil, errors.Annotatef(err, "parsing %s", osenv.JujuVersionEnvKey)
		}
	}

	uc.meta = params.Meta
	if uc.meta == nil {
		if uc.meta, err = readCharmDirMeta(env); err != nil {
			return nil, errors.Trace(err)
		}
	}

	uc.relations = params.Relations
	if uc.relations == nil {
		uc.relations = &hookToolSource{uc: uc, runner: runner}
	}

	name, err := event.HookName(env)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if uc.event, err = event.Classify(ctx, name, env, uc.relations); err != nil {
		return nil, errors.Trace(err)
	}
	logger.Debugf("unit %s dispatching %s", uc.unit.Id(), uc.event.Kind())
	return uc, nil
}

func readCharmDirMeta(env osenv.Environ) (*Meta, error) {
	dir := osenv.Optional(env, osenv.JujuCharmDirEnvKey)
	if dir == "" {
		dir = osenv.Optional(env, osenv.CharmDirEnvKey)
	}
	if dir == "" {
		return nil, nil
	}
	f, err := os.Open(filepath.Join(dir, MetadataFile))
	if os.IsNotExist(err) {
		logger.Debugf("no %s in charm directory %q", MetadataFile, dir)
		return nil, nil
	} else if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()
	meta, err := ReadMeta(f)
	if err != nil {
		return nil, errors.Annotatef(err, "reading %s", f.Name())
	}
	return meta, nil
}

// Unit returns the tag of the unit running the hook.
func (c *UnitContext) Unit() names.UnitTag {
	return c.unit
}

// Application returns the name of the unit's application.
func (c *UnitContext) Application() string {
	app, _ := names.UnitApplication(c.unit.Id())
	return app
}

// Model returns the model the unit is deployed in.
func (c *UnitContext) Model() Model {
	return c.model
}

// JujuVersion returns the version of the unit agent, or the zero
// version when the agent did not report one.
func (c *UnitContext) JujuVersion() version.Number {
	return c.jujuVersion
}

// Event returns the event the hook was invoked for.
func (c *UnitContext) Event() event.Event {
	return c.event
}

// Meta returns the charm metadata, or nil when none was found.
func (c *UnitContext) Meta() *Meta {
	return c.meta
}

// UnitStatus returns the unit's workload status. It returns false when
// the agent reports a status a charm cannot set.
func (c *UnitContext) UnitStatus(ctx context.Context) (status.Workload, bool, error) {
	return c.status.Read(ctx, hooktool.UnitScope)
}

// SetUnitStatus sets the unit's workload status.
func (c *UnitContext) SetUnitStatus(ctx context.Context, value status.Workload) error {
	return c.status.Write(ctx, hooktool.UnitScope, value)
}

// ApplicationStatus returns the application's workload status. Only
// the leader may read it.
func (c *UnitContext) ApplicationStatus(ctx context.Context) (status.Workload, bool, error) {
	return c.status.Read(ctx, hooktool.ApplicationScope)
}

// SetApplicationStatus sets the application's workload status. Only the
// leader may set it.
func (c *UnitContext) SetApplicationStatus(ctx context.Context, value status.Workload) error {
	return c.status.Write(ctx, hooktool.ApplicationScope, value)
}

// Endpoint returns a view of every relation established on the named
// endpoint.
func (c *UnitContext) Endpoint(ctx context.Context, name string) ([]*relation.View, error) {
	relations, err := c.relations.Relations(ctx, name)
	if err != nil {
		return nil, errors.Annotatef(err, "endpoint %q", name)
	}
	views := make([]*relation.View, len(relations))
	for i, rel := range relations {
		views[i] = c.RelationView(rel)
	}
	return views, nil
}

// RemoteEndpoint is like Endpoint, but returns views suited to an
// endpoint with a single remote application.
func (c *UnitContext) RemoteEndpoint(ctx context.Context, name string) ([]*relation.RemoteView, error) {
	if ep, ok := c.endpoint(name); ok && ep.Role == RolePeer {
		return nil, errors.NotValidf("remote view of peer endpoint %q", name)
	}
	relations, err := c.relations.Relations(ctx, name)
	if err != nil {
		return nil, errors.Annotatef(err, "endpoint %q", name)
	}
	views := make([]*relation.RemoteView, len(relations))
	for i, rel := range relations {
		views[i] = c.RemoteRelationView(rel)
	}
	return views, nil
}

// Relations returns the relations established on every endpoint named in
// the charm metadata, keyed by endpoint. Endpoints with no relations are
// omitted.
func (c *UnitContext) Relations(ctx context.Context) (map[string][]*relation.Relation, error) {
	if c.meta == nil {
		return nil, errors.NotFoundf("charm metadata")
	}
	result := make(map[string][]*relation.Relation)
	for _, endpoint := range c.meta.Endpoints() {
		relations, err := c.relations.Relations(ctx, endpoint.Name)
		if err != nil {
			return nil, errors.Annotatef(err, "endpoint %q", endpoint.Name)
		}
		if len(relations) > 0 {
			result[endpoint.Name] = relations
		}
	}
	return result, nil
}

func (c *UnitContext) endpoint(name string) (Relation, bool) {
	if c.meta == nil {
		return Relation{}, false
	}
	return c.meta.Endpoint(name)
}

// RelationView returns rel as seen by the unit.
func (c *UnitContext) RelationView(rel *relation.Relation) *relation.View {
	return relation.NewView(rel, c.unit)
}

// RemoteRelationView returns rel as seen by the unit, for a relation
// with a single remote application.
func (c *UnitContext) RemoteRelationView(rel *relation.Relation) *relation.RemoteView {
	return relation.NewRemoteView(rel, c.unit)
}

// IsLeader reports whether the unit is its application's leader. The
// answer is asked of the agent once per hook.
func (c *UnitContext) IsLeader(ctx context.Context) (bool, error) {
	if c.leader != nil {
		return *c.leader, nil
	}
	leader, err := c.tools.IsLeader(ctx)
	if err != nil {
		return false, errors.Trace(err)
	}
	c.leader = &leader
	return leader, nil
}

// Config returns the charm config.
func (c *UnitContext) Config(ctx context.Context) (hooktool.Config, error) {
	return c.tools.Config(ctx)
}

type flusher interface {
	Flush(ctx context.Context) error
}

// Flush writes any local relation settings changed during the hook back
// to the agent. It does nothing when the relation source keeps no
// pending changes.
func (c *UnitContext) Flush(ctx context.Context) error {
	if f, ok := c.relations.(flusher); ok {
		return errors.Trace(f.Flush(ctx))
	}
	return nil
}

// hookToolSource asks the agent for leadership the first time relation
// data is needed. Only the leader reads its own application settings.
type hookToolSource struct {
	uc     *UnitContext
	runner hooktool.Runner
	source *hooktool.RelationSource
}

func (s *hookToolSource) Relations(ctx context.Context, endpoint string) ([]*relation.Relation, error) {
	if s.source == nil {
		leader, err := s.uc.IsLeader(ctx)
		if err != nil {
			return nil, errors.Trace(err)
		}
		s.source = hooktool.NewRelationSource(s.runner, s.uc.unit, leader)
	}
	return s.source.Relations(ctx, endpoint)
}

func (s *hookToolSource) Flush(ctx context.Context) error {
	if s.source == nil {
		return nil
	}
	return s.source.Flush(ctx)
}
