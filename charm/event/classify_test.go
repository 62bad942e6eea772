// Copyright 2013 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package event_test

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/names/v5"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/charmkit/charm/event"
	"github.com/juju/charmkit/charm/relation"
	"github.com/juju/charmkit/juju/osenv"
)

type classifySuite struct {
	testing.IsolationSuite

	relation *relation.Relation
	source   relation.MapSource
}

var _ = gc.Suite(&classifySuite{})

func (s *classifySuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.relation = relation.New(7, "db", map[names.Tag]relation.Settings{
		names.NewApplicationTag("db-client"): {},
		names.NewUnitTag("db-client/2"):      {},
	})
	s.source = relation.MapSource{
		"db": {relation.New(3, "db", nil), s.relation},
	}
}

func (s *classifySuite) relationEnv(extra map[string]string) osenv.MapEnviron {
	env := osenv.MapEnviron{
		osenv.JujuRelationEnvKey:   "db",
		osenv.JujuRelationIdEnvKey: "7",
		osenv.JujuRemoteUnitEnvKey: "db-client/2",
	}
	for k, v := range extra {
		env[k] = v
	}
	return env
}

var staticTests = []struct {
	name     string
	expected event.Event
}{
	{"config-changed", event.ConfigChangedEvent{}},
	{"install", event.InstallEvent{}},
	{"leader-elected", event.LeaderElectedEvent{}},
	{"leader-settings-changed", event.LeaderSettingsChangedEvent{}},
	{"post-series-upgrade", event.PostSeriesUpgradeEvent{}},
	{"pre-series-upgrade", event.PreSeriesUpgradeEvent{}},
	{"remove", event.RemoveEvent{}},
	{"start", event.StartEvent{}},
	{"stop", event.StopEvent{}},
	{"update-status", event.UpdateStatusEvent{}},
	{"upgrade-charm", event.UpgradeCharmEvent{}},
}

func (s *classifySuite) TestStaticEvents(c *gc.C) {
	for i, t := range staticTests {
		c.Logf("test %d: %s", i, t.name)
		ev, err := event.Classify(context.Background(), t.name, osenv.MapEnviron{}, nil)
		c.Assert(err, jc.ErrorIsNil)
		c.Check(ev, gc.Equals, t.expected)
		c.Check(string(ev.Kind()), gc.Equals, t.name)
		c.Check(ev.Kind().IsRelation(), jc.IsFalse)
	}
}

func (s *classifySuite) TestConfigChanged(c *gc.C) {
	ev, err := event.Classify(context.Background(), "config-changed", osenv.MapEnviron{}, s.source)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(ev, gc.FitsTypeOf, event.ConfigChangedEvent{})
}

func (s *classifySuite) TestStaticNameIgnoresRelationEnvironment(c *gc.C) {
	ev, err := event.Classify(context.Background(), "start", s.relationEnv(nil), s.source)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(ev, gc.Equals, event.StartEvent{})
}

func (s *classifySuite) TestRelationJoined(c *gc.C) {
	ev, err := event.Classify(context.Background(), "db-relation-joined", s.relationEnv(nil), s.source)
	c.Assert(err, jc.ErrorIsNil)
	joined, ok := ev.(event.RelationJoinedEvent)
	c.Assert(ok, jc.IsTrue)
	c.Check(joined.Kind(), gc.Equals, event.RelationJoined)
	c.Check(joined.Endpoint(), gc.Equals, "db")
	c.Check(joined.Relation(), gc.Equals, s.relation)
	c.Check(joined.RemoteUnit(), gc.Equals, names.NewUnitTag("db-client/2"))
}

func (s *classifySuite) TestRelationChanged(c *gc.C) {
	ev, err := event.Classify(context.Background(), "db-relation-changed", s.relationEnv(map[string]string{
		osenv.JujuRelationIdEnvKey: "db:7",
	}), s.source)
	c.Assert(err, jc.ErrorIsNil)
	changed, ok := ev.(event.RelationChangedEvent)
	c.Assert(ok, jc.IsTrue)
	c.Check(changed.Relation(), gc.Equals, s.relation)
	c.Check(changed.RemoteUnit(), gc.Equals, names.NewUnitTag("db-client/2"))
}

func (s *classifySuite) TestRelationCreatedAndBroken(c *gc.C) {
	env := osenv.MapEnviron{osenv.JujuRelationIdEnvKey: "db:7"}

	ev, err := event.Classify(context.Background(), "db-relation-created", env, s.source)
	c.Assert(err, jc.ErrorIsNil)
	created, ok := ev.(event.RelationCreatedEvent)
	c.Assert(ok, jc.IsTrue)
	c.Check(created.Relation(), gc.Equals, s.relation)

	ev, err = event.Classify(context.Background(), "db-relation-broken", env, s.source)
	c.Assert(err, jc.ErrorIsNil)
	broken, ok := ev.(event.RelationBrokenEvent)
	c.Assert(ok, jc.IsTrue)
	c.Check(broken.Relation(), gc.Equals, s.relation)
	c.Check(broken.BreakingRelation(), gc.Equals, s.relation)
}

func (s *classifySuite) TestRelationDeparted(c *gc.C) {
	ev, err := event.Classify(context.Background(), "db-relation-departed", s.relationEnv(map[string]string{
		osenv.JujuDepartingUnitEnvKey: "db-client/2",
	}), s.source)
	c.Assert(err, jc.ErrorIsNil)
	departed, ok := ev.(event.RelationDepartedEvent)
	c.Assert(ok, jc.IsTrue)
	c.Check(departed.DepartingUnit(), gc.Equals, names.NewUnitTag("db-client/2"))
	remote, ok := departed.RemoteUnit()
	c.Check(ok, jc.IsTrue)
	c.Check(remote, gc.Equals, names.NewUnitTag("db-client/2"))
}

func (s *classifySuite) TestRelationDepartedWithoutRemoteUnit(c *gc.C) {
	env := osenv.MapEnviron{
		osenv.JujuRelationIdEnvKey:    "db:7",
		osenv.JujuDepartingUnitEnvKey: "myapp/0",
	}
	ev, err := event.Classify(context.Background(), "db-relation-departed", env, s.source)
	c.Assert(err, jc.ErrorIsNil)
	departed := ev.(event.RelationDepartedEvent)
	c.Check(departed.DepartingUnit(), gc.Equals, names.NewUnitTag("myapp/0"))
	_, ok := departed.RemoteUnit()
	c.Check(ok, jc.IsFalse)
}

func (s *classifySuite) TestRelationDepartedMissingDepartingUnit(c *gc.C) {
	_, err := event.Classify(context.Background(), "db-relation-departed", s.relationEnv(nil), s.source)
	c.Check(err, gc.ErrorMatches, `db-relation-departed hook: JUJU_DEPARTING_UNIT: missing environment variable`)
	c.Check(errors.Is(err, osenv.ErrMissingEnvironment), jc.IsTrue)
}

func (s *classifySuite) TestMissingRemoteUnit(c *gc.C) {
	env := osenv.MapEnviron{osenv.JujuRelationIdEnvKey: "7"}
	_, err := event.Classify(context.Background(), "db-relation-joined", env, s.source)
	c.Check(errors.Is(err, osenv.ErrMissingEnvironment), jc.IsTrue)
}

func (s *classifySuite) TestInvalidRemoteUnit(c *gc.C) {
	env := s.relationEnv(map[string]string{osenv.JujuRemoteUnitEnvKey: "not-a-unit"})
	_, err := event.Classify(context.Background(), "db-relation-changed", env, s.source)
	c.Check(err, gc.ErrorMatches, `db-relation-changed hook: JUJU_REMOTE_UNIT "not-a-unit" not valid`)
	c.Check(errors.Is(err, errors.NotValid), jc.IsTrue)
}

func (s *classifySuite) TestMissingRelationId(c *gc.C) {
	env := osenv.MapEnviron{osenv.JujuRemoteUnitEnvKey: "db-client/2"}
	_, err := event.Classify(context.Background(), "db-relation-joined", env, s.source)
	c.Check(err, gc.ErrorMatches, `db-relation-joined hook: JUJU_RELATION_ID: missing environment variable`)
	c.Check(errors.Is(err, osenv.ErrMissingEnvironment), jc.IsTrue)
}

func (s *classifySuite) TestInvalidRelationId(c *gc.C) {
	env := s.relationEnv(map[string]string{osenv.JujuRelationIdEnvKey: "db:seven"})
	_, err := event.Classify(context.Background(), "db-relation-joined", env, s.source)
	c.Check(errors.Is(err, errors.NotValid), jc.IsTrue)
}

func (s *classifySuite) TestRelationNameMismatch(c *gc.C) {
	env := s.relationEnv(map[string]string{osenv.JujuRelationEnvKey: "cache"})
	_, err := event.Classify(context.Background(), "db-relation-joined", env, s.source)
	c.Check(err, gc.ErrorMatches, `db-relation-joined hook: JUJU_RELATION "cache" for endpoint "db" not valid`)
}

func (s *classifySuite) TestRelationNotFound(c *gc.C) {
	source := relation.MapSource{"db": {relation.New(3, "db", nil)}}
	_, err := event.Classify(context.Background(), "db-relation-joined", s.relationEnv(nil), source)
	c.Check(err, gc.ErrorMatches, `db-relation-joined hook: endpoint "db" relation id 7: relation not found`)
	c.Check(errors.Is(err, event.ErrRelationNotFound), jc.IsTrue)
}

func (s *classifySuite) TestRelationNotFoundNoSource(c *gc.C) {
	_, err := event.Classify(context.Background(), "db-relation-joined", s.relationEnv(nil), nil)
	c.Check(errors.Is(err, event.ErrRelationNotFound), jc.IsTrue)
}

func (s *classifySuite) TestAmbiguousRelation(c *gc.C) {
	source := relation.MapSource{"db": {relation.New(7, "db", nil), relation.New(7, "db", nil)}}
	_, err := event.Classify(context.Background(), "db-relation-joined", s.relationEnv(nil), source)
	c.Check(err, gc.ErrorMatches, `db-relation-joined hook: endpoint "db" has 2 relations with id 7: ambiguous relation`)
	c.Check(errors.Is(err, event.ErrAmbiguousRelation), jc.IsTrue)
}

type failingSource struct{}

func (failingSource) Relations(context.Context, string) ([]*relation.Relation, error) {
	return nil, errors.New("boom")
}

func (s *classifySuite) TestSourceError(c *gc.C) {
	_, err := event.Classify(context.Background(), "db-relation-joined", s.relationEnv(nil), failingSource{})
	c.Check(err, gc.ErrorMatches, `db-relation-joined hook: reading relations for endpoint "db": boom`)
}

func (s *classifySuite) TestUnrecognized(c *gc.C) {
	for _, name := range []string{
		"", "something-happened", "relation-joined", "-relation-joined",
		"db-relation-joined-extra", "Start", "install ",
	} {
		_, err := event.Classify(context.Background(), name, s.relationEnv(nil), s.source)
		c.Check(errors.Is(err, event.ErrUnrecognizedEvent), jc.IsTrue, gc.Commentf("%q", name))
	}
}

func (s *classifySuite) TestUnrecognizedMessage(c *gc.C) {
	_, err := event.Classify(context.Background(), "collect-metrics", osenv.MapEnviron{}, nil)
	c.Check(err, gc.ErrorMatches, `hook "collect-metrics": unrecognized event`)
}

func (s *classifySuite) TestEndpointWithRelationInName(c *gc.C) {
	rel := relation.New(1, "cluster-relation", nil)
	source := relation.MapSource{"cluster-relation": {rel}}
	env := osenv.MapEnviron{osenv.JujuRelationIdEnvKey: "cluster-relation:1"}
	ev, err := event.Classify(context.Background(), "cluster-relation-relation-created", env, source)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(ev.(event.RelationEvent).Endpoint(), gc.Equals, "cluster-relation")
	c.Check(ev.Kind().IsRelation(), jc.IsTrue)
}

func (s *classifySuite) TestHookName(c *gc.C) {
	name, err := event.HookName(osenv.MapEnviron{osenv.JujuHookNameEnvKey: "install"})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(name, gc.Equals, "install")

	name, err = event.HookName(osenv.MapEnviron{osenv.JujuDispatchPathEnvKey: "hooks/db-relation-joined"})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(name, gc.Equals, "db-relation-joined")

	_, err = event.HookName(osenv.MapEnviron{})
	c.Check(errors.Is(err, osenv.ErrMissingEnvironment), jc.IsTrue)
}
