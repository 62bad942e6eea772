// Copyright 2012, 2013 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm_test

import (
	"strings"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/charmkit/charm"
)

type metaSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&metaSuite{})

const wordpressMeta = `
name: wordpress
summary: "Blog engine"
description: "A pretty popular blog engine"
provides:
  url:
    interface: http
    limit:
    optional: false
requires:
  db:
    interface: mysql
    limit: 1
    optional: false
  cache: memcache
peers:
  cluster: wordpress-peer
`

func (s *metaSuite) TestReadMeta(c *gc.C) {
	meta, err := charm.ReadMeta(strings.NewReader(wordpressMeta))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(meta.Name, gc.Equals, "wordpress")
	c.Check(meta.Summary, gc.Equals, "Blog engine")
	c.Check(meta.Description, gc.Equals, "A pretty popular blog engine")
	c.Check(meta.Subordinate, jc.IsFalse)
	c.Check(meta.Provides, jc.DeepEquals, map[string]charm.Relation{
		"url": {Name: "url", Role: charm.RoleProvider, Interface: "http", Scope: charm.ScopeGlobal},
	})
	c.Check(meta.Requires, jc.DeepEquals, map[string]charm.Relation{
		"db":    {Name: "db", Role: charm.RoleRequirer, Interface: "mysql", Limit: 1, Scope: charm.ScopeGlobal},
		"cache": {Name: "cache", Role: charm.RoleRequirer, Interface: "memcache", Limit: 1, Scope: charm.ScopeGlobal},
	})
	c.Check(meta.Peers, jc.DeepEquals, map[string]charm.Relation{
		"cluster": {Name: "cluster", Role: charm.RolePeer, Interface: "wordpress-peer", Limit: 1, Scope: charm.ScopeGlobal},
	})
}

func (s *metaSuite) TestShorthandLimits(c *gc.C) {
	meta, err := charm.ReadMeta(strings.NewReader(`
name: wordpress
provides:
  url: http
requires:
  short: mysql
  long:
    interface: mysql
peers:
  cluster: wordpress-peer
`))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(meta.Provides["url"].Limit, gc.Equals, 0)
	c.Check(meta.Requires["short"].Limit, gc.Equals, 1)
	c.Check(meta.Requires["long"].Limit, gc.Equals, 1)
	c.Check(meta.Peers["cluster"].Limit, gc.Equals, 1)
	long := meta.Requires["long"]
	long.Name = "short"
	c.Check(meta.Requires["short"], jc.DeepEquals, long)
}

func (s *metaSuite) TestEndpoints(c *gc.C) {
	meta, err := charm.ReadMeta(strings.NewReader(wordpressMeta))
	c.Assert(err, jc.ErrorIsNil)
	var names []string
	for _, ep := range meta.Endpoints() {
		names = append(names, ep.Name)
	}
	c.Check(names, jc.DeepEquals, []string{"cache", "cluster", "db", "url"})

	ep, ok := meta.Endpoint("cluster")
	c.Check(ok, jc.IsTrue)
	c.Check(ep.Role, gc.Equals, charm.RolePeer)
	_, ok = meta.Endpoint("website")
	c.Check(ok, jc.IsFalse)
}

func (s *metaSuite) TestSubordinate(c *gc.C) {
	meta, err := charm.ReadMeta(strings.NewReader(`
name: logging
subordinate: true
requires:
  logging-directory:
    interface: logging
    scope: container
`))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(meta.Subordinate, jc.IsTrue)
	c.Check(meta.Requires["logging-directory"].Scope, gc.Equals, charm.ScopeContainer)
}

func (s *metaSuite) TestSubordinateWithoutContainerRelation(c *gc.C) {
	_, err := charm.ReadMeta(strings.NewReader(`
name: logging
subordinate: true
requires:
  logging-directory: logging
`))
	c.Check(err, gc.ErrorMatches, `subordinate charm "logging" without requires relation with container scope not valid`)
	c.Check(errors.Is(err, errors.NotValid), jc.IsTrue)
}

func (s *metaSuite) TestDuplicateEndpoint(c *gc.C) {
	_, err := charm.ReadMeta(strings.NewReader(`
name: wordpress
provides:
  db: mysql
requires:
  db: mysql
`))
	c.Check(err, gc.ErrorMatches, `endpoint "db" defined as both .* not valid`)
}

func (s *metaSuite) TestInvalidScope(c *gc.C) {
	_, err := charm.ReadMeta(strings.NewReader(`
name: wordpress
requires:
  db:
    interface: mysql
    scope: planet
`))
	c.Check(err, gc.ErrorMatches, `metadata: requires.*scope: .*`)
}

func (s *metaSuite) TestMissingName(c *gc.C) {
	_, err := charm.ReadMeta(strings.NewReader("summary: nameless\n"))
	c.Check(err, gc.ErrorMatches, `metadata: name: expected string, got nothing`)
}

func (s *metaSuite) TestBadYAML(c *gc.C) {
	_, err := charm.ReadMeta(strings.NewReader("name: [\n"))
	c.Check(err, gc.ErrorMatches, `metadata: yaml: .*`)
}
