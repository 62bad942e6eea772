// Copyright 2012, 2013 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"io"
	"sort"

	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/yaml.v3"
)

const (
	ScopeGlobal    = "global"
	ScopeContainer = "container"
)

// RelationRole defines the role of a relation endpoint.
type RelationRole string

const (
	RoleProvider RelationRole = "provider"
	RoleRequirer RelationRole = "requirer"
	RolePeer     RelationRole = "peer"
)

// Relation is a single relation endpoint defined in the charm's
// metadata.yaml file.
type Relation struct {
	Name      string
	Role      RelationRole
	Interface string
	Optional  bool
	Limit     int
	Scope     string
}

// Meta holds the parts of a charm's metadata.yaml the charm needs at
// hook time.
type Meta struct {
	Name        string
	Summary     string
	Description string
	Provides    map[string]Relation
	Requires    map[string]Relation
	Peers       map[string]Relation
	Subordinate bool
}

// ReadMeta reads the content of a metadata.yaml file and returns
// its representation.
func ReadMeta(r io.Reader) (*Meta, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Annotate(err, "metadata")
	}
	v, err := charmSchema.Coerce(raw, nil)
	if err != nil {
		return nil, errors.Annotate(err, "metadata")
	}
	m := v.(map[string]interface{})
	meta := &Meta{
		Name:     m["name"].(string),
		Provides: parseRelations(m["provides"], RoleProvider),
		Requires: parseRelations(m["requires"], RoleRequirer),
		Peers:    parseRelations(m["peers"], RolePeer),
	}
	meta.Summary, _ = m["summary"].(string)
	meta.Description, _ = m["description"].(string)

	// Subordinate charms must have at least one relation that
	// has container scope, otherwise they can't relate to the
	// principal.
	if subordinate, _ := m["subordinate"].(bool); subordinate {
		valid := false
		for _, relation := range meta.Requires {
			if relation.Scope == ScopeContainer {
				valid = true
				break
			}
		}
		if !valid {
			return nil, errors.NotValidf("subordinate charm %q without requires relation with container scope", meta.Name)
		}
		meta.Subordinate = true
	}
	if err := meta.checkEndpointNames(); err != nil {
		return nil, errors.Trace(err)
	}
	return meta, nil
}

// Endpoints returns every relation endpoint of the charm, sorted by name.
func (m *Meta) Endpoints() []Relation {
	var all []Relation
	for _, group := range []map[string]Relation{m.Provides, m.Requires, m.Peers} {
		for _, relation := range group {
			all = append(all, relation)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Name < all[j].Name
	})
	return all
}

// Endpoint returns the named relation endpoint.
func (m *Meta) Endpoint(name string) (Relation, bool) {
	for _, group := range []map[string]Relation{m.Provides, m.Requires, m.Peers} {
		if relation, ok := group[name]; ok {
			return relation, true
		}
	}
	return Relation{}, false
}

func (m *Meta) checkEndpointNames() error {
	seen := make(map[string]RelationRole)
	for _, relation := range m.Endpoints() {
		if role, ok := seen[relation.Name]; ok {
			return errors.NotValidf("endpoint %q defined as both %s and %s", relation.Name, role, relation.Role)
		}
		seen[relation.Name] = relation.Role
	}
	return nil
}

func parseRelations(relations interface{}, role RelationRole) map[string]Relation {
	if relations == nil {
		return nil
	}
	result := make(map[string]Relation)
	for name, rel := range relations.(map[string]interface{}) {
		relMap := rel.(map[string]interface{})
		relation := Relation{
			Name:      name,
			Role:      role,
			Interface: relMap["interface"].(string),
			Optional:  relMap["optional"].(bool),
		}
		if scope, ok := relMap["scope"].(string); ok {
			relation.Scope = scope
		}
		if limit, ok := relMap["limit"].(int64); ok {
			relation.Limit = int(limit)
		}
		result[name] = relation
	}
	return result
}

// Schema coercer that expands the interface shorthand notation.
// A consistent format is easier to work with than considering the
// potential difference everywhere.
//
// Supports the following variants::
//
//	provides:
//	  server: riak
//	  admin: http
//	  foobar:
//	    interface: blah
//
//	provides:
//	  server:
//	    interface: mysql
//	    limit:
//	    optional: false
//
// In all input cases, the output is the fully specified interface
// representation as seen in the mysql interface description above.
func ifaceExpander(limit interface{}) schema.Checker {
	return ifaceExpC{limit}
}

type ifaceExpC struct {
	limit interface{}
}

var (
	stringC = schema.String()
	mapC    = schema.StringMap(schema.Any())
)

func (c ifaceExpC) Coerce(v interface{}, path []string) (interface{}, error) {
	if s, err := stringC.Coerce(v, path); err == nil {
		return ifaceSchema.Coerce(map[string]interface{}{
			"interface": s,
			"limit":     c.limit,
			"optional":  false,
			"scope":     ScopeGlobal,
		}, path)
	}

	// Optional values are context-sensitive and/or have
	// defaults, which is different than what KeyDict can
	// readily support. So just do it here first, then
	// coerce to the real schema.
	v, err := mapC.Coerce(v, path)
	if err != nil {
		return nil, err
	}
	m := v.(map[string]interface{})
	if _, ok := m["limit"]; !ok {
		m["limit"] = c.limit
	}
	if _, ok := m["optional"]; !ok {
		m["optional"] = false
	}
	if _, ok := m["scope"]; !ok {
		m["scope"] = ScopeGlobal
	}
	return ifaceSchema.Coerce(m, path)
}

var ifaceSchema = schema.FieldMap(
	schema.Fields{
		"interface": schema.String(),
		"limit":     schema.OneOf(schema.Const(nil), schema.Int()),
		"scope":     schema.OneOf(schema.Const(ScopeGlobal), schema.Const(ScopeContainer)),
		"optional":  schema.Bool(),
	},
	schema.Defaults{"scope": schema.Omit},
)

var charmSchema = schema.FieldMap(
	schema.Fields{
		"name":        schema.String(),
		"summary":     schema.String(),
		"description": schema.String(),
		"peers":       schema.StringMap(ifaceExpander(1)),
		"provides":    schema.StringMap(ifaceExpander(nil)),
		"requires":    schema.StringMap(ifaceExpander(1)),
		"subordinate": schema.Bool(),
	},
	schema.Defaults{
		"summary":     schema.Omit,
		"description": schema.Omit,
		"provides":    schema.Omit,
		"requires":    schema.Omit,
		"peers":       schema.Omit,
		"subordinate": schema.Omit,
	},
)
