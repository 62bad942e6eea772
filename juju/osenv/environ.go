// Copyright 2013 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package osenv

import (
	"os"

	"github.com/juju/errors"
)

// ErrMissingEnvironment is returned when a variable the unit agent is
// expected to set for the current hook is absent.
const ErrMissingEnvironment = errors.ConstError("missing environment variable")

// Environ gives access to the environment a hook was invoked with.
type Environ interface {
	// LookupEnv returns the value of the variable and whether it is set.
	LookupEnv(key string) (string, bool)
}

// OSEnviron reads the environment of the current process.
type OSEnviron struct{}

// LookupEnv implements Environ.
func (OSEnviron) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnviron is an Environ backed by a fixed snapshot of variables.
type MapEnviron map[string]string

// LookupEnv implements Environ.
func (m MapEnviron) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Snapshot copies the variables named by keys out of env, so that later
// changes to the process environment are not observed.
func Snapshot(env Environ, keys ...string) MapEnviron {
	snapshot := make(MapEnviron, len(keys))
	for _, key := range keys {
		if v, ok := env.LookupEnv(key); ok {
			snapshot[key] = v
		}
	}
	return snapshot
}

// HookKeys lists every variable the unit agent may set for a hook.
var HookKeys = []string{
	JujuHookNameEnvKey,
	JujuDispatchPathEnvKey,
	JujuUnitNameEnvKey,
	JujuModelNameEnvKey,
	JujuModelUUIDEnvKey,
	JujuVersionEnvKey,
	JujuCharmDirEnvKey,
	CharmDirEnvKey,
	JujuRelationEnvKey,
	JujuRelationIdEnvKey,
	JujuRemoteUnitEnvKey,
	JujuRemoteAppEnvKey,
	JujuDepartingUnitEnvKey,
	JujuLoggingConfigEnvKey,
}

// Require returns the value of key, or an error satisfying
// errors.Is(err, ErrMissingEnvironment) when it is unset or empty.
func Require(env Environ, key string) (string, error) {
	v, ok := env.LookupEnv(key)
	if !ok || v == "" {
		return "", errors.Annotatef(ErrMissingEnvironment, "%s", key)
	}
	return v, nil
}

// Optional returns the value of key, or "" when it is unset.
func Optional(env Environ, key string) string {
	v, _ := env.LookupEnv(key)
	return v
}
