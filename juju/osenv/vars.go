// Copyright 2013 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package osenv

const (
	// Set by the unit agent for every hook.
	JujuHookNameEnvKey     = "JUJU_HOOK_NAME"
	JujuDispatchPathEnvKey = "JUJU_DISPATCH_PATH"
	JujuUnitNameEnvKey     = "JUJU_UNIT_NAME"
	JujuModelNameEnvKey    = "JUJU_MODEL_NAME"
	JujuModelUUIDEnvKey    = "JUJU_MODEL_UUID"
	JujuVersionEnvKey      = "JUJU_VERSION"
	JujuCharmDirEnvKey     = "JUJU_CHARM_DIR"
	CharmDirEnvKey         = "CHARM_DIR"

	// Only set for relation hooks.
	JujuRelationEnvKey      = "JUJU_RELATION"
	JujuRelationIdEnvKey    = "JUJU_RELATION_ID"
	JujuRemoteUnitEnvKey    = "JUJU_REMOTE_UNIT"
	JujuRemoteAppEnvKey     = "JUJU_REMOTE_APP"
	JujuDepartingUnitEnvKey = "JUJU_DEPARTING_UNIT"

	JujuLoggingConfigEnvKey = "JUJU_LOGGING_CONFIG"
)
