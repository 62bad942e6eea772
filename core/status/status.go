// Copyright 2016 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package status

// Status is the code reported for a unit or application workload, as
// understood by the status-get and status-set hook tools.
type Status string

// String returns a string representation of the Status.
func (s Status) String() string {
	return string(s)
}

const (
	// Active is set when:
	// The unit believes it is correctly offering all the services it has
	// been asked to offer.
	Active Status = "active"

	// Waiting is set when:
	// The unit is unable to progress to an active state because an application to
	// which it is related is not running.
	Waiting Status = "waiting"

	// Maintenance is set when:
	// The unit is not yet providing services, but is actively doing stuff
	// in preparation for providing those services.
	// This is a "spinning" state, not an error state.
	// It reflects activity on the unit itself, not on peers or related units.
	Maintenance Status = "maintenance"

	// Blocked is set when:
	// The unit needs manual intervention to get back to the Running state.
	Blocked Status = "blocked"
)

const (
	// Status values the agent may report but a charm never sets.

	// Unknown is set when:
	// A unit-agent has finished calling install, config-changed, and start,
	// but the charm has not called status-set yet.
	Unknown Status = "unknown"

	// Error means the entity requires human intervention
	// in order to operate correctly.
	Error Status = "error"

	// Terminated is set when the unit is gone but a record of it remains.
	Terminated Status = "terminated"
)

// severities holds the precedence of every status a charm may set.
// Higher values win when statuses are aggregated.
var severities = map[Status]int{
	Active:      0,
	Waiting:     1,
	Maintenance: 2,
	Blocked:     3,
}

// ValidWorkloadStatus returns true if status has a valid value (that is to say,
// a value that it's OK to set) for units or applications.
func ValidWorkloadStatus(status Status) bool {
	_, ok := severities[status]
	return ok
}

// KnownWorkloadStatus returns true if status is a value the agent may
// report for a workload, including values a charm cannot set.
func (s Status) KnownWorkloadStatus() bool {
	if ValidWorkloadStatus(s) {
		return true
	}
	switch s {
	case Unknown, Error, Terminated:
		return true
	default:
		return false
	}
}

// Severity returns the precedence of the status and whether the status
// is one a charm may set.
func (s Status) Severity() (int, bool) {
	rank, ok := severities[s]
	return rank, ok
}
