// Copyright 2016 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package status

import (
	"fmt"

	"github.com/juju/errors"
)

// Workload is an immutable workload status: one of the four settable
// status codes plus a message. The zero value holds no status.
//
// Workload values are comparable with ==; two values are equal when both
// the status and the message are equal.
type Workload struct {
	status  Status
	message string
}

// NewActive returns an active workload status.
func NewActive(message string) Workload {
	return Workload{status: Active, message: message}
}

// NewWaiting returns a waiting workload status.
func NewWaiting(message string) Workload {
	return Workload{status: Waiting, message: message}
}

// NewMaintenance returns a maintenance workload status.
func NewMaintenance(message string) Workload {
	return Workload{status: Maintenance, message: message}
}

// NewBlocked returns a blocked workload status.
func NewBlocked(message string) Workload {
	return Workload{status: Blocked, message: message}
}

// NewWorkload returns a workload status for the given code. Only the
// codes a charm may set are accepted.
func NewWorkload(s Status, message string) (Workload, error) {
	if !ValidWorkloadStatus(s) {
		return Workload{}, errors.NotValidf("workload status %q", s)
	}
	return Workload{status: s, message: message}, nil
}

// Status returns the status code.
func (w Workload) Status() Status {
	return w.status
}

// Message returns the human readable message.
func (w Workload) Message() string {
	return w.message
}

// IsValid reports whether w holds one of the settable statuses.
func (w Workload) IsValid() bool {
	return ValidWorkloadStatus(w.status)
}

// String implements fmt.Stringer.
func (w Workload) String() string {
	if w.message == "" {
		return string(w.status)
	}
	return fmt.Sprintf("%s: %s", w.status, w.message)
}
