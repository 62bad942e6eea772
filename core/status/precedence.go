// Copyright 2016 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package status

import (
	"sort"
	"strings"

	"github.com/juju/errors"
)

// ErrIncomparable is the error carried by the panic raised when a
// Workload that holds no settable status takes part in a comparison.
const ErrIncomparable = errors.ConstError("incomparable workload status")

// Compare returns -1, 0 or +1 depending on whether a is less severe than,
// equal to, or more severe than b.
//
// Values with different statuses are ordered by severity alone. Values
// with the same status are ordered by message.
//
// Comparing a Workload that is not valid is a programming error and
// panics.
func Compare(a, b Workload) int {
	ra := mustSeverity(a)
	rb := mustSeverity(b)
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	}
	return strings.Compare(a.message, b.message)
}

// Less reports whether w sorts before other.
func (w Workload) Less(other Workload) bool {
	return Compare(w, other) < 0
}

// Worst returns the most severe of the given values, breaking ties on the
// message. It returns false when no values are given.
func Worst(values ...Workload) (Workload, bool) {
	if len(values) == 0 {
		return Workload{}, false
	}
	worst := values[0]
	mustSeverity(worst)
	for _, v := range values[1:] {
		if Compare(v, worst) > 0 {
			worst = v
		}
	}
	return worst, true
}

// Sort orders values from least to most severe.
func Sort(values []Workload) {
	for _, v := range values {
		mustSeverity(v)
	}
	sort.SliceStable(values, func(i, j int) bool {
		return Compare(values[i], values[j]) < 0
	})
}

func mustSeverity(w Workload) int {
	rank, ok := w.status.Severity()
	if !ok {
		panic(errors.Annotatef(ErrIncomparable, "status %q", w.status))
	}
	return rank
}
