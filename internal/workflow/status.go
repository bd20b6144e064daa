// Package workflow defines the complaint lifecycle and who may drive it.
package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIllegalTransition is returned for moves the state machine does not allow.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrInvalidStatus is returned for unknown status names.
	ErrInvalidStatus = errors.New("invalid status")
)

// Status is the persisted lifecycle state of a complaint.
type Status string

const (
	Pending    Status = "PENDING"
	InProgress Status = "IN_PROGRESS"
	Resolved   Status = "RESOLVED"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{Pending, InProgress, Resolved}

// ParseStatus normalizes a status name.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(value)))
	switch s {
	case Pending, InProgress, Resolved:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == Resolved
}

func (s Status) String() string {
	return string(s)
}

// Event drives a transition.
type Event string

const (
	Start   Event = "start"
	Resolve Event = "resolve"
)

var targets = map[Event]Status{
	Start:   InProgress,
	Resolve: Resolved,
}

// Next applies event to from. Repeating the move that produced the current
// status is a no-op (changed=false) rather than an error, so resolving a
// resolved complaint is harmless.
func Next(from Status, e Event) (to Status, changed bool, err error) {
	target, ok := targets[e]
	if !ok {
		return from, false, fmt.Errorf("%w: unknown event %q", ErrIllegalTransition, e)
	}
	if from == target {
		return from, false, nil
	}

	switch {
	case from == Pending && e == Start,
		from == Pending && e == Resolve,
		from == InProgress && e == Resolve:
		return target, true, nil
	}
	return from, false, fmt.Errorf("%w: %s --%s--> %s", ErrIllegalTransition, from, e, target)
}

// EventFor maps a requested target status to the event that reaches it.
func EventFor(target Status) (Event, error) {
	switch target {
	case InProgress:
		return Start, nil
	case Resolved:
		return Resolve, nil
	}
	return "", fmt.Errorf("%w: cannot move a complaint back to %s", ErrIllegalTransition, target)
}
