package domain

import (
	"fmt"
	"strings"
)

// Status describes the execution state of a step.
type Status int

const (
	StatusUnstarted Status = iota
	StatusPending
	StatusRunning
	StatusCompleted
	StatusFailed
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusUnstarted,
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
}

func (s Status) String() string {
	switch s {
	case StatusUnstarted:
		return "unstarted"
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus converts a status name back into a Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unstarted":
		return StatusUnstarted, nil
	case "pending":
		return StatusPending, nil
	case "running":
		return StatusRunning, nil
	case "completed":
		return StatusCompleted, nil
	case "failed":
		return StatusFailed, nil
	default:
		return 0, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, s)
	}
}
