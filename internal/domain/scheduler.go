package domain

import (
	"fmt"
	"strings"
	"time"
)

// SchedulerRequest holds the resources a step asked a queueing system for.
type SchedulerRequest struct {
	Kind               string // queueing system, e.g. "slurm"
	Partition          string
	NodeCount          int
	ProcsPerNode       int
	WallclockRequested time.Duration
	WallclockConsumed  *time.Duration
	WallclockRemaining *time.Duration
}

// TotalProcs is always derived, never stored.
func (r *SchedulerRequest) TotalProcs() int {
	return r.NodeCount * r.ProcsPerNode
}

// Summary returns a multi-line human readable description of the request.
func (r *SchedulerRequest) Summary() string {
	lines := []string{
		fmt.Sprintf("Scheduler: %s", r.Kind),
		fmt.Sprintf("Partition: %s", r.Partition),
		fmt.Sprintf("Nodes: %d x %d procs (%d total)", r.NodeCount, r.ProcsPerNode, r.TotalProcs()),
		fmt.Sprintf("Wallclock: %s", r.WallclockRequested),
	}
	if r.WallclockConsumed != nil {
		lines = append(lines, fmt.Sprintf("Consumed: %s", *r.WallclockConsumed))
	}
	if r.WallclockRemaining != nil {
		lines = append(lines, fmt.Sprintf("Remaining: %s", *r.WallclockRemaining))
	}
	return strings.Join(lines, "\n")
}
