package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/wfviz/internal/domain"
	"github.com/example/wfviz/pkg/id"
)

type textCodec struct{}

type textSnapshot struct {
	Version uint64    `json:"version"`
	Root    *textNode `json:"root"`
}

type textNode struct {
	ID         string         `json:"uuid"`
	Kind       string         `json:"kind"`
	Name       string         `json:"name"`
	Status     string         `json:"status"`
	Path       string         `json:"path"`
	CreatedAt  time.Time      `json:"created_at"`
	ModifiedAt time.Time      `json:"modified_at"`
	Scheduler  *textScheduler `json:"scheduler,omitempty"`
	Parallel   bool           `json:"parallel,omitempty"`
	Steps      []*textNode    `json:"steps,omitempty"`
}

type textScheduler struct {
	Kind               string `json:"kind"`
	Partition          string `json:"partition"`
	NodeCount          int    `json:"node_count"`
	ProcsPerNode       int    `json:"procs_per_node"`
	WallclockRequested string `json:"wallclock_requested"`
	WallclockConsumed  string `json:"wallclock_consumed,omitempty"`
	WallclockRemaining string `json:"wallclock_remaining,omitempty"`
}

func (textCodec) Name() string { return "text" }

func (textCodec) Marshal(root *domain.Node) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", domain.ErrInvalidArgument)
	}
	return json.MarshalIndent(textSnapshot{Version: Version, Root: toText(root)}, "", "  ")
}

func (textCodec) Unmarshal(data []byte) (*domain.Node, error) {
	var snap textSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode text snapshot: %w", err)
	}
	if err := checkVersion(snap.Version); err != nil {
		return nil, err
	}
	if snap.Root == nil {
		return nil, fmt.Errorf("decode text snapshot: %w: missing root", domain.ErrInvalidArgument)
	}
	return fromText(snap.Root)
}

func toText(n *domain.Node) *textNode {
	t := &textNode{
		ID:         id.Hex(n.ID),
		Kind:       n.Kind.String(),
		Name:       n.Name,
		Status:     n.Status.String(),
		Path:       n.Path,
		CreatedAt:  n.CreatedAt,
		ModifiedAt: n.ModifiedAt,
		Parallel:   n.Parallel,
	}
	if r := n.Scheduler; r != nil {
		t.Scheduler = &textScheduler{
			Kind:               r.Kind,
			Partition:          r.Partition,
			NodeCount:          r.NodeCount,
			ProcsPerNode:       r.ProcsPerNode,
			WallclockRequested: r.WallclockRequested.String(),
		}
		if r.WallclockConsumed != nil {
			t.Scheduler.WallclockConsumed = r.WallclockConsumed.String()
		}
		if r.WallclockRemaining != nil {
			t.Scheduler.WallclockRemaining = r.WallclockRemaining.String()
		}
	}
	for _, child := range n.Children {
		t.Steps = append(t.Steps, toText(child))
	}
	return t
}

func fromText(t *textNode) (*domain.Node, error) {
	uid, err := id.Parse(t.ID)
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseStatus(t.Status)
	if err != nil {
		return nil, err
	}

	n := &domain.Node{
		ID:         uid,
		Name:       t.Name,
		Status:     status,
		Path:       t.Path,
		CreatedAt:  t.CreatedAt,
		ModifiedAt: t.ModifiedAt,
		Parallel:   t.Parallel,
	}
	switch t.Kind {
	case "task":
		n.Kind = domain.KindTask
	case "workflow":
		n.Kind = domain.KindWorkflow
		n.Children = make([]*domain.Node, 0, len(t.Steps))
	default:
		return nil, fmt.Errorf("%w: unknown node kind %q", domain.ErrInvalidArgument, t.Kind)
	}

	if t.Scheduler != nil {
		r, err := schedulerFromText(t.Scheduler)
		if err != nil {
			return nil, err
		}
		n.Scheduler = r
	}

	for _, step := range t.Steps {
		child, err := fromText(step)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

func schedulerFromText(s *textScheduler) (*domain.SchedulerRequest, error) {
	r := &domain.SchedulerRequest{
		Kind:         s.Kind,
		Partition:    s.Partition,
		NodeCount:    s.NodeCount,
		ProcsPerNode: s.ProcsPerNode,
	}
	var err error
	if s.WallclockRequested != "" {
		if r.WallclockRequested, err = time.ParseDuration(s.WallclockRequested); err != nil {
			return nil, fmt.Errorf("%w: wallclock_requested: %v", domain.ErrInvalidArgument, err)
		}
	}
	if s.WallclockConsumed != "" {
		d, err := time.ParseDuration(s.WallclockConsumed)
		if err != nil {
			return nil, fmt.Errorf("%w: wallclock_consumed: %v", domain.ErrInvalidArgument, err)
		}
		r.WallclockConsumed = &d
	}
	if s.WallclockRemaining != "" {
		d, err := time.ParseDuration(s.WallclockRemaining)
		if err != nil {
			return nil, fmt.Errorf("%w: wallclock_remaining: %v", domain.ErrInvalidArgument, err)
		}
		r.WallclockRemaining = &d
	}
	return r, nil
}
