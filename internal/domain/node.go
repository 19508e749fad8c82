package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/wfviz/pkg/id"
)

// NodeKind tags a Node as a leaf task or a composite workflow.
type NodeKind int

const (
	KindTask     NodeKind = 1
	KindWorkflow NodeKind = 2
)

func (k NodeKind) String() string {
	switch k {
	case KindTask:
		return "task"
	case KindWorkflow:
		return "workflow"
	default:
		return "unknown"
	}
}

// Node is a single step of a workflow tree. Tasks and workflows share the
// same record; Kind decides whether Children is meaningful.
type Node struct {
	ID         uuid.UUID
	Kind       NodeKind
	Name       string
	Status     Status
	Path       string
	CreatedAt  time.Time
	ModifiedAt time.Time
	Scheduler  *SchedulerRequest

	// Workflow only. Order is display and traversal order.
	Children []*Node
	Parallel bool
}

func newNode(kind NodeKind, name string, status Status) *Node {
	now := time.Now().UTC()
	return &Node{
		ID:         id.Generate(),
		Kind:       kind,
		Name:       name,
		Status:     status,
		Path:       Normalize(name),
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// NewTask creates a leaf step with a fresh ID.
func NewTask(name string, status Status) *Node {
	return newNode(KindTask, name, status)
}

// NewWorkflow creates a composite step. The children are copied into a
// slice owned by the new workflow.
func NewWorkflow(name string, status Status, children ...*Node) *Node {
	n := newNode(KindWorkflow, name, status)
	n.Children = make([]*Node, 0, len(children))
	n.Children = append(n.Children, children...)
	return n
}

// IsWorkflow reports whether the node may have children.
func (n *Node) IsWorkflow() bool {
	return n.Kind == KindWorkflow
}

// Add appends children in order. It is a no-op on tasks.
func (n *Node) Add(children ...*Node) {
	if !n.IsWorkflow() {
		return
	}
	n.Children = append(n.Children, children...)
}

// Walk visits the subtree in pre-order, children in insertion order.
// Returning false from fn skips the visited node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{node: n}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.node == nil {
			continue
		}
		if !fn(top.node, top.depth) || !top.node.IsWorkflow() {
			continue
		}
		for i := len(top.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: top.node.Children[i], depth: top.depth + 1})
		}
	}
}

// Count returns the number of nodes in the subtree.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}
