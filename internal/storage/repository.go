package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/example/wfviz/internal/domain"
)

// Kind identifies one of the supported backing stores.
type Kind string

const (
	KindRelational     Kind = "db"
	KindSnapshotText   Kind = "json"
	KindSnapshotBinary Kind = "pkl"
)

// Kinds lists the recognised backend kinds.
var Kinds = []Kind{KindRelational, KindSnapshotText, KindSnapshotBinary}

func (k Kind) String() string {
	return string(k)
}

// DefaultFile returns the well-known file name used when none is given.
func (k Kind) DefaultFile() string {
	switch k {
	case KindRelational:
		return "orchestrator.db"
	case KindSnapshotText:
		return "status.json"
	case KindSnapshotBinary:
		return "status.pkl"
	default:
		return ""
	}
}

// ParseKind converts a --source value into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedSource, s)
}

// Backend is the capability set shared by every backing store.
type Backend interface {
	// Put stores a node together with its subtree.
	Put(ctx context.Context, node *domain.Node) error

	// GetByUUID retrieves a node by ID.
	GetByUUID(ctx context.Context, id uuid.UUID) (*domain.Node, error)

	// GetByPath retrieves a node by its normalized path.
	GetByPath(ctx context.Context, path string) (*domain.Node, error)

	// Root retrieves the top of the stored tree.
	Root(ctx context.Context) (*domain.Node, error)

	// Close releases the backend.
	Close() error
}
