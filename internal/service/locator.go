// Package service resolves which part of a stored workflow tree to show.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/wfviz/internal/domain"
	"github.com/example/wfviz/internal/log"
	"github.com/example/wfviz/internal/observability"
	"github.com/example/wfviz/internal/storage"
	"github.com/example/wfviz/pkg/id"
)

// Query selects a subtree. UUID takes precedence over Path; when neither is
// set the root of the store is returned.
type Query struct {
	UUID *uuid.UUID
	Path string
}

// ParseQuery builds a query from the textual --uuid and --path values.
func ParseQuery(uuidText, path string) (Query, error) {
	q := Query{Path: path}
	if uuidText != "" {
		u, err := id.Parse(uuidText)
		if err != nil {
			return Query{}, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
		q.UUID = &u
	}
	return q, nil
}

// lookup names the kind of lookup q performs.
func (q Query) lookup() string {
	switch {
	case q.UUID != nil:
		return "uuid"
	case q.Path != "":
		return "path"
	default:
		return "root"
	}
}

func (q Query) String() string {
	switch {
	case q.UUID != nil:
		return "uuid " + id.Hex(*q.UUID)
	case q.Path != "":
		return fmt.Sprintf("path %q", q.Path)
	default:
		return "root"
	}
}

// Locator finds workflow subtrees in a backend.
type Locator struct {
	backend storage.Backend
	metrics *observability.Metrics
}

// LocatorOption is a functional option for configuring the Locator.
type LocatorOption func(*Locator)

// WithMetrics records lookup timings and failures in m.
func WithMetrics(m *observability.Metrics) LocatorOption {
	return func(l *Locator) {
		l.metrics = m
	}
}

// NewLocator creates a locator over backend.
func NewLocator(backend storage.Backend, opts ...LocatorOption) *Locator {
	l := &Locator{backend: backend}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Resolve returns the node matching q together with its subtree.
func (l *Locator) Resolve(ctx context.Context, q Query) (*domain.Node, error) {
	log.GetLogger().Debugf("Resolving %s", q)
	start := time.Now()

	var (
		node *domain.Node
		err  error
	)
	switch {
	case q.UUID != nil:
		node, err = l.backend.GetByUUID(ctx, *q.UUID)
	case q.Path != "":
		node, err = l.backend.GetByPath(ctx, q.Path)
	default:
		node, err = l.backend.Root(ctx)
	}
	if l.metrics != nil {
		l.metrics.ResolveDuration().WithLabels(q.lookup()).Observe(time.Since(start))
	}
	if err != nil {
		if l.metrics != nil {
			l.metrics.ResolveErrors().WithLabels(errorClass(err)).Inc()
		}
		return nil, fmt.Errorf("failed to resolve %s: %w", q, err)
	}

	count := node.Count()
	if l.metrics != nil {
		l.metrics.NodesServed().Add(int64(count))
	}
	log.GetLogger().Debugf("Resolved %s to %q (%d nodes)", q, node.Name, count)
	return node, nil
}

// errorClass labels a resolve failure for the error counters.
func errorClass(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoWorkflowFound):
		return "not_found"
	case errors.Is(err, domain.ErrAmbiguousMatch):
		return "ambiguous"
	case errors.Is(err, domain.ErrSourceNotFound):
		return "source_not_found"
	case errors.Is(err, domain.ErrUnsupportedVersion), errors.Is(err, domain.ErrInvalidArgument):
		return "corrupt"
	default:
		return "other"
	}
}
