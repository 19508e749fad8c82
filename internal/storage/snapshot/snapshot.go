// Package snapshot stores a whole workflow tree as a single file. Lookups
// load the tree and search only the root and its direct children.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/example/wfviz/internal/codec"
	"github.com/example/wfviz/internal/domain"
	"github.com/example/wfviz/internal/log"
	"github.com/example/wfviz/internal/storage"
)

// FileStore is a snapshot backend bound to one file and one codec.
type FileStore struct {
	path  string
	codec codec.Codec
}

var _ storage.Backend = (*FileStore)(nil)

// New creates a store without touching the file.
func New(path string, c codec.Codec) *FileStore {
	return &FileStore{path: path, codec: c}
}

// Open returns a store for an existing snapshot file.
func Open(path string, c codec.Codec) (*FileStore, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s file at %q", domain.ErrSourceNotFound, c.Name(), path)
	}
	log.GetLogger().Debugf("Opened %s snapshot at %s", c.Name(), path)
	return New(path, c), nil
}

// Put replaces the snapshot with the tree rooted at node.
func (s *FileStore) Put(ctx context.Context, node *domain.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.codec.Marshal(node)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Root loads the whole tree.
func (s *FileStore) Root(ctx context.Context) (*domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s file at %q", domain.ErrSourceNotFound, s.codec.Name(), s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return s.codec.Unmarshal(data)
}

// GetByUUID matches the root or one of its direct children.
func (s *FileStore) GetByUUID(ctx context.Context, id uuid.UUID) (*domain.Node, error) {
	root, err := s.Root(ctx)
	if err != nil {
		return nil, err
	}
	if n := SearchShallow(root, func(n *domain.Node) bool { return n.ID == id }); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("%w: uuid %s", domain.ErrNoWorkflowFound, id)
}

// GetByPath matches the root or one of its direct children.
func (s *FileStore) GetByPath(ctx context.Context, path string) (*domain.Node, error) {
	root, err := s.Root(ctx)
	if err != nil {
		return nil, err
	}
	if n := SearchShallow(root, func(n *domain.Node) bool { return n.Path == path }); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("%w: path %q", domain.ErrNoWorkflowFound, path)
}

// Close is a no-op; the file is only held open while reading or writing.
func (s *FileStore) Close() error {
	return nil
}

// SearchShallow returns root if it matches, otherwise the first direct child
// that matches. Grandchildren are never searched.
func SearchShallow(root *domain.Node, match func(*domain.Node) bool) *domain.Node {
	if match(root) {
		return root
	}
	for _, child := range root.Children {
		if match(child) {
			return child
		}
	}
	return nil
}
