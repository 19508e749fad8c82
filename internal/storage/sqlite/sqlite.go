package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/wfviz/internal/domain"
	"github.com/example/wfviz/internal/log"
	"github.com/example/wfviz/internal/storage"
)

// SQLiteStorage is the relational backend. It keeps one row per step.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

var _ storage.Backend = (*SQLiteStorage)(nil)

// New creates a SQLite storage instance without checking the file or schema.
func New(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// Resolve and render are one-shot; a single connection is enough.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &SQLiteStorage{db: db, path: path}, nil
}

// Open opens an existing database. A missing file or a file without the
// steps table is reported as domain.ErrSourceNotFound.
func Open(ctx context.Context, path string) (*SQLiteStorage, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: database at %q", domain.ErrSourceNotFound, path)
	}

	s, err := New(path)
	if err != nil {
		return nil, err
	}

	ok, err := s.hasSchema(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	if !ok {
		s.Close()
		return nil, fmt.Errorf("%w: no steps table in %q", domain.ErrSourceNotFound, path)
	}

	log.GetLogger().Debugf("Opened relational backend at %s", path)
	return s, nil
}

// Create opens or creates a database and runs migrations.
func Create(ctx context.Context, path string) (*SQLiteStorage, error) {
	s, err := New(path)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	return Migrate(ctx, s.db)
}

func (s *SQLiteStorage) hasSchema(ctx context.Context) (bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'steps'`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// withTx runs fn inside a transaction, committing only if fn succeeds.
func (s *SQLiteStorage) withTx(ctx context.Context, fn func(r *stepRepo) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&stepRepo{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// Put stores the node and every descendant, one row each. Each row's
// payload carries the subtree below that row's node.
func (s *SQLiteStorage) Put(ctx context.Context, node *domain.Node) error {
	if node == nil {
		return fmt.Errorf("%w: nil node", domain.ErrInvalidArgument)
	}
	return s.withTx(ctx, func(r *stepRepo) error {
		var err error
		node.Walk(func(n *domain.Node, _ int) bool {
			if err != nil {
				return false
			}
			err = r.Create(ctx, n)
			return err == nil
		})
		return err
	})
}

// GetByUUID retrieves the subtree rooted at the given ID.
func (s *SQLiteStorage) GetByUUID(ctx context.Context, id uuid.UUID) (*domain.Node, error) {
	var node *domain.Node
	err := s.withTx(ctx, func(r *stepRepo) error {
		var err error
		node, err = r.Get(ctx, id)
		return err
	})
	return node, err
}

// GetByPath retrieves the only subtree stored under path.
func (s *SQLiteStorage) GetByPath(ctx context.Context, path string) (*domain.Node, error) {
	var node *domain.Node
	err := s.withTx(ctx, func(r *stepRepo) error {
		var err error
		node, err = r.GetByPath(ctx, path)
		return err
	})
	return node, err
}

// Root retrieves the stored step that has no stored ancestor.
func (s *SQLiteStorage) Root(ctx context.Context) (*domain.Node, error) {
	var node *domain.Node
	err := s.withTx(ctx, func(r *stepRepo) error {
		id, err := r.RootID(ctx)
		if err != nil {
			return err
		}
		node, err = r.Get(ctx, id)
		return err
	})
	return node, err
}
