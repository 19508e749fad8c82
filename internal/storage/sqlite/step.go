package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/example/wfviz/internal/codec"
	"github.com/example/wfviz/internal/domain"
	"github.com/example/wfviz/pkg/id"
)

type stepRepo struct {
	tx *sql.Tx
}

func (r *stepRepo) Create(ctx context.Context, n *domain.Node) error {
	payload, err := codec.Binary.Marshal(n)
	if err != nil {
		return err
	}

	_, err = r.tx.ExecContext(ctx, `
		INSERT INTO steps (id, path, created_at, modified_at, payload)
		VALUES (?, ?, ?, ?, ?)
	`, id.Hex(n.ID), n.Path, n.CreatedAt, n.ModifiedAt, payload)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: step %s", domain.ErrAlreadyExists, id.Hex(n.ID))
	}
	return err
}

func (r *stepRepo) Get(ctx context.Context, stepID uuid.UUID) (*domain.Node, error) {
	var payload []byte
	err := r.tx.QueryRowContext(ctx, `SELECT payload FROM steps WHERE id = ?`, id.Hex(stepID)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: uuid %s", domain.ErrNoWorkflowFound, id.Hex(stepID))
	}
	if err != nil {
		return nil, err
	}
	return codec.Binary.Unmarshal(payload)
}

// GetByPath needs at most two rows to tell one match from many.
func (r *stepRepo) GetByPath(ctx context.Context, stepPath string) (*domain.Node, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT payload FROM steps WHERE path = ? LIMIT 2`, stepPath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payloads [][]byte
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		payloads = append(payloads, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(payloads) {
	case 0:
		return nil, fmt.Errorf("%w: path %q", domain.ErrNoWorkflowFound, stepPath)
	case 1:
		return codec.Binary.Unmarshal(payloads[0])
	default:
		return nil, fmt.Errorf("%w: path %q", domain.ErrAmbiguousMatch, stepPath)
	}
}

// RootID finds the single stored step whose path has no stored ancestor.
func (r *stepRepo) RootID(ctx context.Context) (uuid.UUID, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT id, path FROM steps ORDER BY created_at, id`)
	if err != nil {
		return uuid.Nil, err
	}
	defer rows.Close()

	type entry struct {
		id   string
		path string
	}
	var entries []entry
	paths := make(map[string]bool)
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.path); err != nil {
			return uuid.Nil, err
		}
		entries = append(entries, e)
		paths[e.path] = true
	}
	if err := rows.Err(); err != nil {
		return uuid.Nil, err
	}

	var roots []entry
	for _, e := range entries {
		if !hasAncestor(e.path, paths) {
			roots = append(roots, e)
		}
	}

	switch len(roots) {
	case 0:
		return uuid.Nil, fmt.Errorf("%w: database is empty", domain.ErrNoWorkflowFound)
	case 1:
		return id.Parse(roots[0].id)
	default:
		return uuid.Nil, fmt.Errorf("%w: %d root workflows stored", domain.ErrAmbiguousMatch, len(roots))
	}
}

func hasAncestor(p string, paths map[string]bool) bool {
	for {
		parent := path.Dir(p)
		if parent == p || parent == "." || parent == "/" {
			return paths[parent] && parent != p
		}
		if paths[parent] {
			return true
		}
		p = parent
	}
}
