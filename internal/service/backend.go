package service

import (
	"context"
	"fmt"
	"os"

	"github.com/example/wfviz/internal/codec"
	"github.com/example/wfviz/internal/domain"
	"github.com/example/wfviz/internal/log"
	"github.com/example/wfviz/internal/storage"
	"github.com/example/wfviz/internal/storage/snapshot"
	"github.com/example/wfviz/internal/storage/sqlite"
)

// ResolveFile returns fname, or the well-known file for kind when fname is
// empty.
func ResolveFile(kind storage.Kind, fname string) string {
	if fname != "" {
		return fname
	}
	return kind.DefaultFile()
}

// OpenBackend opens an existing store of the given source kind.
func OpenBackend(ctx context.Context, source, fname string) (storage.Backend, error) {
	kind, err := storage.ParseKind(source)
	if err != nil {
		return nil, err
	}
	fname = ResolveFile(kind, fname)
	log.GetLogger().Debugf("Opening %s backend at %s", kind, fname)

	switch kind {
	case storage.KindRelational:
		s, err := sqlite.Open(ctx, fname)
		if err != nil {
			return nil, err
		}
		return s, nil
	case storage.KindSnapshotText, storage.KindSnapshotBinary:
		s, err := snapshot.Open(fname, snapshotCodec(kind))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedSource, source)
	}
}

func snapshotCodec(kind storage.Kind) codec.Codec {
	if kind == storage.KindSnapshotText {
		return codec.Text
	}
	return codec.Binary
}

// CreateBackend creates a fresh store, replacing whatever was at fname.
func CreateBackend(ctx context.Context, kind storage.Kind, fname string) (storage.Backend, error) {
	fname = ResolveFile(kind, fname)
	if err := os.Remove(fname); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to replace %s: %w", fname, err)
	}

	switch kind {
	case storage.KindRelational:
		s, err := sqlite.Create(ctx, fname)
		if err != nil {
			return nil, err
		}
		return s, nil
	case storage.KindSnapshotText, storage.KindSnapshotBinary:
		return snapshot.New(fname, snapshotCodec(kind)), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedSource, kind)
	}
}
