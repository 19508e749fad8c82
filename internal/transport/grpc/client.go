package grpc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/wfviz/internal/codec"
	"github.com/example/wfviz/internal/domain"
	"github.com/example/wfviz/internal/endpoint"
	"github.com/example/wfviz/internal/storage"
	"github.com/example/wfviz/pkg/id"
)

// RemoteBackend implements storage.Backend by asking a running inspector
// server. It is read-only.
type RemoteBackend struct {
	conn *grpc.ClientConn
}

var _ storage.Backend = (*RemoteBackend)(nil)

// Dial creates a backend that connects to the server at addr.
func Dial(addr string) (*RemoteBackend, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return NewRemoteBackend(conn), nil
}

// NewRemoteBackend wraps an existing connection.
func NewRemoteBackend(conn *grpc.ClientConn) *RemoteBackend {
	return &RemoteBackend{conn: conn}
}

// Close closes the underlying gRPC connection.
func (b *RemoteBackend) Close() error {
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

// Put is not supported remotely.
func (b *RemoteBackend) Put(ctx context.Context, node *domain.Node) error {
	return fmt.Errorf("%w: remote backend is read-only", domain.ErrInvalidArgument)
}

func (b *RemoteBackend) GetByUUID(ctx context.Context, u uuid.UUID) (*domain.Node, error) {
	return b.locate(ctx, map[string]any{fieldUUID: id.Hex(u)})
}

func (b *RemoteBackend) GetByPath(ctx context.Context, path string) (*domain.Node, error) {
	return b.locate(ctx, map[string]any{fieldPath: path})
}

func (b *RemoteBackend) Root(ctx context.Context) (*domain.Node, error) {
	return b.locate(ctx, map[string]any{})
}

func (b *RemoteBackend) locate(ctx context.Context, fields map[string]any) (*domain.Node, error) {
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}

	resp := new(wrapperspb.BytesValue)
	if err := b.conn.Invoke(ctx, LocateMethod, req, resp); err != nil {
		return nil, endpoint.MapStatusToError(err)
	}
	return codec.Binary.Unmarshal(resp.GetValue())
}
