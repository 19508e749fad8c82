package grpc

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/wfviz/internal/domain"
	"github.com/example/wfviz/internal/endpoint"
	"github.com/example/wfviz/internal/observability"
	"github.com/example/wfviz/internal/service"
	"github.com/example/wfviz/internal/storage"
)

func mainWorkflow() *domain.Node {
	wf := domain.NewWorkflow("main", domain.StatusRunning)
	wf.Path = "/work/main"
	for _, model := range []string{"model A", "model B"} {
		child := domain.NewWorkflow(model, domain.StatusPending)
		for _, step := range []string{"step 1", "step 2", "step 3"} {
			child.Add(domain.NewTask(step, domain.StatusCompleted))
		}
		wf.Add(child)
	}
	domain.FixPaths(wf)
	return wf
}

// startServer serves the given nodes from a relational backend over an
// in-memory listener and returns a connected client.
func startServer(t *testing.T, nodes ...*domain.Node) *RemoteBackend {
	t.Helper()
	return startServerWithMetrics(t, observability.NewMetrics(), nodes...)
}

func startServerWithMetrics(t *testing.T, metrics *observability.Metrics, nodes ...*domain.Node) *RemoteBackend {
	t.Helper()
	ctx := context.Background()

	b, err := service.CreateBackend(ctx, storage.KindRelational, filepath.Join(t.TempDir(), "orchestrator.db"))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	for _, n := range nodes {
		require.NoError(t, b.Put(ctx, n))
	}

	lis := bufconn.Listen(1 << 20)
	locator := service.NewLocator(b, service.WithMetrics(metrics))
	srv := NewServer(endpoint.MakeEndpoints(locator), WithMetrics(metrics))
	go srv.ServeListener(lis)
	t.Cleanup(srv.GracefulStop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	client := NewRemoteBackend(conn)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRemoteResolve(t *testing.T) {
	wf := mainWorkflow()
	client := startServer(t, wf)
	loc := service.NewLocator(client)
	ctx := context.Background()

	got, err := loc.Resolve(ctx, service.Query{UUID: &wf.Children[1].ID})
	require.NoError(t, err)
	if diff := cmp.Diff(wf.Children[1], got); diff != "" {
		t.Errorf("subtree mismatch (-want +got):\n%s", diff)
	}

	got, err = loc.Resolve(ctx, service.Query{Path: "/work/main/model_a/step_2"})
	require.NoError(t, err)
	assert.Equal(t, wf.Children[0].Children[1].ID, got.ID)

	got, err = loc.Resolve(ctx, service.Query{})
	require.NoError(t, err)
	assert.Equal(t, 9, got.Count())
}

func TestRemoteErrorsKeepTheirKind(t *testing.T) {
	first := domain.NewTask("dup", domain.StatusPending)
	first.Path = "/work/dup"
	second := domain.NewTask("dup", domain.StatusRunning)
	second.Path = "/work/dup"
	client := startServer(t, first, second)
	ctx := context.Background()

	missing := uuid.New()
	_, err := client.GetByUUID(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrNoWorkflowFound)

	_, err = client.GetByPath(ctx, "/work/dup")
	assert.ErrorIs(t, err, domain.ErrAmbiguousMatch)

	_, err = client.Root(ctx)
	assert.ErrorIs(t, err, domain.ErrAmbiguousMatch)

	assert.ErrorIs(t, client.Put(ctx, first), domain.ErrInvalidArgument)
}

// failingBackend answers every lookup with err.
type failingBackend struct {
	storage.Backend
	err error
}

func (b failingBackend) GetByUUID(context.Context, uuid.UUID) (*domain.Node, error) {
	return nil, b.err
}

func (b failingBackend) GetByPath(context.Context, string) (*domain.Node, error) {
	return nil, b.err
}

func (b failingBackend) Root(context.Context) (*domain.Node, error) { return nil, b.err }

func TestRemoteErrorsStayDistinct(t *testing.T) {
	tests := []struct {
		name string
		err  error
		not  error
	}{
		{"source", domain.ErrSourceNotFound, domain.ErrNoWorkflowFound},
		{"version", domain.ErrUnsupportedVersion, domain.ErrUnsupportedSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lis := bufconn.Listen(1 << 20)
			locator := service.NewLocator(failingBackend{err: fmt.Errorf("open status.pkl: %w", tt.err)})
			srv := NewServer(endpoint.MakeEndpoints(locator))
			go srv.ServeListener(lis)
			t.Cleanup(srv.GracefulStop)

			conn, err := grpc.NewClient("passthrough:///bufnet",
				grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
					return lis.DialContext(ctx)
				}),
				grpc.WithTransportCredentials(insecure.NewCredentials()),
			)
			require.NoError(t, err)
			client := NewRemoteBackend(conn)
			t.Cleanup(func() { client.Close() })

			_, err = client.Root(context.Background())
			assert.ErrorIs(t, err, tt.err)
			assert.NotErrorIs(t, err, tt.not)
			assert.Contains(t, err.Error(), "status.pkl")
		})
	}
}

func TestRemoteUncleanPathIsNotFound(t *testing.T) {
	client := startServer(t, mainWorkflow())

	_, err := client.GetByPath(context.Background(), "/work/main/")
	assert.ErrorIs(t, err, domain.ErrNoWorkflowFound)
	assert.NotErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestLocateRejectsBadUUID(t *testing.T) {
	client := startServer(t, mainWorkflow())

	req, err := structpb.NewStruct(map[string]any{"uuid": "not-hex"})
	require.NoError(t, err)
	err = client.conn.Invoke(context.Background(), LocateMethod, req, new(wrapperspb.BytesValue))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: LocateMethod}

	_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestServerRecordsMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	wf := mainWorkflow()
	client := startServerWithMetrics(t, metrics, wf)
	ctx := context.Background()

	_, err := client.GetByUUID(ctx, wf.Children[0].ID)
	require.NoError(t, err)
	_, err = client.GetByPath(ctx, "/missing")
	require.Error(t, err)

	snap := metrics.Snapshot()
	assert.Equal(t, 2, snap.RPCDuration[LocateMethod].Count)
	assert.Equal(t, 1, snap.ResolveDuration["uuid"].Count)
	assert.Equal(t, 1, snap.ResolveDuration["path"].Count)
	assert.Equal(t, int64(1), snap.ResolveErrors["not_found"])
	assert.Equal(t, int64(4), snap.NodesServed)
}
