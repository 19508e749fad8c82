package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/wfviz/internal/codec"
	"github.com/example/wfviz/internal/domain"
	"github.com/example/wfviz/internal/endpoint"
)

// Locate implements InspectorServer.
func (s *Server) Locate(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	fields := req.GetFields()
	resp, err := s.endpoints.Locate(ctx, &endpoint.LocateRequest{
		UUID: fields[fieldUUID].GetStringValue(),
		Path: fields[fieldPath].GetStringValue(),
	})
	if err != nil {
		return nil, endpoint.MapErrorToStatus(err)
	}

	data, err := codec.Binary.Marshal(resp.(*domain.Node))
	if err != nil {
		return nil, endpoint.MapErrorToStatus(err)
	}
	return wrapperspb.Bytes(data), nil
}
