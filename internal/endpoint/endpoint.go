package endpoint

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/wfviz/internal/domain"
	"github.com/example/wfviz/internal/service"
)

// Endpoint is a function that takes a request and returns a response.
type Endpoint func(ctx context.Context, request any) (response any, err error)

// Endpoints holds all endpoint handlers.
type Endpoints struct {
	Locate Endpoint
}

// LocateRequest carries the textual locator values of a remote lookup.
type LocateRequest struct {
	UUID string
	Path string
}

// MakeEndpoints creates all endpoints from the locator.
func MakeEndpoints(loc *service.Locator) Endpoints {
	return Endpoints{
		Locate: makeLocateEndpoint(loc),
	}
}

func makeLocateEndpoint(loc *service.Locator) Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*LocateRequest)
		q, err := validateLocateRequest(req)
		if err != nil {
			return nil, err
		}
		return loc.Resolve(ctx, q)
	}
}

// errorKinds pairs each sentinel with its status code and the name sent in
// the status details. Several sentinels share a code; the name tells them
// apart on the client.
var errorKinds = []struct {
	err  error
	name string
	code codes.Code
}{
	{domain.ErrNoWorkflowFound, "no_workflow_found", codes.NotFound},
	{domain.ErrSourceNotFound, "source_not_found", codes.NotFound},
	{domain.ErrNotFound, "not_found", codes.NotFound},
	{domain.ErrAmbiguousMatch, "ambiguous_match", codes.FailedPrecondition},
	{domain.ErrUnsupportedSource, "unsupported_source", codes.Unimplemented},
	{domain.ErrUnsupportedVersion, "unsupported_version", codes.DataLoss},
	{domain.ErrInvalidArgument, "invalid_argument", codes.InvalidArgument},
	{domain.ErrAlreadyExists, "already_exists", codes.AlreadyExists},
}

// codeFallback is used for statuses that carry no error name, e.g. from an
// older server.
var codeFallback = map[codes.Code]error{
	codes.NotFound:           domain.ErrNoWorkflowFound,
	codes.FailedPrecondition: domain.ErrAmbiguousMatch,
	codes.Unimplemented:      domain.ErrUnsupportedSource,
	codes.DataLoss:           domain.ErrUnsupportedVersion,
	codes.InvalidArgument:    domain.ErrInvalidArgument,
	codes.AlreadyExists:      domain.ErrAlreadyExists,
}

// MapErrorToStatus maps domain errors to gRPC status codes. The sentinel's
// name travels as a StringValue detail.
func MapErrorToStatus(err error) error {
	if err == nil {
		return status.Error(codes.Internal, "internal error")
	}

	// Already a gRPC status error
	if _, ok := status.FromError(err); ok {
		return err
	}

	for _, k := range errorKinds {
		if !errors.Is(err, k.err) {
			continue
		}
		st := status.New(k.code, err.Error())
		if withName, derr := st.WithDetails(wrapperspb.String(k.name)); derr == nil {
			st = withName
		}
		return st.Err()
	}
	return status.Error(codes.Internal, "internal error")
}

// MapStatusToError is the inverse of MapErrorToStatus, used by clients so
// that callers can test remote failures with errors.Is.
func MapStatusToError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	sentinel := sentinelFromDetails(st)
	if sentinel == nil {
		if sentinel = codeFallback[st.Code()]; sentinel == nil {
			return err
		}
	}
	return &remoteError{sentinel: sentinel, msg: st.Message()}
}

func sentinelFromDetails(st *status.Status) error {
	for _, d := range st.Details() {
		name, ok := d.(*wrapperspb.StringValue)
		if !ok {
			continue
		}
		for _, k := range errorKinds {
			if k.name == name.GetValue() {
				return k.err
			}
		}
	}
	return nil
}

// remoteError keeps the server's message while matching the local sentinel.
type remoteError struct {
	sentinel error
	msg      string
}

func (e *remoteError) Error() string { return "remote: " + e.msg }

func (e *remoteError) Unwrap() error { return e.sentinel }
