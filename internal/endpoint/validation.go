package endpoint

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/wfviz/internal/service"
)

// validateLocateRequest parses the locator values. Paths are matched
// verbatim, as they are locally, so an unclean path simply finds nothing.
func validateLocateRequest(req *LocateRequest) (service.Query, error) {
	if req == nil {
		return service.Query{}, status.Error(codes.InvalidArgument, "request is required")
	}
	return service.ParseQuery(req.UUID, req.Path)
}
