package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/wfviz/internal/domain"
	"github.com/example/wfviz/internal/log"
	"github.com/example/wfviz/internal/render"
	"github.com/example/wfviz/internal/service"
	"github.com/example/wfviz/internal/storage"
	grpctransport "github.com/example/wfviz/internal/transport/grpc"
)

// locateFlags are shared by the commands that render a subtree.
type locateFlags struct {
	uuid   string
	path   string
	remote string
}

func (f *locateFlags) register(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "source kind: db, json or pkl (default db)")
	cmd.Flags().String("fname", "", "source file (default per source)")
	cmd.Flags().StringVar(&f.uuid, "uuid", "", "select the sub-workflow with this id")
	cmd.Flags().StringVar(&f.path, "path", "", "select the sub-workflow at this path")
	cmd.Flags().StringVar(&f.remote, "remote", "", "resolve through a wfviz server at host:port")
}

func (a *app) openBackend(ctx context.Context, remote string) (storage.Backend, error) {
	if remote != "" {
		log.GetLogger().Debugf("Using remote backend at %s", remote)
		b, err := grpctransport.Dial(remote)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return service.OpenBackend(ctx, a.cfg.Source, a.cfg.Fname)
}

// resolve opens the configured backend and returns the selected subtree.
func (a *app) resolve(ctx context.Context, f *locateFlags) (*domain.Node, error) {
	q, err := service.ParseQuery(f.uuid, f.path)
	if err != nil {
		return nil, err
	}

	backend, err := a.openBackend(ctx, f.remote)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	return service.NewLocator(backend).Resolve(ctx, q)
}

func (a *app) palette() (render.Palette, error) {
	return a.cfg.Palette.Palette()
}
