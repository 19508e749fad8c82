package cli

import (
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/wfviz/internal/endpoint"
	"github.com/example/wfviz/internal/log"
	"github.com/example/wfviz/internal/observability"
	"github.com/example/wfviz/internal/service"
	grpctransport "github.com/example/wfviz/internal/transport/grpc"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a source over gRPC",
		Long: `Open a source and answer lookups from "wfviz tree --remote" and
"wfviz table --remote" until interrupted. With --metrics-addr, lookup
timings and error counts are served at /metrics on that address.

EXAMPLES:
  wfviz serve --source db --fname orchestrator.db --addr :50051
  wfviz serve --metrics-addr localhost:6060`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			backend, err := service.OpenBackend(ctx, a.cfg.Source, a.cfg.Fname)
			if err != nil {
				return err
			}
			defer backend.Close()

			metrics := observability.NewMetrics()
			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics)
				go func() {
					log.GetLogger().Infof("Serving metrics on %s", metricsAddr)
					if err := http.ListenAndServe(metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.GetLogger().Warnf("Metrics server error: %v", err)
					}
				}()
			}

			locator := service.NewLocator(backend, service.WithMetrics(metrics))
			server := grpctransport.NewServer(
				endpoint.MakeEndpoints(locator),
				grpctransport.WithMetrics(metrics),
			)
			go func() {
				<-ctx.Done()
				log.GetLogger().Info("Shutting down gRPC server")
				server.GracefulStop()
			}()
			return server.Serve(addr)
		},
	}
	cmd.Flags().String("source", "", "source kind: db, json or pkl (default db)")
	cmd.Flags().String("fname", "", "source file (default per source)")
	cmd.Flags().StringVar(&addr, "addr", ":50051", "address to listen on")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve metrics over HTTP on this address")
	return cmd
}
