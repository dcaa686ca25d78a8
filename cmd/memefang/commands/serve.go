package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/memefang/internal/server"
	"github.com/Sumatoshi-tech/memefang/pkg/observability"
	"github.com/Sumatoshi-tech/memefang/pkg/persist"
	"github.com/Sumatoshi-tech/memefang/pkg/version"
)

// NewServeCommand creates the HTTP server command.
func NewServeCommand() *cobra.Command {
	var host, storeDir string

	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lifecycle analysis over HTTP",
		Long: `Start an HTTP API for lifecycle analysis.

Routes:
  POST /v1/analyze?meme=<name>&format=<fmt>   analyze a JSON, NDJSON or CSV body
  POST /v1/validate                           check a JSON array against the schema
  GET  /v1/reports/{meme}?format=<fmt>        fetch a stored report (needs --store)
  GET  /v1/formats                            list input and output formats
  GET  /v1/healthz                            liveness
  GET  /metrics                               Prometheus metrics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd, observability.ModeServe)
			if err != nil {
				return err
			}
			defer rt.close()

			prom, err := observability.NewPrometheusProvider()
			if err != nil {
				return err
			}

			red, err := observability.NewREDMetrics(prom.Meter("memefang/http"))
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("store") {
				storeDir = rt.cfg.Output.StoreDir
			}

			var store *persist.ReportStore

			if storeDir != "" {
				codec, codecErr := persist.CodecFor(rt.cfg.Output.StoreCodec)
				if codecErr != nil {
					return codecErr
				}

				store = persist.NewReportStore(storeDir, codec)
			}

			router := server.NewRouter(server.Deps{
				Logger:         rt.providers.Logger,
				Tracer:         rt.providers.Tracer,
				Metrics:        red,
				MetricsHandler: prom.Handler,
				Analyzer:       rt.analyzer(rt.cfg.LifecycleOptions()),
				Store:          store,
				Version:        version.Version,
				MaxBodyBytes:   rt.cfg.Server.MaxBodyBytes,
				CacheEntries:   rt.cfg.Server.CacheEntries,
			})

			opts := server.Options{
				Host:         rt.cfg.Server.Host,
				Port:         rt.cfg.Server.Port,
				ReadTimeout:  rt.cfg.Server.ReadTimeout,
				WriteTimeout: rt.cfg.Server.WriteTimeout,
				IdleTimeout:  rt.cfg.Server.IdleTimeout,
			}

			if cmd.Flags().Changed("host") {
				opts.Host = host
			}

			if cmd.Flags().Changed("port") {
				opts.Port = port
			}

			return server.Run(cmd.Context(), router, opts, rt.providers.Logger)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (default from config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	cmd.Flags().StringVar(&storeDir, "store", "", "directory of stored reports")

	return cmd
}
