package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/memefang/pkg/mcp"
	"github.com/Sumatoshi-tech/memefang/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes lifecycle analysis as tools that AI agents can
discover and invoke:
  - meme_lifecycle_analyze: analyze a meme from inline posts
  - meme_records_validate: check posts against the input record schema`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if debug {
				_ = cmd.Flags().Set(FlagVerbose, "true")
			}

			rt, err := setup(cmd, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer rt.close()

			red, err := observability.NewREDMetrics(rt.providers.Meter)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:   rt.providers.Logger,
				Metrics:  red,
				Tracer:   rt.providers.Tracer,
				Analyzer: rt.analyzer(rt.cfg.LifecycleOptions()),
			})

			rt.providers.Logger.Debug("mcp server starting", slog.Any("tools", srv.ListToolNames()))

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}
