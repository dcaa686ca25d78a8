// Package commands implements the memefang subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/memefang/pkg/config"
	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
	"github.com/Sumatoshi-tech/memefang/pkg/observability"
	"github.com/Sumatoshi-tech/memefang/pkg/version"
)

// Flags shared by every subcommand.
const (
	FlagConfig  = "config"
	FlagVerbose = "verbose"
	FlagQuiet   = "quiet"
)

// AddPersistentFlags registers the shared flags on root.
func AddPersistentFlags(root *cobra.Command) {
	root.PersistentFlags().String(FlagConfig, "", "config file (default: .memefang.yaml in . or $HOME)")
	root.PersistentFlags().BoolP(FlagVerbose, "v", false, "verbose output")
	root.PersistentFlags().BoolP(FlagQuiet, "q", false, "suppress output")
}

// session bundles what a subcommand needs after startup.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	quiet     bool
}

// setup loads configuration and initializes observability for mode.
// Flags that are not registered on cmd fall back to their zero values.
func setup(cmd *cobra.Command, mode observability.AppMode) (*session, error) {
	configPath, _ := cmd.Flags().GetString(FlagConfig)
	verbose, _ := cmd.Flags().GetBool(FlagVerbose)
	quiet, _ := cmd.Flags().GetBool(FlagQuiet)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	obsCfg := cfg.Observability(mode, version.Version)

	// Stdout carries the MCP protocol; logs go to stderr as JSON.
	if mode == observability.ModeMCP {
		obsCfg.LogJSON = true
	}

	switch {
	case verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	return &session{cfg: cfg, providers: providers, quiet: quiet}, nil
}

// close flushes telemetry.
func (rt *session) close() {
	err := rt.providers.Shutdown(context.Background())
	if err != nil {
		rt.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

// analyzer builds a lifecycle analyzer wired to the session telemetry.
func (rt *session) analyzer(opts lifecycle.Options) *lifecycle.Analyzer {
	return lifecycle.NewAnalyzer(opts,
		lifecycle.WithLogger(rt.providers.Logger),
		lifecycle.WithTracer(rt.providers.Tracer),
		lifecycle.WithMetrics(rt.providers.Analysis),
	)
}

// status writes a progress line to w unless output is quiet.
func (rt *session) status(w io.Writer, format string, args ...any) {
	if rt.quiet {
		return
	}

	fmt.Fprintf(w, format, args...)
}

// openOutput returns stdout for an empty path, otherwise a created file.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
