package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/memefang/pkg/ingest"
	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
	"github.com/Sumatoshi-tech/memefang/pkg/persist"
	"github.com/Sumatoshi-tech/memefang/pkg/plotpage"
	"github.com/Sumatoshi-tech/memefang/pkg/report"
)

const (
	renderCmdUse   = "render [report-file]"
	renderCmdShort = "Re-render a stored lifecycle report"
	renderMaxArgs  = 1
)

// ErrNoReport is returned when render has neither a file nor --meme.
var ErrNoReport = errors.New("no report: pass a report file, or --meme with --store")

// NewRenderCommand creates the render subcommand.
func NewRenderCommand() *cobra.Command {
	var meme, storeDir, storeCodec, format, output, theme string

	cmd := &cobra.Command{
		Use:   renderCmdUse,
		Short: renderCmdShort,
		Long: `Load a report saved by "analyze --store" and write it in any output format.

Examples:
  memefang render reports/doge_coin_lifecycle_report.json -f plot -o doge.html
  memefang render --meme doge_coin --store reports -f text`,
		Args: cobra.MaximumNArgs(renderMaxArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := loadReport(args, meme, storeDir, storeCodec)
			if err != nil {
				return err
			}

			opts := report.DefaultWriteOptions()
			opts.Plot.Theme = plotpage.ParseTheme(theme)

			return writeTo(cmd.OutOrStdout(), output, format, rep, opts)
		},
	}

	cmd.Flags().StringVar(&meme, "meme", "", "meme whose stored report to load")
	cmd.Flags().StringVar(&storeDir, "store", "reports", "report store directory")
	cmd.Flags().StringVar(&storeCodec, "store-codec", "json", "stored report codec (json, yaml, archive)")
	cmd.Flags().StringVarP(&format, "format", "f", report.FormatText, "output format")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&theme, "theme", string(plotpage.ThemeDark), "plot theme (dark, light)")

	return cmd
}

// loadReport reads a report from an explicit file or from the store.
func loadReport(args []string, meme, storeDir, storeCodec string) (*lifecycle.Report, error) {
	if len(args) > 0 {
		return persist.LoadReportFile(args[0])
	}

	meme = ingest.SafeName(meme)
	if meme == "" {
		return nil, ErrNoReport
	}

	codec, err := persist.CodecFor(storeCodec)
	if err != nil {
		return nil, err
	}

	return persist.NewReportStore(storeDir, codec).Load(meme)
}

// writeTo writes rep to stdout or to output.
func writeTo(stdout io.Writer, output, format string, rep *lifecycle.Report, opts report.WriteOptions) error {
	if output == "" {
		return report.Write(stdout, format, rep, opts)
	}

	w, err := openOutput(output)
	if err != nil {
		return err
	}

	writeErr := report.Write(w, format, rep, opts)
	closeErr := w.Close()

	if writeErr != nil {
		return writeErr
	}

	if closeErr != nil {
		return fmt.Errorf("close output: %w", closeErr)
	}

	return nil
}
