package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/memefang/pkg/ingest"
	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
	"github.com/Sumatoshi-tech/memefang/pkg/observability"
	"github.com/Sumatoshi-tech/memefang/pkg/persist"
	"github.com/Sumatoshi-tech/memefang/pkg/plotpage"
	"github.com/Sumatoshi-tech/memefang/pkg/report"
)

const outputDirPerm = 0o750

// Sentinel errors for the analyze command.
var (
	// ErrNoInput is returned when neither files nor --meme were given.
	ErrNoInput = errors.New("no input: pass files, or --meme with --data-dir or --dsn")
	// ErrOutputNotDir is returned when several reports target one file.
	ErrOutputNotDir = errors.New("--output must be a directory when analyzing several inputs")
)

// analyzeFlags holds the analyze command flags.
type analyzeFlags struct {
	meme       string
	dataDir    string
	dsn        string
	table      string
	format     string
	output     string
	storeDir   string
	storeCodec string
	theme      string
	jobs       int
	noDate     bool
}

// job is one independent lifecycle invocation.
type job struct {
	meme   string
	label  string
	source ingest.Source
}

// result is the outcome of one job.
type result struct {
	job    job
	report *lifecycle.Report
	err    error
}

// NewAnalyzeCommand creates the analyze subcommand.
func NewAnalyzeCommand() *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Analyze the lifecycle of one or more memes",
		Long: `Analyze the lifecycle of one or more memes from collected posts.

Inputs are CSV, JSON array or NDJSON files. Each file is analyzed
independently and reports are printed in argument order. Without files,
--meme selects the newest processed_reddit_<meme>_*.csv in --data-dir, or
reads the meme's posts from Postgres when --dsn is set.

Examples:
  memefang analyze data/processed_reddit_doge_coin_20240301_120000.csv
  memefang analyze --meme doge_coin --data-dir data -f plot -o doge.html
  memefang analyze --meme pepe --dsn postgres://localhost/memes -f json
  memefang analyze a.csv b.csv c.json --store reports -o out/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer rt.close()

			flags.applyDefaults(cmd, rt)

			return runAnalyze(cmd.Context(), rt, flags, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&flags.meme, "meme", "", "meme name (selects input when no files are given)")
	cmd.Flags().StringVar(&flags.dataDir, "data-dir", "", "directory of processed collection files")
	cmd.Flags().StringVar(&flags.dsn, "dsn", "", "Postgres DSN to read posts from")
	cmd.Flags().StringVar(&flags.table, "table", "", "Postgres table holding posts")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format (text, terminal, json, yaml, binary, archive, plot)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file, or directory for several inputs (default: stdout)")
	cmd.Flags().StringVar(&flags.storeDir, "store", "", "also save each report into this directory")
	cmd.Flags().StringVar(&flags.storeCodec, "store-codec", "", "stored report codec (json, yaml, archive)")
	cmd.Flags().StringVar(&flags.theme, "theme", "", "plot theme (dark, light)")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", runtime.NumCPU(), "number of inputs analyzed concurrently")
	cmd.Flags().BoolVar(&flags.noDate, "no-date", false, "omit the analysis date from text reports")

	return cmd
}

// applyDefaults fills unset flags from configuration.
func (f *analyzeFlags) applyDefaults(cmd *cobra.Command, rt *session) {
	set := func(name string, dst *string, value string) {
		if !cmd.Flags().Changed(name) {
			*dst = value
		}
	}

	set("data-dir", &f.dataDir, rt.cfg.Output.DataDir)
	set("dsn", &f.dsn, rt.cfg.Database.DSN)
	set("table", &f.table, rt.cfg.Database.Table)
	set("format", &f.format, rt.cfg.Output.Format)
	set("store", &f.storeDir, rt.cfg.Output.StoreDir)
	set("store-codec", &f.storeCodec, rt.cfg.Output.StoreCodec)
	set("theme", &f.theme, rt.cfg.Output.Theme)
}

func runAnalyze(ctx context.Context, rt *session, flags *analyzeFlags, args []string, stdout, stderr io.Writer) error {
	format, err := report.ValidateFormat(flags.format)
	if err != nil {
		return err
	}

	var store *persist.ReportStore

	if flags.storeDir != "" {
		codec, codecErr := persist.CodecFor(flags.storeCodec)
		if codecErr != nil {
			return codecErr
		}

		store = persist.NewReportStore(flags.storeDir, codec)
	}

	jobs, cleanup, err := buildJobs(ctx, rt, flags, args)
	if err != nil {
		return err
	}
	defer cleanup()

	if len(jobs) > 1 && flags.output != "" {
		info, statErr := os.Stat(flags.output)
		if statErr == nil && !info.IsDir() {
			return ErrOutputNotDir
		}
	}

	start := time.Now()
	results := runJobs(ctx, rt.analyzer(rt.cfg.LifecycleOptions()), jobs, flags.jobs)

	opts := report.DefaultWriteOptions()
	opts.Plot.Theme = plotpage.ParseTheme(flags.theme)

	if !flags.noDate {
		opts.Text.GeneratedAt = time.Now()
	}

	var (
		errs     []error
		analyzed int64
	)

	for _, res := range results {
		if res.err != nil {
			color.New(color.FgRed).Fprintf(stderr, "%s: %v\n", res.job.label, res.err)
			errs = append(errs, fmt.Errorf("%s: %w", res.job.label, res.err))

			continue
		}

		writeErr := emit(res.report, format, flags.output, len(jobs) > 1, opts, stdout)
		if writeErr != nil {
			errs = append(errs, writeErr)

			continue
		}

		if store != nil {
			path, saveErr := store.Save(res.report)
			if saveErr != nil {
				errs = append(errs, saveErr)

				continue
			}

			rt.status(stderr, "saved %s\n", path)
		}

		analyzed++
	}

	rt.status(stderr, "analyzed %s in %s\n",
		humanize.Comma(analyzed), time.Since(start).Round(time.Millisecond))

	return errors.Join(errs...)
}

// buildJobs resolves the command inputs into jobs. The returned cleanup
// releases database connections.
func buildJobs(ctx context.Context, rt *session, flags *analyzeFlags, args []string) ([]job, func(), error) {
	noop := func() {}
	meme := ingest.SafeName(flags.meme)

	if len(args) > 0 {
		jobs := make([]job, 0, len(args))

		for _, path := range args {
			name := ingest.MemeFromFilename(path)
			if meme != "" && len(args) == 1 {
				name = meme
			}

			jobs = append(jobs, job{meme: name, label: path, source: ingest.FileSource{Path: path}})
		}

		return jobs, noop, nil
	}

	if meme == "" {
		return nil, noop, ErrNoInput
	}

	if flags.dsn != "" {
		src, err := ingest.OpenPostgres(ctx, flags.dsn, flags.table, rt.cfg.Database.MaxConnections)
		if err != nil {
			return nil, noop, err
		}

		cleanup := func() {
			closeErr := src.Close()
			if closeErr != nil {
				rt.providers.Logger.Warn("close database", "error", closeErr)
			}
		}

		return []job{{meme: meme, label: "postgres:" + meme, source: src}}, cleanup, nil
	}

	path, err := ingest.LatestFile(flags.dataDir, meme)
	if err != nil {
		return nil, noop, err
	}

	rt.providers.Logger.Debug("selected input file", "meme", meme, "path", path)

	return []job{{meme: meme, label: path, source: ingest.FileSource{Path: path}}}, noop, nil
}

// runJobs analyzes jobs on up to workers goroutines. Results keep the job
// order.
func runJobs(ctx context.Context, analyzer *lifecycle.Analyzer, jobs []job, workers int) []result {
	results := make([]result, len(jobs))
	work := make(chan int, len(jobs))

	for i := range jobs {
		work <- i
	}

	close(work)

	var wg sync.WaitGroup

	for range max(1, min(workers, len(jobs))) {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range work {
				results[i] = runJob(ctx, analyzer, jobs[i])
			}
		}()
	}

	wg.Wait()

	return results
}

func runJob(ctx context.Context, analyzer *lifecycle.Analyzer, j job) result {
	raws, err := j.source.Fetch(ctx, j.meme)
	if err != nil {
		return result{job: j, err: err}
	}

	rep, err := analyzer.Run(ctx, j.meme, raws)

	return result{job: j, report: rep, err: err}
}

// emit writes rep to stdout, to the output file, or into the output
// directory when batch is set.
func emit(rep *lifecycle.Report, format, output string, batch bool, opts report.WriteOptions, stdout io.Writer) error {
	if !batch || output == "" {
		return writeTo(stdout, output, format, rep, opts)
	}

	err := os.MkdirAll(output, outputDirPerm)
	if err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	return writeTo(stdout, filepath.Join(output, rep.Meme+report.Extension(format)), format, rep, opts)
}
