package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/memefang/pkg/persist"
	"github.com/Sumatoshi-tech/memefang/pkg/report"
)

// diffArgCount is the number of arguments expected by the diff command.
const diffArgCount = 2

// Diff output formats.
const (
	diffFormatUnified = "unified"
	diffFormatSummary = "summary"
	diffFormatJSON    = "json"
)

// ErrUnsupportedDiffFmt is returned for an unknown --format value.
var ErrUnsupportedDiffFmt = errors.New("unsupported diff format")

// LineChange is one changed line between two reports.
type LineChange struct {
	Op   string `json:"op"`
	Line string `json:"line"`
}

// NewDiffCommand creates the diff subcommand.
func NewDiffCommand() *cobra.Command {
	var format string

	var nocolor bool

	cmd := &cobra.Command{
		Use:   "diff <old-report> <new-report>",
		Short: "Compare the text projections of two stored reports",
		Long: `Compare two stored lifecycle reports line by line, for example the
same meme analyzed on two collection dates.

Examples:
  memefang diff old/doge_coin_lifecycle_report.json new/doge_coin_lifecycle_report.json
  memefang diff -f summary a.yaml b.json.lz4`,
		Args: cobra.ExactArgs(diffArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			if nocolor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			}

			return runDiff(cmd.OutOrStdout(), args[0], args[1], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", diffFormatUnified, "output format (unified, summary, json)")
	cmd.Flags().BoolVar(&nocolor, "no-color", false, "disable colored output")

	return cmd
}

func runDiff(out io.Writer, oldPath, newPath, format string) error {
	oldText, err := reportText(oldPath)
	if err != nil {
		return err
	}

	newText, err := reportText(newPath)
	if err != nil {
		return err
	}

	changes := DiffLines(oldText, newText)

	switch format {
	case diffFormatUnified:
		return writeUnified(out, oldPath, newPath, changes)
	case diffFormatSummary:
		added, removed := countChanges(changes)
		_, werr := fmt.Fprintf(out, "%d line(s) added, %d line(s) removed\n", added, removed)

		return werr
	case diffFormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		encodeErr := enc.Encode(changes)
		if encodeErr != nil {
			return fmt.Errorf("failed to encode JSON: %w", encodeErr)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDiffFmt, format)
	}
}

// reportText loads a stored report and renders its dateless text form.
func reportText(path string) (string, error) {
	rep, err := persist.LoadReportFile(path)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer

	err = report.RenderText(&buf, rep, report.TextOptions{})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

// DiffLines returns the inserted and deleted lines turning oldText into
// newText, in output order.
func DiffLines(oldText, newText string) []LineChange {
	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(src, dst, false), lines)

	var changes []LineChange

	for _, d := range diffs {
		var op string

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = "+"
		case diffmatchpatch.DiffDelete:
			op = "-"
		default:
			continue
		}

		for line := range strings.Lines(d.Text) {
			changes = append(changes, LineChange{Op: op, Line: strings.TrimSuffix(line, "\n")})
		}
	}

	return changes
}

func countChanges(changes []LineChange) (int, int) {
	var added, removed int

	for _, c := range changes {
		if c.Op == "+" {
			added++
		} else {
			removed++
		}
	}

	return added, removed
}

func writeUnified(out io.Writer, oldPath, newPath string, changes []LineChange) error {
	fmt.Fprintf(out, "--- %s\n+++ %s\n", oldPath, newPath)

	if len(changes) == 0 {
		_, err := fmt.Fprintln(out, "reports are identical")

		return err
	}

	for _, c := range changes {
		attr := color.FgGreen
		if c.Op == "-" {
			attr = color.FgRed
		}

		_, err := color.New(attr).Fprintf(out, "%s%s\n", c.Op, c.Line)
		if err != nil {
			return fmt.Errorf("write diff: %w", err)
		}
	}

	return nil
}
