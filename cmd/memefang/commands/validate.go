package commands

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/memefang/pkg/ingest"
)

// ErrValidationFailed is returned when the input violates the record schema.
var ErrValidationFailed = errors.New("input validation failed")

const stdinArg = "-"

// NewValidateCommand creates the validate subcommand.
func NewValidateCommand() *cobra.Command {
	var colorize, nocolor, printSchema bool

	cmd := &cobra.Command{
		Use:   "validate <file.json|file.ndjson|->",
		Short: "Validate collected posts against the input record schema",
		Long: `Validate a JSON array or NDJSON file of posts against the embedded
record schema and report per-field violations and the share of compliant
records.

Examples:
  memefang validate posts.json
  memefang validate - < posts.json
  memefang validate --schema`,
		Args: func(cmd *cobra.Command, args []string) error {
			if printSchema {
				return cobra.NoArgs(cmd, args)
			}

			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if nocolor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			} else if colorize {
				color.NoColor = false //nolint:reassign // intentional override of library global
			}

			if printSchema {
				_, err := cmd.OutOrStdout().Write(ingest.Schema())
				if err != nil {
					return fmt.Errorf("write schema: %w", err)
				}

				return nil
			}

			quiet, _ := cmd.Flags().GetBool(FlagQuiet)

			return runValidate(args[0], cmd.InOrStdin(), cmd.OutOrStdout(), quiet)
		},
	}

	cmd.Flags().BoolVar(&colorize, "color", false, "force colored output")
	cmd.Flags().BoolVar(&nocolor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&printSchema, "schema", false, "print the embedded schema and exit")

	return cmd
}

func runValidate(inputPath string, stdin io.Reader, out io.Writer, quiet bool) error {
	data, label, err := readValidateInput(inputPath, stdin)
	if err != nil {
		return err
	}

	result, err := ingest.Validate(data)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}

	if result.Valid() {
		if !quiet {
			color.New(color.FgGreen).Fprintf(out, "Input is valid (%s)\n", label)
			color.New(color.FgGreen).Fprintf(out, "  Records: %d\n", result.Records)
			color.New(color.FgGreen).Fprintf(out, "  Compliance: 100%%\n")
		}

		return nil
	}

	color.New(color.FgRed).Fprintf(out, "Input validation failed (%s)\n", label)
	color.New(color.FgYellow).Fprintf(out, "  Compliance: %d%% of %d records\n", result.Compliance(), result.Records)

	fmt.Fprintf(out, "\nErrors:\n")

	for _, ferr := range result.Errors {
		if ferr.Value != "" {
			color.New(color.FgRed).Fprintf(out, "  - %s: %s (got %q)\n", ferr.Field, ferr.Description, ferr.Value)
		} else {
			color.New(color.FgRed).Fprintf(out, "  - %s: %s\n", ferr.Field, ferr.Description)
		}
	}

	recommendations := recommend(result.Errors)
	if len(recommendations) > 0 {
		fmt.Fprintf(out, "\nRecommendations:\n")

		for _, rec := range recommendations {
			color.New(color.FgCyan).Fprintf(out, "  - %s\n", rec)
		}
	}

	return fmt.Errorf("%w: %s", ErrValidationFailed, label)
}

// readValidateInput reads a JSON array, or wraps NDJSON lines into one.
func readValidateInput(inputPath string, stdin io.Reader) ([]byte, string, error) {
	if inputPath == stdinArg {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}

		return data, "stdin", nil
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, "", fmt.Errorf("read input: %w", err)
	}

	format, err := ingest.DetectFormat(inputPath)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case ingest.FormatJSON:
		return data, inputPath, nil
	case ingest.FormatNDJSON:
		return ndjsonToArray(data), inputPath, nil
	default:
		return nil, "", fmt.Errorf("%w: validate accepts json or ndjson, got %s", ingest.ErrUnknownFormat, format)
	}
}

func ndjsonToArray(data []byte) []byte {
	var buf bytes.Buffer

	buf.WriteByte('[')

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), len(data)+1)

	first := true

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		if !first {
			buf.WriteByte(',')
		}

		buf.Write(line)

		first = false
	}

	buf.WriteByte(']')

	return buf.Bytes()
}

// recommend maps schema violations to fixes, once per kind.
func recommend(errs []ingest.FieldError) []string {
	seen := make(map[string]bool)

	var out []string

	add := func(rec string) {
		if !seen[rec] {
			seen[rec] = true
			out = append(out, rec)
		}
	}

	for _, e := range errs {
		switch {
		case strings.Contains(e.Description, "is required"):
			add("Every post needs id, created_utc, score and num_comments")
		case strings.HasSuffix(e.Field, "created_utc"):
			add("Write created_utc as RFC 3339, 'YYYY-MM-DD HH:MM:SS' or unix seconds")
		case strings.HasSuffix(e.Field, "score"), strings.HasSuffix(e.Field, "num_comments"):
			add("score and num_comments must be JSON numbers, not strings")
		case strings.HasSuffix(e.Field, "id"):
			add("Use a non-empty string or integer id per post")
		}
	}

	return out
}
