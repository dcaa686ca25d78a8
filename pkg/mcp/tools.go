package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/memefang/pkg/ingest"
	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
	"github.com/Sumatoshi-tech/memefang/pkg/report"
)

// Tool name constants.
const (
	ToolNameAnalyze  = "meme_lifecycle_analyze"
	ToolNameValidate = "meme_records_validate"
)

// Input size limits.
const (
	// MaxRecords is the maximum number of records accepted in one call.
	MaxRecords = 200_000
)

// Output formats accepted by the analyze tool.
const (
	outputJSON = "json"
	outputText = "text"
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyMeme indicates the meme parameter is empty.
	ErrEmptyMeme = errors.New("meme parameter is required and must not be empty")
	// ErrNoRecords indicates the records parameter is empty.
	ErrNoRecords = errors.New("records parameter is required and must not be empty")
	// ErrTooManyRecords indicates the batch exceeds the record limit.
	ErrTooManyRecords = errors.New("records input exceeds maximum size")
	// ErrUnsupportedOutput indicates an output format the tool cannot return.
	ErrUnsupportedOutput = errors.New("unsupported output format")
)

// Input types (auto-generate JSON schemas via struct tags).

// AnalyzeInput is the input schema for the meme_lifecycle_analyze tool.
type AnalyzeInput struct {
	Format  string           `json:"format,omitempty" jsonschema:"output format: json (default) or text"`
	Meme    string           `json:"meme"             jsonschema:"meme identifier used in the report title (e.g. doge_coin)"`
	Records []map[string]any `json:"records"          jsonschema:"posts with id, author, created_utc, score, num_comments and subreddit"`
}

// ValidateInput is the input schema for the meme_records_validate tool.
type ValidateInput struct {
	Records []map[string]any `json:"records" jsonschema:"posts to check against the raw post schema"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// textResult builds a CallToolResult with plain text content.
func textResult(text string, value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: text},
		},
	}, ToolOutput{Data: value}, nil
}

// analyzeHandler returns the meme_lifecycle_analyze handler bound to analyzer.
func analyzeHandler(
	analyzer *lifecycle.Analyzer,
) func(context.Context, *mcpsdk.CallToolRequest, AnalyzeInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, input AnalyzeInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		format, err := validateAnalyzeInput(input)
		if err != nil {
			return errorResult(err)
		}

		raws, err := decodeRecords(input.Records)
		if err != nil {
			return errorResult(err)
		}

		rep, err := analyzer.Run(ctx, strings.TrimSpace(input.Meme), raws)
		if err != nil {
			return errorResult(err)
		}

		if format == outputText {
			var buf bytes.Buffer

			err = report.RenderText(&buf, rep, report.TextOptions{})
			if err != nil {
				return errorResult(fmt.Errorf("render report: %w", err))
			}

			return textResult(buf.String(), rep)
		}

		return jsonResult(rep)
	}
}

func handleValidate(_ context.Context, _ *mcpsdk.CallToolRequest, input ValidateInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if len(input.Records) == 0 {
		return errorResult(ErrNoRecords)
	}

	data, err := json.Marshal(input.Records)
	if err != nil {
		return errorResult(fmt.Errorf("encode records: %w", err))
	}

	result, err := ingest.Validate(data)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(struct {
		*ingest.ValidationResult

		Valid      bool `json:"valid"`
		Compliance int  `json:"compliance_percent"`
	}{result, result.Valid(), result.Compliance()})
}

// validateAnalyzeInput checks the analyze input and returns the output format.
func validateAnalyzeInput(input AnalyzeInput) (string, error) {
	if strings.TrimSpace(input.Meme) == "" {
		return "", ErrEmptyMeme
	}

	if len(input.Records) == 0 {
		return "", ErrNoRecords
	}

	if len(input.Records) > MaxRecords {
		return "", fmt.Errorf("%w: %d records (max %d)", ErrTooManyRecords, len(input.Records), MaxRecords)
	}

	format := strings.ToLower(strings.TrimSpace(input.Format))

	switch format {
	case "", outputJSON:
		return outputJSON, nil
	case outputText:
		return outputText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedOutput, input.Format)
	}
}

// decodeRecords converts loosely typed tool arguments into raw posts using
// the same lenient decoding as JSON input files.
func decodeRecords(records []map[string]any) ([]lifecycle.RawPost, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}

	raws, err := ingest.Read(bytes.NewReader(data), ingest.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	return raws, nil
}
