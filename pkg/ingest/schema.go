package ingest

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// complianceMax is the maximum compliance percentage.
const complianceMax = 100

//go:embed schema/raw_post.schema.json
var schemaFS embed.FS

// Schema returns the JSON schema of a raw post batch.
func Schema() []byte {
	data, err := schemaFS.ReadFile("schema/raw_post.schema.json")
	if err != nil {
		panic("ingest: embedded schema missing: " + err.Error())
	}

	return data
}

// FieldError is one schema violation.
type FieldError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
	Value       string `json:"value,omitempty"`
}

// ValidationResult summarizes a schema check of a JSON batch.
type ValidationResult struct {
	Records int          `json:"records"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// Valid reports whether the batch satisfies the schema.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Compliance returns the percentage of records without violations.
func (r *ValidationResult) Compliance() int {
	if r.Records == 0 {
		if r.Valid() {
			return complianceMax
		}

		return 0
	}

	bad := make(map[string]struct{})

	for _, e := range r.Errors {
		record, _, _ := strings.Cut(e.Field, ".")
		bad[record] = struct{}{}
	}

	return max(0, (r.Records-len(bad))*complianceMax/r.Records)
}

// Validate checks a JSON array of records against [Schema].
func Validate(data []byte) (*ValidationResult, error) {
	var input any

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	err := dec.Decode(&input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(Schema()), gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	out := &ValidationResult{}
	if records, ok := input.([]any); ok {
		out.Records = len(records)
	}

	for _, verr := range result.Errors() {
		out.Errors = append(out.Errors, FieldError{
			Field:       verr.Field(),
			Description: verr.Description(),
			Value:       actualValue(input, verr.Field()),
		})
	}

	return out, nil
}

// actualValue resolves a dotted field path such as "3.score".
func actualValue(data any, fieldPath string) string {
	current := data

	for part := range strings.SplitSeq(fieldPath, ".") {
		switch typed := current.(type) {
		case map[string]any:
			val, found := typed[part]
			if !found {
				return ""
			}

			current = val
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(typed) {
				return ""
			}

			current = typed[idx]
		default:
			return ""
		}
	}

	switch typed := current.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	case nil:
		return "null"
	default:
		return ""
	}
}
