package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/memefang/pkg/report"
	"github.com/Sumatoshi-tech/memefang/pkg/terminal"
)

func TestValidateFormat(t *testing.T) {
	t.Parallel()

	got, err := report.ValidateFormat(" BIN ")
	require.NoError(t, err)
	assert.Equal(t, report.FormatBinary, got)

	got, err = report.ValidateFormat("Json")
	require.NoError(t, err)
	assert.Equal(t, report.FormatJSON, got)

	_, err = report.ValidateFormat("xml")
	require.ErrorIs(t, err, report.ErrUnsupportedFormat)
}

func TestExtension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".json", report.Extension(report.FormatJSON))
	assert.Equal(t, ".yaml", report.Extension(report.FormatYAML))
	assert.Equal(t, ".bin", report.Extension("bin"))
	assert.Equal(t, ".json.lz4", report.Extension(report.FormatArchive))
	assert.Equal(t, ".html", report.Extension(report.FormatPlot))
	assert.Equal(t, ".txt", report.Extension(report.FormatText))
}

func TestWrite_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.Write(&buf, report.FormatJSON, fullReport(t), report.DefaultWriteOptions()))

	var doc map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "doge_coin", doc["meme"])
	assert.Contains(t, doc, "curve_fit")
	assert.Contains(t, doc, "phases")

	classification, ok := doc["classification"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Slow Burn", classification["spread_pattern"])
}

func TestWrite_JSONOmitsAbsentStages(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.Write(&buf, report.FormatJSON, shortReport(t), report.DefaultWriteOptions()))

	var doc map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.NotContains(t, doc, "curve_fit")
	assert.NotContains(t, doc, "phases")
}

func TestWrite_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.Write(&buf, report.FormatYAML, fullReport(t), report.DefaultWriteOptions()))

	var doc map[string]any

	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Doge Coin", doc["title"])
}

func TestWriteRead_MachineFormats(t *testing.T) {
	t.Parallel()

	for _, format := range []string{report.FormatJSON, report.FormatYAML, report.FormatBinary, report.FormatArchive} {
		t.Run(format, func(t *testing.T) {
			t.Parallel()

			original := fullReport(t)

			var buf bytes.Buffer

			require.NoError(t, report.Write(&buf, format, original, report.DefaultWriteOptions()))

			decoded, err := report.Read(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, original.Classification, decoded.Classification)
			assert.Equal(t, original.Metrics.TotalPosts, decoded.Metrics.TotalPosts)
			assert.Len(t, decoded.Phases, len(original.Phases))
			require.NotNil(t, decoded.CurveFit)
			assert.InDelta(t, original.CurveFit.RSquared, decoded.CurveFit.RSquared, 1e-12)
		})
	}
}

func TestRead_TextIsNotMachineReadable(t *testing.T) {
	t.Parallel()

	_, err := report.Read(strings.NewReader("x"), report.FormatText)
	require.ErrorIs(t, err, report.ErrUnsupportedFormat)
}

func TestWrite_Unsupported(t *testing.T) {
	t.Parallel()

	err := report.Write(&bytes.Buffer{}, "pdf", shortReport(t), report.DefaultWriteOptions())
	require.ErrorIs(t, err, report.ErrUnsupportedFormat)
}

func TestWrite_Terminal(t *testing.T) {
	t.Parallel()

	opts := report.DefaultWriteOptions()
	opts.Terminal = terminal.Config{Width: 80, NoColor: true}

	var buf bytes.Buffer

	require.NoError(t, report.Write(&buf, report.FormatTerminal, fullReport(t), opts))
	assert.Contains(t, buf.String(), "DOGE COIN")
	assert.Contains(t, buf.String(), "Slow Burn")
}

func TestWrite_Deterministic(t *testing.T) {
	t.Parallel()

	for _, format := range []string{report.FormatText, report.FormatJSON, report.FormatYAML, report.FormatBinary} {
		var a, b bytes.Buffer

		require.NoError(t, report.Write(&a, format, fullReport(t), report.DefaultWriteOptions()))
		require.NoError(t, report.Write(&b, format, fullReport(t), report.DefaultWriteOptions()))
		assert.Equal(t, a.Bytes(), b.Bytes(), format)
	}
}
