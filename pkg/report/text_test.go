package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/memefang/pkg/report"
)

func TestRenderText_FullReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.RenderText(&buf, fullReport(t), report.TextOptions{}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "MEME LIFECYCLE ANALYSIS REPORT\n"+strings.Repeat("=", 50)+"\n"))
	assert.Contains(t, out, "Meme: Doge Coin\n")
	assert.NotContains(t, out, "Analysis Date")

	for _, section := range []string{
		report.SectionOverview, report.SectionEngagement, report.SectionSpread, report.SectionPhases,
		report.SectionCurveFit, report.SectionClassification, report.SectionDataQuality,
	} {
		assert.Contains(t, out, section+"\n"+strings.Repeat("-", 30)+"\n")
	}

	assert.Contains(t, out, "Total Posts: 550\n")
	assert.Contains(t, out, "Duration: 39 days\n")
	assert.Contains(t, out, "Growth/Decline Ratio: 5.11 (460 growth, 90 decline posts)\n")
	assert.Contains(t, out, "Lifecycle Type: Short-lived Meme\n")
	assert.Contains(t, out, "Spread Pattern: Slow Burn\n")
	assert.Contains(t, out, "Model: gaussian\n")
	assert.NotContains(t, out, "Model: Gaussian")
	assert.Contains(t, out, "Growth")
	assert.Contains(t, out, "Decline")
	assert.Contains(t, out, "2024-01-01 to 2024-01-19")
}

func TestRenderText_OmitsMissingSections(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.RenderText(&buf, shortReport(t), report.TextOptions{}))

	out := buf.String()
	assert.NotContains(t, out, report.SectionPhases)
	assert.NotContains(t, out, report.SectionCurveFit)
	assert.Contains(t, out, report.SectionClassification)
	assert.Contains(t, out, "Stage phases: insufficient_data")
	assert.Contains(t, out, "Stage curve: insufficient_data")
}

func TestRenderText_Deterministic(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer

	require.NoError(t, report.RenderText(&a, fullReport(t), report.TextOptions{}))
	require.NoError(t, report.RenderText(&b, fullReport(t), report.TextOptions{}))
	assert.Equal(t, a.String(), b.String())
}

func TestRenderText_AnalysisDate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	at := time.Date(2024, time.March, 2, 15, 4, 5, 0, time.UTC)
	require.NoError(t, report.RenderText(&buf, shortReport(t), report.TextOptions{GeneratedAt: at}))
	assert.Contains(t, buf.String(), "Analysis Date: 2024-03-02 15:04:05\n")
}
