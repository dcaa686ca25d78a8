package plotpage

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChart struct {
	html string
	err  error
}

func (s stubChart) Render(w io.Writer) error {
	if s.err != nil {
		return s.err
	}

	_, err := io.WriteString(w, s.html)

	return err
}

const echartsDocument = `<!DOCTYPE html>
<html><head><style>.container{}</style></head>
<body>
<div class="container"><div class="item" id="abc"></div></div>
<script>init()</script>
</body></html>`

func TestExtractChartContent(t *testing.T) {
	t.Parallel()

	got := extractChartContent(echartsDocument)

	assert.True(t, strings.HasPrefix(got, `<div class="echart-box">`))
	assert.Contains(t, got, "<script>init()</script>")
	assert.NotContains(t, got, "</body>")
	assert.NotContains(t, got, "<style>")
}

func TestExtractChartContent_Fragment(t *testing.T) {
	t.Parallel()

	fragment := `<div id="x"></div>`
	assert.Equal(t, fragment, extractChartContent(fragment))
}

func TestRemoveStyleTags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ab", removeStyleTags("a<style>x</style>b"))
	assert.Equal(t, "a<style>x", removeStyleTags("a<style>x"))
}

func TestPageRender(t *testing.T) {
	t.Parallel()

	page := NewPage("Doge Lifecycle", "Reddit activity <2024>").WithTheme(ThemeLight)
	page.AddStats(Stat{Label: "Total posts", Value: "1,204"})
	page.Add(Section{
		Title:    "Daily activity",
		Subtitle: "posts per day",
		Hint:     Hint{Title: "Reading", Items: []string{"Peaks mark viral moments"}},
		Chart:    stubChart{html: echartsDocument},
	}, Section{Title: "Empty section"})

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))

	html := buf.String()
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "echarts.min.js")
	assert.Contains(t, html, "Doge Lifecycle")
	assert.Contains(t, html, "Reddit activity &lt;2024&gt;")
	assert.Contains(t, html, "1,204")
	assert.Contains(t, html, "Peaks mark viral moments")
	assert.Contains(t, html, `class="echart-box"`)
	assert.Contains(t, html, "Empty section")
	assert.Contains(t, html, GetThemeConfig(ThemeLight).Background)
	assert.NotContains(t, html, `class="dark"`)
}

func TestPageRender_ChartError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	page := NewPage("t", "")
	page.Add(Section{Title: "broken", Chart: stubChart{err: errBoom}})

	err := page.Render(io.Discard)
	require.ErrorIs(t, err, errBoom)
}
