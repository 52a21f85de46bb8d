package report

import (
	"strings"
	"testing"

	"gosieve/domain/table"
	"gosieve/internal/cleaner"
	"gosieve/internal/correlation"
	"gosieve/internal/summary"
	"gosieve/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileInput(t *testing.T) Input {
	t.Helper()
	result := cleaner.CleanDefault(testkit.ProfileTable())
	sel := table.Selection{X: "depth", Y: []string{"temp", "salinity"}}
	entries, err := correlation.Correlate(result.Table, sel.X, sel.Y)
	require.NoError(t, err)

	return Input{
		Name:         "cast.csv",
		Clean:        result,
		Summaries:    summary.Describe(result.Table),
		Selection:    &sel,
		Correlations: entries,
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(profileInput(t))

	assert.True(t, strings.HasPrefix(md, "# Cleaning report: cast.csv\n"))
	assert.Contains(t, md, "- Sentinel: `-9999.0`")
	assert.Contains(t, md, "- Rows removed: 1 (1 sentinel cells, 0 missing cells)")
	assert.Contains(t, md, "- Rows kept: 2")
	assert.Contains(t, md, "## Correlation with depth")
	assert.Contains(t, md, "| temp | 2 | 1.0000 | n/a | ok |")
	assert.Contains(t, md, "| salinity | 2 | -1.0000 | n/a | ok |")
}

func TestMarkdownEmptyOutcome(t *testing.T) {
	tbl := table.MustNew([]table.Column{testkit.Floats("v", -9999.0)})

	md := Markdown(Input{Clean: cleaner.CleanDefault(tbl)})

	assert.Contains(t, md, "Every row was removed")
	assert.NotContains(t, md, "## Correlation")
}

func TestMarkdownInsufficientAndUnusable(t *testing.T) {
	sel := table.Selection{X: "depth", Y: []string{"flat", "site"}}
	md := Markdown(Input{
		Selection: &sel,
		Correlations: []table.CorrelationEntry{
			{Column: "flat", N: 4, Status: table.CorrelationInsufficient, Reason: "zero variance"},
		},
		Unusable: []string{"site|code"},
	})

	assert.Contains(t, md, "| flat | 4 | n/a | n/a | insufficient_data (zero variance) |")
	assert.Contains(t, md, `site\|code`)
}

func TestHTML(t *testing.T) {
	out := string(HTML(Markdown(profileInput(t))))

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>temp</td>")
}

func TestHTMLEscapesUploadedNames(t *testing.T) {
	sel := table.Selection{X: "<script>alert(2)</script>", Y: []string{"<b>temp</b>"}}
	md := Markdown(Input{
		Name:      "<img src=x onerror=alert(1)>.csv",
		Selection: &sel,
		Correlations: []table.CorrelationEntry{
			{Column: "<b>temp</b>", N: 1, Status: table.CorrelationInsufficient, Reason: "fewer than 2 jointly numeric rows"},
		},
	})

	assert.Contains(t, md, "# Cleaning report: &lt;img src=x onerror=alert(1)&gt;.csv")
	assert.Contains(t, md, "## Correlation with &lt;script&gt;alert(2)&lt;/script&gt;")

	out := string(HTML(md))
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "alert(2)")
	assert.Contains(t, out, "<h2")
}

func TestHTMLSkipsRawMarkup(t *testing.T) {
	out := string(HTML("# Title\n\n<script>alert(1)</script>\n\ntext <span onclick=x>here</span>\n"))

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<span")
	assert.Contains(t, out, "<h1")
}
