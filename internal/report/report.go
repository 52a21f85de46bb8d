// Package report renders a cleaning and correlation run as Markdown or HTML.
package report

import (
	"fmt"
	stdhtml "html"
	"strings"

	"gosieve/domain/table"
	"gosieve/internal/cleaner"
	"gosieve/internal/summary"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Input is everything a report can show. Nil or empty sections are skipped.
type Input struct {
	Name         string
	Filter       string
	Clean        *cleaner.Result
	Summaries    []summary.ColumnSummary
	Selection    *table.Selection
	Correlations []table.CorrelationEntry
	Unusable     []string
}

// Markdown renders the report
func Markdown(in Input) string {
	var b strings.Builder

	title := "Cleaning report"
	if in.Name != "" {
		title = fmt.Sprintf("Cleaning report: %s", escape(in.Name))
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if in.Clean != nil {
		writeClean(&b, in.Clean, in.Filter)
	}
	if len(in.Summaries) > 0 {
		writeSummaries(&b, in.Summaries)
	}
	if in.Selection != nil {
		writeCorrelations(&b, *in.Selection, in.Correlations, in.Unusable)
	}

	return b.String()
}

// HTML converts rendered Markdown to an HTML fragment
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return markdown.Render(doc, renderer)
}

func writeClean(b *strings.Builder, r *cleaner.Result, filter string) {
	b.WriteString("## Cleaning\n\n")
	fmt.Fprintf(b, "- Sentinel: `%s`\n", table.FloatCell(r.Sentinel).String())
	fmt.Fprintf(b, "- Source rows: %d\n", r.SourceRows)
	fmt.Fprintf(b, "- Rows removed: %d (%d sentinel cells, %d missing cells)\n",
		len(r.Removed), r.SentinelHits, r.NullHits)
	fmt.Fprintf(b, "- Rows kept: %d\n", r.KeptRows())
	if filter != "" {
		fmt.Fprintf(b, "- Filter: `%s`\n", filter)
	}
	if r.Empty() {
		b.WriteString("\n**Every row was removed; nothing can be exported or charted.**\n")
	}
	b.WriteString("\n")
}

func writeSummaries(b *strings.Builder, summaries []summary.ColumnSummary) {
	b.WriteString("## Columns\n\n")
	b.WriteString("| Column | Type | Count | Mean | Std | Min | Median | Max |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|---:|\n")
	for _, s := range summaries {
		if s.Describe == nil {
			fmt.Fprintf(b, "| %s | %s | %d | | | | | |\n", escape(s.Name), s.Type, s.Count)
			continue
		}
		d := s.Describe
		fmt.Fprintf(b, "| %s | %s | %d | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
			escape(s.Name), s.Type, s.Count, d.Mean, d.StdDev, d.Min, d.Median, d.Max)
	}
	b.WriteString("\n")
}

func writeCorrelations(b *strings.Builder, sel table.Selection, entries []table.CorrelationEntry, unusable []string) {
	fmt.Fprintf(b, "## Correlation with %s\n\n", escape(sel.X))
	if len(entries) > 0 {
		b.WriteString("| Column | n | r | p-value | Status |\n")
		b.WriteString("|---|---:|---:|---:|---|\n")
		for _, e := range entries {
			status := string(e.Status)
			if e.Reason != "" {
				status = fmt.Sprintf("%s (%s)", e.Status, e.Reason)
			}
			fmt.Fprintf(b, "| %s | %d | %s | %s | %s |\n",
				escape(e.Column), e.N, formatOptional(e.R), formatOptional(e.PValue), status)
		}
		b.WriteString("\n")
	}
	if len(unusable) > 0 {
		names := make([]string, len(unusable))
		for i, n := range unusable {
			names[i] = escape(n)
		}
		fmt.Fprintf(b, "Not charted (no numeric values): %s\n\n", strings.Join(names, ", "))
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", *v)
}

// escape keeps uploaded names from breaking table cells or injecting markup
func escape(s string) string {
	return strings.ReplaceAll(stdhtml.EscapeString(s), "|", `\|`)
}
