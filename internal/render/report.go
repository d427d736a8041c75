package render

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"go-stats-dashboard/internal/model"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ChartURL resolves the image URL of a chart kind ("bar" or "map") for a
// metric. Returning "" leaves the image out of the report.
type ChartURL func(kind, metric string) string

// DashboardMarkdown writes the livestock dashboard as a markdown document
func DashboardMarkdown(result *model.DashboardResult, chartURL ChartURL) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# 🐄 %s\n\n", result.Title)
	fmt.Fprintf(&b, "_%s_\n\n", result.Caption)

	sel := result.Selection
	categories := "ทั้งหมด"
	if len(sel.Categories) > 0 {
		categories = strings.Join(sel.Categories, ", ")
	}
	fmt.Fprintf(&b, "- จังหวัด: %s\n", safeVal(categories))
	fmt.Fprintf(&b, "- วิธีคำนวณ: %s\n", sel.Reducer)
	if sel.Top5 {
		b.WriteString("- Top 5 จังหวัด\n")
	}
	b.WriteString("\n")

	for _, panel := range result.Panels {
		b.WriteString("---\n\n")
		fmt.Fprintf(&b, "## 📊 %s\n\n", safeVal(panel.Metric))
		fmt.Fprintf(&b, "**%s** (%s): %s\n\n", panel.Summary.Label, panel.Summary.Statistic, panel.Summary.Formatted)

		if chartURL != nil {
			for _, kind := range []string{"bar", "map"} {
				if url := chartURL(kind, panel.Metric); url != "" {
					fmt.Fprintf(&b, "![%s %s](%s)\n\n", kind, safeVal(panel.Metric), url)
				}
			}
		}
		if len(panel.Map.Unmatched) > 0 {
			fmt.Fprintf(&b, "ไม่พบพิกัด: %s\n\n", safeVal(strings.Join(panel.Map.Unmatched, ", ")))
		}

		b.WriteString("### 📄 ตารางข้อมูล\n\n")
		writeTable(&b, panel.Table)
	}
	return b.String()
}

// PenguinMarkdown writes the penguin dashboard as a markdown document
func PenguinMarkdown(result *model.PenguinResult, chartURL ChartURL) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# 🐧 %s\n\n", result.Title)
	if len(result.Selection) > 0 {
		fmt.Fprintf(&b, "- sex: %s\n\n", safeVal(strings.Join(result.Selection, ", ")))
	}

	for _, metric := range []string{"body_mass_g", "flipper_length_mm"} {
		chart := result.Chart(metric)
		fmt.Fprintf(&b, "## %s\n\n", chart.Title)
		if chartURL != nil {
			if url := chartURL("bar", metric); url != "" {
				fmt.Fprintf(&b, "![%s](%s)\n\n", chart.Title, url)
			}
		}
		writeTable(&b, chartTable(*chart))
	}

	b.WriteString("## Filtered Penguins Dataset\n\n")
	writeTable(&b, result.Raw)
	return b.String()
}

// ReportHTML renders the livestock dashboard as a standalone HTML page
func ReportHTML(result *model.DashboardResult, chartURL ChartURL) []byte {
	return markdownToHTML(DashboardMarkdown(result, chartURL), result.Title)
}

// PenguinReportHTML renders the penguin dashboard as a standalone HTML page
func PenguinReportHTML(result *model.PenguinResult, chartURL ChartURL) []byte {
	return markdownToHTML(PenguinMarkdown(result, chartURL), result.Title)
}

func markdownToHTML(md, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML | html.Safelink,
		Title: title,
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func writeTable(b *strings.Builder, table model.Table) {
	if len(table.Columns) == 0 {
		return
	}
	b.WriteString("| ")
	for i, c := range table.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(c))
	}
	b.WriteString(" |\n|")
	for range table.Columns {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range table.Rows {
		b.WriteString("| ")
		for i := range table.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			if i < len(row) {
				b.WriteString(safeVal(row[i]))
			}
		}
		b.WriteString(" |\n")
	}
	b.WriteString("\n")
}

var cellReplacer = strings.NewReplacer("\r", " ", "\n", " ", "|", "/")

// safeVal makes data text render literally: one line, no cell breaks,
// markdown and HTML punctuation backslash-escaped.
func safeVal(s string) string {
	s = cellReplacer.Replace(s)
	var b strings.Builder
	for _, r := range s {
		if r < utf8.RuneSelf && bytes.IndexByte(parser.EscapeChars, byte(r)) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
