package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// maxPreviewRows bounds the row preview section
const maxPreviewRows = 20

// Markdown renders the audit as a markdown document
func (a Audit) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Data audit\n\n")
	fmt.Fprintf(&b, "- Respondents: %d\n", a.Respondents)
	fmt.Fprintf(&b, "- Original variables: %d\n", a.Originals)
	fmt.Fprintf(&b, "- Recoded variables: %d\n\n", a.Recoded)

	b.WriteString("## Variable types\n\n| Kind | Count |\n|---|---|\n")
	for _, k := range sortedKinds(a.KindCounts) {
		fmt.Fprintf(&b, "| %s | %d |\n", k, a.KindCounts[k])
	}
	b.WriteString("\n")

	if len(a.Recodings) > 0 {
		b.WriteString("## Recoded variables\n\n| Recoded | Source | Scale | Rule | In box |\n|---|---|---|---|---|\n")
		for _, r := range a.Recodings {
			fmt.Fprintf(&b, "| %s | %s | %d-point | %s %d (threshold %d) | %.1f%% |\n",
				r.Recoded, r.Source, r.ScalePoints, r.Direction, r.BoxSize, r.Threshold, r.BoxShare*100)
		}
		b.WriteString("\n")
	}

	if len(a.Banners) > 0 {
		b.WriteString("## Banner columns\n\n")
		for _, banner := range a.Banners {
			fmt.Fprintf(&b, "### %s\n\n| Category | n | Share |\n|---|---|---|\n", banner.Variable)
			for _, c := range banner.Categories {
				flag := ""
				if c.Empty {
					flag = " **EMPTY**"
				}
				fmt.Fprintf(&b, "| %s%s | %d | %.1f%% |\n", c.Label, flag, c.N, c.Share*100)
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "## Table rows\n\n%d row variables.\n\n", len(a.Rows))
	for i, r := range a.Rows {
		if i == maxPreviewRows {
			fmt.Fprintf(&b, "- ... and %d more\n", len(a.Rows)-maxPreviewRows)
			break
		}
		fmt.Fprintf(&b, "- `%s` (%s) %s\n", r.Variable, r.Group, r.Label)
	}
	b.WriteString("\n")

	if len(a.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range a.Warnings {
			fmt.Fprintf(&b, "- %s\n", w.String())
		}
	}
	return b.String()
}

// HTML renders the markdown audit as a standalone HTML page
func (a Audit) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
		Title: "Data audit",
	})
	return markdown.ToHTML([]byte(a.Markdown()), p, renderer)
}
