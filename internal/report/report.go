// Package report renders analysis results as Markdown and HTML documents.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"surveyinsight/domain/survey"
	"surveyinsight/internal/errors"
	"surveyinsight/internal/segment"
)

// Format selects the report rendering
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts "markdown"/"md" and "html"; empty means Markdown
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown report format %q", s))
}

// ContentType returns the HTTP content type of the format
func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

// Markdown renders a result grouped by source column, in run order
func Markdown(title string, result *segment.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	if result == nil {
		b.WriteString("No analysis has been run.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Run `%s` found **%d** significant relationships across %d sources (%d pairs tested, %s).\n\n",
		result.RunID, result.Stats.Insights, result.Stats.Sources, result.Stats.PairsTested, result.Stats.Duration.Round(time.Millisecond))

	bySource := make(map[string][]survey.Insight)
	for _, insight := range result.Insights {
		bySource[insight.Source] = append(bySource[insight.Source], insight)
	}

	for _, split := range result.Splits {
		fmt.Fprintf(&b, "## %s (`%s`)\n\n", segment.Prettify(split.Column), split.Column)
		fmt.Fprintf(&b, "Median %s: %d Low, %d High.\n\n", formatNumber(split.Median), split.LowCount, split.HighCount)

		insights := bySource[split.Column]
		if len(insights) == 0 {
			b.WriteString("No significant relationships.\n\n")
			continue
		}
		for _, insight := range insights {
			writeInsight(&b, insight)
		}
		b.WriteString("\n")
	}

	if len(result.Stats.Skips) > 0 {
		b.WriteString("## Skipped pairs\n\n| Reason | Pairs |\n|---|---|\n")
		reasons := make([]string, 0, len(result.Stats.Skips))
		for reason := range result.Stats.Skips {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(&b, "| %s | %d |\n", reason, result.Stats.Skips[segment.SkipReason(reason)])
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeInsight(b *strings.Builder, insight survey.Insight) {
	fmt.Fprintf(b, "- **%s**\n", insight.Summary)

	low := insight.Aggregates[survey.SegmentLow]
	high := insight.Aggregates[survey.SegmentHigh]

	if insight.Percentage {
		detail := fmt.Sprintf("Low %s%%, High %s%%", formatNumber(low), formatNumber(high))
		if t := insight.Contingency; t != nil {
			detail = fmt.Sprintf("Low %s%% (%d/%d), High %s%% (%d/%d)",
				formatNumber(low), t.Low.Selected, t.Low.Total(),
				formatNumber(high), t.High.Selected, t.High.Total())
		}
		fmt.Fprintf(b, "  - %s; %s χ² = %.3f, p = %.3f; target `%s`\n", detail, insight.Test, insight.Statistic, insight.PValue, insight.Target)
		return
	}

	fmt.Fprintf(b, "  - Low mean %.2f (n=%d), High mean %.2f (n=%d); %s t = %.3f, p = %.3f; target `%s`\n",
		low, len(insight.LowValues), high, len(insight.HighValues), insight.Test, insight.Statistic, insight.PValue, insight.Target)
}

func formatNumber(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// HTML converts Markdown to an HTML fragment
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.Render(doc, renderer)
}

// HTMLPage converts Markdown to a standalone HTML document
func HTMLPage(title, md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer)
}

// Render produces the report in the requested format
func Render(format Format, title string, result *segment.Result) []byte {
	md := Markdown(title, result)
	if format == FormatHTML {
		return HTMLPage(title, md)
	}
	return []byte(md)
}
