package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"surveyinsight/adapters/excel"
	"surveyinsight/domain/survey"
	"surveyinsight/internal/errors"
	"surveyinsight/internal/report"
	"surveyinsight/internal/segment"
)

func newAnalyzeCmd(opts *globalOptions) *cobra.Command {
	var source string
	var format string
	var xlsxOut string

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Find segment differences that are statistically significant",
		Long: `Median split every continuous column into Low and High respondents and
test each split against every other question. Continuous targets use Welch's
t-test, checkbox and radio options use a chi-square test of independence.

Formats: text (default), json, markdown, html.

Example: surveyinsight analyze responses.xlsx --source likert_q1_satisfaction --xlsx insights.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			switch format {
			case "text", "json", "markdown", "md", "html":
			default:
				return errors.InvalidInput(fmt.Sprintf("unknown format %q", format))
			}

			c, ds, classification, err := opts.load(args[0])
			if err != nil {
				return err
			}

			var result *segment.Result
			if source == "" {
				result, err = c.Engine.Run(cmd.Context(), ds, classification)
			} else {
				result, err = c.Engine.RunSource(cmd.Context(), ds, classification, source)
			}
			if err != nil {
				return err
			}

			if xlsxOut != "" {
				if err := excel.NewInsightWriter().WriteFile(xlsxOut, result.Insights); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d insights to %s\n", len(result.Insights), xlsxOut)
			}

			out := cmd.OutOrStdout()
			title := fmt.Sprintf("Segment insights: %s", filepath.Base(args[0]))
			switch format {
			case "json":
				return writeJSON(out, result)
			case "markdown", "md":
				_, err = io.WriteString(out, report.Markdown(title, result))
				return err
			case "html":
				_, err = out.Write(report.HTMLPage(title, report.Markdown(title, result)))
				return err
			}
			printResult(out, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "analyse a single source column")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text|json|markdown|html")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "also write the insights to an Excel workbook")
	return cmd
}

func printResult(w io.Writer, result *segment.Result) {
	titleStyle.Fprintf(w, "%d insights from %d sources (%d pairs tested)\n",
		result.Stats.Insights, result.Stats.Sources, result.Stats.PairsTested)

	current := ""
	for _, insight := range result.Insights {
		if insight.Source != current {
			current = insight.Source
			headerStyle.Fprintf(w, "\n%s\n", segment.Prettify(current))
		}
		positiveStyle.Fprintf(w, "  %s\n", insight.Summary)
		mutedStyle.Fprintf(w, "    %s\n", insightDetail(insight))
	}

	if len(result.Stats.Skips) > 0 {
		reasons := make([]string, 0, len(result.Stats.Skips))
		for reason := range result.Stats.Skips {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)

		parts := make([]string, 0, len(reasons))
		for _, reason := range reasons {
			parts = append(parts, fmt.Sprintf("%s=%d", reason, result.Stats.Skips[segment.SkipReason(reason)]))
		}
		mutedStyle.Fprintf(w, "\nskipped: %s\n", strings.Join(parts, " "))
	}
}

func insightDetail(insight survey.Insight) string {
	low := insight.Aggregates[survey.SegmentLow]
	high := insight.Aggregates[survey.SegmentHigh]
	unit := ""
	if insight.Percentage {
		unit = "%"
	}
	return fmt.Sprintf("%s: Low %.2f%s vs High %.2f%s, statistic %.3f, p %.4f",
		insight.Test, low, unit, high, unit, insight.Statistic, insight.PValue)
}
