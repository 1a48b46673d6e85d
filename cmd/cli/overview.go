package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"surveyinsight/internal/overview"
	"surveyinsight/internal/segment"
)

func newOverviewCmd(opts *globalOptions) *cobra.Command {
	var segmentColumn string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "overview <file>",
		Short: "Print descriptive statistics for a survey export",
		Long: `Summarise scale means, multi-select shares, ranking and semantic
differential averages, and sample open-ended answers.

With --segment the scales and shares are broken down by the values of a
segments column.

Example: surveyinsight overview responses.csv --segment segment_region`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ds, classification, err := opts.load(args[0])
			if err != nil {
				return err
			}
			ov, err := c.Overview.Build(ds, classification, segmentColumn)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), ov)
			}
			printOverview(cmd.OutOrStdout(), ov)
			return nil
		},
	}

	cmd.Flags().StringVar(&segmentColumn, "segment", "", "segments column to break results down by")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the overview as JSON")
	return cmd
}

func printOverview(w io.Writer, ov *overview.Overview) {
	titleStyle.Fprintf(w, "%d respondents, %d columns\n", ov.Rows, ov.Columns)

	for _, scale := range ov.Scales {
		headerStyle.Fprintf(w, "\n%s\n", segment.Prettify(scale.Category.String()))
		printMeans(w, "", scale.Columns)
		for _, seg := range scale.BySegment {
			mutedStyle.Fprintf(w, "  %s = %s (n=%d)\n", ov.Segment, seg.Segment, seg.Size)
			printMeans(w, "  ", seg.Columns)
		}
	}

	for _, group := range ov.Groups {
		headerStyle.Fprintf(w, "\n%s %s\n", segment.Prettify(group.Category.String()), group.Prefix)
		printShares(w, "", group.Columns)
		for _, seg := range group.BySegment {
			mutedStyle.Fprintf(w, "  %s = %s (n=%d)\n", ov.Segment, seg.Segment, seg.Size)
			printShares(w, "  ", seg.Columns)
		}
	}

	if len(ov.Ranking) > 0 {
		headerStyle.Fprintln(w, "\nRanking (lower is better)")
		printMeans(w, "", ov.Ranking)
	}
	if len(ov.Semantic) > 0 {
		headerStyle.Fprintln(w, "\nSemantic differential")
		printMeans(w, "", ov.Semantic)
	}

	for _, sample := range ov.OpenEnded {
		headerStyle.Fprintf(w, "\n%s\n", segment.Prettify(sample.Column))
		for _, response := range sample.Responses {
			fmt.Fprintf(w, "  - %s\n", response)
		}
	}
}

func printMeans(w io.Writer, indent string, stats []overview.ColumnStat) {
	for _, s := range stats {
		if s.Count == 0 {
			mutedStyle.Fprintf(w, "%s  %-40s   n/a\n", indent, s.Column)
			continue
		}
		fmt.Fprintf(w, "%s  %-40s %6.2f  (n=%d)\n", indent, s.Column, s.Mean, s.Count)
	}
}

func printShares(w io.Writer, indent string, shares []overview.ShareStat) {
	for _, s := range shares {
		fmt.Fprintf(w, "%s  %-40s %7s  (%d)\n", indent, s.Column, overview.FormatPercent(s.Percent), s.Selected)
	}
}
