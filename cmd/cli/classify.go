package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"surveyinsight/domain/survey"
)

func newClassifyCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify <file>",
		Short: "Show which category every column was assigned to",
		Long: `Classify the columns of a CSV or XLSX survey export by their names.

Example: surveyinsight classify responses.xlsx --rules rules.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ds, classification, err := opts.load(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), classification)
			}
			printClassification(cmd.OutOrStdout(), ds, classification)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the classification as JSON")
	return cmd
}

func printClassification(w io.Writer, ds *survey.Dataset, classification survey.Classification) {
	titleStyle.Fprintf(w, "%d respondents, %d columns\n\n", ds.RowCount(), ds.ColumnCount())

	classified := 0
	for _, cat := range survey.AllCategories {
		cols := classification.Columns(cat)
		classified += len(cols)
		headerStyle.Fprintf(w, "%-10s", cat)
		fmt.Fprintf(w, " %3d", len(cols))
		if len(cols) > 0 {
			fmt.Fprintf(w, "  %s", strings.Join(cols, ", "))
		}
		fmt.Fprintln(w)
	}

	if unmatched := ds.ColumnCount() - classified; unmatched > 0 {
		mutedStyle.Fprintf(w, "\n%d columns matched no rule\n", unmatched)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
