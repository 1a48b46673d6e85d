package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"surveyinsight/adapters/excel"
	"surveyinsight/domain/survey"
	"surveyinsight/internal/config"
	"surveyinsight/internal/container"
)

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	rules    string
	alpha    float64
	minGroup int
	workers  int
	logLevel string
	noColor  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	defaults := config.DefaultAnalysisConfig()

	rootCmd := &cobra.Command{
		Use:           "surveyinsight",
		Short:         "Survey segment discovery from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.rules, "rules", os.Getenv("CLASSIFIER_RULES"), "YAML classifier rule file (default built-in rules)")
	flags.Float64Var(&opts.alpha, "alpha", defaults.Alpha, "significance level")
	flags.IntVar(&opts.minGroup, "min-group", defaults.MinGroupSize, "minimum respondents per segment (exclusive)")
	flags.IntVar(&opts.workers, "workers", defaults.Workers, "concurrent source columns")
	flags.StringVar(&opts.logLevel, "log-level", "WARN", "ERROR|WARN|INFO|DEBUG|TRACE")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(
		newClassifyCmd(opts),
		newOverviewCmd(opts),
		newAnalyzeCmd(opts),
	)
	return rootCmd
}

// build wires the analysis components from the flags
func (o *globalOptions) build() (*container.Container, error) {
	analysis := config.DefaultAnalysisConfig()
	analysis.Alpha = o.alpha
	analysis.MinGroupSize = o.minGroup
	analysis.Workers = o.workers
	if err := analysis.Validate(); err != nil {
		return nil, err
	}

	return container.New(&config.Config{
		Analysis: analysis,
		Data:     config.DataConfig{ClassifierRules: o.rules},
		LogLevel: o.logLevel,
	})
}

// load reads a survey file and classifies it
func (o *globalOptions) load(path string) (*container.Container, *survey.Dataset, survey.Classification, error) {
	c, err := o.build()
	if err != nil {
		return nil, nil, nil, err
	}
	ds, err := excel.NewDataReader(path).ReadData()
	if err != nil {
		return nil, nil, nil, err
	}
	return c, ds, c.Classifier.ClassifyDataset(ds), nil
}

var (
	titleStyle    = color.New(color.FgWhite, color.Bold)
	headerStyle   = color.New(color.FgCyan, color.Bold)
	positiveStyle = color.New(color.FgGreen)
	mutedStyle    = color.New(color.FgHiBlack)
)
