package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"surveyinsight/internal/synthetic"
)

func main() {
	defaults := synthetic.DefaultConfig()

	out := flag.String("out", "synthetic_survey.xlsx", "output file path")
	respondents := flag.Int("respondents", defaults.Respondents, "number of respondents (rows)")
	format := flag.String("format", "", "output format: xlsx or csv (default inferred from -out)")
	seed := flag.Int64("seed", defaults.Seed, "RNG seed (deterministic)")
	effect := flag.Float64("effect", defaults.Effect, "strength of the latent satisfaction effect, 0..1")
	missing := flag.Float64("missing", defaults.MissingRate, "share of scale answers left blank, 0..1")
	flag.Parse()

	if *respondents <= 0 {
		fmt.Fprintln(os.Stderr, "respondents must be > 0")
		os.Exit(2)
	}

	fmtName := strings.ToLower(strings.TrimSpace(*format))
	if fmtName == "" {
		switch strings.ToLower(filepath.Ext(*out)) {
		case ".csv":
			fmtName = "csv"
		default:
			fmtName = "xlsx"
		}
	}

	cfg := defaults
	cfg.Respondents = *respondents
	cfg.Seed = *seed
	cfg.Effect = *effect
	cfg.MissingRate = *missing

	ds, err := synthetic.Generate(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error generating dataset:", err)
		os.Exit(1)
	}

	switch fmtName {
	case "csv":
		err = synthetic.WriteCSV(*out, ds)
	case "xlsx":
		err = synthetic.WriteXLSX(*out, ds)
	default:
		fmt.Fprintln(os.Stderr, "unsupported format:", fmtName)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", fmtName, err)
		os.Exit(1)
	}

	fmt.Printf("Synthetic survey written: %s\n", *out)
	fmt.Printf("Columns: %d | Respondents: %d\n", len(ds.Headers), len(ds.Rows))
}
