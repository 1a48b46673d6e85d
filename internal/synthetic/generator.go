// Package synthetic generates survey exports with known planted relationships,
// for demos and end-to-end tests of the segment explorer.
package synthetic

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"surveyinsight/domain/survey"
)

// Dataset is a generated survey in export layout.
//
// Columns driven by the latent satisfaction score:
// - likert_q1_satisfaction, rating_q2_recommend, nps_q3_likelihood
// - matrix_q4_speed, sd_q8_modern
// - rb_q5_plan_pro / rb_q5_plan_basic, checkbox_q6_features_export, checkbox_q6_features_sso
// - rank_q7_support / rank_q7_price
//
// Noise columns: matrix_q4_price, checkbox_q6_features_api, likert_q9_noise.
type Dataset struct {
	Headers []string
	Rows    [][]string

	// Latent satisfaction per respondent, for validation/tests
	Latent []float64
}

type Config struct {
	Respondents int
	Seed        int64

	// Effect in [0,1] scales how strongly answers follow the latent score
	Effect float64

	// MissingRate is the chance a scale answer is left blank
	MissingRate float64
}

func DefaultConfig() Config {
	return Config{
		Respondents: 300,
		Seed:        42,
		Effect:      0.7,
		MissingRate: 0.05,
	}
}

var headers = []string{
	"respondent_id",
	"segment_region",
	"likert_q1_satisfaction",
	"rating_q2_recommend",
	"nps_q3_likelihood",
	"matrix_q4_speed",
	"matrix_q4_price",
	"rb_q5_plan_basic",
	"rb_q5_plan_pro",
	"checkbox_q6_features_export",
	"checkbox_q6_features_api",
	"checkbox_q6_features_sso",
	"rank_q7_price",
	"rank_q7_support",
	"sd_q8_modern",
	"likert_q9_noise",
	"open_ended_q10_comments",
}

var (
	regions  = []string{"North", "South", "East", "West"}
	comments = []string{"Great support", "Too expensive", "Fast and reliable", "Needs better exports", "Love the SSO"}
)

func Generate(cfg Config) (*Dataset, error) {
	if cfg.Respondents <= 0 {
		return nil, fmt.Errorf("respondents must be > 0")
	}
	if cfg.Effect < 0 || cfg.Effect > 1 {
		return nil, fmt.Errorf("effect must be within [0,1]")
	}
	if cfg.MissingRate < 0 || cfg.MissingRate >= 1 {
		return nil, fmt.Errorf("missing rate must be within [0,1)")
	}

	g := &generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
	ds := &Dataset{
		Headers: append([]string(nil), headers...),
		Rows:    make([][]string, cfg.Respondents),
		Latent:  make([]float64, cfg.Respondents),
	}

	for i := 0; i < cfg.Respondents; i++ {
		z := g.rng.NormFloat64()
		ds.Latent[i] = z
		ds.Rows[i] = g.respondent(i, z)
	}
	return ds, nil
}

type generator struct {
	cfg Config
	rng *rand.Rand
}

func (g *generator) respondent(i int, z float64) []string {
	proPlan := g.chance(z)
	supportFirst := g.chance(z)

	row := []string{
		fmt.Sprintf("R%05d", i+1),
		regions[g.rng.Intn(len(regions))],
		g.scale(z, 3, 1.2, 1, 5),
		g.scale(z, 7, 2, 0, 10),
		g.scale(z, 7, 2, 0, 10),
		g.scale(z, 3, 1, 1, 5),
		g.scale(0, 3, 1, 1, 5),
		mark(!proPlan, "Basic"),
		mark(proPlan, "Pro"),
		mark(g.chance(z), "Export"),
		mark(g.rng.Float64() < 0.5, "API"),
		mark(g.chance(z), "SSO"),
		rank(!supportFirst),
		rank(supportFirst),
		g.scale(z, 0, 1.5, -3, 3),
		g.scale(0, 3, 1, 1, 5),
		"",
	}
	if g.rng.Float64() < 0.3 {
		row[len(row)-1] = comments[g.rng.Intn(len(comments))]
	}
	return row
}

// scale draws a rounded answer centred on mid, shifted by the latent score
func (g *generator) scale(z, mid, spread, lo, hi float64) string {
	if g.rng.Float64() < g.cfg.MissingRate {
		return ""
	}
	noise := g.rng.NormFloat64() * math.Sqrt(1-g.cfg.Effect*g.cfg.Effect)
	v := math.Round(mid + spread*(g.cfg.Effect*z+noise))
	return strconv.FormatFloat(math.Max(lo, math.Min(hi, v)), 'f', 0, 64)
}

// chance is a logistic coin whose bias follows the latent score
func (g *generator) chance(z float64) bool {
	p := 1 / (1 + math.Exp(-3*g.cfg.Effect*z))
	return g.rng.Float64() < p
}

func mark(selected bool, label string) string {
	if selected {
		return label
	}
	return ""
}

func rank(first bool) string {
	if first {
		return "1"
	}
	return "2"
}

// ToSurvey converts the generated rows into a survey dataset
func (ds *Dataset) ToSurvey() (*survey.Dataset, error) {
	return survey.NewDataset(ds.Headers, ds.Rows)
}

func WriteCSV(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(ds.Headers); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func WriteXLSX(path string, ds *Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	header := make([]interface{}, len(ds.Headers))
	for i, h := range ds.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r, row := range ds.Rows {
		cells := make([]interface{}, len(row))
		for c, v := range row {
			// Numeric answers are stored as numbers so spreadsheets can chart them
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				cells[c] = n
			} else {
				cells[c] = v
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
