package senses

import (
	"fmt"
	"math"
)

// ChiSquareSense detects associations between categorical variables
type ChiSquareSense struct {
	dist *StatisticalDistributions

	// Correction applies Yates' continuity correction when the table has one degree of freedom
	Correction bool
}

// NewChiSquareSense creates a new Chi-Square sense with continuity correction enabled
func NewChiSquareSense() *ChiSquareSense {
	return &ChiSquareSense{dist: NewDistributions(), Correction: true}
}

// Name returns the sense name
func (s *ChiSquareSense) Name() string {
	return "chi_square"
}

// Test performs a Chi-Square test of independence on an observed contingency table
func (s *ChiSquareSense) Test(table [][]float64) SenseResult {
	rows := len(table)
	if rows < 2 || len(table[0]) < 2 {
		return untestable(s.Name(), "Could not build suitable contingency table for Chi-Square test")
	}
	cols := len(table[0])

	rowTotals := make([]float64, rows)
	colTotals := make([]float64, cols)
	total := 0.0

	// Calculate marginal totals
	for i := 0; i < rows; i++ {
		if len(table[i]) != cols {
			return untestable(s.Name(), "Contingency table rows have unequal length")
		}
		for j := 0; j < cols; j++ {
			rowTotals[i] += table[i][j]
			colTotals[j] += table[i][j]
			total += table[i][j]
		}
	}

	if total == 0 {
		return untestable(s.Name(), "Contingency table is empty")
	}

	df := float64((rows - 1) * (cols - 1))
	corrected := s.Correction && df == 1

	chiSq := 0.0
	pearson := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			expected := rowTotals[i] * colTotals[j] / total
			if expected == 0 {
				return untestable(s.Name(), "Contingency table has a zero expected frequency")
			}
			observed := table[i][j]
			diff := observed - expected
			pearson += diff * diff / expected

			if corrected {
				// Move the observed count toward expected by at most one half
				shift := math.Min(0.5, math.Abs(diff))
				diff = math.Copysign(math.Abs(diff)-shift, diff)
			}
			chiSq += diff * diff / expected
		}
	}

	pValue := s.dist.ChiSquarePValue(chiSq, df)

	// Effect size: Cramer's V = sqrt(χ² / (n * min(r-1, c-1))), phi for a 2x2 table
	minDim := math.Min(float64(rows-1), float64(cols-1))
	cramerV := math.Sqrt(pearson / (total * minDim))

	return SenseResult{
		SenseName:        s.Name(),
		Statistic:        chiSq,
		DegreesOfFreedom: df,
		EffectSize:       cramerV,
		PValue:           pValue,
		Signal:           classifySignal(cramerV, s.Name()),
		Description:      s.generateDescription(chiSq, pValue, cramerV, rows, cols),
		Metadata: map[string]interface{}{
			"pearson_stat": pearson,
			"corrected":    corrected,
			"table_rows":   rows,
			"table_cols":   cols,
			"total":        total,
		},
	}
}

// generateDescription creates a human-readable description of the Chi-Square result
func (s *ChiSquareSense) generateDescription(chiSq, pValue, cramerV float64, rows, cols int) string {
	if math.IsNaN(pValue) || pValue > 0.05 {
		return fmt.Sprintf("No significant association (χ²=%.3f, p=%.3f, V=%.3f)", chiSq, pValue, cramerV)
	}

	strength := ""
	if cramerV < 0.1 {
		strength = "weak"
	} else if cramerV < 0.3 {
		strength = "moderate"
	} else if cramerV < 0.5 {
		strength = "strong"
	} else {
		strength = "very strong"
	}

	return fmt.Sprintf("%s association (χ²=%.3f, p=%.3f, V=%.3f, %dx%d table)", strength, chiSq, pValue, cramerV, rows, cols)
}
