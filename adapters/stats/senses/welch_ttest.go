package senses

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// WelchTTestSense detects significant differences between group means
type WelchTTestSense struct {
	dist *StatisticalDistributions
}

// NewWelchTTestSense creates a new Welch's t-test sense
func NewWelchTTestSense() *WelchTTestSense {
	return &WelchTTestSense{dist: NewDistributions()}
}

// Name returns the sense name
func (s *WelchTTestSense) Name() string {
	return "welch_ttest"
}

// Compare performs a two-sided Welch's t-test of low against high.
// NaN entries must already be removed by the caller.
func (s *WelchTTestSense) Compare(low, high []float64) SenseResult {
	n1 := float64(len(low))
	n2 := float64(len(high))

	if n1 < 2 || n2 < 2 {
		return untestable(s.Name(), "Insufficient data for Welch's t-test analysis")
	}

	mean1 := stat.Mean(low, nil)
	mean2 := stat.Mean(high, nil)
	var1 := stat.Variance(low, nil)
	var2 := stat.Variance(high, nil)

	se1 := var1 / n1
	se2 := var2 / n2
	seSum := se1 + se2

	metadata := map[string]interface{}{
		"group1_size": len(low),
		"group2_size": len(high),
		"group1_mean": mean1,
		"group2_mean": mean2,
	}

	// Both groups constant: equal means leave the statistic undefined,
	// different means are perfectly separated (t = ±Inf, p = 0, df = 1)
	if seSum == 0 {
		if mean1 == mean2 {
			res := untestable(s.Name(), "Both groups have zero variance and equal means")
			res.Metadata = metadata
			return res
		}
		tStat := math.Copysign(math.Inf(1), mean1-mean2)
		return SenseResult{
			SenseName:        s.Name(),
			Statistic:        tStat,
			DegreesOfFreedom: 1,
			EffectSize:       tStat,
			PValue:           0,
			Signal:           classifySignal(tStat, s.Name()),
			Description:      s.generateDescription(tStat, 0, tStat, len(low), len(high)),
			Metadata:         metadata,
		}
	}

	// Welch's t-statistic: t = (mean1 - mean2) / sqrt(var1/n1 + var2/n2)
	tStat := (mean1 - mean2) / math.Sqrt(seSum)

	// Degrees of freedom using Welch-Satterthwaite equation
	df := seSum * seSum / (se1*se1/(n1-1) + se2*se2/(n2-1))

	pValue := s.dist.TTestPValue(tStat, df)

	// Effect size (Cohen's d with pooled standard deviation)
	effectSize := 0.0
	pooledSD := math.Sqrt(((n1-1)*var1 + (n2-1)*var2) / (n1 + n2 - 2))
	if pooledSD > 0 {
		effectSize = (mean1 - mean2) / pooledSD
	}

	return SenseResult{
		SenseName:        s.Name(),
		Statistic:        tStat,
		DegreesOfFreedom: df,
		EffectSize:       effectSize,
		PValue:           pValue,
		Signal:           classifySignal(effectSize, s.Name()),
		Description:      s.generateDescription(tStat, pValue, effectSize, len(low), len(high)),
		Metadata:         metadata,
	}
}

// generateDescription creates a human-readable description of the t-test result
func (s *WelchTTestSense) generateDescription(tStat, pValue, effectSize float64, n1, n2 int) string {
	if math.IsNaN(pValue) || pValue > 0.05 {
		return fmt.Sprintf("No significant difference between groups (t=%.3f, p=%.3f, d=%.3f, n1=%d, n2=%d)", tStat, pValue, effectSize, n1, n2)
	}

	direction := "higher"
	if tStat < 0 {
		direction = "lower"
	}

	strength := ""
	absD := math.Abs(effectSize)
	if absD < 0.2 {
		strength = "small"
	} else if absD < 0.5 {
		strength = "medium"
	} else if absD < 0.8 {
		strength = "large"
	} else {
		strength = "very large"
	}

	return fmt.Sprintf("Significant group difference: Group 1 has %s %s mean than Group 2 (t=%.3f, p=%.3f, d=%.3f, n1=%d, n2=%d)", strength, direction, tStat, pValue, effectSize, n1, n2)
}
