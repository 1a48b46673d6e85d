package senses

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// StatisticalDistributions provides tail probabilities for the tests in this package
type StatisticalDistributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *StatisticalDistributions {
	return &StatisticalDistributions{}
}

// TTestPValue computes the two-tailed p-value of a t statistic.
// Degrees of freedom may be fractional (Welch-Satterthwaite).
func (sd *StatisticalDistributions) TTestPValue(tStatistic, degreesOfFreedom float64) float64 {
	if math.IsNaN(tStatistic) || math.IsNaN(degreesOfFreedom) || degreesOfFreedom <= 0 {
		return math.NaN()
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: degreesOfFreedom}

	// Survival keeps precision in the far tail where 1-CDF rounds to zero
	return 2 * tDist.Survival(math.Abs(tStatistic))
}

// ChiSquarePValue computes the upper-tail p-value of a chi-square statistic
func (sd *StatisticalDistributions) ChiSquarePValue(chiSquare, degreesOfFreedom float64) float64 {
	if math.IsNaN(chiSquare) || degreesOfFreedom <= 0 {
		return math.NaN()
	}

	chiDist := distuv.ChiSquared{K: degreesOfFreedom}
	return chiDist.Survival(chiSquare)
}
