package senses

import (
	"math"
)

// SenseResult represents the output of a single statistical test
type SenseResult struct {
	SenseName        string                 `json:"sense_name"`
	Statistic        float64                `json:"statistic"`
	DegreesOfFreedom float64                `json:"degrees_of_freedom"`
	EffectSize       float64                `json:"effect_size"`
	PValue           float64                `json:"p_value"`
	Signal           string                 `json:"signal"`      // "weak", "moderate", "strong", "very_strong"
	Description      string                 `json:"description"` // Human-readable explanation
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// Significant reports whether the p-value is defined and strictly below alpha
func (r SenseResult) Significant(alpha float64) bool {
	return !math.IsNaN(r.PValue) && r.PValue < alpha
}

// Tested reports whether the test produced a usable p-value
func (r SenseResult) Tested() bool {
	return !math.IsNaN(r.PValue)
}

func untestable(name, reason string) SenseResult {
	return SenseResult{
		SenseName:   name,
		Statistic:   math.NaN(),
		PValue:      math.NaN(),
		Signal:      "weak",
		Description: reason,
	}
}

// classifySignal converts effect size to signal strength
func classifySignal(effectSize float64, senseType string) string {
	absEffect := math.Abs(effectSize)

	switch senseType {
	case "welch_ttest":
		if absEffect < 0.2 {
			return "weak"
		} else if absEffect < 0.5 {
			return "moderate"
		} else if absEffect < 0.8 {
			return "strong"
		}
		return "very_strong"

	case "chi_square":
		if absEffect < 0.1 {
			return "weak"
		} else if absEffect < 0.3 {
			return "moderate"
		} else if absEffect < 0.5 {
			return "strong"
		}
		return "very_strong"

	default:
		if absEffect < 0.3 {
			return "weak"
		} else if absEffect < 0.6 {
			return "moderate"
		}
		return "strong"
	}
}
