package vetting

import "math"

// RiskLevel buckets a composite score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

const (
	baseScore = 1.0
	minScore  = 0.0
	maxScore  = 1.3
)

// ScoringThresholds defines the lower bounds of the low and medium risk bands.
type ScoringThresholds struct {
	SafeMin   float64 `json:"safe_min"`   // Default: 0.7
	MediumMin float64 `json:"medium_min"` // Default: 0.4
}

// DefaultScoringThresholds returns default thresholds
func DefaultScoringThresholds() ScoringThresholds {
	return ScoringThresholds{
		SafeMin:   0.7,
		MediumMin: 0.4,
	}
}

// Verdict is the outcome of a single URL check.
type Verdict struct {
	Safe      bool      `json:"safe"`
	RiskLevel RiskLevel `json:"risk_level"`
	Score     float64   `json:"score"`
	Reasons   []string  `json:"reasons"`
}

// rejectVerdict is the terminal verdict for input that never reaches the heuristics.
func rejectVerdict(reason string) Verdict {
	return Verdict{
		Safe:      false,
		RiskLevel: RiskHigh,
		Score:     0.0,
		Reasons:   []string{reason},
	}
}

// finalizeScore clamps the summed score, rounds it to 3 decimals and classifies it.
func finalizeScore(score float64, reasons []string, thresholds ScoringThresholds) Verdict {
	// Ensure score stays within range (prevent negative scores)
	if score < minScore {
		score = minScore
	}
	if score > maxScore {
		score = maxScore
	}
	score = math.Round(score*1000) / 1000

	level := RiskHigh
	if score >= thresholds.SafeMin {
		level = RiskLow
	} else if score >= thresholds.MediumMin {
		level = RiskMedium
	}

	if reasons == nil {
		reasons = []string{}
	}

	return Verdict{
		Safe:      level == RiskLow,
		RiskLevel: level,
		Score:     score,
		Reasons:   reasons,
	}
}
