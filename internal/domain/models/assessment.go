package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel is the three-tier verdict
type RiskLevel string

const (
	RiskLevelGreen  RiskLevel = "green"
	RiskLevelYellow RiskLevel = "yellow"
	RiskLevelRed    RiskLevel = "red"
)

// MLConfidence is the scorer's confidence band
type MLConfidence string

const (
	MLConfidenceLow    MLConfidence = "Low"
	MLConfidenceMedium MLConfidence = "Medium"
	MLConfidenceHigh   MLConfidence = "High"
)

// MLFactor is one feature's contribution to the scam prediction
type MLFactor struct {
	Feature    string  `json:"feature"`
	Value      float64 `json:"value"`
	Importance float64 `json:"importance"`
}

// MLScore is the outcome of one call to the probability-scoring service.
// Unavailability is a first-class state, not an error: Available=false with
// Error set means the aggregator switches to the fallback weight table.
type MLScore struct {
	Available       bool         `json:"available"`
	ScamProbability float64      `json:"scam_probability,omitempty"`
	IsScam          bool         `json:"is_scam,omitempty"`
	Confidence      MLConfidence `json:"confidence,omitempty"`
	TopFactors      []MLFactor   `json:"top_factors,omitempty"`
	Error           string       `json:"error,omitempty"`
}

// UnavailableMLScore returns the degraded score used when the scorer is down
func UnavailableMLScore(reason string) MLScore {
	return MLScore{Available: false, Error: reason}
}

// RiskAction is the level-specific guidance shown to the user
type RiskAction struct {
	Title       string   `json:"title"`
	Suggestions []string `json:"suggestions"`
}

// ParsedSummary echoes what the parser extracted, with content truncated
// for display
type ParsedSummary struct {
	URL              string `json:"url,omitempty"`
	Phone            string `json:"phone,omitempty"`
	TruncatedContent string `json:"truncated_content"`
}

// RiskAssessment is the final verdict for one message. Constructed once per
// request from the settled signal results and never mutated afterwards.
// RiskScore is capped at 99: certainty is never claimed.
type RiskAssessment struct {
	ID         uuid.UUID     `json:"id"`
	RiskLevel  RiskLevel     `json:"risk_level"`
	RiskScore  int           `json:"risk_score"`
	MLScore    *float64      `json:"ml_score,omitempty"` // 0-100, absent when the scorer was unavailable
	Evidence   []string      `json:"evidence"`
	Action     RiskAction    `json:"action"`
	Parsed     ParsedSummary `json:"parsed"`
	AnalyzedAt time.Time     `json:"analyzed_at"`
}

// LevelForScore maps a risk score to its tier
func LevelForScore(score int) RiskLevel {
	switch {
	case score >= 60:
		return RiskLevelRed
	case score >= 30:
		return RiskLevelYellow
	default:
		return RiskLevelGreen
	}
}
