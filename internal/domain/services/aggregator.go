package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"lumosguard/internal/config"
	"lumosguard/internal/domain/models"
	"lumosguard/pkg/logger"
)

const truncatedContentLimit = 120

// RiskAggregator folds the settled signals and the ML score into the final
// verdict. Two weight tables are in play: the hybrid table when the ML
// scorer answered, where the probability dominates and the individual
// signals only nudge, and the fallback table where the signals carry the
// whole score. The score is capped at 99.
type RiskAggregator struct {
	cfg    config.ScoringConfig
	logger *logger.Logger
}

// NewRiskAggregator creates an aggregator with the given weight tables
func NewRiskAggregator(cfg config.ScoringConfig, log *logger.Logger) *RiskAggregator {
	return &RiskAggregator{
		cfg:    cfg,
		logger: log.WithComponent("risk-aggregator"),
	}
}

// Aggregate computes the verdict for one analyzed message
func (a *RiskAggregator) Aggregate(parsed models.ParsedMessage, signals CollectedSignals, ml models.MLScore) *models.RiskAssessment {
	table := a.cfg.Fallback
	sum := 0.0
	if ml.Available {
		table = a.cfg.Hybrid
		sum += ml.ScamProbability * 100 * a.cfg.MLWeight
	}

	if signals.URL != nil && !signals.URL.IsSafe {
		sum += table.URLUnsafe
	}
	if signals.Phone != nil {
		if signals.Phone.LineType == models.LineTypeVoIP {
			sum += table.PhoneVoIP
		}
		if !signals.Phone.Valid {
			sum += table.PhoneInvalid
		}
	}
	if signals.AI != nil && signals.AI.IsScam {
		sum += float64(signals.AI.Confidence) * table.AIConfidence
	}

	score := int(math.Round(sum))
	if score < 0 {
		score = 0
	}
	if score > 99 {
		score = 99
	}
	level := models.LevelForScore(score)

	assessment := &models.RiskAssessment{
		ID:         uuid.New(),
		RiskLevel:  level,
		RiskScore:  score,
		Evidence:   a.buildEvidence(signals, ml),
		Action:     a.actionFor(level, parsed),
		Parsed:     summarize(parsed),
		AnalyzedAt: time.Now().UTC(),
	}
	if ml.Available {
		pct := ml.ScamProbability * 100
		assessment.MLScore = &pct
	}

	a.logger.Debug().
		Int("risk_score", score).
		Str("risk_level", string(level)).
		Bool("ml_available", ml.Available).
		Msg("Risk aggregation completed")

	return assessment
}

// buildEvidence assembles the human-readable evidence lines in a fixed
// order: ML first, then URL, phone and AI verdicts.
func (a *RiskAggregator) buildEvidence(signals CollectedSignals, ml models.MLScore) []string {
	evidence := []string{}

	if ml.Available {
		evidence = append(evidence, fmt.Sprintf("ML model scored this message %.1f%% likely to be a scam (%s confidence)",
			ml.ScamProbability*100, strings.ToLower(string(ml.Confidence))))
		if len(ml.TopFactors) > 0 {
			names := make([]string, len(ml.TopFactors))
			for i, f := range ml.TopFactors {
				names[i] = f.Feature
			}
			evidence = append(evidence, "Key factors: "+strings.Join(names, ", "))
		}
	}

	if signals.URL != nil {
		switch {
		case signals.URL.Error != "":
			evidence = append(evidence, "URL reputation check was unavailable, link treated as unverified")
		case !signals.URL.IsSafe:
			evidence = append(evidence, fmt.Sprintf("URL flagged as unsafe (%s)", signals.URL.ThreatType))
		default:
			evidence = append(evidence, "URL passed the reputation check")
		}
	}

	if signals.Phone != nil {
		switch {
		case signals.Phone.LineType == models.LineTypeVoIP:
			evidence = append(evidence, "Phone number uses a VoIP line, common in scam operations")
		case !signals.Phone.Valid:
			evidence = append(evidence, "Phone number could not be verified")
		default:
			line := fmt.Sprintf("Phone number is a valid %s line", signals.Phone.LineType)
			if signals.Phone.Carrier != "" {
				line += " (" + signals.Phone.Carrier + ")"
			}
			evidence = append(evidence, line)
		}
	}

	if signals.AI != nil {
		switch {
		case signals.AI.Error != "":
			evidence = append(evidence, "AI analysis was unavailable for this message")
		case signals.AI.IsScam:
			evidence = append(evidence, fmt.Sprintf("AI judged this a scam with %d%% confidence: %s",
				signals.AI.Confidence, signals.AI.Reason))
			if len(signals.AI.Keywords) > 0 {
				evidence = append(evidence, "Suspicious phrases: "+strings.Join(signals.AI.Keywords, ", "))
			}
		}
	}

	return evidence
}

func (a *RiskAggregator) actionFor(level models.RiskLevel, parsed models.ParsedMessage) models.RiskAction {
	switch level {
	case models.RiskLevelRed:
		return models.RiskAction{
			Title: "High risk: do not respond",
			Suggestions: []string{
				"Do not click any links or call any numbers in this message",
				"Block and report the sender",
				"If the message claims to be from a company or bank, contact them through their official channels",
			},
		}
	case models.RiskLevelYellow:
		suggestions := []string{
			"Verify the sender through a channel you trust before acting",
			"Do not share personal or financial information",
		}
		if parsed.URL != "" {
			suggestions = append(suggestions, "Avoid clicking suspicious links")
		}
		return models.RiskAction{
			Title:       "Caution: this message has warning signs",
			Suggestions: suggestions,
		}
	default:
		return models.RiskAction{
			Title: "No significant risk detected",
			Suggestions: []string{
				"Stay alert for unexpected requests for money or personal information",
			},
		}
	}
}

func summarize(parsed models.ParsedMessage) models.ParsedSummary {
	content := parsed.Content
	if runes := []rune(content); len(runes) > truncatedContentLimit {
		content = string(runes[:truncatedContentLimit]) + "..."
	}
	return models.ParsedSummary{
		URL:              parsed.URL,
		Phone:            parsed.Phone,
		TruncatedContent: content,
	}
}
