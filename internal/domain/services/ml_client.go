package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"lumosguard/internal/config"
	"lumosguard/internal/domain/models"
	"lumosguard/pkg/logger"
)

// MLScorer produces a scam probability for a feature vector. Unavailability
// of the scoring service is a normal outcome, never an error.
type MLScorer interface {
	Score(ctx context.Context, features models.FeatureVector) models.MLScore
}

// MLScorerClient talks to the external probability-scoring HTTP service.
// With no base URL configured every call reports the scorer unavailable,
// which keeps the engine on the fallback weight table.
type MLScorerClient struct {
	baseURL    string
	httpClient *http.Client
	highConf   float64
	medConf    float64
	logger     *logger.Logger
}

// NewMLScorerClient creates a client for the scoring service
func NewMLScorerClient(cfg config.MLScorerConfig, log *logger.Logger) *MLScorerClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &MLScorerClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		highConf: cfg.HighConfidence,
		medConf:  cfg.MediumConfidence,
		logger:   log.WithComponent("ml-scorer"),
	}
}

type predictResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Result  struct {
		IsScam            bool    `json:"is_scam"`
		ScamProbability   float64 `json:"scam_probability"`
		NormalProbability float64 `json:"normal_probability"`
		Confidence        string  `json:"confidence"`
		PredictionLabel   string  `json:"prediction_label"`
		TopScamFactors    []struct {
			Feature           string  `json:"feature"`
			Value             float64 `json:"value"`
			Importance        float64 `json:"importance"`
			ContributionScore float64 `json:"contribution_score"`
		} `json:"top_scam_factors"`
	} `json:"result"`
}

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// Score posts the feature vector to the scoring service. Any failure along
// the way degrades to an unavailable score with the reason recorded.
func (c *MLScorerClient) Score(ctx context.Context, features models.FeatureVector) models.MLScore {
	if c.baseURL == "" {
		return models.UnavailableMLScore("ml scorer not configured")
	}

	if reason := c.checkHealth(ctx); reason != "" {
		c.logger.Warn().Str("reason", reason).Msg("ML scorer unavailable")
		return models.UnavailableMLScore(reason)
	}

	jsonBody, err := json.Marshal(features)
	if err != nil {
		return models.UnavailableMLScore(fmt.Sprintf("failed to marshal features: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(jsonBody))
	if err != nil {
		return models.UnavailableMLScore(fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("ML scorer request failed")
		return models.UnavailableMLScore(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.UnavailableMLScore(fmt.Sprintf("scorer returned status %d", resp.StatusCode))
	}

	var apiResp predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return models.UnavailableMLScore(fmt.Sprintf("failed to decode response: %v", err))
	}
	if !apiResp.Success {
		reason := apiResp.Error
		if reason == "" {
			reason = "prediction failed"
		}
		return models.UnavailableMLScore(reason)
	}

	score := models.MLScore{
		Available:       true,
		ScamProbability: apiResp.Result.ScamProbability,
		IsScam:          apiResp.Result.IsScam,
		Confidence:      c.confidenceBand(apiResp.Result.ScamProbability),
		TopFactors:      topFactors(apiResp),
	}

	c.logger.Debug().
		Float64("scam_probability", score.ScamProbability).
		Str("confidence", string(score.Confidence)).
		Msg("ML scoring completed")

	return score
}

// HealthStatus reports the scorer's current state for readiness checks.
// Unavailability is informational, never a readiness failure.
func (c *MLScorerClient) HealthStatus(ctx context.Context) string {
	if c.baseURL == "" {
		return "not configured"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return "unreachable: " + err.Error()
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "unreachable: " + err.Error()
	}
	defer resp.Body.Close()

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return "unreachable: " + err.Error()
	}
	if !health.ModelLoaded {
		return "model not loaded"
	}
	return "healthy"
}

// checkHealth probes the scorer's health endpoint. Only an explicit
// model_loaded=false short-circuits; probe failures are left to the
// predict call itself.
func (c *MLScorerClient) checkHealth(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return ""
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return ""
	}
	if resp.StatusCode == http.StatusOK && !health.ModelLoaded {
		return "model not loaded"
	}
	return ""
}

// confidenceBand re-derives the confidence tier from the scam probability
// so the thresholds stay under this service's control. A low scam
// probability is a low-confidence signal, not a confident "normal" verdict.
func (c *MLScorerClient) confidenceBand(scamProb float64) models.MLConfidence {
	switch {
	case scamProb >= c.highConf:
		return models.MLConfidenceHigh
	case scamProb >= c.medConf:
		return models.MLConfidenceMedium
	default:
		return models.MLConfidenceLow
	}
}

// topFactors ranks factors by importance weighted by value, dropping
// zero-value features, and keeps the top five.
func topFactors(apiResp predictResponse) []models.MLFactor {
	factors := make([]models.MLFactor, 0, len(apiResp.Result.TopScamFactors))
	for _, f := range apiResp.Result.TopScamFactors {
		if f.Value <= 0 {
			continue
		}
		factors = append(factors, models.MLFactor{
			Feature:    f.Feature,
			Value:      f.Value,
			Importance: f.Importance,
		})
	}
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Importance*factors[i].Value > factors[j].Importance*factors[j].Value
	})
	if len(factors) > 5 {
		factors = factors[:5]
	}
	return factors
}
