package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumosguard/internal/api/handlers"
	"lumosguard/internal/config"
	"lumosguard/internal/domain/models"
	"lumosguard/internal/domain/services"
	"lumosguard/internal/domain/services/ai"
	"lumosguard/pkg/logger"
)

type unavailableScorer struct{}

func (unavailableScorer) Score(ctx context.Context, features models.FeatureVector) models.MLScore {
	return models.UnavailableMLScore("not configured")
}

func newTestHandler(llm services.MessageAnalysisClient) *handlers.MessagesHandler {
	log := logger.Nop()
	collector := services.NewSignalCollector(services.NewMockURLSafetyClient(), ai.NewMockPhoneLookupClient(), llm, time.Second, log)
	engine := services.NewAnalysisEngine(
		services.NewMessageParser(),
		collector,
		services.NewFeatureExtractor(),
		unavailableScorer{},
		services.NewRiskAggregator(config.DefaultScoring(), log),
		nil,
		nil,
		time.Minute,
		log,
	)
	return handlers.NewMessagesHandler(engine, nil, log)
}

func TestMessagesHandler_Analyze(t *testing.T) {
	llm := &ai.MockMessageAnalysisClient{Result: &models.AIAnalysisResult{
		IsScam: true, Confidence: 95, Reason: "prize scam", Keywords: []string{"won", "claim"},
	}}
	handler := newTestHandler(llm)

	body := strings.NewReader(`{"message": "You won! Claim your prize now"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages/analyze", body)
	rec := httptest.NewRecorder()

	handler.Analyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var assessment models.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assessment))

	// fallback table: 95 * 0.99 = 94.05 -> 94
	assert.Equal(t, 94, assessment.RiskScore)
	assert.Equal(t, models.RiskLevelRed, assessment.RiskLevel)
	assert.NotEmpty(t, assessment.Evidence)
}

func TestMessagesHandler_EmptyMessage(t *testing.T) {
	handler := newTestHandler(&ai.MockMessageAnalysisClient{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages/analyze", strings.NewReader(`{"message": "  "}`))
	rec := httptest.NewRecorder()

	handler.Analyze(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessagesHandler_InvalidBody(t *testing.T) {
	handler := newTestHandler(&ai.MockMessageAnalysisClient{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages/analyze", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	handler.Analyze(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessagesHandler_ListRecentWithoutHistory(t *testing.T) {
	handler := newTestHandler(&ai.MockMessageAnalysisClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assessments/recent", nil)
	rec := httptest.NewRecorder()

	handler.ListRecent(rec, req)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
