package ai_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumosguard/internal/domain/models"
	"lumosguard/internal/domain/services/ai"
	"lumosguard/pkg/logger"
)

func TestOpenAIClient_AnalyzeMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"content": "{\"is_scam\": true, \"confidence\": 92, \"reason\": \"Urgent payment demand with link\", \"keywords\": [\"urgent\", \"pay now\"], \"urgency_level\": 9, \"threat_level\": 7, \"temptation_level\": 3, \"impersonation_type\": \"courier\", \"action_requested\": \"click_link\", \"grammar_quality\": 4, \"emotion_triggers\": [\"fear\"], \"credibility_score\": 2}"}}]
		}`))
	}))
	defer server.Close()

	client := ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	}, logger.Nop())

	result, err := client.AnalyzeMessage(context.Background(), "URGENT: your parcel is held, pay now")
	require.NoError(t, err)

	assert.True(t, result.IsScam)
	assert.Equal(t, 92, result.Confidence)
	assert.Equal(t, models.ImpersonationCourier, result.ImpersonationType)
	assert.Equal(t, models.ActionClickLink, result.ActionRequested)
	assert.Equal(t, []string{"urgent", "pay now"}, result.Keywords)
	assert.Equal(t, 9, result.UrgencyLevel)
}

func TestOpenAIClient_MarkdownFencedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"choices": [{"message": {"content": "Here is the analysis:\n` + "```json" + `\n{\"is_scam\": false, \"confidence\": 12, \"reason\": \"Ordinary personal message\", \"keywords\": [], \"urgency_level\": 1, \"threat_level\": 0, \"temptation_level\": 0, \"grammar_quality\": 8, \"emotion_triggers\": [], \"credibility_score\": 8}\n` + "```" + `"}}]
		}`))
	}))
	defer server.Close()

	client := ai.NewOpenAIClient(ai.OpenAIConfig{APIKey: "k", BaseURL: server.URL}, logger.Nop())

	result, err := client.AnalyzeMessage(context.Background(), "see you at 6")
	require.NoError(t, err)
	assert.False(t, result.IsScam)
	assert.Equal(t, 12, result.Confidence)
}

func TestOpenAIClient_RejectsOutOfRangeFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"choices": [{"message": {"content": "{\"is_scam\": true, \"confidence\": 140, \"urgency_level\": 5}"}}]
		}`))
	}))
	defer server.Close()

	client := ai.NewOpenAIClient(ai.OpenAIConfig{APIKey: "k", BaseURL: server.URL}, logger.Nop())

	_, err := client.AnalyzeMessage(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestOpenAIClient_NonJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"content": "I cannot determine that."}}]}`))
	}))
	defer server.Close()

	client := ai.NewOpenAIClient(ai.OpenAIConfig{APIKey: "k", BaseURL: server.URL}, logger.Nop())

	_, err := client.AnalyzeMessage(context.Background(), "hi")
	require.Error(t, err)
}

func TestOpenAIClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := ai.NewOpenAIClient(ai.OpenAIConfig{APIKey: "k", BaseURL: server.URL}, logger.Nop())

	_, err := client.AnalyzeMessage(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIClient_NoAPIKey(t *testing.T) {
	client := ai.NewOpenAIClient(ai.OpenAIConfig{}, logger.Nop())

	_, err := client.AnalyzeMessage(context.Background(), "hi")
	require.Error(t, err)
}
