package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumosguard/internal/domain/models"
	"lumosguard/internal/domain/services"
	"lumosguard/internal/domain/services/ai"
	"lumosguard/pkg/logger"
)

type countingURLClient struct {
	inner services.URLSafetyClient
	calls atomic.Int32
}

func (c *countingURLClient) CheckURL(ctx context.Context, rawURL string) (*models.URLSafetyResult, error) {
	c.calls.Add(1)
	return c.inner.CheckURL(ctx, rawURL)
}

type slowAIClient struct {
	delay  time.Duration
	result *models.AIAnalysisResult
}

func (c *slowAIClient) AnalyzeMessage(ctx context.Context, text string) (*models.AIAnalysisResult, error) {
	select {
	case <-time.After(c.delay):
		return c.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestSignalCollector_AllSignals(t *testing.T) {
	urls := services.NewMockURLSafetyClient()
	phones := ai.NewMockPhoneLookupClient()
	phones.Numbers["+15552349876"] = &models.PhoneLookupResult{Valid: true, LineType: models.LineTypeMobile, Carrier: "Verizon"}
	llm := &ai.MockMessageAnalysisClient{Result: &models.AIAnalysisResult{IsScam: true, Confidence: 85}}

	collector := services.NewSignalCollector(urls, phones, llm, time.Second, logger.Nop())

	signals := collector.Collect(context.Background(), models.ParsedMessage{
		URL:     "http://phishing.testing.google.test/testing/phishing/",
		Phone:   "+1-555-234-9876",
		Content: "your account is locked",
	})

	require.NotNil(t, signals.URL)
	assert.False(t, signals.URL.IsSafe)
	assert.Equal(t, models.ThreatTypeSocialEngineering, signals.URL.ThreatType)

	require.NotNil(t, signals.Phone)
	assert.True(t, signals.Phone.Valid)
	assert.Equal(t, models.LineTypeMobile, signals.Phone.LineType)

	require.NotNil(t, signals.AI)
	assert.True(t, signals.AI.IsScam)
	assert.Equal(t, 85, signals.AI.Confidence)
}

func TestSignalCollector_SkipsAbsentURLAndPhone(t *testing.T) {
	urls := &countingURLClient{inner: services.NewMockURLSafetyClient()}
	phones := ai.NewMockPhoneLookupClient()
	llm := &ai.MockMessageAnalysisClient{}

	collector := services.NewSignalCollector(urls, phones, llm, time.Second, logger.Nop())

	signals := collector.Collect(context.Background(), models.ParsedMessage{Content: "plain text only"})

	assert.Nil(t, signals.URL)
	assert.Nil(t, signals.Phone)
	require.NotNil(t, signals.AI)
	assert.Equal(t, int32(0), urls.calls.Load())
}

func TestSignalCollector_URLFailureIsFailOpen(t *testing.T) {
	urls := services.NewMockURLSafetyClient()
	urls.Err = errors.New("connection refused")
	phones := ai.NewMockPhoneLookupClient()
	llm := &ai.MockMessageAnalysisClient{}

	collector := services.NewSignalCollector(urls, phones, llm, time.Second, logger.Nop())

	signals := collector.Collect(context.Background(), models.ParsedMessage{
		URL:     "http://example.com",
		Content: "check this out",
	})

	require.NotNil(t, signals.URL)
	assert.True(t, signals.URL.IsSafe)
	assert.Contains(t, signals.URL.Error, "connection refused")
}

func TestSignalCollector_PhoneFailureIsUnverifiable(t *testing.T) {
	urls := services.NewMockURLSafetyClient()
	phones := ai.NewMockPhoneLookupClient()
	phones.Err = errors.New("quota exceeded")
	llm := &ai.MockMessageAnalysisClient{}

	collector := services.NewSignalCollector(urls, phones, llm, time.Second, logger.Nop())

	signals := collector.Collect(context.Background(), models.ParsedMessage{
		Phone:   "0912345678",
		Content: "call me",
	})

	require.NotNil(t, signals.Phone)
	assert.False(t, signals.Phone.Valid)
	assert.Contains(t, signals.Phone.Error, "quota exceeded")
}

func TestSignalCollector_AIFailureDegrades(t *testing.T) {
	urls := services.NewMockURLSafetyClient()
	phones := ai.NewMockPhoneLookupClient()
	llm := &ai.MockMessageAnalysisClient{Err: errors.New("model overloaded")}

	collector := services.NewSignalCollector(urls, phones, llm, time.Second, logger.Nop())

	signals := collector.Collect(context.Background(), models.ParsedMessage{Content: "hello"})

	require.NotNil(t, signals.AI)
	assert.False(t, signals.AI.IsScam)
	assert.Equal(t, 0, signals.AI.Confidence)
	assert.Contains(t, signals.AI.Error, "model overloaded")
}

func TestSignalCollector_TimeoutDegradesSlowProvider(t *testing.T) {
	urls := services.NewMockURLSafetyClient()
	phones := ai.NewMockPhoneLookupClient()
	llm := &slowAIClient{delay: 500 * time.Millisecond, result: &models.AIAnalysisResult{IsScam: true, Confidence: 99}}

	collector := services.NewSignalCollector(urls, phones, llm, 20*time.Millisecond, logger.Nop())

	start := time.Now()
	signals := collector.Collect(context.Background(), models.ParsedMessage{Content: "slow"})

	assert.Less(t, time.Since(start), 400*time.Millisecond)
	require.NotNil(t, signals.AI)
	assert.False(t, signals.AI.IsScam)
	assert.NotEmpty(t, signals.AI.Error)
}
