package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lumosguard/internal/domain/models"
	"lumosguard/pkg/logger"
)

// OpenAIClient obtains a semantic scam judgment for a message via the
// OpenAI chat completions API. The model is instructed to answer with a
// strict JSON object; anything that fails validation is reported as an
// error so the caller can degrade the signal.
type OpenAIClient struct {
	httpClient *http.Client
	logger     *logger.Logger
	config     OpenAIConfig
}

// OpenAIConfig holds OpenAI client configuration
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// NewOpenAIClient creates a new OpenAI analysis client
func NewOpenAIClient(cfg OpenAIConfig, log *logger.Logger) *OpenAIClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.2 // low temperature for consistent judgments
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIBaseURL
	}

	return &OpenAIClient{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log.WithComponent("openai-client"),
		config: cfg,
	}
}

const analysisSystemPrompt = `You are an expert scam and fraud detection assistant. You analyze a single
text message and judge whether it is a scam attempt.

Consider urgency tactics, emotional manipulation, impersonation of trusted
organizations, requests for money or personal information, and suspicious
links or callback numbers.

Respond with ONLY a valid JSON object, no prose, with this exact structure:
{
  "is_scam": boolean,
  "confidence": integer 0-100,
  "reason": "one or two sentence explanation",
  "keywords": ["suspicious words or phrases found in the message"],
  "urgency_level": integer 0-10,
  "threat_level": integer 0-10,
  "temptation_level": integer 0-10,
  "impersonation_type": "company" | "bank" | "government" | "courier" | "",
  "action_requested": "click_link" | "reply" | "call_number" | "provide_info" | "",
  "grammar_quality": integer 0-10,
  "emotion_triggers": ["fear", "greed", ...],
  "credibility_score": integer 0-10
}`

// AnalyzeMessage asks the model for a structured scam judgment of the text
func (c *OpenAIClient) AnalyzeMessage(ctx context.Context, text string) (*models.AIAnalysisResult, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("openai API key not configured")
	}

	userPrompt := fmt.Sprintf("Analyze this message:\n```\n%s\n```\nRespond with the JSON object only.", text)

	reqBody := map[string]interface{}{
		"model":       c.config.Model,
		"max_tokens":  c.config.MaxTokens,
		"temperature": c.config.Temperature,
		"messages": []map[string]string{
			{"role": "system", "content": analysisSystemPrompt},
			{"role": "user", "content": userPrompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API error %d: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, err
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	result, err := parseAnalysisResponse(apiResp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Bool("is_scam", result.IsScam).
		Int("confidence", result.Confidence).
		Msg("AI analysis completed")

	return result, nil
}

// parseAnalysisResponse extracts and validates the JSON judgment from the
// model output, tolerating markdown code fences and surrounding prose.
func parseAnalysisResponse(content string) (*models.AIAnalysisResult, error) {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	startIdx := strings.Index(content, "{")
	endIdx := strings.LastIndex(content, "}")
	if startIdx == -1 || endIdx <= startIdx {
		return nil, fmt.Errorf("no JSON object in response")
	}
	content = content[startIdx : endIdx+1]

	var result models.AIAnalysisResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if err := validateAnalysis(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func validateAnalysis(r *models.AIAnalysisResult) error {
	if r.Confidence < 0 || r.Confidence > 100 {
		return fmt.Errorf("confidence %d out of range", r.Confidence)
	}
	for name, v := range map[string]int{
		"urgency_level":     r.UrgencyLevel,
		"threat_level":      r.ThreatLevel,
		"temptation_level":  r.TemptationLevel,
		"grammar_quality":   r.GrammarQuality,
		"credibility_score": r.CredibilityScore,
	} {
		if v < 0 || v > 10 {
			return fmt.Errorf("%s %d out of range", name, v)
		}
	}
	return nil
}

// MockMessageAnalysisClient is a mock implementation for testing
type MockMessageAnalysisClient struct {
	Result *models.AIAnalysisResult
	Err    error
}

// AnalyzeMessage implements MessageAnalysisClient for testing
func (c *MockMessageAnalysisClient) AnalyzeMessage(ctx context.Context, text string) (*models.AIAnalysisResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if c.Result != nil {
		return c.Result, nil
	}
	return &models.AIAnalysisResult{IsScam: false, Confidence: 0}, nil
}
