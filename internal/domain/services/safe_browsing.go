package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"lumosguard/internal/domain/models"
	"lumosguard/pkg/logger"
)

// GoogleSafeBrowsingClient checks URLs against the Google Safe Browsing API
type GoogleSafeBrowsingClient struct {
	apiKey     string
	httpClient *http.Client
	logger     *logger.Logger
}

// SafeBrowsingConfig holds configuration for Google Safe Browsing
type SafeBrowsingConfig struct {
	APIKey  string
	Timeout time.Duration
}

// NewGoogleSafeBrowsingClient creates a new Google Safe Browsing client
func NewGoogleSafeBrowsingClient(config SafeBrowsingConfig, log *logger.Logger) *GoogleSafeBrowsingClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &GoogleSafeBrowsingClient{
		apiKey: config.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.WithComponent("safe-browsing"),
	}
}

// CheckURL checks a single URL against the Safe Browsing threat lists.
// A URL with no match is considered safe.
func (c *GoogleSafeBrowsingClient) CheckURL(ctx context.Context, rawURL string) (*models.URLSafetyResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("safe browsing API key not configured")
	}

	reqBody := safeBrowsingRequest{
		Client: safeBrowsingClient{
			ClientID:      "lumosguard",
			ClientVersion: "1.0.0",
		},
		ThreatInfo: threatInfo{
			ThreatTypes:      []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION"},
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries:    []threatEntry{{URL: rawURL}},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("https://safebrowsing.googleapis.com/v4/threatMatches:find?key=%s", c.apiKey),
		bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var apiResp safeBrowsingResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	result := &models.URLSafetyResult{IsSafe: true}
	if len(apiResp.Matches) > 0 {
		result.IsSafe = false
		result.ThreatType = mapThreatType(apiResp.Matches[0].ThreatType)
	}

	c.logger.Debug().
		Str("url", rawURL).
		Bool("is_safe", result.IsSafe).
		Msg("Safe Browsing check completed")

	return result, nil
}

func mapThreatType(api string) models.ThreatType {
	switch api {
	case "MALWARE":
		return models.ThreatTypeMalware
	case "SOCIAL_ENGINEERING":
		return models.ThreatTypeSocialEngineering
	case "UNWANTED_SOFTWARE":
		return models.ThreatTypeUnwantedSoftware
	case "POTENTIALLY_HARMFUL_APPLICATION":
		return models.ThreatTypePHA
	default:
		return models.ThreatType(api)
	}
}

// API request/response types
type safeBrowsingRequest struct {
	Client     safeBrowsingClient `json:"client"`
	ThreatInfo threatInfo         `json:"threatInfo"`
}

type safeBrowsingClient struct {
	ClientID      string `json:"clientId"`
	ClientVersion string `json:"clientVersion"`
}

type threatInfo struct {
	ThreatTypes      []string      `json:"threatTypes"`
	PlatformTypes    []string      `json:"platformTypes"`
	ThreatEntryTypes []string      `json:"threatEntryTypes"`
	ThreatEntries    []threatEntry `json:"threatEntries"`
}

type threatEntry struct {
	URL string `json:"url"`
}

type safeBrowsingResponse struct {
	Matches []threatMatch `json:"matches"`
}

type threatMatch struct {
	ThreatType   string      `json:"threatType"`
	PlatformType string      `json:"platformType"`
	Threat       threatEntry `json:"threat"`
}

// MockURLSafetyClient is a mock implementation for testing
type MockURLSafetyClient struct {
	// Map of URLs to their threat type
	ThreatURLs map[string]models.ThreatType
	Err        error
}

// NewMockURLSafetyClient creates a mock URL safety client
func NewMockURLSafetyClient() *MockURLSafetyClient {
	return &MockURLSafetyClient{
		ThreatURLs: map[string]models.ThreatType{
			"http://malware.testing.google.test/testing/malware/":   models.ThreatTypeMalware,
			"http://phishing.testing.google.test/testing/phishing/": models.ThreatTypeSocialEngineering,
		},
	}
}

// CheckURL implements URLSafetyClient for testing
func (c *MockURLSafetyClient) CheckURL(ctx context.Context, rawURL string) (*models.URLSafetyResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if threat, ok := c.ThreatURLs[rawURL]; ok {
		return &models.URLSafetyResult{IsSafe: false, ThreatType: threat}, nil
	}
	return &models.URLSafetyResult{IsSafe: true}, nil
}
