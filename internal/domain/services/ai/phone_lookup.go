package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lumosguard/internal/domain/models"
	"lumosguard/pkg/logger"
)

// NumverifyClient validates phone numbers and classifies their line type
// via the Numverify API.
type NumverifyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NumverifyConfig contains configuration for the Numverify client
type NumverifyConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

const defaultNumverifyBaseURL = "http://apilayer.net/api/validate"

// NewNumverifyClient creates a new Numverify lookup client
func NewNumverifyClient(config NumverifyConfig, log *logger.Logger) *NumverifyClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultNumverifyBaseURL
	}

	return &NumverifyClient{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.WithComponent("phone-lookup"),
	}
}

type numverifyResponse struct {
	Valid       bool   `json:"valid"`
	CountryCode string `json:"country_code"`
	Carrier     string `json:"carrier"`
	LineType    string `json:"line_type"`
}

// Lookup validates a phone number and returns carrier and line type info
func (c *NumverifyClient) Lookup(ctx context.Context, number string) (*models.PhoneLookupResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("numverify API key not configured")
	}

	normalized := normalizeNumber(number)
	// Numverify rejects the + prefix
	cleanNumber := strings.TrimPrefix(normalized, "+")

	endpoint := fmt.Sprintf("%s?access_key=%s&number=%s&format=1",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(cleanNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var apiResp numverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	result := &models.PhoneLookupResult{
		Valid:       apiResp.Valid,
		LineType:    mapLineType(apiResp.LineType),
		Carrier:     apiResp.Carrier,
		CountryCode: apiResp.CountryCode,
	}

	c.logger.Debug().
		Str("number", normalized).
		Bool("valid", result.Valid).
		Str("line_type", string(result.LineType)).
		Msg("Phone lookup completed")

	return result, nil
}

// normalizeNumber strips everything except digits and a leading +
func normalizeNumber(number string) string {
	var result strings.Builder
	for i, c := range number {
		if c == '+' && i == 0 {
			result.WriteRune(c)
		} else if c >= '0' && c <= '9' {
			result.WriteRune(c)
		}
	}
	return result.String()
}

func mapLineType(api string) models.LineType {
	switch strings.ToLower(api) {
	case "mobile", "cellular":
		return models.LineTypeMobile
	case "voip":
		return models.LineTypeVoIP
	case "landline", "fixed_line":
		return models.LineTypeLandline
	default:
		return models.LineTypeUnknown
	}
}

// MockPhoneLookupClient is a mock implementation for testing
type MockPhoneLookupClient struct {
	// Map of normalized numbers to their lookup results
	Numbers map[string]*models.PhoneLookupResult
	Err     error
}

// NewMockPhoneLookupClient creates a mock phone lookup client
func NewMockPhoneLookupClient() *MockPhoneLookupClient {
	return &MockPhoneLookupClient{
		Numbers: make(map[string]*models.PhoneLookupResult),
	}
}

// Lookup implements PhoneLookupClient for testing
func (c *MockPhoneLookupClient) Lookup(ctx context.Context, number string) (*models.PhoneLookupResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if result, ok := c.Numbers[normalizeNumber(number)]; ok {
		return result, nil
	}
	return &models.PhoneLookupResult{Valid: false, LineType: models.LineTypeUnknown}, nil
}
