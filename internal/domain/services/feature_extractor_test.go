package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lumosguard/internal/domain/models"
	"lumosguard/internal/domain/services"
)

func TestFeatureExtractor_TextFeatures(t *testing.T) {
	extractor := services.NewFeatureExtractor()

	raw := "URGENT! You won a prize! Claim now!!"
	parsed := services.NewMessageParser().Parse(raw)
	fv := extractor.Extract(raw, parsed, nil, nil, nil)

	assert.Equal(t, 36, fv.MessageLength)
	assert.Equal(t, 7, fv.WordCount)
	assert.Equal(t, 4, fv.ExclamationCount)
	assert.Equal(t, 1, fv.ContainsUrgentWords)
	assert.Equal(t, 1, fv.ContainsMoneyWords)
	assert.Equal(t, 3, fv.CapitalizedWordCount)
	assert.Greater(t, fv.UppercaseRatio, 0.0)
	assert.Equal(t, 0.0, fv.DigitRatio)
}

func TestFeatureExtractor_UppercaseRatioOverLetters(t *testing.T) {
	extractor := services.NewFeatureExtractor()
	parser := services.NewMessageParser()

	// digits and spaces don't dilute the ratio
	fv := extractor.Extract("AB12", parser.Parse("AB12"), nil, nil, nil)
	assert.Equal(t, 1.0, fv.UppercaseRatio)
	assert.Equal(t, 0.5, fv.DigitRatio)

	fv = extractor.Extract("Hi 12345678901234567890", parser.Parse("Hi 12345678901234567890"), nil, nil, nil)
	assert.Equal(t, 0.5, fv.UppercaseRatio)

	// no letters at all
	fv = extractor.Extract("1234 5678!", parser.Parse("1234 5678!"), nil, nil, nil)
	assert.Equal(t, 0.0, fv.UppercaseRatio)
}

func TestFeatureExtractor_Deterministic(t *testing.T) {
	extractor := services.NewFeatureExtractor()

	raw := "Verify your account at http://secure-login.example.xyz/a/b?id=1 or call +1-555-234-9876"
	parsed := services.NewMessageParser().Parse(raw)

	first := extractor.Extract(raw, parsed, nil, nil, nil)
	second := extractor.Extract(raw, parsed, nil, nil, nil)
	assert.Equal(t, first, second)
}

func TestFeatureExtractor_URLFeatures(t *testing.T) {
	extractor := services.NewFeatureExtractor()

	fv := extractor.Extract("x", models.ParsedMessage{URL: "http://a.b.secure.example.xyz/path/to/page?id=1&ref=2"}, nil, nil, nil)

	assert.Equal(t, 1, fv.HasURL)
	assert.Equal(t, 53, fv.URLLength)
	assert.Equal(t, 1, fv.HasSuspiciousTLD)
	assert.Equal(t, 0, fv.HasIPAddress)
	assert.Equal(t, 0, fv.HasURLShortener)
	assert.Equal(t, 3, fv.URLPathDepth)
	assert.Equal(t, 3, fv.SubdomainCount)
	assert.Equal(t, 2, fv.URLQueryParamCount)
}

func TestFeatureExtractor_URLShortenerAndIP(t *testing.T) {
	extractor := services.NewFeatureExtractor()

	fv := extractor.Extract("x", models.ParsedMessage{URL: "https://bit.ly/abc"}, nil, nil, nil)
	assert.Equal(t, 1, fv.HasURLShortener)

	fv = extractor.Extract("x", models.ParsedMessage{URL: "http://192.168.4.1/login"}, nil, nil, nil)
	assert.Equal(t, 1, fv.HasIPAddress)
}

func TestFeatureExtractor_WWWPrefixParsed(t *testing.T) {
	extractor := services.NewFeatureExtractor()

	fv := extractor.Extract("x", models.ParsedMessage{URL: "www.example.com/a"}, nil, nil, nil)
	assert.Equal(t, 1, fv.HasURL)
	assert.Equal(t, 1, fv.URLPathDepth)
	assert.Equal(t, 1, fv.SubdomainCount)
}

func TestFeatureExtractor_MalformedURLDegrades(t *testing.T) {
	extractor := services.NewFeatureExtractor()

	fv := extractor.Extract("x", models.ParsedMessage{URL: "http://%zz"}, nil, nil, nil)
	assert.Equal(t, 1, fv.HasURL)
	assert.Equal(t, 10, fv.URLLength)
	assert.Equal(t, 0, fv.URLPathDepth)
	assert.Equal(t, 0, fv.HasSuspiciousTLD)
}

func TestFeatureExtractor_PhoneFeatures(t *testing.T) {
	extractor := services.NewFeatureExtractor()

	phoneRes := &models.PhoneLookupResult{Valid: true, LineType: models.LineTypeVoIP}
	fv := extractor.Extract("x", models.ParsedMessage{Phone: "+1-555-234-9876"}, nil, phoneRes, nil)

	assert.Equal(t, 1, fv.HasPhone)
	assert.Equal(t, 11, fv.PhoneLength)
	assert.Equal(t, 1, fv.PhoneValid)
	assert.Equal(t, 1, fv.IsVoIP)
	assert.Equal(t, 0, fv.IsMobile)
	assert.Equal(t, 1, fv.PhoneHasCountryCode)
}

func TestFeatureExtractor_PhoneAbsent(t *testing.T) {
	extractor := services.NewFeatureExtractor()

	fv := extractor.Extract("x", models.ParsedMessage{}, nil, nil, nil)
	assert.Equal(t, 0, fv.HasPhone)
	assert.Equal(t, 0, fv.PhoneLength)
	assert.Equal(t, 0, fv.PhoneValid)
}

func TestFeatureExtractor_AIFeatures(t *testing.T) {
	extractor := services.NewFeatureExtractor()

	aiRes := &models.AIAnalysisResult{
		IsScam:            true,
		Confidence:        90,
		Reason:            "urgent demand",
		Keywords:          []string{"urgent", "verify"},
		UrgencyLevel:      9,
		ThreatLevel:       7,
		TemptationLevel:   2,
		ImpersonationType: models.ImpersonationBank,
		ActionRequested:   models.ActionClickLink,
		GrammarQuality:    4,
		EmotionTriggers:   []string{"fear", "authority"},
		CredibilityScore:  2,
	}
	fv := extractor.Extract("x", models.ParsedMessage{}, nil, nil, aiRes)

	assert.Equal(t, 1, fv.AIIsScam)
	assert.Equal(t, 90, fv.AIConfidence)
	assert.Equal(t, 9, fv.AIUrgencyLevel)
	assert.Equal(t, 2, fv.AIKeywordCount)
	assert.Equal(t, 13, fv.AIReasonLength)
	assert.Equal(t, "bank", fv.AIImpersonationType)
	assert.Equal(t, "click_link", fv.AIActionRequested)
	assert.Equal(t, "fear,authority", fv.AIEmotionTriggers)
}

func TestFeatureExtractor_AIFailedUsesNeutralDefaults(t *testing.T) {
	extractor := services.NewFeatureExtractor()

	failed := models.FailedAIAnalysis("timeout")
	fv := extractor.Extract("x", models.ParsedMessage{}, nil, nil, failed)

	assert.Equal(t, 0, fv.AIIsScam)
	assert.Equal(t, 0, fv.AIConfidence)
	assert.Equal(t, 5, fv.AIUrgencyLevel)
	assert.Equal(t, 5, fv.AIThreatLevel)
	assert.Equal(t, 5, fv.AIGrammarQuality)
	assert.Equal(t, 5, fv.AICredibilityScore)
	assert.Equal(t, "", fv.AIImpersonationType)
}

func TestFeatureExtractor_Entropy(t *testing.T) {
	extractor := services.NewFeatureExtractor()

	// uniform two-symbol string has exactly 1 bit of entropy
	fv := extractor.Extract("abab", models.ParsedMessage{}, nil, nil, nil)
	assert.Equal(t, 1.0, fv.TextEntropy)

	fv = extractor.Extract("aaaa", models.ParsedMessage{}, nil, nil, nil)
	assert.Equal(t, 0.0, fv.TextEntropy)

	fv = extractor.Extract("", models.ParsedMessage{}, nil, nil, nil)
	assert.Equal(t, 0.0, fv.TextEntropy)
}

func TestFeatureExtractor_ReadabilityAndComplexity(t *testing.T) {
	extractor := services.NewFeatureExtractor()

	// two sentences, one with a long word
	raw := "This has extraordinarily long words. Short one here."
	fv := extractor.Extract(raw, models.ParsedMessage{}, nil, nil, nil)

	assert.Equal(t, 0.5, fv.SentenceComplexity)
	assert.Greater(t, fv.ReadabilityScore, 0.0)
	assert.LessOrEqual(t, fv.ReadabilityScore, 100.0)
}

func TestFeatureExtractor_URLUnsafeFlag(t *testing.T) {
	extractor := services.NewFeatureExtractor()

	urlRes := &models.URLSafetyResult{IsSafe: false, ThreatType: models.ThreatTypeMalware}
	fv := extractor.Extract("x", models.ParsedMessage{URL: "http://bad.example"}, urlRes, nil, nil)
	assert.Equal(t, 1, fv.URLFlaggedUnsafe)

	fv = extractor.Extract("x", models.ParsedMessage{URL: "http://ok.example"}, &models.URLSafetyResult{IsSafe: true}, nil, nil)
	assert.Equal(t, 0, fv.URLFlaggedUnsafe)
}
