package services

import (
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"lumosguard/internal/domain/models"
)

// FeatureExtractor turns a message and its collected signals into the
// fixed-width vector consumed by the ML scorer. Extraction is a pure
// function: the same inputs always yield the same vector, absent inputs
// map to neutral defaults and it never fails.
type FeatureExtractor struct {
	ipHostPattern *regexp.Regexp
}

// NewFeatureExtractor creates a new feature extractor
func NewFeatureExtractor() *FeatureExtractor {
	return &FeatureExtractor{
		ipHostPattern: regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`),
	}
}

var urgentWords = []string{
	"urgent", "immediately", "now", "asap", "expire", "today only",
	"limited time", "act now", "don't wait", "hurry", "final notice", "suspended",
}

var moneyWords = []string{
	"won", "winner", "prize", "gift", "free", "reward", "cash", "money",
	"bonus", "lucky", "refund", "payment", "transfer", "invoice",
}

var linkWords = []string{
	"click", "link", "visit", "http", "www", "login", "verify",
}

var suspiciousTLDs = []string{
	".xyz", ".top", ".club", ".work", ".click", ".link", ".gq", ".ml", ".cf", ".tk", ".ga",
}

var urlShorteners = map[string]bool{
	"bit.ly": true, "tinyurl.com": true, "t.co": true, "goo.gl": true,
	"ow.ly": true, "is.gd": true, "buff.ly": true, "adf.ly": true,
	"j.mp": true, "rb.gy": true, "cutt.ly": true, "short.io": true,
	"rebrand.ly": true, "bl.ink": true, "soo.gd": true, "s.id": true,
	"clk.sh": true, "shorturl.at": true, "tiny.cc": true, "bc.vc": true,
}

// Extract builds the feature vector from the raw message, its parsed form
// and the settled provider signals. Signal arguments may be nil.
func (e *FeatureExtractor) Extract(raw string, parsed models.ParsedMessage, urlRes *models.URLSafetyResult, phoneRes *models.PhoneLookupResult, aiRes *models.AIAnalysisResult) models.FeatureVector {
	var fv models.FeatureVector

	e.extractTextFeatures(raw, &fv)
	e.extractURLFeatures(parsed.URL, &fv)
	e.extractPhoneFeatures(parsed.Phone, phoneRes, &fv)
	e.extractAIFeatures(aiRes, &fv)
	e.extractStatisticalFeatures(raw, &fv)

	if urlRes != nil && !urlRes.IsSafe {
		fv.URLFlaggedUnsafe = 1
	}

	return fv
}

func (e *FeatureExtractor) extractTextFeatures(raw string, fv *models.FeatureVector) {
	runes := []rune(raw)
	fv.MessageLength = len(runes)

	words := strings.Fields(raw)
	fv.WordCount = len(words)

	if len(words) > 0 {
		unique := make(map[string]struct{}, len(words))
		totalLen := 0
		for _, w := range words {
			unique[strings.ToLower(w)] = struct{}{}
			totalLen += len([]rune(w))

			first := []rune(w)[0]
			if unicode.IsUpper(first) {
				fv.CapitalizedWordCount++
			}
		}
		fv.UniqueWordRatio = round3(float64(len(unique)) / float64(len(words)))
		fv.AvgWordLength = round3(float64(totalLen) / float64(len(words)))
	}

	digits, letters, uppers, puncts := 0, 0, 0, 0
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
		if unicode.IsPunct(r) {
			puncts++
		}
		if unicode.IsSymbol(r) {
			fv.SpecialCharCount++
		}
		switch r {
		case '!':
			fv.ExclamationCount++
		case '?':
			fv.QuestionMarkCount++
		}
	}
	if len(runes) > 0 {
		fv.DigitRatio = round3(float64(digits) / float64(len(runes)))
		fv.PunctuationRatio = round3(float64(puncts) / float64(len(runes)))
	}
	// uppercase ratio is over letters only, 0 when there are none
	if letters > 0 {
		fv.UppercaseRatio = round3(float64(uppers) / float64(letters))
	}

	lower := strings.ToLower(raw)
	fv.ContainsUrgentWords = containsAny(lower, urgentWords)
	fv.ContainsMoneyWords = containsAny(lower, moneyWords)
	fv.ContainsLinkText = containsAny(lower, linkWords)
}

func (e *FeatureExtractor) extractURLFeatures(rawURL string, fv *models.FeatureVector) {
	if rawURL == "" {
		return
	}
	fv.HasURL = 1
	fv.URLLength = len(rawURL)

	normalized := rawURL
	if strings.HasPrefix(normalized, "www.") {
		normalized = "https://" + normalized
	}
	parsed, err := url.Parse(normalized)
	if err != nil || parsed.Host == "" {
		// malformed URL, keep presence and length only
		return
	}

	host := strings.ToLower(parsed.Hostname())

	for _, tld := range suspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			fv.HasSuspiciousTLD = 1
			break
		}
	}

	if e.ipHostPattern.MatchString(host) {
		fv.HasIPAddress = 1
	}

	if urlShorteners[host] {
		fv.HasURLShortener = 1
	}

	for _, seg := range strings.Split(parsed.Path, "/") {
		if seg != "" {
			fv.URLPathDepth++
		}
	}

	if parts := strings.Split(host, "."); len(parts) > 2 {
		fv.SubdomainCount = len(parts) - 2
	}

	for _, vals := range parsed.Query() {
		fv.URLQueryParamCount += len(vals)
	}
}

func (e *FeatureExtractor) extractPhoneFeatures(phone string, phoneRes *models.PhoneLookupResult, fv *models.FeatureVector) {
	if phone == "" {
		return
	}
	fv.HasPhone = 1
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			fv.PhoneLength++
		}
	}
	if strings.HasPrefix(phone, "+") {
		fv.PhoneHasCountryCode = 1
	}

	if phoneRes == nil {
		return
	}
	if phoneRes.Valid {
		fv.PhoneValid = 1
	}
	switch phoneRes.LineType {
	case models.LineTypeVoIP:
		fv.IsVoIP = 1
	case models.LineTypeMobile:
		fv.IsMobile = 1
	case models.LineTypeLandline:
		fv.IsLandline = 1
	}
}

func (e *FeatureExtractor) extractAIFeatures(aiRes *models.AIAnalysisResult, fv *models.FeatureVector) {
	if aiRes == nil || aiRes.Error != "" {
		// no usable judgment, scale fields sit at mid-scale
		fv.AIUrgencyLevel = 5
		fv.AIThreatLevel = 5
		fv.AITemptationLevel = 5
		fv.AIGrammarQuality = 5
		fv.AICredibilityScore = 5
		return
	}

	if aiRes.IsScam {
		fv.AIIsScam = 1
	}
	fv.AIConfidence = aiRes.Confidence
	fv.AIUrgencyLevel = aiRes.UrgencyLevel
	fv.AIThreatLevel = aiRes.ThreatLevel
	fv.AITemptationLevel = aiRes.TemptationLevel
	fv.AIGrammarQuality = aiRes.GrammarQuality
	fv.AICredibilityScore = aiRes.CredibilityScore
	fv.AIKeywordCount = len(aiRes.Keywords)
	fv.AIReasonLength = len([]rune(aiRes.Reason))
	fv.AIImpersonationType = string(aiRes.ImpersonationType)
	fv.AIActionRequested = string(aiRes.ActionRequested)
	fv.AIEmotionTriggers = strings.Join(aiRes.EmotionTriggers, ",")
}

func (e *FeatureExtractor) extractStatisticalFeatures(raw string, fv *models.FeatureVector) {
	fv.TextEntropy = round3(shannonEntropy(raw))

	words := strings.Fields(raw)
	sentences := splitSentences(raw)

	if len(words) > 0 {
		sentenceCount := len(sentences)
		if sentenceCount == 0 {
			sentenceCount = 1
		}
		totalLen := 0
		for _, w := range words {
			totalLen += len([]rune(w))
		}
		avgWordLen := float64(totalLen) / float64(len(words))
		readability := 0.5*(float64(len(words))/float64(sentenceCount)) + 2*avgWordLen
		if readability > 100 {
			readability = 100
		}
		fv.ReadabilityScore = round2(readability)
	}

	if len(sentences) > 0 {
		complex := 0
		for _, s := range sentences {
			if isComplexSentence(s) {
				complex++
			}
		}
		fv.SentenceComplexity = round2(float64(complex) / float64(len(sentences)))
	}
}

// shannonEntropy computes entropy in bits over the rune distribution
func shannonEntropy(s string) float64 {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0
	}
	freq := make(map[rune]int, len(runes))
	for _, r := range runes {
		freq[r]++
	}
	total := float64(len(runes))
	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func splitSentences(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			sentences = append(sentences, strings.TrimSpace(p))
		}
	}
	return sentences
}

// isComplexSentence reports whether a sentence has a word longer than 10
// characters or more than two comma/semicolon separators
func isComplexSentence(s string) bool {
	for _, w := range strings.Fields(s) {
		if len([]rune(w)) > 10 {
			return true
		}
	}
	separators := strings.Count(s, ",") + strings.Count(s, ";")
	return separators > 2
}

func containsAny(lower string, words []string) int {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return 1
		}
	}
	return 0
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
