package models

// ParsedMessage is the normalized form of an incoming message. URL and Phone
// hold the first match found in reading order (empty when none matched);
// Content is the raw text with every URL and phone match stripped. Created
// once per request and never mutated.
type ParsedMessage struct {
	URL     string `json:"url,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Content string `json:"content"`
}

// ThreatType is a Safe Browsing threat classification
type ThreatType string

const (
	ThreatTypeMalware           ThreatType = "MALWARE"
	ThreatTypeSocialEngineering ThreatType = "SOCIAL_ENGINEERING"
	ThreatTypeUnwantedSoftware  ThreatType = "UNWANTED_SOFTWARE"
	ThreatTypePHA               ThreatType = "POTENTIALLY_HARMFUL_APPLICATION"
)

// URLSafetyResult is the URL reputation signal. A failed check is fail-open:
// IsSafe stays true and Error carries the reason.
type URLSafetyResult struct {
	IsSafe     bool       `json:"is_safe"`
	ThreatType ThreatType `json:"threat_type,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// LineType classifies a phone line
type LineType string

const (
	LineTypeMobile   LineType = "mobile"
	LineTypeVoIP     LineType = "voip"
	LineTypeLandline LineType = "landline"
	LineTypeUnknown  LineType = "unknown"
)

// PhoneLookupResult is the phone-line classification signal. A failed lookup
// leaves Valid false with Error set, so the number counts as unverifiable.
type PhoneLookupResult struct {
	Valid       bool     `json:"valid"`
	LineType    LineType `json:"line_type,omitempty"`
	Carrier     string   `json:"carrier,omitempty"`
	CountryCode string   `json:"country_code,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// ImpersonationType is who the message pretends to be from
type ImpersonationType string

const (
	ImpersonationCompany    ImpersonationType = "company"
	ImpersonationBank       ImpersonationType = "bank"
	ImpersonationGovernment ImpersonationType = "government"
	ImpersonationCourier    ImpersonationType = "courier"
)

// ActionRequested is what the message asks the recipient to do
type ActionRequested string

const (
	ActionClickLink   ActionRequested = "click_link"
	ActionReply       ActionRequested = "reply"
	ActionCallNumber  ActionRequested = "call_number"
	ActionProvideInfo ActionRequested = "provide_info"
)

// AIAnalysisResult is the semantic judgment signal. Scale fields run 0-10,
// Confidence 0-100. A failed call degrades to IsScam=false, Confidence=0
// with Error set.
type AIAnalysisResult struct {
	IsScam            bool              `json:"is_scam"`
	Confidence        int               `json:"confidence"`
	Reason            string            `json:"reason"`
	Keywords          []string          `json:"keywords"`
	UrgencyLevel      int               `json:"urgency_level"`
	ThreatLevel       int               `json:"threat_level"`
	TemptationLevel   int               `json:"temptation_level"`
	ImpersonationType ImpersonationType `json:"impersonation_type,omitempty"`
	ActionRequested   ActionRequested   `json:"action_requested,omitempty"`
	GrammarQuality    int               `json:"grammar_quality"`
	EmotionTriggers   []string          `json:"emotion_triggers"`
	CredibilityScore  int               `json:"credibility_score"`
	Error             string            `json:"error,omitempty"`
}

// FailedAIAnalysis returns the degraded result used when the AI call fails
func FailedAIAnalysis(reason string) *AIAnalysisResult {
	return &AIAnalysisResult{
		IsScam:     false,
		Confidence: 0,
		Error:      reason,
	}
}
