package models

// FeatureVectorWidth is the fixed number of fields in a FeatureVector
const FeatureVectorWidth = 45

// FeatureVector is the fixed-width numeric/categorical summary of a message
// fed to the ML scorer. Every field is always present: absent inputs map to
// neutral defaults, never to missing fields, so the marshaled record is
// always exactly 45 fields wide. It is a pure function of its inputs.
//
// Groups: text (14), URL (8), phone (7), AI (12), statistical (3), plus the
// URL-safety flag. The names match the columns the scoring model was trained
// on; the categorical AI fields stay raw strings, any one-hot encoding is
// the scorer's job.
type FeatureVector struct {
	// Text features
	MessageLength        int     `json:"message_length"`
	WordCount            int     `json:"word_count"`
	UniqueWordRatio      float64 `json:"unique_word_ratio"`
	AvgWordLength        float64 `json:"avg_word_length"`
	DigitRatio           float64 `json:"digit_ratio"`
	UppercaseRatio       float64 `json:"uppercase_ratio"`
	PunctuationRatio     float64 `json:"punctuation_ratio"`
	SpecialCharCount     int     `json:"special_char_count"`
	ExclamationCount     int     `json:"exclamation_count"`
	QuestionMarkCount    int     `json:"question_mark_count"`
	CapitalizedWordCount int     `json:"capitalized_word_count"`
	ContainsUrgentWords  int     `json:"contains_urgent_words"`
	ContainsMoneyWords   int     `json:"contains_money_keywords"`
	ContainsLinkText     int     `json:"contains_link_text"`

	// URL features (all zero when no URL present; degraded to zero on
	// malformed URLs rather than failing extraction)
	HasURL             int `json:"has_url"`
	URLLength          int `json:"url_length"`
	HasSuspiciousTLD   int `json:"has_suspicious_tld"`
	HasIPAddress       int `json:"has_ip_address"`
	HasURLShortener    int `json:"has_url_shortener"`
	URLPathDepth       int `json:"url_path_depth"`
	SubdomainCount     int `json:"subdomain_count"`
	URLQueryParamCount int `json:"url_query_param_count"`

	// Phone features (all zero when no phone present or lookup failed)
	HasPhone            int `json:"has_phone"`
	PhoneLength         int `json:"phone_length"`
	PhoneValid          int `json:"phone_valid"`
	IsVoIP              int `json:"is_voip"`
	IsMobile            int `json:"is_mobile"`
	IsLandline          int `json:"is_landline"`
	PhoneHasCountryCode int `json:"phone_has_country_code"`

	// AI features (scale fields default to mid-scale 5 when the AI result
	// is absent or errored; is_scam/confidence/counts default to 0)
	AIIsScam            int    `json:"openai_is_scam"`
	AIConfidence        int    `json:"openai_confidence"`
	AIUrgencyLevel      int    `json:"openai_urgency_level"`
	AIThreatLevel       int    `json:"openai_threat_level"`
	AITemptationLevel   int    `json:"openai_temptation_level"`
	AIGrammarQuality    int    `json:"openai_grammar_quality"`
	AICredibilityScore  int    `json:"openai_credibility_score"`
	AIKeywordCount      int    `json:"keyword_count"`
	AIReasonLength      int    `json:"reason_length"`
	AIImpersonationType string `json:"openai_impersonation_type"`
	AIActionRequested   string `json:"openai_action_requested"`
	AIEmotionTriggers   string `json:"openai_emotion_triggers"`

	// Statistical features
	TextEntropy        float64 `json:"text_entropy"`
	ReadabilityScore   float64 `json:"readability_score"`
	SentenceComplexity float64 `json:"sentence_complexity"`

	// URL safety flag from the reputation provider
	URLFlaggedUnsafe int `json:"url_flagged_unsafe"`
}
