package services

import (
	"regexp"
	"strings"

	"lumosguard/internal/domain/models"
)

// MessageParser extracts the candidate URL and phone number from raw message
// text. Policy: the first URL-shaped and first phone-shaped substring in
// reading order are retained, all matches are stripped from the residual
// content, and phone matching runs on the URL-stripped text so digits inside
// a URL are never read as a phone number. Parsing never fails.
type MessageParser struct {
	urlPattern   *regexp.Regexp
	phonePattern *regexp.Regexp
}

// NewMessageParser creates a new message parser
func NewMessageParser() *MessageParser {
	return &MessageParser{
		urlPattern: regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+|www\.[^\s<>"{}|\\^` + "`" + `\[\]]+`),
		// Optional + prefix, 8-15 digits intermixed with spaces or hyphens
		phonePattern: regexp.MustCompile(`\+?\d(?:[-\s]?\d){7,14}`),
	}
}

// Parse splits raw text into URL, phone and residual content
func (p *MessageParser) Parse(raw string) models.ParsedMessage {
	parsed := models.ParsedMessage{}

	content := raw
	if url := p.urlPattern.FindString(content); url != "" {
		parsed.URL = url
		content = p.urlPattern.ReplaceAllString(content, "")
	}

	if phone := p.phonePattern.FindString(content); phone != "" {
		parsed.Phone = strings.TrimSpace(phone)
		content = p.phonePattern.ReplaceAllString(content, "")
	}

	parsed.Content = strings.TrimSpace(content)
	return parsed
}
