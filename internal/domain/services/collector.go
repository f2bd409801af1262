package services

import (
	"context"
	"sync"
	"time"

	"lumosguard/internal/domain/models"
	"lumosguard/pkg/logger"
)

// URLSafetyClient checks a URL against a reputation service
type URLSafetyClient interface {
	CheckURL(ctx context.Context, rawURL string) (*models.URLSafetyResult, error)
}

// PhoneLookupClient validates a phone number and classifies its line type
type PhoneLookupClient interface {
	Lookup(ctx context.Context, number string) (*models.PhoneLookupResult, error)
}

// MessageAnalysisClient obtains a semantic scam judgment for message text
type MessageAnalysisClient interface {
	AnalyzeMessage(ctx context.Context, text string) (*models.AIAnalysisResult, error)
}

// SignalCollector fans a parsed message out to the three signal providers
// concurrently and waits for all of them to settle. A provider failure never
// fails the collection: each signal degrades independently. The URL check is
// fail-open, a failed phone lookup leaves the number unverifiable, and a
// failed AI call yields a zero-confidence judgment.
type SignalCollector struct {
	urls    URLSafetyClient
	phones  PhoneLookupClient
	ai      MessageAnalysisClient
	timeout time.Duration
	logger  *logger.Logger
}

// NewSignalCollector creates a signal collector with a per-provider timeout
func NewSignalCollector(urls URLSafetyClient, phones PhoneLookupClient, ai MessageAnalysisClient, timeout time.Duration, log *logger.Logger) *SignalCollector {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &SignalCollector{
		urls:    urls,
		phones:  phones,
		ai:      ai,
		timeout: timeout,
		logger:  log.WithComponent("signal-collector"),
	}
}

// CollectedSignals holds the settled results of one collection round.
// URL and Phone are nil when the message carried no URL or phone number.
type CollectedSignals struct {
	URL   *models.URLSafetyResult
	Phone *models.PhoneLookupResult
	AI    *models.AIAnalysisResult
}

// Collect queries all applicable providers in parallel and returns once
// every in-flight call has settled. Each goroutine writes only its own slot.
func (c *SignalCollector) Collect(ctx context.Context, parsed models.ParsedMessage) CollectedSignals {
	var signals CollectedSignals
	var wg sync.WaitGroup

	if parsed.URL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			result, err := c.urls.CheckURL(callCtx, parsed.URL)
			if err != nil {
				c.logger.Warn().Err(err).Str("url", parsed.URL).Msg("URL safety check failed, treating as safe")
				result = &models.URLSafetyResult{IsSafe: true, Error: err.Error()}
			}
			signals.URL = result
		}()
	}

	if parsed.Phone != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			result, err := c.phones.Lookup(callCtx, parsed.Phone)
			if err != nil {
				c.logger.Warn().Err(err).Str("phone", parsed.Phone).Msg("Phone lookup failed, number unverifiable")
				result = &models.PhoneLookupResult{Valid: false, LineType: models.LineTypeUnknown, Error: err.Error()}
			}
			signals.Phone = result
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		result, err := c.ai.AnalyzeMessage(callCtx, parsed.Content)
		if err != nil {
			c.logger.Warn().Err(err).Msg("AI analysis failed, degrading to zero confidence")
			result = models.FailedAIAnalysis(err.Error())
		}
		signals.AI = result
	}()

	wg.Wait()
	return signals
}
