package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"lumosguard/internal/domain/models"
	"lumosguard/pkg/logger"
)

// ErrEmptyMessage is returned when the submitted message has no content
var ErrEmptyMessage = errors.New("message is empty")

// AssessmentCache caches finished assessments keyed by message hash.
// A miss is (nil, nil).
type AssessmentCache interface {
	GetCachedAssessment(ctx context.Context, messageHash string) (*models.RiskAssessment, error)
	CacheAssessment(ctx context.Context, messageHash string, assessment *models.RiskAssessment, ttl time.Duration) error
}

// AssessmentHistory persists finished assessments
type AssessmentHistory interface {
	Record(ctx context.Context, assessment *models.RiskAssessment, features models.FeatureVector, messageHash string) error
}

// AnalysisEngine runs the full pipeline for one message: parse, collect
// signals, extract features, score, aggregate. Cache and history are
// optional; their failures are logged and never fail the request.
type AnalysisEngine struct {
	parser     *MessageParser
	collector  *SignalCollector
	extractor  *FeatureExtractor
	scorer     MLScorer
	aggregator *RiskAggregator
	cache      AssessmentCache
	history    AssessmentHistory
	cacheTTL   time.Duration
	logger     *logger.Logger
}

// NewAnalysisEngine wires the pipeline together. cache and history may be nil.
func NewAnalysisEngine(
	parser *MessageParser,
	collector *SignalCollector,
	extractor *FeatureExtractor,
	scorer MLScorer,
	aggregator *RiskAggregator,
	cache AssessmentCache,
	history AssessmentHistory,
	cacheTTL time.Duration,
	log *logger.Logger,
) *AnalysisEngine {
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}
	return &AnalysisEngine{
		parser:     parser,
		collector:  collector,
		extractor:  extractor,
		scorer:     scorer,
		aggregator: aggregator,
		cache:      cache,
		history:    history,
		cacheTTL:   cacheTTL,
		logger:     log.WithComponent("analysis-engine"),
	}
}

// Analyze scores one message end to end
func (e *AnalysisEngine) Analyze(ctx context.Context, message string) (*models.RiskAssessment, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	hash := messageHash(message)

	if e.cache != nil {
		cached, err := e.cache.GetCachedAssessment(ctx, hash)
		if err != nil {
			e.logger.Warn().Err(err).Msg("Assessment cache lookup failed")
		} else if cached != nil {
			e.logger.Debug().Str("message_hash", hash).Msg("Assessment served from cache")
			return cached, nil
		}
	}

	started := time.Now()

	parsed := e.parser.Parse(message)
	signals := e.collector.Collect(ctx, parsed)
	features := e.extractor.Extract(message, parsed, signals.URL, signals.Phone, signals.AI)
	mlScore := e.scorer.Score(ctx, features)
	assessment := e.aggregator.Aggregate(parsed, signals, mlScore)

	e.logger.Info().
		Str("risk_level", string(assessment.RiskLevel)).
		Int("risk_score", assessment.RiskScore).
		Bool("ml_available", mlScore.Available).
		Dur("duration", time.Since(started)).
		Msg("Message analyzed")

	if e.cache != nil {
		if err := e.cache.CacheAssessment(ctx, hash, assessment, e.cacheTTL); err != nil {
			e.logger.Warn().Err(err).Msg("Failed to cache assessment")
		}
	}
	if e.history != nil {
		if err := e.history.Record(ctx, assessment, features, hash); err != nil {
			e.logger.Warn().Err(err).Msg("Failed to record assessment history")
		}
	}

	return assessment, nil
}

func messageHash(message string) string {
	sum := sha256.Sum256([]byte(message))
	return hex.EncodeToString(sum[:])
}
