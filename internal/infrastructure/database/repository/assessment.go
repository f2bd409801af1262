package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lumosguard/internal/domain/models"
)

// AssessmentRecord is one stored assessment row
type AssessmentRecord struct {
	ID          uuid.UUID        `json:"id"`
	MessageHash string           `json:"message_hash"`
	RiskLevel   models.RiskLevel `json:"risk_level"`
	RiskScore   int              `json:"risk_score"`
	MLScore     *float64         `json:"ml_score,omitempty"`
	Evidence    []string         `json:"evidence"`
	AnalyzedAt  time.Time        `json:"analyzed_at"`
}

// AssessmentRepository persists finished assessments together with their
// feature vectors
type AssessmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssessmentRepository creates a new assessment repository
func NewAssessmentRepository(pool *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{pool: pool}
}

// Record stores one assessment with its feature vector
func (r *AssessmentRepository) Record(ctx context.Context, assessment *models.RiskAssessment, features models.FeatureVector, messageHash string) error {
	featuresJSON, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	query := `
		INSERT INTO assessments (id, message_hash, risk_level, risk_score, ml_score, evidence, features, analyzed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`

	_, err = r.pool.Exec(ctx, query,
		assessment.ID,
		messageHash,
		string(assessment.RiskLevel),
		assessment.RiskScore,
		assessment.MLScore,
		assessment.Evidence,
		featuresJSON,
		assessment.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// ListRecent returns the most recently analyzed assessments
func (r *AssessmentRepository) ListRecent(ctx context.Context, limit int) ([]AssessmentRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, message_hash, risk_level, risk_score, ml_score, evidence, analyzed_at
		FROM assessments
		ORDER BY analyzed_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	records := []AssessmentRecord{}
	for rows.Next() {
		var rec AssessmentRecord
		var level string
		if err := rows.Scan(&rec.ID, &rec.MessageHash, &level, &rec.RiskScore, &rec.MLScore, &rec.Evidence, &rec.AnalyzedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		rec.RiskLevel = models.RiskLevel(level)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByLevel returns totals per risk level
func (r *AssessmentRepository) CountByLevel(ctx context.Context) (map[models.RiskLevel]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT risk_level, COUNT(*) FROM assessments GROUP BY risk_level`)
	if err != nil {
		return nil, fmt.Errorf("failed to count assessments: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.RiskLevel]int64)
	for rows.Next() {
		var level string
		var count int64
		if err := rows.Scan(&level, &count); err != nil {
			return nil, err
		}
		counts[models.RiskLevel(level)] = count
	}
	return counts, rows.Err()
}
