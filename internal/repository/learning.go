package repository

import (
	"context"

	"github.com/PBeekay/TesPITAI/internal/domain"
)

// InsertLearningSampleParams contains the fields for one training example.
type InsertLearningSampleParams struct {
	ContentType     domain.ContentType
	ContentFeatures string
	ActualResult    domain.ActualResult
	ConfidenceScore float64
}

// InsertLearningSample appends one training example to the learning store.
func (q *Queries) InsertLearningSample(ctx context.Context, params InsertLearningSampleParams) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO learning_data (content_type, content_features, actual_result, confidence_score)
		 VALUES (?, ?, ?, ?)`,
		params.ContentType, params.ContentFeatures, params.ActualResult, params.ConfidenceScore)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListLearningSamples returns the newest training examples.
func (q *Queries) ListLearningSamples(ctx context.Context, limit int64) ([]domain.LearningSample, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, content_type, content_features, actual_result, confidence_score, created_at
		 FROM learning_data ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []domain.LearningSample
	for rows.Next() {
		var s domain.LearningSample
		if err := rows.Scan(&s.ID, &s.ContentType, &s.ContentFeatures,
			&s.ActualResult, &s.ConfidenceScore, &s.CreatedAt); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// CountLearningSamples returns the total number of stored training examples.
func (q *Queries) CountLearningSamples(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM learning_data`).Scan(&n)
	return n, err
}
