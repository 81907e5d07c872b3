package repository

import (
	"context"
	"database/sql"

	"github.com/PBeekay/TesPITAI/internal/domain"
)

// InsertAnalysisParams contains the fields for one ledger entry.
type InsertAnalysisParams struct {
	UserID         string
	ContentType    domain.ContentType
	FileName       string
	ContentPreview string
	AIProbability  float64
	AIDetected     bool
	AnalysisResult string
}

// InsertAnalysis appends one analysis to the history ledger and returns
// the new row ID.
func (q *Queries) InsertAnalysis(ctx context.Context, params InsertAnalysisParams) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO analysis_history
		 (user_id, content_type, file_name, content_preview, ai_probability, ai_detected, analysis_result)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		params.UserID, params.ContentType, domain.ToNullString(params.FileName),
		params.ContentPreview, params.AIProbability, params.AIDetected, params.AnalysisResult)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListRecentAnalyses returns the newest entries with any attached
// feedback, newest first.
func (q *Queries) ListRecentAnalyses(ctx context.Context, limit int64) ([]domain.AnalysisRecord, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT ah.id, ah.user_id, ah.content_type, ah.file_name, ah.content_preview,
		        ah.ai_probability, ah.ai_detected, ah.analysis_result, ah.created_at,
		        uf.id, uf.is_correct, uf.actual_result, uf.feedback_notes, uf.created_at
		 FROM analysis_history ah
		 LEFT JOIN user_feedback uf ON ah.id = uf.analysis_id
		 ORDER BY ah.created_at DESC, ah.id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.AnalysisRecord
	for rows.Next() {
		var r domain.AnalysisRecord
		var fileName, preview, result sql.NullString
		var prob sql.NullFloat64
		var detected sql.NullBool

		var fbID sql.NullInt64
		var fbCorrect sql.NullBool
		var fbResult, fbNotes sql.NullString
		var fbCreated sql.NullTime

		if err := rows.Scan(&r.ID, &r.UserID, &r.ContentType, &fileName, &preview,
			&prob, &detected, &result, &r.CreatedAt,
			&fbID, &fbCorrect, &fbResult, &fbNotes, &fbCreated); err != nil {
			return nil, err
		}
		r.FileName = domain.NullStringValue(fileName)
		r.ContentPreview = domain.NullStringValue(preview)
		r.AnalysisResult = domain.NullStringValue(result)
		r.AIProbability = domain.NullFloatValue(prob)
		r.AIDetected = detected.Valid && detected.Bool

		if fbID.Valid {
			fb := domain.FeedbackRecord{
				ID:            fbID.Int64,
				AnalysisID:    r.ID,
				UserID:        r.UserID,
				IsCorrect:     fbCorrect.Valid && fbCorrect.Bool,
				ActualResult:  domain.ActualResult(domain.NullStringValue(fbResult)),
				FeedbackNotes: domain.NullStringValue(fbNotes),
			}
			if fbCreated.Valid {
				fb.CreatedAt = fbCreated.Time
			}
			r.Feedback = &fb
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetAnalysis fetches one ledger entry by ID.
func (q *Queries) GetAnalysis(ctx context.Context, id int64) (*domain.AnalysisRecord, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, user_id, content_type, file_name, content_preview,
		        ai_probability, ai_detected, analysis_result, created_at
		 FROM analysis_history WHERE id = ?`, id)

	var r domain.AnalysisRecord
	var fileName, preview, result sql.NullString
	var prob sql.NullFloat64
	var detected sql.NullBool
	err := row.Scan(&r.ID, &r.UserID, &r.ContentType, &fileName, &preview,
		&prob, &detected, &result, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.FileName = domain.NullStringValue(fileName)
	r.ContentPreview = domain.NullStringValue(preview)
	r.AnalysisResult = domain.NullStringValue(result)
	r.AIProbability = domain.NullFloatValue(prob)
	r.AIDetected = detected.Valid && detected.Bool
	return &r, nil
}
