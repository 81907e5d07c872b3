package repository

import (
	"context"

	"github.com/PBeekay/TesPITAI/internal/domain"
)

// InsertFeedbackParams contains the fields for one feedback entry.
type InsertFeedbackParams struct {
	AnalysisID    int64
	UserID        string
	IsCorrect     bool
	ActualResult  domain.ActualResult
	FeedbackNotes string
}

// InsertFeedback appends one correction to the feedback ledger and
// returns the new row ID.
func (q *Queries) InsertFeedback(ctx context.Context, params InsertFeedbackParams) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO user_feedback (analysis_id, user_id, is_correct, actual_result, feedback_notes)
		 VALUES (?, ?, ?, ?, ?)`,
		params.AnalysisID, params.UserID, params.IsCorrect,
		params.ActualResult, domain.ToNullString(params.FeedbackNotes))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// CountFeedbackForDate returns the number of feedback rows created on the
// given calendar date and how many of them confirmed the verdict.
// created_at is stored in UTC; the caller passes a server-local date, so
// the comparison converts to local time the same way the quota rollover
// does.
func (q *Queries) CountFeedbackForDate(ctx context.Context, date string) (total, correct int64, err error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0)
		 FROM user_feedback
		 WHERE DATE(created_at, 'localtime') = ?`, date)
	err = row.Scan(&total, &correct)
	return total, correct, err
}
