package repository

import (
	"context"
	"database/sql"

	"github.com/PBeekay/TesPITAI/internal/domain"
)

// UpsertDailyMetrics replaces the accuracy rollup for one calendar date.
func (q *Queries) UpsertDailyMetrics(ctx context.Context, m domain.DailyMetrics) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO performance_metrics (date, total_analyses, correct_predictions, accuracy_rate)
		 VALUES (?, ?, ?, ?)`,
		m.Date, m.TotalAnalyses, m.CorrectPredictions, m.AccuracyRate)
	return err
}

// AccuracyOverWindow computes feedback volume and confirmation count over
// the trailing window of days ending today.
func (q *Queries) AccuracyOverWindow(ctx context.Context, days int64) (total, correct int64, err error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0)
		 FROM user_feedback
		 WHERE created_at >= DATETIME('now', '-' || ? || ' days')`, days)
	err = row.Scan(&total, &correct)
	return total, correct, err
}

// DetectionStats groups feedback by ground-truth label, joining back to
// the analysis ledger for the mean model probability per label.
func (q *Queries) DetectionStats(ctx context.Context) ([]domain.DetectionStat, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT uf.actual_result, COUNT(*), COALESCE(ROUND(AVG(ah.ai_probability), 2), 0)
		 FROM user_feedback uf
		 JOIN analysis_history ah ON uf.analysis_id = ah.id
		 WHERE uf.actual_result IS NOT NULL
		 GROUP BY uf.actual_result`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.DetectionStat
	for rows.Next() {
		var s domain.DetectionStat
		var label sql.NullString
		if err := rows.Scan(&label, &s.Count, &s.AvgAIProbability); err != nil {
			return nil, err
		}
		s.ActualResult = domain.ActualResult(domain.NullStringValue(label))
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// ListDailyMetrics returns the newest rollup rows, most recent first.
func (q *Queries) ListDailyMetrics(ctx context.Context, limit int64) ([]domain.DailyMetrics, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT date, total_analyses, correct_predictions, accuracy_rate
		 FROM performance_metrics
		 ORDER BY date DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DailyMetrics
	for rows.Next() {
		var m domain.DailyMetrics
		var date sql.NullTime
		if err := rows.Scan(&date, &m.TotalAnalyses, &m.CorrectPredictions, &m.AccuracyRate); err != nil {
			return nil, err
		}
		if date.Valid {
			m.Date = date.Time.Format("2006-01-02")
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
