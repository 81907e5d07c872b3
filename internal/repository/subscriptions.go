package repository

import (
	"context"
	"database/sql"

	"github.com/PBeekay/TesPITAI/internal/domain"
)

// SeedPlans inserts the tier catalog, skipping tiers that already exist.
func (q *Queries) SeedPlans(ctx context.Context, plans []domain.SubscriptionPlan) error {
	stmt, err := q.db.PrepareContext(ctx,
		`INSERT OR IGNORE INTO subscription_plans
		 (tier, name, description, price, word_limit, file_upload_limit, has_image_upload, is_unlimited)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range plans {
		if _, err := stmt.ExecContext(ctx, p.Tier, p.Name, p.Description, p.Price,
			p.WordLimit, p.FileUploadLimit, p.HasImageUpload, p.IsUnlimited); err != nil {
			return err
		}
	}
	return nil
}

// GetPlan fetches one plan by tier.
func (q *Queries) GetPlan(ctx context.Context, tier domain.SubscriptionTier) (*domain.SubscriptionPlan, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT tier, name, description, price, word_limit, file_upload_limit, has_image_upload, is_unlimited
		 FROM subscription_plans WHERE tier = ?`, tier)
	return scanPlan(row)
}

// ListPlans returns the full catalog ordered by price ascending.
func (q *Queries) ListPlans(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT tier, name, description, price, word_limit, file_upload_limit, has_image_upload, is_unlimited
		 FROM subscription_plans ORDER BY price ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []domain.SubscriptionPlan
	for rows.Next() {
		var p domain.SubscriptionPlan
		var desc sql.NullString
		if err := rows.Scan(&p.Tier, &p.Name, &desc, &p.Price,
			&p.WordLimit, &p.FileUploadLimit, &p.HasImageUpload, &p.IsUnlimited); err != nil {
			return nil, err
		}
		p.Description = domain.NullStringValue(desc)
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// UpsertSubscription replaces the user's subscription row, zeroing the
// daily counters and stamping the reset date to today.
func (q *Queries) UpsertSubscription(ctx context.Context, userID string, tier domain.SubscriptionTier) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO user_subscriptions
		 (user_id, subscription_tier, daily_word_usage, daily_file_usage, last_usage_reset, updated_at)
		 VALUES (?, ?, 0, 0, DATE('now', 'localtime'), CURRENT_TIMESTAMP)`,
		userID, tier)
	return err
}

// GetSubscription fetches the user's subscription row. Returns
// sql.ErrNoRows when the user has never been assigned a tier.
func (q *Queries) GetSubscription(ctx context.Context, userID string) (*domain.UserSubscription, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, user_id, subscription_tier, daily_word_usage, daily_file_usage,
		        last_usage_reset, created_at, updated_at
		 FROM user_subscriptions WHERE user_id = ?`, userID)

	var s domain.UserSubscription
	var lastReset sql.NullTime
	err := row.Scan(&s.ID, &s.UserID, &s.Tier, &s.DailyWordUsage, &s.DailyFileUsage,
		&lastReset, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	// The driver parses DATE columns into time.Time; keep the domain
	// representation as the stored calendar date string.
	if lastReset.Valid {
		s.LastUsageReset = lastReset.Time.Format("2006-01-02")
	}
	return &s, nil
}

// ResetDailyUsage zeroes the user's counters and stamps the reset date.
func (q *Queries) ResetDailyUsage(ctx context.Context, userID, date string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE user_subscriptions
		 SET daily_word_usage = 0, daily_file_usage = 0, last_usage_reset = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ?`, date, userID)
	return err
}

// IncrementUsage adds to the user's daily counters. Returns the number of
// rows updated so callers can detect a missing subscription row.
func (q *Queries) IncrementUsage(ctx context.Context, userID string, words, files int64) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`UPDATE user_subscriptions
		 SET daily_word_usage = daily_word_usage + ?,
		     daily_file_usage = daily_file_usage + ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ?`, words, files, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanPlan(row *sql.Row) (*domain.SubscriptionPlan, error) {
	var p domain.SubscriptionPlan
	var desc sql.NullString
	err := row.Scan(&p.Tier, &p.Name, &desc, &p.Price,
		&p.WordLimit, &p.FileUploadLimit, &p.HasImageUpload, &p.IsUnlimited)
	if err != nil {
		return nil, err
	}
	p.Description = domain.NullStringValue(desc)
	return &p, nil
}
