// Package service contains the business logic layer.
//
// This file implements the quota service for subscription tiers and
// daily usage enforcement.
package service

import (
	"context"
	"database/sql"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/PBeekay/TesPITAI/internal/domain"
	"github.com/PBeekay/TesPITAI/internal/repository"
)

// usageLockStripes is the number of striped mutexes guarding the
// check-then-increment sequence. Power of two for cheap modulo.
const usageLockStripes = 64

// =============================================================================
// Interface Definition
// =============================================================================

// QuotaService defines operations for subscription plans and usage limits.
type QuotaService interface {
	// GetPlan returns one plan from the tier catalog.
	// Returns domain.ENOTFOUND for an unknown tier.
	GetPlan(ctx context.Context, tier domain.SubscriptionTier) (*domain.SubscriptionPlan, error)

	// ListPlans returns the tier catalog ordered by price ascending.
	ListPlans(ctx context.Context) ([]domain.SubscriptionPlan, error)

	// AssignTier switches the user to the given tier, zeroing the daily
	// counters. Returns domain.ENOTFOUND for an unknown tier.
	AssignTier(ctx context.Context, userID string, tier domain.SubscriptionTier) error

	// CheckLimits evaluates whether the user could consume proposedWords
	// additional words today. Users without a subscription row fall back
	// to the basic plan with zero usage. Stale counters from a previous
	// day are reset before evaluation and the reset is persisted.
	CheckLimits(ctx context.Context, userID string, proposedWords int64) (*domain.UsageDecision, error)

	// RecordUsage adds consumed words and files to the user's daily
	// counters. Returns domain.ENOTFOUND when the user has no
	// subscription row.
	RecordUsage(ctx context.Context, userID string, words, files int64) error

	// ResetDailyUsage zeroes the user's counters and stamps the reset
	// date to today.
	ResetDailyUsage(ctx context.Context, userID string) error

	// Snapshot returns the user's plan and current usage, defaulting to
	// the basic plan with zero usage when no subscription row exists.
	Snapshot(ctx context.Context, userID string) (*domain.SubscriptionSnapshot, error)

	// WithUsageLock runs fn while holding the user's usage lock, so a
	// limit check and the subsequent usage recording act as one unit
	// against concurrent requests for the same user.
	WithUsageLock(userID string, fn func() error) error
}

// =============================================================================
// Implementation
// =============================================================================

type quotaService struct {
	queries *repository.Queries
	logger  *slog.Logger
	locks   [usageLockStripes]sync.Mutex
}

// NewQuotaService creates a new QuotaService.
func NewQuotaService(queries *repository.Queries, logger *slog.Logger) QuotaService {
	return &quotaService{
		queries: queries,
		logger:  logger,
	}
}

// GetPlan returns one plan from the tier catalog.
func (s *quotaService) GetPlan(ctx context.Context, tier domain.SubscriptionTier) (*domain.SubscriptionPlan, error) {
	const op = "QuotaService.GetPlan"

	plan, err := s.queries.GetPlan(ctx, tier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "subscription plan", string(tier))
		}
		return nil, domain.Internal(err, op, "Failed to load subscription plan")
	}
	return plan, nil
}

// ListPlans returns the tier catalog ordered by price ascending.
func (s *quotaService) ListPlans(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	const op = "QuotaService.ListPlans"

	plans, err := s.queries.ListPlans(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to list subscription plans")
	}
	return plans, nil
}

// AssignTier switches the user to the given tier.
func (s *quotaService) AssignTier(ctx context.Context, userID string, tier domain.SubscriptionTier) error {
	const op = "QuotaService.AssignTier"

	if userID == "" {
		return domain.Invalid(op, "User ID is required")
	}

	// Validate the tier exists before touching the subscription row
	if _, err := s.GetPlan(ctx, tier); err != nil {
		return err
	}

	if err := s.queries.UpsertSubscription(ctx, userID, tier); err != nil {
		return domain.Internal(err, op, "Failed to update subscription")
	}

	s.logger.Info("subscription updated", "user_id", userID, "tier", tier)
	return nil
}

// CheckLimits evaluates whether the user could consume proposedWords
// additional words today.
func (s *quotaService) CheckLimits(ctx context.Context, userID string, proposedWords int64) (*domain.UsageDecision, error) {
	const op = "QuotaService.CheckLimits"

	if userID == "" {
		return nil, domain.Invalid(op, "User ID is required")
	}

	sub, err := s.queries.GetSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No subscription row: basic plan, zero usage
			decision := domain.DefaultDecision(proposedWords)
			return &decision, nil
		}
		return nil, domain.Internal(err, op, "Failed to load subscription")
	}

	// Roll stale counters over to the new day and persist the reset so
	// concurrent readers see zeroed counters too
	today := domain.Today()
	if sub.LastUsageReset != today {
		if err := s.queries.ResetDailyUsage(ctx, userID, today); err != nil {
			return nil, domain.Internal(err, op, "Failed to reset daily usage")
		}
		sub.DailyWordUsage = 0
		sub.DailyFileUsage = 0
		sub.LastUsageReset = today
	}

	plan, err := s.GetPlan(ctx, sub.Tier)
	if err != nil {
		// Unknown tier on the row: treat as basic rather than failing
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			basic := domain.BasicPlan()
			decision := domain.EvaluateUsage(basic, sub.DailyWordUsage, sub.DailyFileUsage, proposedWords)
			return &decision, nil
		}
		return nil, err
	}

	decision := domain.EvaluateUsage(*plan, sub.DailyWordUsage, sub.DailyFileUsage, proposedWords)
	return &decision, nil
}

// RecordUsage adds consumed words and files to the user's daily counters.
func (s *quotaService) RecordUsage(ctx context.Context, userID string, words, files int64) error {
	const op = "QuotaService.RecordUsage"

	if userID == "" {
		return domain.Invalid(op, "User ID is required")
	}
	if words < 0 || files < 0 {
		return domain.Invalid(op, "Usage amounts must be non-negative")
	}
	if words == 0 && files == 0 {
		return nil
	}

	affected, err := s.queries.IncrementUsage(ctx, userID, words, files)
	if err != nil {
		return domain.Internal(err, op, "Failed to record usage")
	}
	if affected == 0 {
		return domain.NotFound(op, "subscription", userID)
	}
	return nil
}

// ResetDailyUsage zeroes the user's counters.
func (s *quotaService) ResetDailyUsage(ctx context.Context, userID string) error {
	const op = "QuotaService.ResetDailyUsage"

	if userID == "" {
		return domain.Invalid(op, "User ID is required")
	}
	if err := s.queries.ResetDailyUsage(ctx, userID, domain.Today()); err != nil {
		return domain.Internal(err, op, "Failed to reset daily usage")
	}
	return nil
}

// Snapshot returns the user's plan and current usage.
func (s *quotaService) Snapshot(ctx context.Context, userID string) (*domain.SubscriptionSnapshot, error) {
	const op = "QuotaService.Snapshot"

	sub, err := s.queries.GetSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.SubscriptionSnapshot{Plan: domain.BasicPlan()}, nil
		}
		return nil, domain.Internal(err, op, "Failed to load subscription")
	}

	// Stale counters read as zero without persisting the reset; the next
	// limit check persists it
	wordUsage, fileUsage := sub.DailyWordUsage, sub.DailyFileUsage
	if sub.LastUsageReset != domain.Today() {
		wordUsage, fileUsage = 0, 0
	}

	plan, err := s.GetPlan(ctx, sub.Tier)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			basic := domain.BasicPlan()
			plan = &basic
		} else {
			return nil, err
		}
	}

	return &domain.SubscriptionSnapshot{
		Plan:           *plan,
		DailyWordUsage: wordUsage,
		DailyFileUsage: fileUsage,
	}, nil
}

// WithUsageLock runs fn while holding the user's usage lock.
func (s *quotaService) WithUsageLock(userID string, fn func() error) error {
	h := fnv.New32a()
	h.Write([]byte(userID))
	lock := &s.locks[h.Sum32()%usageLockStripes]
	lock.Lock()
	defer lock.Unlock()
	return fn()
}
