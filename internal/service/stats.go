// Package service contains the business logic layer.
//
// This file implements the stats service: accuracy rollups derived from
// the feedback ledger and the verdict distribution.
package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/PBeekay/TesPITAI/internal/domain"
	"github.com/PBeekay/TesPITAI/internal/metrics"
	"github.com/PBeekay/TesPITAI/internal/repository"
)

// AccuracyWindowDays is the trailing window for the headline accuracy rate.
const AccuracyWindowDays = 30

// =============================================================================
// Interface Definition
// =============================================================================

// StatsService defines operations for accuracy metrics.
type StatsService interface {
	// Overview returns the current accuracy figures. AccuracyRate is nil
	// when no feedback exists in the window.
	Overview(ctx context.Context) (*StatsOverview, error)

	// RefreshToday recomputes and stores today's accuracy rollup from
	// the feedback ledger.
	RefreshToday(ctx context.Context) error

	// Run periodically refreshes the rollup until ctx is cancelled.
	Run(ctx context.Context, interval time.Duration)
}

// StatsOverview is the aggregate accuracy report.
type StatsOverview struct {
	AccuracyRate    *float64
	TotalFeedback   int64
	CorrectCount    int64
	DetectionStats  []domain.DetectionStat
	LearningSamples int64
	DailyMetrics    []domain.DailyMetrics
}

// =============================================================================
// Implementation
// =============================================================================

type statsService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewStatsService creates a new StatsService.
func NewStatsService(queries *repository.Queries, logger *slog.Logger) StatsService {
	return &statsService{
		queries: queries,
		logger:  logger,
	}
}

// Overview returns the current accuracy figures.
func (s *statsService) Overview(ctx context.Context) (*StatsOverview, error) {
	const op = "StatsService.Overview"

	total, correct, err := s.queries.AccuracyOverWindow(ctx, AccuracyWindowDays)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to compute accuracy")
	}

	overview := &StatsOverview{
		TotalFeedback: total,
		CorrectCount:  correct,
	}
	if total > 0 {
		rate := roundRate(float64(correct) / float64(total) * 100)
		overview.AccuracyRate = &rate
	}

	overview.DetectionStats, err = s.queries.DetectionStats(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to load detection stats")
	}

	overview.LearningSamples, err = s.queries.CountLearningSamples(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to count learning samples")
	}

	overview.DailyMetrics, err = s.queries.ListDailyMetrics(ctx, 30)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to list daily metrics")
	}

	return overview, nil
}

// RefreshToday recomputes and stores today's accuracy rollup.
func (s *statsService) RefreshToday(ctx context.Context) error {
	const op = "StatsService.RefreshToday"

	today := domain.Today()
	total, correct, err := s.queries.CountFeedbackForDate(ctx, today)
	if err != nil {
		return domain.Internal(err, op, "Failed to count feedback")
	}

	rate := 0.0
	if total > 0 {
		rate = roundRate(float64(correct) / float64(total) * 100)
	}

	if err := s.queries.UpsertDailyMetrics(ctx, domain.DailyMetrics{
		Date:               today,
		TotalAnalyses:      total,
		CorrectPredictions: correct,
		AccuracyRate:       rate,
	}); err != nil {
		return domain.Internal(err, op, "Failed to store daily metrics")
	}
	return nil
}

// Run periodically refreshes the rollup until ctx is cancelled.
func (s *statsService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := s.RefreshToday(ctx); err != nil {
				metrics.RefreshFailed()
				s.logger.Error("periodic metrics refresh failed", "error", err)
				continue
			}
			metrics.RefreshCompleted(time.Since(start))
		}
	}
}

// roundRate rounds a percentage to two decimal places.
func roundRate(rate float64) float64 {
	return math.Round(rate*100) / 100
}
