// Package service contains the business logic layer.
//
// This file implements the feedback service: user corrections feed the
// learning store and the accuracy rollups.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/PBeekay/TesPITAI/internal/domain"
	"github.com/PBeekay/TesPITAI/internal/metrics"
	"github.com/PBeekay/TesPITAI/internal/repository"
)

// =============================================================================
// Interface Definition
// =============================================================================

// FeedbackService defines operations for recording verdict corrections.
type FeedbackService interface {
	// Submit appends one correction to the feedback ledger, stores a
	// ground-truth learning sample, and refreshes today's accuracy rollup.
	// Returns domain.ENOTFOUND when the referenced analysis does not exist.
	Submit(ctx context.Context, params SubmitFeedbackParams) (*domain.FeedbackRecord, error)
}

// SubmitFeedbackParams contains the fields for one feedback submission.
type SubmitFeedbackParams struct {
	AnalysisID    int64
	UserID        string
	IsCorrect     bool
	ActualResult  domain.ActualResult
	FeedbackNotes string
}

// =============================================================================
// Implementation
// =============================================================================

type feedbackService struct {
	queries *repository.Queries
	stats   StatsService
	logger  *slog.Logger
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(queries *repository.Queries, stats StatsService, logger *slog.Logger) FeedbackService {
	return &feedbackService{
		queries: queries,
		stats:   stats,
		logger:  logger,
	}
}

// Submit appends one correction to the feedback ledger.
func (s *feedbackService) Submit(ctx context.Context, params SubmitFeedbackParams) (*domain.FeedbackRecord, error) {
	const op = "FeedbackService.Submit"

	if params.UserID == "" {
		return nil, domain.Invalid(op, "User ID is required")
	}
	if params.AnalysisID <= 0 {
		return nil, domain.Invalid(op, "Analysis ID is required")
	}
	switch params.ActualResult {
	case domain.ActualResultAI, domain.ActualResultHuman, domain.ActualResultUnknown, "":
	default:
		return nil, domain.Invalid(op, "Actual result must be ai, human, or unknown")
	}

	analysis, err := s.queries.GetAnalysis(ctx, params.AnalysisID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "analysis", strconv.FormatInt(params.AnalysisID, 10))
		}
		return nil, domain.Internal(err, op, "Failed to load analysis")
	}

	id, err := s.queries.InsertFeedback(ctx, repository.InsertFeedbackParams{
		AnalysisID:    params.AnalysisID,
		UserID:        params.UserID,
		IsCorrect:     params.IsCorrect,
		ActualResult:  params.ActualResult,
		FeedbackNotes: params.FeedbackNotes,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to record feedback")
	}

	metrics.FeedbackTotal.WithLabelValues(strconv.FormatBool(params.IsCorrect)).Inc()

	// Ground-truth learning sample from the corrected label. The original
	// content is gone; the preview stands in for feature extraction.
	if params.ActualResult != "" && params.ActualResult != domain.ActualResultUnknown && analysis.ContentPreview != "" {
		s.storeLabeledSample(ctx, analysis, params.ActualResult)
	}

	// Refresh today's rollup so stats reflect the correction immediately
	if err := s.stats.RefreshToday(ctx); err != nil {
		s.logger.Warn("failed to refresh daily metrics", "error", err)
	}

	s.logger.Info("feedback recorded",
		"feedback_id", id,
		"analysis_id", params.AnalysisID,
		"is_correct", params.IsCorrect,
	)

	return &domain.FeedbackRecord{
		ID:            id,
		AnalysisID:    params.AnalysisID,
		UserID:        params.UserID,
		IsCorrect:     params.IsCorrect,
		ActualResult:  params.ActualResult,
		FeedbackNotes: params.FeedbackNotes,
	}, nil
}

func (s *feedbackService) storeLabeledSample(ctx context.Context, analysis *domain.AnalysisRecord, label domain.ActualResult) {
	features := ExtractFeatures(analysis.ContentPreview)
	featureJSON, err := json.Marshal(features)
	if err != nil {
		s.logger.Error("failed to serialize features", "error", err)
		return
	}

	// Ground truth gets full confidence
	if _, err := s.queries.InsertLearningSample(ctx, repository.InsertLearningSampleParams{
		ContentType:     analysis.ContentType,
		ContentFeatures: string(featureJSON),
		ActualResult:    label,
		ConfidenceScore: 100,
	}); err != nil {
		s.logger.Error("failed to store labeled sample", "error", err)
		return
	}
	metrics.LearningSamplesStored.Inc()
}
