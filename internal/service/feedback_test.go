package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PBeekay/TesPITAI/internal/ai/mock"
	"github.com/PBeekay/TesPITAI/internal/domain"
	"github.com/PBeekay/TesPITAI/internal/repository"
)

type feedbackFixture struct {
	svc      FeedbackService
	stats    StatsService
	analysis AnalysisService
	queries  *repository.Queries
}

func newFeedbackService(t *testing.T) *feedbackFixture {
	t.Helper()
	_, queries := newTestDB(t)
	logger := testLogger()

	require.NoError(t, queries.SeedPlans(context.Background(), domain.DefaultPlans))

	quota := NewQuotaService(queries, logger)
	stats := NewStatsService(queries, logger)

	return &feedbackFixture{
		svc:      NewFeedbackService(queries, stats, logger),
		stats:    stats,
		analysis: NewAnalysisService(queries, mock.New(logger), quota, logger),
		queries:  queries,
	}
}

// submitAnalysis runs one text analysis so feedback has something to reference.
func (f *feedbackFixture) submitAnalysis(t *testing.T) int64 {
	t.Helper()
	_, recordID, err := f.analysis.AnalyzeText(context.Background(), "alice", "submitted text under review")
	require.NoError(t, err)
	return recordID
}

func TestFeedbackService_Submit(t *testing.T) {
	f := newFeedbackService(t)
	ctx := context.Background()
	analysisID := f.submitAnalysis(t)

	record, err := f.svc.Submit(ctx, SubmitFeedbackParams{
		AnalysisID:    analysisID,
		UserID:        "alice",
		IsCorrect:     false,
		ActualResult:  domain.ActualResultHuman,
		FeedbackNotes: "I wrote this myself",
	})
	require.NoError(t, err)
	assert.True(t, record.ID > 0)
	assert.Equal(t, analysisID, record.AnalysisID)
	assert.False(t, record.IsCorrect)

	// The correction shows up joined to the history entry
	records, err := f.analysis.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Feedback)
	assert.Equal(t, domain.ActualResultHuman, records[0].Feedback.ActualResult)

	// A ground-truth sample joins the provisional one from the analysis
	samples, err := f.queries.CountLearningSamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), samples)

	// Today's rollup was refreshed
	daily, err := f.queries.ListDailyMetrics(ctx, 1)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, domain.Today(), daily[0].Date)
	assert.Equal(t, int64(1), daily[0].TotalAnalyses)
	assert.Equal(t, int64(0), daily[0].CorrectPredictions)
}

func TestFeedbackService_SubmitUnknownAnalysis(t *testing.T) {
	f := newFeedbackService(t)

	_, err := f.svc.Submit(context.Background(), SubmitFeedbackParams{
		AnalysisID:   9999,
		UserID:       "alice",
		IsCorrect:    true,
		ActualResult: domain.ActualResultAI,
	})
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestFeedbackService_SubmitValidation(t *testing.T) {
	f := newFeedbackService(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, SubmitFeedbackParams{AnalysisID: 1, UserID: ""})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	_, err = f.svc.Submit(ctx, SubmitFeedbackParams{AnalysisID: 0, UserID: "alice"})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	_, err = f.svc.Submit(ctx, SubmitFeedbackParams{
		AnalysisID:   1,
		UserID:       "alice",
		ActualResult: "robot",
	})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestFeedbackService_UnknownResultSkipsLearningSample(t *testing.T) {
	f := newFeedbackService(t)
	ctx := context.Background()
	analysisID := f.submitAnalysis(t)

	before, err := f.queries.CountLearningSamples(ctx)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, SubmitFeedbackParams{
		AnalysisID:   analysisID,
		UserID:       "alice",
		IsCorrect:    true,
		ActualResult: domain.ActualResultUnknown,
	})
	require.NoError(t, err)

	// No ground-truth sample without a usable label
	after, err := f.queries.CountLearningSamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
