package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PBeekay/TesPITAI/internal/ai/mock"
	"github.com/PBeekay/TesPITAI/internal/domain"
)

type analysisFixture struct {
	svc      AnalysisService
	provider *mock.Provider
	quota    QuotaService
}

func newAnalysisService(t *testing.T) *analysisFixture {
	t.Helper()
	_, queries := newTestDB(t)
	logger := testLogger()

	require.NoError(t, queries.SeedPlans(context.Background(), domain.DefaultPlans))

	provider := mock.New(logger)
	quota := NewQuotaService(queries, logger)

	return &analysisFixture{
		svc:      NewAnalysisService(queries, provider, quota, logger),
		provider: provider,
		quota:    quota,
	}
}

func TestAnalysisService_AnalyzeText(t *testing.T) {
	f := newAnalysisService(t)
	ctx := context.Background()

	require.NoError(t, f.quota.AssignTier(ctx, "alice", domain.SubscriptionTierBasic))

	verdict, recordID, err := f.svc.AnalyzeText(ctx, "alice", "This essay was written by a machine, probably.")
	require.NoError(t, err)
	require.NotNil(t, verdict)
	assert.True(t, recordID > 0)
	assert.Equal(t, 1, f.provider.AnalyzeTextCalls)
	assert.True(t, verdict.AIDetected)

	// The ledger entry is visible in history
	records, err := f.svc.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, recordID, records[0].ID)
	assert.Equal(t, "alice", records[0].UserID)
	assert.Equal(t, domain.ContentTypeText, records[0].ContentType)
	assert.Nil(t, records[0].Feedback)

	// Usage was recorded: 8 words, no files
	snap, err := f.quota.Snapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(8), snap.DailyWordUsage)
	assert.Equal(t, int64(0), snap.DailyFileUsage)
}

func TestAnalysisService_AnalyzeTextValidation(t *testing.T) {
	f := newAnalysisService(t)
	ctx := context.Background()

	_, _, err := f.svc.AnalyzeText(ctx, "", "some text")
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	_, _, err = f.svc.AnalyzeText(ctx, "alice", "   \n\t  ")
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	assert.Equal(t, 0, f.provider.AnalyzeTextCalls)
}

func TestAnalysisService_AnalyzeTextWordLimit(t *testing.T) {
	f := newAnalysisService(t)
	ctx := context.Background()

	require.NoError(t, f.quota.AssignTier(ctx, "alice", domain.SubscriptionTierBasic))
	require.NoError(t, f.quota.RecordUsage(ctx, "alice", 999, 0))

	// 5 words over a 1000 word limit with 999 used
	_, _, err := f.svc.AnalyzeText(ctx, "alice", "one two three four five")
	require.Error(t, err)

	var quotaErr *domain.QuotaError
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, domain.QuotaDimensionWords, quotaErr.Dimension)
	assert.Equal(t, int64(1000), quotaErr.Limit)
	assert.Equal(t, int64(999), quotaErr.Used)

	// The provider was never called
	assert.Equal(t, 0, f.provider.AnalyzeTextCalls)
}

func TestAnalysisService_AnalyzeFileCountsFile(t *testing.T) {
	f := newAnalysisService(t)
	ctx := context.Background()

	require.NoError(t, f.quota.AssignTier(ctx, "alice", domain.SubscriptionTierBasic))

	_, _, err := f.svc.AnalyzeFile(ctx, "alice", "essay.txt", "homework text goes here")
	require.NoError(t, err)

	snap, err := f.quota.Snapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(4), snap.DailyWordUsage)
	assert.Equal(t, int64(1), snap.DailyFileUsage)
}

func TestAnalysisService_AnalyzeFileLimit(t *testing.T) {
	f := newAnalysisService(t)
	ctx := context.Background()

	require.NoError(t, f.quota.AssignTier(ctx, "alice", domain.SubscriptionTierBasic))
	// Basic allows 5 uploads per day
	require.NoError(t, f.quota.RecordUsage(ctx, "alice", 0, 5))

	_, _, err := f.svc.AnalyzeFile(ctx, "alice", "essay.txt", "short text")
	require.Error(t, err)

	var quotaErr *domain.QuotaError
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, domain.QuotaDimensionFiles, quotaErr.Dimension)
}

func TestAnalysisService_AnalyzeImage(t *testing.T) {
	f := newAnalysisService(t)
	ctx := context.Background()

	require.NoError(t, f.quota.AssignTier(ctx, "alice", domain.SubscriptionTierPro))

	verdict, recordID, err := f.svc.AnalyzeImage(ctx, "alice", "page.jpg", []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
	require.NoError(t, err)
	assert.True(t, recordID > 0)
	assert.Equal(t, 1, f.provider.AnalyzeImageCalls)
	assert.NotEmpty(t, verdict.ExtractedText)

	// Extracted text words and one upload count against the quota
	extractedWords := int64(len(strings.Fields(verdict.ExtractedText)))
	snap, err := f.quota.Snapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, extractedWords, snap.DailyWordUsage)
	assert.Equal(t, int64(1), snap.DailyFileUsage)

	// The preview comes from the extracted text
	records, err := f.svc.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.ContentTypeImage, records[0].ContentType)
	assert.Equal(t, verdict.ExtractedText, records[0].ContentPreview)
}

func TestAnalysisService_AnalyzeImageRequiresImagePlan(t *testing.T) {
	f := newAnalysisService(t)
	ctx := context.Background()

	require.NoError(t, f.quota.AssignTier(ctx, "alice", domain.SubscriptionTierBasic))

	_, _, err := f.svc.AnalyzeImage(ctx, "alice", "page.jpg", []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
	require.Error(t, err)

	var quotaErr *domain.QuotaError
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, domain.QuotaDimensionImages, quotaErr.Dimension)
	assert.Equal(t, 0, f.provider.AnalyzeImageCalls)
}

func TestAnalysisService_ProviderFailure(t *testing.T) {
	f := newAnalysisService(t)
	ctx := context.Background()

	require.NoError(t, f.quota.AssignTier(ctx, "alice", domain.SubscriptionTierBasic))
	f.provider.AnalyzeTextError = errors.New("upstream unavailable")

	_, _, err := f.svc.AnalyzeText(ctx, "alice", "some words here")
	require.Error(t, err)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))

	// Nothing was appended and no usage recorded
	records, err := f.svc.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)

	snap, err := f.quota.Snapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.DailyWordUsage)
}

func TestAnalysisService_LearningContextEnrichesPrompt(t *testing.T) {
	f := newAnalysisService(t)
	ctx := context.Background()

	require.NoError(t, f.quota.AssignTier(ctx, "alice", domain.SubscriptionTierUnlimited))

	// No samples stored yet, so the first call carries no context
	_, _, err := f.svc.AnalyzeText(ctx, "alice", "the very first submission")
	require.NoError(t, err)
	assert.Empty(t, f.provider.LastTextParams.LearningContext)

	// The first analysis stored a sample, so the second call sees it
	_, _, err = f.svc.AnalyzeText(ctx, "alice", "a follow-up submission")
	require.NoError(t, err)
	assert.Contains(t, f.provider.LastTextParams.LearningContext, "1 labeled samples are stored")
}

func TestAnalysisService_ListRecentOrder(t *testing.T) {
	f := newAnalysisService(t)
	ctx := context.Background()

	require.NoError(t, f.quota.AssignTier(ctx, "alice", domain.SubscriptionTierUnlimited))

	_, first, err := f.svc.AnalyzeText(ctx, "alice", "the first submission")
	require.NoError(t, err)
	_, second, err := f.svc.AnalyzeText(ctx, "alice", "the second submission")
	require.NoError(t, err)

	records, err := f.svc.ListRecent(ctx, 0) // falls back to the default limit
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first
	assert.Equal(t, second, records[0].ID)
	assert.Equal(t, first, records[1].ID)
}
