// Package service contains the business logic layer.
//
// This file implements the analysis service: quota enforcement, AI
// verdicts, ledger appends, and learning sample capture.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PBeekay/TesPITAI/internal/ai"
	"github.com/PBeekay/TesPITAI/internal/domain"
	"github.com/PBeekay/TesPITAI/internal/metrics"
	"github.com/PBeekay/TesPITAI/internal/repository"
)

// DefaultHistoryLimit caps history listings when callers do not specify one.
const DefaultHistoryLimit = 10

// LearningSampleLimit caps how many stored samples feed prompt enrichment.
const LearningSampleLimit = 100

// =============================================================================
// Interface Definition
// =============================================================================

// AnalysisService defines operations for running content analyses.
type AnalysisService interface {
	// AnalyzeText runs detection on pasted text.
	// Returns *domain.QuotaError when the daily word limit would be exceeded.
	AnalyzeText(ctx context.Context, userID, text string) (*domain.Verdict, int64, error)

	// AnalyzeFile runs detection on text extracted from an uploaded document.
	// Counts against both the word and file dimensions.
	AnalyzeFile(ctx context.Context, userID, fileName, content string) (*domain.Verdict, int64, error)

	// AnalyzeImage runs detection on a photographed or scanned document.
	// Requires a plan with image upload; counts one file upload.
	AnalyzeImage(ctx context.Context, userID, fileName string, imageData []byte, contentType string) (*domain.Verdict, int64, error)

	// ListRecent returns the newest ledger entries with attached feedback.
	ListRecent(ctx context.Context, limit int64) ([]domain.AnalysisRecord, error)
}

// =============================================================================
// Implementation
// =============================================================================

type analysisService struct {
	queries  *repository.Queries
	provider ai.Provider
	quota    QuotaService
	logger   *slog.Logger
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(queries *repository.Queries, provider ai.Provider, quota QuotaService, logger *slog.Logger) AnalysisService {
	return &analysisService{
		queries:  queries,
		provider: provider,
		quota:    quota,
		logger:   logger,
	}
}

// AnalyzeText runs detection on pasted text.
func (s *analysisService) AnalyzeText(ctx context.Context, userID, text string) (*domain.Verdict, int64, error) {
	const op = "AnalysisService.AnalyzeText"
	return s.analyze(ctx, op, analyzeParams{
		userID:      userID,
		contentType: domain.ContentTypeText,
		content:     text,
		files:       0,
	})
}

// AnalyzeFile runs detection on text extracted from an uploaded document.
func (s *analysisService) AnalyzeFile(ctx context.Context, userID, fileName, content string) (*domain.Verdict, int64, error) {
	const op = "AnalysisService.AnalyzeFile"
	return s.analyze(ctx, op, analyzeParams{
		userID:      userID,
		contentType: domain.ContentTypeFile,
		fileName:    fileName,
		content:     content,
		files:       1,
	})
}

type analyzeParams struct {
	userID      string
	contentType domain.ContentType
	fileName    string
	content     string
	files       int64
}

// analyze is the shared text pipeline: quota check, AI verdict, ledger
// append, learning sample, usage recording. The quota check and usage
// recording run under the user's usage lock so concurrent requests
// cannot both pass a nearly exhausted limit.
func (s *analysisService) analyze(ctx context.Context, op string, params analyzeParams) (*domain.Verdict, int64, error) {
	content := strings.TrimSpace(params.content)
	if params.userID == "" {
		return nil, 0, domain.Invalid(op, "User ID is required")
	}
	if content == "" {
		return nil, 0, domain.Invalid(op, "Content is required")
	}

	words := int64(len(strings.Fields(content)))

	if err := s.quota.WithUsageLock(params.userID, func() error {
		decision, err := s.quota.CheckLimits(ctx, params.userID, words)
		if err != nil {
			return err
		}
		if !decision.CanAnalyzeText {
			metrics.QuotaDenials.WithLabelValues(string(domain.QuotaDimensionWords)).Inc()
			return domain.QuotaExceeded(op, domain.QuotaDimensionWords, decision.WordLimit, decision.DailyWordUsage)
		}
		if params.files > 0 && !decision.CanUploadFile {
			metrics.QuotaDenials.WithLabelValues(string(domain.QuotaDimensionFiles)).Inc()
			return domain.QuotaExceeded(op, domain.QuotaDimensionFiles, decision.FileUploadLimit, decision.DailyFileUsage)
		}
		return nil
	}); err != nil {
		return nil, 0, err
	}

	verdict, err := s.provider.AnalyzeText(ctx, ai.AnalyzeTextParams{
		Text:            content,
		UserID:          params.userID,
		LearningContext: s.learningContext(ctx),
	})
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues(string(params.contentType), "failed").Inc()
		metrics.AIAPICalls.WithLabelValues("error").Inc()
		return nil, 0, domain.Internal(err, op, "Content analysis failed")
	}
	metrics.AIAPICalls.WithLabelValues("success").Inc()

	recordID := s.finishAnalysis(ctx, params, content, words, verdict)
	return verdict, recordID, nil
}

// AnalyzeImage runs detection on a photographed or scanned document.
func (s *analysisService) AnalyzeImage(ctx context.Context, userID, fileName string, imageData []byte, contentType string) (*domain.Verdict, int64, error) {
	const op = "AnalysisService.AnalyzeImage"

	if userID == "" {
		return nil, 0, domain.Invalid(op, "User ID is required")
	}
	if len(imageData) == 0 {
		return nil, 0, domain.Invalid(op, "Image data is required")
	}

	if err := s.quota.WithUsageLock(userID, func() error {
		decision, err := s.quota.CheckLimits(ctx, userID, 0)
		if err != nil {
			return err
		}
		if !decision.CanUploadImage {
			metrics.QuotaDenials.WithLabelValues(string(domain.QuotaDimensionImages)).Inc()
			return domain.QuotaExceeded(op, domain.QuotaDimensionImages, 0, 0)
		}
		if !decision.CanUploadFile {
			metrics.QuotaDenials.WithLabelValues(string(domain.QuotaDimensionFiles)).Inc()
			return domain.QuotaExceeded(op, domain.QuotaDimensionFiles, decision.FileUploadLimit, decision.DailyFileUsage)
		}
		return nil
	}); err != nil {
		return nil, 0, err
	}

	verdict, err := s.provider.AnalyzeImage(ctx, ai.AnalyzeImageParams{
		ImageData:       imageData,
		ContentType:     contentType,
		UserID:          userID,
		LearningContext: s.learningContext(ctx),
	})
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues(string(domain.ContentTypeImage), "failed").Inc()
		metrics.AIAPICalls.WithLabelValues("error").Inc()
		return nil, 0, domain.Internal(err, op, "Image analysis failed")
	}
	metrics.AIAPICalls.WithLabelValues("success").Inc()

	// The extracted text feeds the preview and the learning features;
	// its words count against the daily word limit like pasted text
	extracted := verdict.ExtractedText
	words := int64(len(strings.Fields(extracted)))

	recordID := s.finishAnalysis(ctx, analyzeParams{
		userID:      userID,
		contentType: domain.ContentTypeImage,
		fileName:    fileName,
		files:       1,
	}, extracted, words, verdict)
	return verdict, recordID, nil
}

// finishAnalysis appends the ledger entry, stores a provisional learning
// sample, and records usage. Persistence failures after a successful
// verdict are logged and do not fail the request.
func (s *analysisService) finishAnalysis(ctx context.Context, params analyzeParams, content string, words int64, verdict *domain.Verdict) int64 {
	resultJSON, err := json.Marshal(verdict)
	if err != nil {
		s.logger.Error("failed to serialize verdict", "error", err)
		resultJSON = []byte("{}")
	}

	recordID, err := s.queries.InsertAnalysis(ctx, repository.InsertAnalysisParams{
		UserID:         params.userID,
		ContentType:    params.contentType,
		FileName:       params.fileName,
		ContentPreview: domain.TruncatePreview(content),
		AIProbability:  verdict.AIProbability,
		AIDetected:     verdict.AIDetected,
		AnalysisResult: string(resultJSON),
	})
	if err != nil {
		s.logger.Error("failed to append analysis ledger", "user_id", params.userID, "error", err)
	}

	// Provisional learning sample labeled by the model's own verdict
	if content != "" {
		label := domain.ActualResultHuman
		if verdict.AIDetected {
			label = domain.ActualResultAI
		}
		s.storeLearningSample(ctx, params.contentType, content, label, verdict.ConfidenceScore)
	}

	if err := s.quota.RecordUsage(ctx, params.userID, words, params.files); err != nil {
		// Users on the default basic fallback have no subscription row
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			s.logger.Warn("usage not recorded, no subscription row", "user_id", params.userID)
		} else {
			s.logger.Error("failed to record usage", "user_id", params.userID, "error", err)
		}
	}

	metrics.AnalysesTotal.WithLabelValues(string(params.contentType), "completed").Inc()
	if verdict.AIDetected {
		metrics.AIDetections.Inc()
	}

	return recordID
}

// learningContext builds a prompt block summarizing stored samples and
// confirmed accuracy, so the model can weigh signals that misled it
// before. Returns "" when no samples exist; query failures also degrade
// to "" so enrichment never blocks an analysis.
func (s *analysisService) learningContext(ctx context.Context) string {
	samples, err := s.queries.ListLearningSamples(ctx, LearningSampleLimit)
	if err != nil {
		s.logger.Warn("failed to load learning samples", "error", err)
		return ""
	}
	if len(samples) == 0 {
		return ""
	}

	// A sample labeled AI with low confidence, or human with high
	// confidence, means the verdict and the label disagreed
	var misjudged int
	for _, sample := range samples {
		if (sample.ActualResult == domain.ActualResultAI && sample.ConfidenceScore < 70) ||
			(sample.ActualResult == domain.ActualResultHuman && sample.ConfidenceScore > 70) {
			misjudged++
		}
	}

	var sb strings.Builder
	sb.WriteString("**Learning from past analyses:**\n")
	fmt.Fprintf(&sb, "- %d labeled samples are stored\n", len(samples))

	total, correct, err := s.queries.AccuracyOverWindow(ctx, AccuracyWindowDays)
	if err != nil {
		s.logger.Warn("failed to compute accuracy window", "error", err)
	} else if total > 0 {
		fmt.Fprintf(&sb, "- Verified accuracy over the last %d days: %.1f%%\n",
			AccuracyWindowDays, float64(correct)/float64(total)*100)
	}
	if misjudged > 0 {
		fmt.Fprintf(&sb, "- %d earlier verdicts disagreed with their labels; learn from those mistakes and analyze more carefully\n", misjudged)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// storeLearningSample extracts features and appends a training example.
func (s *analysisService) storeLearningSample(ctx context.Context, contentType domain.ContentType, content string, label domain.ActualResult, confidence float64) {
	features := ExtractFeatures(content)
	featureJSON, err := json.Marshal(features)
	if err != nil {
		s.logger.Error("failed to serialize features", "error", err)
		return
	}

	if _, err := s.queries.InsertLearningSample(ctx, repository.InsertLearningSampleParams{
		ContentType:     contentType,
		ContentFeatures: string(featureJSON),
		ActualResult:    label,
		ConfidenceScore: confidence,
	}); err != nil {
		s.logger.Error("failed to store learning sample", "error", err)
		return
	}
	metrics.LearningSamplesStored.Inc()
}

// ListRecent returns the newest ledger entries with attached feedback.
func (s *analysisService) ListRecent(ctx context.Context, limit int64) ([]domain.AnalysisRecord, error) {
	const op = "AnalysisService.ListRecent"

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	records, err := s.queries.ListRecentAnalyses(ctx, limit)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to list analyses")
	}
	return records, nil
}
