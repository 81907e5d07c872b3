// Package handler contains HTTP handlers for the TesPITAI application.
//
// This file implements the stats endpoint: accuracy figures, verdict
// distribution, and recent analysis history.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/PBeekay/TesPITAI/internal/domain"
	"github.com/PBeekay/TesPITAI/internal/service"
)

// StatsHandler handles statistics HTTP requests.
//
// Routes handled:
// - GET /api/stats -> Stats
type StatsHandler struct {
	statsService    service.StatsService
	analysisService service.AnalysisService
	logger          *slog.Logger
}

// NewStatsHandler creates a new StatsHandler with the required dependencies.
func NewStatsHandler(statsService service.StatsService, analysisService service.AnalysisService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		statsService:    statsService,
		analysisService: analysisService,
		logger:          logger,
	}
}

// RegisterRoutes registers the stats routes on the mux.
func (h *StatsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stats", h.Stats)
}

type detectionStatJSON struct {
	ActualResult     string  `json:"actual_result"`
	Count            int64   `json:"count"`
	AvgAIProbability float64 `json:"avg_ai_probability"`
}

type historyEntryJSON struct {
	ID             int64   `json:"id"`
	ContentType    string  `json:"content_type"`
	FileName       string  `json:"file_name,omitempty"`
	ContentPreview string  `json:"content_preview"`
	AIProbability  float64 `json:"ai_probability"`
	AIDetected     bool    `json:"ai_detected"`
	CreatedAt      string  `json:"created_at"`
	IsCorrect      *bool   `json:"is_correct,omitempty"`
	ActualResult   string  `json:"actual_result,omitempty"`
}

type dailyMetricsJSON struct {
	Date               string  `json:"date"`
	TotalAnalyses      int64   `json:"total_analyses"`
	CorrectPredictions int64   `json:"correct_predictions"`
	AccuracyRate       float64 `json:"accuracy_rate"`
}

type statsResponse struct {
	Success         bool                `json:"success"`
	AccuracyRate    *float64            `json:"accuracy_rate"`
	TotalFeedback   int64               `json:"total_feedback"`
	CorrectCount    int64               `json:"correct_count"`
	LearningSamples int64               `json:"learning_samples"`
	DetectionStats  []detectionStatJSON `json:"detection_stats"`
	DailyMetrics    []dailyMetricsJSON  `json:"daily_metrics"`
	RecentAnalyses  []historyEntryJSON  `json:"recent_analyses"`
}

// Stats returns the aggregate accuracy report with recent history.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	overview, err := h.statsService.Overview(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	recent, err := h.analysisService.ListRecent(r.Context(), service.DefaultHistoryLimit)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := statsResponse{
		Success:         true,
		AccuracyRate:    overview.AccuracyRate,
		TotalFeedback:   overview.TotalFeedback,
		CorrectCount:    overview.CorrectCount,
		LearningSamples: overview.LearningSamples,
		DetectionStats:  make([]detectionStatJSON, 0, len(overview.DetectionStats)),
		DailyMetrics:    make([]dailyMetricsJSON, 0, len(overview.DailyMetrics)),
		RecentAnalyses:  make([]historyEntryJSON, 0, len(recent)),
	}

	for _, s := range overview.DetectionStats {
		resp.DetectionStats = append(resp.DetectionStats, detectionStatJSON{
			ActualResult:     string(s.ActualResult),
			Count:            s.Count,
			AvgAIProbability: s.AvgAIProbability,
		})
	}
	for _, m := range overview.DailyMetrics {
		resp.DailyMetrics = append(resp.DailyMetrics, dailyMetricsJSON{
			Date:               m.Date,
			TotalAnalyses:      m.TotalAnalyses,
			CorrectPredictions: m.CorrectPredictions,
			AccuracyRate:       m.AccuracyRate,
		})
	}
	for _, a := range recent {
		resp.RecentAnalyses = append(resp.RecentAnalyses, toHistoryJSON(a))
	}

	writeJSON(w, http.StatusOK, resp)
}

func toHistoryJSON(a domain.AnalysisRecord) historyEntryJSON {
	entry := historyEntryJSON{
		ID:             a.ID,
		ContentType:    string(a.ContentType),
		FileName:       a.FileName,
		ContentPreview: a.ContentPreview,
		AIProbability:  a.AIProbability,
		AIDetected:     a.AIDetected,
		CreatedAt:      a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if a.Feedback != nil {
		correct := a.Feedback.IsCorrect
		entry.IsCorrect = &correct
		entry.ActualResult = string(a.Feedback.ActualResult)
	}
	return entry
}
