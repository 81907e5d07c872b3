// Package handler contains HTTP handlers for the TesPITAI application.
//
// This file implements the feedback endpoint.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/PBeekay/TesPITAI/internal/domain"
	"github.com/PBeekay/TesPITAI/internal/service"
)

// FeedbackHandler handles feedback HTTP requests.
//
// Routes handled:
// - POST /api/feedback -> Submit
type FeedbackHandler struct {
	feedbackService service.FeedbackService
	logger          *slog.Logger
}

// NewFeedbackHandler creates a new FeedbackHandler with the required dependencies.
func NewFeedbackHandler(feedbackService service.FeedbackService, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		logger:          logger,
	}
}

// RegisterRoutes registers the feedback routes on the mux.
func (h *FeedbackHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/feedback", h.Submit)
}

type feedbackRequest struct {
	AnalysisID    int64  `json:"analysisId"`
	UserID        string `json:"userId"`
	IsCorrect     bool   `json:"isCorrect"`
	ActualResult  string `json:"actualResult"`
	FeedbackNotes string `json:"feedbackNotes"`
}

type feedbackResponse struct {
	Success    bool  `json:"success"`
	FeedbackID int64 `json:"feedback_id"`
}

// Submit records a user correction for a past analysis.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("FeedbackHandler.Submit", "Invalid request body"))
		return
	}

	record, err := h.feedbackService.Submit(r.Context(), service.SubmitFeedbackParams{
		AnalysisID:    req.AnalysisID,
		UserID:        req.UserID,
		IsCorrect:     req.IsCorrect,
		ActualResult:  domain.ActualResult(req.ActualResult),
		FeedbackNotes: req.FeedbackNotes,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, feedbackResponse{Success: true, FeedbackID: record.ID})
}
