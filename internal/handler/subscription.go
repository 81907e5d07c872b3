// Package handler contains HTTP handlers for the TesPITAI application.
//
// This file implements the subscription plan and usage limit endpoints.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/PBeekay/TesPITAI/internal/domain"
	"github.com/PBeekay/TesPITAI/internal/service"
)

// SubscriptionHandler handles subscription HTTP requests.
//
// Routes handled:
// - GET  /api/subscription-plans      -> ListPlans
// - POST /api/update-subscription     -> UpdateSubscription
// - GET  /api/usage-limits/{userId}   -> UsageLimits
type SubscriptionHandler struct {
	quotaService service.QuotaService
	logger       *slog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler with the required dependencies.
func NewSubscriptionHandler(quotaService service.QuotaService, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		quotaService: quotaService,
		logger:       logger,
	}
}

// RegisterRoutes registers the subscription routes on the mux.
func (h *SubscriptionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/subscription-plans", h.ListPlans)
	mux.HandleFunc("POST /api/update-subscription", h.UpdateSubscription)
	mux.HandleFunc("GET /api/usage-limits/{userId}", h.UsageLimits)
}

type planJSON struct {
	Tier            string  `json:"tier"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	WordLimit       int64   `json:"word_limit"`
	FileUploadLimit int64   `json:"file_upload_limit"`
	HasImageUpload  bool    `json:"has_image_upload"`
	IsUnlimited     bool    `json:"is_unlimited"`
}

// ListPlans returns the tier catalog ordered by price.
func (h *SubscriptionHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.quotaService.ListPlans(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]planJSON, 0, len(plans))
	for _, p := range plans {
		out = append(out, planJSON{
			Tier:            string(p.Tier),
			Name:            p.Name,
			Description:     p.Description,
			Price:           p.Price,
			WordLimit:       p.WordLimit,
			FileUploadLimit: p.FileUploadLimit,
			HasImageUpload:  p.HasImageUpload,
			IsUnlimited:     p.IsUnlimited,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"plans":   out,
	})
}

type updateSubscriptionRequest struct {
	UserID string `json:"userId"`
	Tier   string `json:"subscriptionTier"`
}

// UpdateSubscription switches the user to a new tier with zeroed counters.
func (h *SubscriptionHandler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	const op = "SubscriptionHandler.UpdateSubscription"

	var req updateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Invalid request body"))
		return
	}
	if req.UserID == "" || req.Tier == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "User ID and tier are required"))
		return
	}

	if err := h.quotaService.AssignTier(r.Context(), req.UserID, domain.SubscriptionTier(req.Tier)); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"tier":    req.Tier,
	})
}

// UsageLimits reports what the user could do right now under their plan.
func (h *SubscriptionHandler) UsageLimits(w http.ResponseWriter, r *http.Request) {
	const op = "SubscriptionHandler.UsageLimits"

	userID := r.PathValue("userId")
	if userID == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "User ID is required"))
		return
	}

	decision, err := h.quotaService.CheckLimits(r.Context(), userID, 0)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"limits": map[string]any{
			"can_analyze_text":  decision.CanAnalyzeText,
			"can_upload_file":   decision.CanUploadFile,
			"can_upload_image":  decision.CanUploadImage,
			"word_limit":        decision.WordLimit,
			"file_upload_limit": decision.FileUploadLimit,
			"daily_word_usage":  decision.DailyWordUsage,
			"daily_file_usage":  decision.DailyFileUsage,
		},
	})
}
