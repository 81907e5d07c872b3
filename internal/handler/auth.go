// Package handler contains HTTP handlers for the TesPITAI application.
//
// This file implements the login handler.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/PBeekay/TesPITAI/internal/domain"
	"github.com/PBeekay/TesPITAI/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
//
// Routes handled:
// - POST /api/login -> Login
type AuthHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the required dependencies.
func NewAuthHandler(userService service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginUser struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	LastLogin string `json:"last_login,omitempty"`
}

type loginSubscription struct {
	Tier            string  `json:"tier"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	WordLimit       int64   `json:"word_limit"`
	FileUploadLimit int64   `json:"file_upload_limit"`
	HasImageUpload  bool    `json:"has_image_upload"`
	IsUnlimited     bool    `json:"is_unlimited"`
	DailyWordUsage  int64   `json:"daily_word_usage"`
	DailyFileUsage  int64   `json:"daily_file_usage"`
}

type loginResponse struct {
	Success      bool              `json:"success"`
	User         loginUser         `json:"user"`
	Subscription loginSubscription `json:"subscription"`
}

// Login authenticates a user by username and password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("AuthHandler.Login", "Invalid request body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid("AuthHandler.Login", "Username and password are required"))
		return
	}

	result, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := loginResponse{
		Success: true,
		User: loginUser{
			Username: result.User.Username,
			Name:     result.User.DisplayName(),
			Role:     string(result.User.Role),
		},
		Subscription: loginSubscription{
			Tier:            string(result.Subscription.Plan.Tier),
			Name:            result.Subscription.Plan.Name,
			Price:           result.Subscription.Plan.Price,
			WordLimit:       result.Subscription.Plan.WordLimit,
			FileUploadLimit: result.Subscription.Plan.FileUploadLimit,
			HasImageUpload:  result.Subscription.Plan.HasImageUpload,
			IsUnlimited:     result.Subscription.Plan.IsUnlimited,
			DailyWordUsage:  result.Subscription.DailyWordUsage,
			DailyFileUsage:  result.Subscription.DailyFileUsage,
		},
	}
	if result.User.LastLogin != nil {
		resp.User.LastLogin = result.User.LastLogin.Format("2006-01-02T15:04:05Z07:00")
	}

	writeJSON(w, http.StatusOK, resp)
}
