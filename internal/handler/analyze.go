// Package handler contains HTTP handlers for the TesPITAI application.
//
// This file implements the content analysis endpoints: pasted text,
// uploaded documents, and uploaded images.
package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/PBeekay/TesPITAI/internal/domain"
	"github.com/PBeekay/TesPITAI/internal/service"
)

// MaxUploadSize caps multipart uploads at 10MB, matching the upload
// limit advertised to clients.
const MaxUploadSize = 10 << 20

// AnalyzeHandler handles content analysis HTTP requests.
//
// Routes handled:
// - POST /api/check-text     -> CheckText
// - POST /api/check-homework -> CheckHomework
// - POST /api/check-image    -> CheckImage
type AnalyzeHandler struct {
	analysisService service.AnalysisService
	uploadDir       string
	logger          *slog.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler with the required dependencies.
func NewAnalyzeHandler(analysisService service.AnalysisService, uploadDir string, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analysisService: analysisService,
		uploadDir:       uploadDir,
		logger:          logger,
	}
}

// RegisterRoutes registers the analysis routes on the mux.
func (h *AnalyzeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/check-text", h.CheckText)
	mux.HandleFunc("POST /api/check-homework", h.CheckHomework)
	mux.HandleFunc("POST /api/check-image", h.CheckImage)
}

type checkTextRequest struct {
	Content string `json:"content"`
	UserID  string `json:"userId"`
}

type analysisResponse struct {
	Success    bool            `json:"success"`
	AnalysisID int64           `json:"analysis_id,omitempty"`
	Result     *domain.Verdict `json:"result"`
}

// CheckText analyzes pasted text.
func (h *AnalyzeHandler) CheckText(w http.ResponseWriter, r *http.Request) {
	var req checkTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("AnalyzeHandler.CheckText", "Invalid request body"))
		return
	}
	if req.Content == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid("AnalyzeHandler.CheckText", "Text is required"))
		return
	}

	verdict, analysisID, err := h.analysisService.AnalyzeText(r.Context(), req.UserID, req.Content)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, analysisResponse{Success: true, AnalysisID: analysisID, Result: verdict})
}

// CheckHomework analyzes an uploaded document submitted as the
// "homework" multipart field.
func (h *AnalyzeHandler) CheckHomework(w http.ResponseWriter, r *http.Request) {
	const op = "AnalyzeHandler.CheckHomework"

	file, header, userID, ok := h.readUpload(w, r, op, "homework")
	if !ok {
		return
	}
	defer file.Close()

	data, err := h.spoolUpload(file, header.Filename)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "Failed to read uploaded file"))
		return
	}

	verdict, analysisID, err := h.analysisService.AnalyzeFile(r.Context(), userID, header.Filename, string(data))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, analysisResponse{Success: true, AnalysisID: analysisID, Result: verdict})
}

// CheckImage analyzes an uploaded image submitted as the "image"
// multipart field.
func (h *AnalyzeHandler) CheckImage(w http.ResponseWriter, r *http.Request) {
	const op = "AnalyzeHandler.CheckImage"

	file, header, userID, ok := h.readUpload(w, r, op, "image")
	if !ok {
		return
	}
	defer file.Close()

	data, err := h.spoolUpload(file, header.Filename)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "Failed to read uploaded image"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	verdict, analysisID, err := h.analysisService.AnalyzeImage(r.Context(), userID, header.Filename, data, contentType)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, analysisResponse{Success: true, AnalysisID: analysisID, Result: verdict})
}

// readUpload parses the multipart form and extracts the named file along
// with the userId field. Writes the error response itself when parsing
// fails.
func (h *AnalyzeHandler) readUpload(w http.ResponseWriter, r *http.Request, op, field string) (multipart.File, *multipart.FileHeader, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Invalid or oversized upload"))
		return nil, nil, "", false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Missing "+field+" file"))
		return nil, nil, "", false
	}

	return file, header, r.FormValue("userId"), true
}

// spoolUpload copies the upload through a scratch file in the upload
// directory and returns its contents. The scratch file is removed before
// returning; it exists so partially written uploads never sit in memory
// only and can be inspected when removal fails.
func (h *AnalyzeHandler) spoolUpload(file multipart.File, originalName string) ([]byte, error) {
	scratch := filepath.Join(h.uploadDir, uuid.NewString()+filepath.Ext(originalName))

	dst, err := os.Create(scratch)
	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(scratch)
		return nil, err
	}
	if err := dst.Close(); err != nil {
		os.Remove(scratch)
		return nil, err
	}

	data, err := os.ReadFile(scratch)
	if removeErr := os.Remove(scratch); removeErr != nil {
		h.logger.Warn("failed to remove scratch upload", "path", scratch, "error", removeErr)
	}
	return data, err
}
