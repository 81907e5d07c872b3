package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PBeekay/TesPITAI/internal/domain"
)

// Provider defines the interface for AI-generated content detection.
type Provider interface {
	// AnalyzeText judges whether the given text was machine-generated.
	AnalyzeText(ctx context.Context, params AnalyzeTextParams) (*domain.Verdict, error)

	// AnalyzeImage reads the text out of an image and judges it.
	AnalyzeImage(ctx context.Context, params AnalyzeImageParams) (*domain.Verdict, error)
}

// AnalyzeTextParams contains parameters for text analysis.
type AnalyzeTextParams struct {
	Text   string // Content to analyze
	UserID string // User ID for usage tracking

	// LearningContext is an optional prompt block summarizing past
	// detection performance; empty when no samples exist yet.
	LearningContext string
}

// AnalyzeImageParams contains parameters for image analysis.
type AnalyzeImageParams struct {
	ImageData       []byte // Raw image bytes
	ContentType     string // MIME type (e.g., "image/png")
	UserID          string // User ID for usage tracking
	LearningContext string
}

// ProviderConfig contains common configuration for AI providers.
type ProviderConfig struct {
	MaxRetries     int           // Maximum retry attempts for transient errors
	RetryBaseDelay time.Duration // Base delay for exponential backoff
	RequestTimeout time.Duration // Timeout for individual requests
}

// Error codes for AI provider operations
var (
	// EAIRateLimit indicates the API rate limit has been exceeded
	EAIRateLimit = errors.New("ai provider rate limit exceeded")

	// EAIInvalidImage indicates the image format or content is invalid
	EAIInvalidImage = errors.New("invalid image format or content")

	// EAITimeout indicates the request timed out
	EAITimeout = errors.New("ai request timed out")

	// EAIUnavailable indicates the AI service is temporarily unavailable
	EAIUnavailable = errors.New("ai service temporarily unavailable")

	// EAIUnauthorized indicates invalid API credentials
	EAIUnauthorized = errors.New("ai provider authentication failed")
)

// IsRetryable returns true if the error is a transient error that can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, EAIRateLimit) ||
		errors.Is(err, EAITimeout) ||
		errors.Is(err, EAIUnavailable)
}

// WrapError wraps an error with context about the AI operation.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("ai %s: %w", operation, err)
}

// ParseVerdict decodes a model response into a verdict. Models frequently
// wrap JSON in markdown code fences, so those are stripped first. When the
// payload still does not decode, a neutral fallback verdict is returned
// instead of an error so one malformed response does not fail the request.
func ParseVerdict(raw string) *domain.Verdict {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var v domain.Verdict
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return FallbackVerdict()
	}
	return &v
}

// FallbackVerdict is the neutral verdict substituted when a model response
// cannot be parsed.
func FallbackVerdict() *domain.Verdict {
	return &domain.Verdict{
		AIProbability:    50,
		AIDetected:       false,
		ConfidenceScore:  30,
		AIIndicators:     []string{"analysis could not be completed"},
		HumanIndicators:  []string{"analysis could not be completed"},
		DetailedAnalysis: "The detection model returned an unreadable response.",
		Recommendation:   "Try again or review the content manually.",
		Fallback:         true,
	}
}
