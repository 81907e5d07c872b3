// Package gemini implements the ai.Provider interface using Google's
// Gemini API via the official Go SDK.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/PBeekay/TesPITAI/internal/ai"
	"github.com/PBeekay/TesPITAI/internal/domain"
)

const (
	// DefaultModel is the default Gemini model to use
	DefaultModel = "gemini-2.5-flash"

	// MaxImageSize is the maximum image size in bytes (20MB)
	MaxImageSize = 20 * 1024 * 1024

	// MaxTextLength is the maximum text length submitted per request
	MaxTextLength = 100_000
)

// Config contains configuration for the Gemini provider.
type Config struct {
	APIKey         string
	Model          string
	ProviderConfig ai.ProviderConfig
}

// Provider implements the ai.Provider interface using the Gemini API.
type Provider struct {
	config Config
	client *genai.Client
	logger *slog.Logger
}

var _ ai.Provider = (*Provider)(nil)

// New creates a new Gemini AI provider.
func New(ctx context.Context, config Config, logger *slog.Logger) (*Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	// Set defaults
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.ProviderConfig.MaxRetries == 0 {
		config.ProviderConfig.MaxRetries = 3
	}
	if config.ProviderConfig.RetryBaseDelay == 0 {
		config.ProviderConfig.RetryBaseDelay = 1 * time.Second
	}
	if config.ProviderConfig.RequestTimeout == 0 {
		config.ProviderConfig.RequestTimeout = 60 * time.Second
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Provider{
		config: config,
		client: client,
		logger: logger,
	}, nil
}

// Close releases the underlying API client.
func (p *Provider) Close() error {
	return p.client.Close()
}

// AnalyzeText judges whether text was machine-generated.
func (p *Provider) AnalyzeText(ctx context.Context, params ai.AnalyzeTextParams) (*domain.Verdict, error) {
	text := strings.TrimSpace(params.Text)
	if text == "" {
		return nil, ai.WrapError("analyze text", fmt.Errorf("text is required"))
	}
	text = truncateUTF8(text, MaxTextLength)

	raw, err := p.generateWithRetry(ctx, genai.Text(buildTextAnalysisPrompt(text, params.LearningContext)))
	if err != nil {
		return nil, ai.WrapError("analyze text", err)
	}
	return ai.ParseVerdict(raw), nil
}

// AnalyzeImage extracts text from an image and judges it.
func (p *Provider) AnalyzeImage(ctx context.Context, params ai.AnalyzeImageParams) (*domain.Verdict, error) {
	if err := validateImageParams(params); err != nil {
		return nil, ai.WrapError("analyze image", err)
	}

	format := strings.TrimPrefix(params.ContentType, "image/")
	raw, err := p.generateWithRetry(ctx,
		genai.ImageData(format, params.ImageData),
		genai.Text(buildImageAnalysisPrompt(params.LearningContext)),
	)
	if err != nil {
		return nil, ai.WrapError("analyze image", err)
	}
	return ai.ParseVerdict(raw), nil
}

// generateWithRetry calls the model with exponential backoff on transient errors.
func (p *Provider) generateWithRetry(ctx context.Context, parts ...genai.Part) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= p.config.ProviderConfig.MaxRetries; attempt++ {
		raw, err := p.generate(ctx, parts...)
		if err == nil {
			return raw, nil
		}

		lastErr = err

		// Only retry on retryable errors
		if !ai.IsRetryable(err) {
			return "", err
		}

		if attempt >= p.config.ProviderConfig.MaxRetries {
			break
		}

		// Exponential backoff: base * 2^(attempt-1)
		delay := p.config.ProviderConfig.RetryBaseDelay * time.Duration(1<<(attempt-1))
		p.logger.Info("Retrying AI request", "attempt", attempt, "delay", delay, "error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", lastErr
}

// generate executes a single model call and extracts the text response.
func (p *Provider) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.ProviderConfig.RequestTimeout)
	defer cancel()

	model := p.client.GenerativeModel(p.config.Model)
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", mapAPIError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response content")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in response")
	}
	return sb.String(), nil
}

// mapAPIError maps SDK errors to the provider sentinel errors.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "context deadline exceeded"):
		return ai.EAITimeout
	case strings.Contains(msg, "quota") || strings.Contains(msg, "429") || strings.Contains(msg, "resource exhausted"):
		return ai.EAIRateLimit
	case strings.Contains(msg, "api key") || strings.Contains(msg, "401") || strings.Contains(msg, "permission"):
		return ai.EAIUnauthorized
	case strings.Contains(msg, "503") || strings.Contains(msg, "unavailable") || strings.Contains(msg, "500"):
		return ai.EAIUnavailable
	default:
		return err
	}
}

// truncateUTF8 caps s at max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// validateImageParams validates the image analysis parameters.
func validateImageParams(params ai.AnalyzeImageParams) error {
	if len(params.ImageData) == 0 {
		return ai.EAIInvalidImage
	}
	if len(params.ImageData) > MaxImageSize {
		return fmt.Errorf("%w: image size %d exceeds maximum %d", ai.EAIInvalidImage, len(params.ImageData), MaxImageSize)
	}
	if params.ContentType == "" {
		return fmt.Errorf("%w: content type is required", ai.EAIInvalidImage)
	}
	validTypes := map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	}
	if !validTypes[params.ContentType] {
		return fmt.Errorf("%w: unsupported content type %s", ai.EAIInvalidImage, params.ContentType)
	}
	return nil
}
