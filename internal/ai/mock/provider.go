package mock

import (
	"context"
	"log/slog"

	"github.com/PBeekay/TesPITAI/internal/ai"
	"github.com/PBeekay/TesPITAI/internal/domain"
)

// Provider is a mock AI provider for testing and development
type Provider struct {
	logger *slog.Logger

	// Configurable responses for testing
	AnalyzeTextResponse  *domain.Verdict
	AnalyzeTextError     error
	AnalyzeImageResponse *domain.Verdict
	AnalyzeImageError    error

	// Call tracking for testing
	AnalyzeTextCalls  int
	AnalyzeImageCalls int
	LastTextParams    ai.AnalyzeTextParams
	LastImageParams   ai.AnalyzeImageParams
}

var _ ai.Provider = (*Provider)(nil)

// New creates a new mock AI provider
func New(logger *slog.Logger) *Provider {
	return &Provider{
		logger: logger,
	}
}

// AnalyzeText returns a canned text verdict
func (p *Provider) AnalyzeText(ctx context.Context, params ai.AnalyzeTextParams) (*domain.Verdict, error) {
	p.AnalyzeTextCalls++
	p.LastTextParams = params

	// If a custom response or error is set, use it
	if p.AnalyzeTextError != nil {
		return nil, p.AnalyzeTextError
	}
	if p.AnalyzeTextResponse != nil {
		return p.AnalyzeTextResponse, nil
	}

	// Default canned response
	return &domain.Verdict{
		AIProbability:   72,
		AIDetected:      true,
		ConfidenceScore: 81,
		AIIndicators: []string{
			"Uniform sentence length throughout",
			"Generic transitions between paragraphs",
		},
		HumanIndicators: []string{
			"Occasional informal word choice",
		},
		DetailedAnalysis: "The text shows consistent structural regularity typical of model output, with few personal markers.",
		Recommendation:   "Review the flagged passages before drawing conclusions.",
	}, nil
}

// AnalyzeImage returns a canned image verdict
func (p *Provider) AnalyzeImage(ctx context.Context, params ai.AnalyzeImageParams) (*domain.Verdict, error) {
	p.AnalyzeImageCalls++
	p.LastImageParams = params

	// If a custom response or error is set, use it
	if p.AnalyzeImageError != nil {
		return nil, p.AnalyzeImageError
	}
	if p.AnalyzeImageResponse != nil {
		return p.AnalyzeImageResponse, nil
	}

	// Default canned response
	return &domain.Verdict{
		AIProbability:   34,
		AIDetected:      false,
		ConfidenceScore: 64,
		AIIndicators: []string{
			"Neatly structured paragraphs",
		},
		HumanIndicators: []string{
			"Visible corrections and crossed-out words",
			"Irregular handwriting pressure",
		},
		DetailedAnalysis: "The photographed text shows edit marks and irregularities consistent with handwritten work.",
		Recommendation:   "The content appears human-written.",
		ExtractedText:    "Sample text extracted from the submitted image.",
	}, nil
}

// Reset clears call counters and custom responses for testing
func (p *Provider) Reset() {
	p.AnalyzeTextCalls = 0
	p.AnalyzeImageCalls = 0
	p.LastTextParams = ai.AnalyzeTextParams{}
	p.LastImageParams = ai.AnalyzeImageParams{}
	p.AnalyzeTextResponse = nil
	p.AnalyzeTextError = nil
	p.AnalyzeImageResponse = nil
	p.AnalyzeImageError = nil
}
