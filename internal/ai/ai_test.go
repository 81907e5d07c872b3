package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVerdict(t *testing.T) {
	const payload = `{
		"ai_probability": 85.5,
		"ai_detected": true,
		"confidence_score": 90,
		"ai_indicators": ["uniform structure"],
		"human_indicators": [],
		"detailed_analysis": "Very regular prose.",
		"recommendation": "Review manually."
	}`

	tests := []struct {
		name string
		raw  string
	}{
		{"bare json", payload},
		{"json fence", "```json\n" + payload + "\n```"},
		{"plain fence", "```\n" + payload + "\n```"},
		{"surrounding whitespace", "\n\n  " + payload + "  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ParseVerdict(tt.raw)

			assert.False(t, v.Fallback)
			assert.Equal(t, 85.5, v.AIProbability)
			assert.True(t, v.AIDetected)
			assert.Equal(t, 90.0, v.ConfidenceScore)
			assert.Equal(t, []string{"uniform structure"}, v.AIIndicators)
		})
	}
}

func TestParseVerdictFallback(t *testing.T) {
	for _, raw := range []string{
		"",
		"I could not analyze this content.",
		"```json\n{not valid json\n```",
	} {
		v := ParseVerdict(raw)

		assert.True(t, v.Fallback)
		assert.Equal(t, 50.0, v.AIProbability)
		assert.False(t, v.AIDetected)
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(EAIRateLimit))
	assert.True(t, IsRetryable(EAITimeout))
	assert.True(t, IsRetryable(EAIUnavailable))

	assert.False(t, IsRetryable(EAIUnauthorized))
	assert.False(t, IsRetryable(EAIInvalidImage))
	assert.False(t, IsRetryable(errors.New("other")))

	// Wrapped sentinels still match
	assert.True(t, IsRetryable(WrapError("analyze text", EAITimeout)))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError("op", nil))

	err := WrapError("analyze image", EAIInvalidImage)
	assert.True(t, errors.Is(err, EAIInvalidImage))
	assert.Contains(t, err.Error(), "analyze image")
}
