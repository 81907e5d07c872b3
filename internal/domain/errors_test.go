package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"domain error", Invalid("op", "bad input"), EINVALID},
		{"wrapped domain error", fmt.Errorf("outer: %w", NotFound("op", "user", "alice")), ENOTFOUND},
		{"quota error maps to rate limit", QuotaExceeded("op", QuotaDimensionWords, 1000, 950), ERATELIMIT},
		{"plain error is internal", errors.New("boom"), EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "bad input", ErrorMessage(Invalid("op", "bad input")))

	// Internal details are hidden
	internal := Internal(errors.New("connection refused"), "op", "db down")
	assert.NotContains(t, ErrorMessage(internal), "connection refused")

	// Plain errors are hidden too
	assert.NotContains(t, ErrorMessage(errors.New("secret detail")), "secret detail")
}

func TestQuotaErrorMessages(t *testing.T) {
	words := QuotaExceeded("op", QuotaDimensionWords, 1000, 950)
	assert.Contains(t, words.Error(), "word limit")
	assert.Contains(t, words.Error(), "1000")
	assert.Contains(t, words.Error(), "950")

	files := QuotaExceeded("op", QuotaDimensionFiles, 5, 5)
	assert.Contains(t, files.Error(), "file upload limit")

	images := QuotaExceeded("op", QuotaDimensionImages, 0, 0)
	assert.Contains(t, images.Error(), "not included")
}

func TestErrorOp(t *testing.T) {
	assert.Equal(t, "Service.Op", ErrorOp(Invalid("Service.Op", "bad")))
	assert.Equal(t, "Service.Op", ErrorOp(QuotaExceeded("Service.Op", QuotaDimensionWords, 1, 1)))
	assert.Equal(t, "", ErrorOp(errors.New("plain")))
}
