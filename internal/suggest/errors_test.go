package suggest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindOther},
		{"sentinel rate limit", fmt.Errorf("pacing: %w", ErrRateLimited), KindRateLimit},
		{"no credential", ErrNoCredential, KindAuth},
		{"typed 429", NewProviderError("openai", "autocomplete", http.StatusTooManyRequests, errors.New("slow down")), KindRateLimit},
		{"typed 401", NewProviderError("openai", "grammar", http.StatusUnauthorized, nil), KindAuth},
		{"typed 403", NewProviderError("anthropic", "grammar", http.StatusForbidden, nil), KindAuth},
		{"typed 404", NewProviderError("gemini", "grammar", http.StatusNotFound, nil), KindNotFound},
		{"typed 503", NewProviderError("gemini", "grammar", http.StatusServiceUnavailable, nil), KindNetwork},
		{"typed 400 falls back to message", NewProviderError("openai", "grammar", http.StatusBadRequest, errors.New("Rate limit reached for requests")), KindRateLimit},
		{"message 429", errors.New("HTTP 429: Too Many Requests"), KindRateLimit},
		{"gemini exhausted", errors.New("Error 429, Status: RESOURCE_EXHAUSTED"), KindRateLimit},
		{"message auth", errors.New("Incorrect API key provided"), KindAuth},
		{"message not found", errors.New("model gpt-9 does not exist"), KindNotFound},
		{"deadline", context.DeadlineExceeded, KindNetwork},
		{"generic", errors.New("boom"), KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestProviderError_Error(t *testing.T) {
	var nilErr *ProviderError
	assert.Equal(t, "", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())

	inner := errors.New("bad gateway")
	err := NewProviderError("openai", "grammar", 502, inner)
	assert.Equal(t, "openai grammar (status 502): bad gateway", err.Error())
	assert.True(t, errors.Is(err, inner))
}

func TestIsRateLimit(t *testing.T) {
	assert.True(t, IsRateLimit(errors.New("rate limit exceeded")))
	assert.False(t, IsRateLimit(errors.New("invalid api key")))
}
