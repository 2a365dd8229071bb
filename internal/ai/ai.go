// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ai provides the language-model capability behind the routing,
// synthesis, and interpretation stages. All three call shapes are prompt
// builders over one Backend interface so tests can substitute
// deterministic stubs.
package ai

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/pdiddy/lex-engine/pkg/types"
)

// Backend sends one prompt to a generative model and returns the raw text
// response. Each provider (Claude, Gemini) implements this interface per
// the Strategy pattern.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// defaultCallTimeout bounds one model call when the configuration does
// not set a timeout. A hung API call must fail, not stall the pipeline.
const defaultCallTimeout = 2 * time.Minute

// New constructs a Backend from configuration. An empty provider selects
// Claude.
func New(ctx context.Context, cfg types.AIConfig) (Backend, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultCallTimeout
	}
	switch cfg.Provider {
	case "", "claude":
		return &ClaudeBackend{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
			Client: &http.Client{Timeout: cfg.Timeout},
		}, nil
	case "gemini":
		return NewGemini(ctx, cfg.Model, cfg.APIKey, cfg.Timeout)
	}
	return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// CallWithRetry calls the backend with exponential backoff on transient
// failures. After maxRetries additional attempts the last error is
// returned wrapped.
func CallWithRetry(ctx context.Context, backend Backend, prompt string, maxRetries int) (string, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := backend.Complete(ctx, prompt)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
