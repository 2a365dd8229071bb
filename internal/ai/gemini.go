// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiBackend calls the Gemini API through the official client.
type GeminiBackend struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

// NewGemini creates a Gemini backend for the given model. A timeout of
// zero falls back to the package default.
func NewGemini(ctx context.Context, model, apiKey string, timeout time.Duration) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &GeminiBackend{
		client:  client,
		model:   client.GenerativeModel(model),
		timeout: timeout,
	}, nil
}

// Complete sends the prompt and returns the concatenated text parts of
// the first candidate. The call is bounded by the backend timeout.
func (g *GeminiBackend) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("Gemini API returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in Gemini response")
	}
	return sb.String(), nil
}

// Close releases the underlying API client.
func (g *GeminiBackend) Close() error {
	return g.client.Close()
}
