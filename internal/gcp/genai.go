package gcp

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Lllllllleong/geminiscribe/internal/config"
)

// NewGenAIClient creates the Gemini client. Vertex AI credentials are
// preferred; the direct API key backend is used when Vertex is disabled.
// config.Load has already verified that one of the two modes is usable.
func NewGenAIClient(ctx context.Context, cfg *config.Config) (*genai.Client, error) {
	clientConfig := &genai.ClientConfig{}

	if cfg.UseVertexAI {
		clientConfig.Backend = genai.BackendVertexAI
		clientConfig.Project = cfg.ProjectID
		clientConfig.Location = cfg.Location
	} else {
		clientConfig.Backend = genai.BackendGeminiAPI
		clientConfig.APIKey = cfg.GeminiAPIKey
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return client, nil
}

// GenerationConfig returns the fixed generation settings for page
// extraction. Safety filters are disabled: document transcription must not
// be blocked by content classification.
func GenerationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		MaxOutputTokens: 8192,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}
}
