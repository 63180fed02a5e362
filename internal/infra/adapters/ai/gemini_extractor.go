package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
)

// GeminiExtractor turns raw posting text into job records using the
// Gemini API. Responses are requested as JSON with temperature 0 so
// repeated runs over the same batch stay stable.
type GeminiExtractor struct {
	client *genai.Client
	model  string
	prompt string
	maxOut int32
}

var _ adapter.Extractor = (*GeminiExtractor)(nil)

func NewGeminiExtractor(ctx context.Context, apiKey, baseURL, modelName, prompt string, maxOutputTokens int32) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiExtractor{client: client, model: modelName, prompt: prompt, maxOut: maxOutputTokens}, nil
}

func (g *GeminiExtractor) Extract(ctx context.Context, rawText string) ([]model.JobRecord, error) {
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: g.prompt + rawText}},
	}}
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
	}
	if g.maxOut > 0 {
		cfg.MaxOutputTokens = g.maxOut
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini generate: %w", domain.ErrExtraction, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: gemini returned no candidates", domain.ErrExtraction)
	}
	return decodeRecords(resp.Candidates[0].Content.Parts[0].Text)
}

func (g *GeminiExtractor) CountTokens(ctx context.Context, rawText string) (int, error) {
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: g.prompt + rawText}},
	}}
	resp, err := g.client.Models.CountTokens(ctx, g.model, contents, nil)
	if err != nil {
		return 0, fmt.Errorf("gemini count tokens: %w", err)
	}
	return int(resp.TotalTokens), nil
}

func (g *GeminiExtractor) Name() string { return "gemini" }
