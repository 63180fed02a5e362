package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
)

// OpenAIExtractor is the fallback extraction backend. It also serves
// OpenAI-compatible gateways through a custom base URL. Token counts
// come from tiktoken locally instead of a metered API call.
type OpenAIExtractor struct {
	client openai.Client
	model  string
	prompt string
}

var _ adapter.Extractor = (*OpenAIExtractor)(nil)

func NewOpenAIExtractor(apiKey, baseURL, modelName, prompt string) (*OpenAIExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is empty")
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIExtractor{client: openai.NewClient(opts...), model: modelName, prompt: prompt}, nil
}

func (o *OpenAIExtractor) Extract(ctx context.Context, rawText string) ([]model.JobRecord, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(o.prompt + rawText),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai completion: %w", domain.ErrExtraction, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai returned no choices", domain.ErrExtraction)
	}
	return decodeRecords(resp.Choices[0].Message.Content)
}

func (o *OpenAIExtractor) CountTokens(_ context.Context, rawText string) (int, error) {
	enc, err := tiktoken.EncodingForModel(o.model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("o200k_base")
		if err != nil {
			return 0, fmt.Errorf("load tiktoken encoding: %w", err)
		}
	}
	return len(enc.Encode(o.prompt+rawText, nil, nil)), nil
}

func (o *OpenAIExtractor) Name() string { return "openai" }
