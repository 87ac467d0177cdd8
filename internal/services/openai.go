package services

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

// OpenAIService generates ad scripts via the chat completions API.
type OpenAIService struct {
	client *openai.Client
	model  string
}

var _ ScriptService = (*OpenAIService)(nil)

func NewOpenAIService(apiKey string) *OpenAIService {
	return &OpenAIService{
		client: openai.NewClient(apiKey),
		model:  "gpt-4o-mini",
	}
}

func (s *OpenAIService) Name() string { return "openai" }

func (s *OpenAIService) GenerateScript(ctx context.Context, listing *models.MotorcycleListing, style models.ScriptStyle) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: scriptSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildScriptPrompt(listing, style),
			},
		},
		Temperature: 0.9,
		MaxTokens:   300,
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}
