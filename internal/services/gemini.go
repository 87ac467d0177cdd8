package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

const geminiModel = "gemini-2.0-flash"

// GeminiService generates ad scripts via the Gemini API.
type GeminiService struct {
	apiKey string
	model  string
}

var _ ScriptService = (*GeminiService)(nil)

func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{apiKey: apiKey, model: geminiModel}
}

func (s *GeminiService) Name() string { return "gemini" }

func (s *GeminiService) GenerateScript(ctx context.Context, listing *models.MotorcycleListing, style models.ScriptStyle) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, s.model,
		genai.Text(buildScriptPrompt(listing, style)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(scriptSystemPrompt, genai.RoleUser),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return b.String(), nil
}
