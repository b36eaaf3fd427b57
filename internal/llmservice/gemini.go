package llmservice

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"scholar-chat/internal/config"
)

type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGeminiGenerator(ctx context.Context, llmConfig config.LLMConfig, httpClient *http.Client) (*GeminiGenerator, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:     llmConfig.Key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if llmConfig.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: llmConfig.BaseURL}
	}

	c, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("error creating gemini client: %w", err)
	}
	log.Info().Str("model", llmConfig.Model).Msg("Gemini client created")

	return &GeminiGenerator{client: c, model: llmConfig.Model, temperature: float32(llmConfig.Temperature)}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, systemPrompt, userInput string) (string, error) {
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(userInput), contentConfig)
	if err != nil {
		return "", serviceError(g.model, err)
	}
	text := result.Text()
	if text == "" {
		return "", serviceError(g.model, fmt.Errorf("empty response"))
	}
	return text, nil
}

func (g *GeminiGenerator) ModelID() string {
	return g.model
}
