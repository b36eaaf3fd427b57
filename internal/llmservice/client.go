package llmservice

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"scholar-chat/internal/config"
	"scholar-chat/internal/models"
)

// Generator produces an answer from a system prompt and the user's input.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userInput string) (string, error)
	ModelID() string
}

// NewGenerator creates the chat model for the configured provider
func NewGenerator(ctx context.Context, llmConfig config.LLMConfig) (Generator, error) {
	log.Debug().Interface("config", map[string]any{
		"provider":    llmConfig.Provider,
		"base_url":    llmConfig.BaseURL,
		"model":       llmConfig.Model,
		"temperature": llmConfig.Temperature,
	}).Msg("Creating generator")

	client := &http.Client{Timeout: time.Duration(llmConfig.TimeoutSecs) * time.Second}

	switch llmConfig.Provider {
	case config.ProviderOpenAI:
		opts := []openai.Option{
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
			openai.WithHTTPClient(client),
		}
		if llmConfig.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(llmConfig.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("error initializing openai client: %w", err)
		}
		return NewLangchainGenerator(llm, llmConfig.Model, llmConfig.Temperature), nil

	case config.ProviderOllama:
		opts := []ollama.Option{
			ollama.WithModel(llmConfig.Model),
			ollama.WithHTTPClient(client),
		}
		if llmConfig.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(llmConfig.BaseURL))
		}
		llm, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("error initializing ollama client: %w", err)
		}
		return NewLangchainGenerator(llm, llmConfig.Model, llmConfig.Temperature), nil

	case config.ProviderGemini:
		return NewGeminiGenerator(ctx, llmConfig, client)

	default:
		return nil, fmt.Errorf("unknown chat provider %q", llmConfig.Provider)
	}
}

// LangchainGenerator adapts any langchaingo chat model.
type LangchainGenerator struct {
	llm         llms.Model
	model       string
	temperature float64
}

func NewLangchainGenerator(llm llms.Model, model string, temperature float64) *LangchainGenerator {
	return &LangchainGenerator{llm: llm, model: model, temperature: temperature}
}

func (g *LangchainGenerator) Generate(ctx context.Context, systemPrompt, userInput string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userInput),
	}

	res, err := GenerateContent(ctx, g.llm, messages, llms.WithTemperature(g.temperature))
	if err != nil {
		return "", serviceError(g.model, err)
	}
	if len(res.Choices) == 0 {
		return "", serviceError(g.model, fmt.Errorf("empty response"))
	}
	return res.Choices[0].Content, nil
}

func (g *LangchainGenerator) ModelID() string {
	return g.model
}

// call llm
func GenerateContent(ctx context.Context, llm llms.Model, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	start := time.Now()
	res, err := llm.GenerateContent(ctx, messages, options...)
	log.Debug().Dur("took", time.Since(start)).Int("messages", len(messages)).Msg("Generated content")
	return res, err
}

func serviceError(model string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrGenerationService, model, err)
}
