package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"scholar-chat/internal/config"
	"scholar-chat/internal/models"
)

// Embedder turns text into vectors. Documents and queries may be embedded
// differently by a provider, but always into the same space.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	ModelID() string
}

// NewEmbedder creates the embedder for the configured provider
func NewEmbedder(ctx context.Context, llmConfig config.LLMConfig) (Embedder, error) {
	log.Debug().Interface("config", map[string]string{
		"provider":        llmConfig.Provider,
		"base_url":        llmConfig.BaseURL,
		"embedding_model": llmConfig.Model,
	}).Msg("Creating embedder")

	switch llmConfig.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIEmbedder(llmConfig)
	case config.ProviderOllama:
		return NewOllamaEmbedder(llmConfig)
	case config.ProviderGemini:
		return NewGeminiEmbedder(ctx, llmConfig)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", llmConfig.Provider)
	}
}

// LangchainEmbedder adapts a langchaingo embedder.
type LangchainEmbedder struct {
	embedder embeddings.Embedder
	model    string
	limiter  *rate.Limiter
}

func NewLangchainEmbedder(embedder embeddings.Embedder, model string, limiter *rate.Limiter) *LangchainEmbedder {
	return &LangchainEmbedder{embedder: embedder, model: model, limiter: limiter}
}

// NewOpenAIEmbedder talks to any OpenAI compatible endpoint.
func NewOpenAIEmbedder(llmConfig config.LLMConfig) (*LangchainEmbedder, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithEmbeddingModel(llmConfig.Model),
		openai.WithHTTPClient(httpClient(llmConfig)),
	}
	if llmConfig.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(llmConfig.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing openai client: %w", err)
	}
	return newFromClient(llm, llmConfig)
}

// new ollama embedder
func NewOllamaEmbedder(llmConfig config.LLMConfig) (*LangchainEmbedder, error) {
	opts := []ollama.Option{
		ollama.WithModel(llmConfig.Model),
		ollama.WithHTTPClient(httpClient(llmConfig)),
	}
	if llmConfig.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(llmConfig.BaseURL))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing ollama client: %w", err)
	}
	return newFromClient(llm, llmConfig)
}

func newFromClient(client embeddings.EmbedderClient, llmConfig config.LLMConfig) (*LangchainEmbedder, error) {
	opts := []embeddings.Option{}
	if llmConfig.BatchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(llmConfig.BatchSize))
	}

	embedder, err := embeddings.NewEmbedder(client, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating embedder: %w", err)
	}
	return NewLangchainEmbedder(embedder, llmConfig.Model, NewLimiter(llmConfig.RateLimit)), nil
}

func (e *LangchainEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := wait(ctx, e.limiter); err != nil {
		return nil, serviceError(e.model, err)
	}

	start := time.Now()
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, serviceError(e.model, err)
	}
	if len(vectors) != len(texts) {
		return nil, serviceError(e.model, fmt.Errorf("got %d vectors for %d texts", len(vectors), len(texts)))
	}

	log.Debug().Str("model", e.model).Int("texts", len(texts)).Dur("took", time.Since(start)).Msg("Embedded documents")
	return vectors, nil
}

func (e *LangchainEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := wait(ctx, e.limiter); err != nil {
		return nil, serviceError(e.model, err)
	}

	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, serviceError(e.model, err)
	}
	return vector, nil
}

func (e *LangchainEmbedder) ModelID() string {
	return e.model
}

func serviceError(model string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrEmbeddingService, model, err)
}

func httpClient(llmConfig config.LLMConfig) *http.Client {
	return &http.Client{Timeout: time.Duration(llmConfig.TimeoutSecs) * time.Second}
}
