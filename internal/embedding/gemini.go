package embedding

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"scholar-chat/internal/config"
)

const (
	taskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	taskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// GeminiEmbedder embeds through the Gemini API.
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	batchSize int
	limiter   *rate.Limiter
}

func NewGeminiEmbedder(ctx context.Context, llmConfig config.LLMConfig) (*GeminiEmbedder, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:     llmConfig.Key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient(llmConfig),
	}
	if llmConfig.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: llmConfig.BaseURL}
	}

	c, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("error creating gemini client: %w", err)
	}
	log.Info().Str("model", llmConfig.Model).Msg("Gemini embedding client created")

	return &GeminiEmbedder{
		client:    c,
		model:     llmConfig.Model,
		batchSize: llmConfig.BatchSize,
		limiter:   NewLimiter(llmConfig.RateLimit),
	}, nil
}

func (e *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	batchSize := e.batchSize
	if batchSize <= 0 {
		batchSize = len(texts)
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		batch, err := e.embed(ctx, texts[start:end], taskRetrievalDocument)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embed(ctx, []string{text}, taskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *GeminiEmbedder) ModelID() string {
	return e.model
}

func (e *GeminiEmbedder) embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if err := wait(ctx, e.limiter); err != nil {
		return nil, serviceError(e.model, err)
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{TaskType: taskType})
	if err != nil {
		return nil, serviceError(e.model, err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, serviceError(e.model, fmt.Errorf("got %d vectors for %d texts", len(result.Embeddings), len(texts)))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}
