package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scholar-chat/internal/helper"
	"scholar-chat/internal/llmservice"
	"scholar-chat/internal/metrics"
	"scholar-chat/internal/models"
)

// Answer asks the generator to answer question from the retrieved chunks only.
func Answer(ctx context.Context, hits []models.ScoredChunk, question string, generator llmservice.Generator) (models.AnswerResult, error) {
	systemPrompt := fmt.Sprintf(models.RAGPromptTemplate, BuildContext(hits))

	start := time.Now()
	answer, err := generator.Generate(ctx, systemPrompt, question)
	metrics.CaptureExecutionMetrics("generate", time.Since(start))
	if err != nil {
		return models.AnswerResult{}, generationError(err)
	}

	return models.AnswerResult{
		Query:   question,
		Answer:  answer,
		Sources: Sources(hits),
	}, nil
}

// BuildContext joins the full chunk contents in retrieval order, each under a
// line naming its file and page.
func BuildContext(hits []models.ScoredChunk) string {
	parts := make([]string, 0, len(hits))
	for _, hit := range hits {
		source := fmt.Sprintf(models.SourceLineFormat, hit.Chunk.Source, hit.Chunk.Page)
		parts = append(parts, source+"\n"+hit.Chunk.Content)
	}
	return strings.Join(parts, models.ContextSeparator)
}

// Sources are the hits as shown next to an answer, with shortened content.
func Sources(hits []models.ScoredChunk) []models.Source {
	sources := make([]models.Source, 0, len(hits))
	for _, hit := range hits {
		sources = append(sources, models.Source{
			Content: helper.Truncate(hit.Chunk.Content, models.SourcePreviewLen, models.SourcePreviewMark),
			Source:  hit.Chunk.Source,
			Page:    hit.Chunk.Page,
			Format:  hit.Chunk.Format,
		})
	}
	return sources
}
