package rag

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"scholar-chat/internal/chromemdb"
	"scholar-chat/internal/embedding"
	"scholar-chat/internal/llmservice"
	"scholar-chat/internal/metrics"
	"scholar-chat/internal/models"
)

type State int

const (
	StateEmpty State = iota
	StateIndexed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateIndexed:
		return "indexed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// RAG indexes one batch of chunks at a time and answers questions over it.
// A second batch can only be indexed after Reset.
type RAG struct {
	embedder  embedding.Embedder
	generator llmservice.Generator
	batchSize int

	mu    sync.RWMutex
	index *chromemdb.Index
}

func NewRAG(embedder embedding.Embedder, generator llmservice.Generator, batchSize int) *RAG {
	return &RAG{embedder: embedder, generator: generator, batchSize: batchSize}
}

func (r *RAG) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.index == nil {
		return StateEmpty
	}
	return StateIndexed
}

// Info describes the current index; ok is false while nothing is indexed.
func (r *RAG) Info() (info models.IndexInfo, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.index == nil {
		return models.IndexInfo{}, false
	}
	return r.index.Info(), true
}

// Build embeds chunks and publishes the resulting index. The index only
// becomes visible once it is complete.
func (r *RAG) Build(ctx context.Context, chunks []models.Chunk, progress func(done, total int)) (models.IndexInfo, error) {
	if r.State() == StateIndexed {
		return models.IndexInfo{}, models.ErrAlreadyIndexed
	}

	ix, err := chromemdb.Build(ctx, chunks, r.embedder, chromemdb.BuildOptions{
		BatchSize: r.batchSize,
		Progress:  progress,
	})
	if err != nil {
		return models.IndexInfo{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index != nil {
		if err := ix.Close(); err != nil {
			log.Warn().Err(err).Msg("Error discarding concurrently built index")
		}
		return models.IndexInfo{}, models.ErrAlreadyIndexed
	}
	r.index = ix
	metrics.SetIndexedChunks(ix.Info().NumChunks)

	return ix.Info(), nil
}

// Reset drops the current index, if any.
func (r *RAG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index == nil {
		return
	}
	if err := r.index.Close(); err != nil {
		log.Warn().Err(err).Msg("Error closing index")
	}
	r.index = nil
	metrics.SetIndexedChunks(0)
	log.Info().Msg("Index reset")
}

func (r *RAG) Retrieve(ctx context.Context, query string, k int) ([]models.ScoredChunk, error) {
	r.mu.RLock()
	ix := r.index
	r.mu.RUnlock()

	if ix == nil {
		return nil, models.ErrIndexNotBuilt
	}
	return ix.Search(ctx, query, k)
}

// Query retrieves the top k chunks for question and answers from them.
func (r *RAG) Query(ctx context.Context, question string, k int) (models.AnswerResult, error) {
	hits, err := r.Retrieve(ctx, question, k)
	if err != nil {
		metrics.CountQuestion("error")
		return models.AnswerResult{}, err
	}

	log.Debug().Str("query", question).Int("hits", len(hits)).Msg("Retrieved context")

	result, err := Answer(ctx, hits, question, r.generator)
	if err != nil {
		metrics.CountQuestion("error")
		return models.AnswerResult{}, err
	}
	metrics.CountQuestion("ok")
	return result, nil
}

func generationError(err error) error {
	if errors.Is(err, models.ErrGenerationService) {
		return err
	}
	return fmt.Errorf("%w: %w", models.ErrGenerationService, err)
}
