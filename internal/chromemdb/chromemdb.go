package chromemdb

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"scholar-chat/internal/embedding"
	"scholar-chat/internal/helper"
	"scholar-chat/internal/metrics"
	"scholar-chat/internal/models"
)

const DefaultBatchSize = 64

const (
	metaSeq    = "seq"
	metaSource = "source"
	metaPage   = "page"
	metaFormat = "format"
)

// BuildOptions tunes Build. The zero value embeds in batches of DefaultBatchSize.
type BuildOptions struct {
	BatchSize int
	// Progress is called after every embedded batch with the number of chunks done so far.
	Progress func(done, total int)
}

// Index is an immutable in-memory vector index over a set of chunks, backed
// by a single chromem collection with exact cosine search.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embedding.Embedder
	chunks     []models.Chunk
	info       models.IndexInfo
}

// Build embeds all chunks and loads them into a fresh collection.
func Build(ctx context.Context, chunks []models.Chunk, embedder embedding.Embedder, opts BuildOptions) (*Index, error) {
	if len(chunks) == 0 {
		return nil, models.ErrEmptyInput
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))

		begin := time.Now()
		batch, err := embedder.EmbedDocuments(ctx, texts[start:end])
		metrics.CaptureExecutionMetrics("embed_documents", time.Since(begin))
		if err != nil {
			return nil, embeddingError(err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("%w: got %d vectors for %d chunks", models.ErrEmbeddingService, len(batch), end-start)
		}
		vectors = append(vectors, batch...)

		if opts.Progress != nil {
			opts.Progress(end, len(texts))
		}
	}

	dims := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dims {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d", models.ErrEmbeddingService, i, len(v), dims)
		}
	}

	id, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(id, map[string]string{"embedding_model": embedder.ModelID()}, embedder.EmbedQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:      strconv.Itoa(i),
			Content: c.Content,
			Metadata: map[string]string{
				metaSeq:    strconv.Itoa(i),
				metaSource: c.Source,
				metaPage:   strconv.Itoa(c.Page),
				metaFormat: string(c.Format),
			},
			Embedding: vectors[i],
		}
	}
	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("failed to add documents: %w", err)
	}

	ix := &Index{
		db:         db,
		collection: collection,
		embedder:   embedder,
		chunks:     append([]models.Chunk(nil), chunks...),
		info: models.IndexInfo{
			ID:               id,
			NumChunks:        len(chunks),
			EmbeddingModelID: embedder.ModelID(),
			VectorStoreType:  models.VectorStoreType,
			Dimensions:       dims,
			BuiltAt:          time.Now().UTC(),
		},
	}

	log.Info().
		Str("index_id", id).
		Int("chunks", len(chunks)).
		Int("dimensions", dims).
		Str("embedding_model", embedder.ModelID()).
		Msg("Built vector index")

	return ix, nil
}

func (ix *Index) Info() models.IndexInfo {
	return ix.info
}

// Search embeds query with the index's own embedder and returns at most k
// chunks by descending similarity.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]models.ScoredChunk, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", models.ErrInvalidTopK, k)
	}

	start := time.Now()
	vec, err := ix.embedder.EmbedQuery(ctx, query)
	metrics.CaptureExecutionMetrics("embed_query", time.Since(start))
	if err != nil {
		return nil, embeddingError(err)
	}
	return ix.SearchEmbedding(ctx, vec, k)
}

// SearchEmbedding ranks all chunks against a precomputed query vector, which
// must come from the same model as the index. Equal similarities keep
// insertion order.
func (ix *Index) SearchEmbedding(ctx context.Context, queryEmbedding []float32, k int) ([]models.ScoredChunk, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", models.ErrInvalidTopK, k)
	}
	if len(queryEmbedding) != ix.info.Dimensions {
		return nil, fmt.Errorf("query vector has %d dimensions, index has %d", len(queryEmbedding), ix.info.Dimensions)
	}

	start := time.Now()
	results, err := ix.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       ix.collection.Count(),
	})
	metrics.CaptureExecutionMetrics("vector_search", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	hits := make([]models.ScoredChunk, 0, len(results))
	seqs := make([]int, 0, len(results))
	for _, r := range results {
		seq, err := strconv.Atoi(r.Metadata[metaSeq])
		if err != nil || seq < 0 || seq >= len(ix.chunks) {
			return nil, fmt.Errorf("document %q has no valid sequence number", r.ID)
		}
		hits = append(hits, models.ScoredChunk{Chunk: ix.chunks[seq], Similarity: r.Similarity})
		seqs = append(seqs, seq)
	}

	order := make([]int, len(hits))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ha, hb := hits[order[a]], hits[order[b]]
		if ha.Similarity != hb.Similarity {
			return ha.Similarity > hb.Similarity
		}
		return seqs[order[a]] < seqs[order[b]]
	})

	top := make([]models.ScoredChunk, 0, min(k, len(order)))
	for _, i := range order[:min(k, len(order))] {
		top = append(top, hits[i])
	}
	return top, nil
}

// Close drops the collection. The index must not be used afterwards.
func (ix *Index) Close() error {
	if err := ix.db.DeleteCollection(ix.collection.Name); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}

func embeddingError(err error) error {
	if errors.Is(err, models.ErrEmbeddingService) {
		return err
	}
	return fmt.Errorf("%w: %w", models.ErrEmbeddingService, err)
}
