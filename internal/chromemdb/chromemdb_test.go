package chromemdb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-chat/internal/embedding/embeddingtest"
	"scholar-chat/internal/models"
)

func chunk(content, source string, page int) models.Chunk {
	return models.Chunk{Content: content, Source: source, Page: page, Format: models.FormatTXT}
}

func corpus() []models.Chunk {
	return []models.Chunk{
		chunk("The capital of France is Paris.", "geo.txt", 1),
		chunk("Photosynthesis converts light into chemical energy.", "bio.txt", 1),
		chunk("Paris hosts the Louvre museum.", "geo.txt", 2),
		chunk("Mitochondria are the powerhouse of the cell.", "bio.txt", 2),
	}
}

func TestBuild(t *testing.T) {
	embedder := embeddingtest.NewHashingEmbedder()
	var progress [][2]int

	ix, err := Build(context.Background(), corpus(), embedder, BuildOptions{
		BatchSize: 3,
		Progress:  func(done, total int) { progress = append(progress, [2]int{done, total}) },
	})
	require.NoError(t, err)
	defer ix.Close()

	info := ix.Info()
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, 4, info.NumChunks)
	assert.Equal(t, "hashing-test", info.EmbeddingModelID)
	assert.Equal(t, models.VectorStoreType, info.VectorStoreType)
	assert.Equal(t, embeddingtest.DefaultDimensions, info.Dimensions)
	assert.False(t, info.BuiltAt.IsZero())

	assert.Equal(t, [][2]int{{3, 4}, {4, 4}}, progress)
	batches := embedder.Batches()
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[1], 1)
}

func TestBuildEmptyInput(t *testing.T) {
	_, err := Build(context.Background(), nil, embeddingtest.NewHashingEmbedder(), BuildOptions{})
	assert.True(t, errors.Is(err, models.ErrEmptyInput))
}

func TestBuildEmbeddingFailure(t *testing.T) {
	embedder := embeddingtest.NewHashingEmbedder()
	embedder.Err = errors.New("quota exceeded")

	_, err := Build(context.Background(), corpus(), embedder, BuildOptions{})
	assert.True(t, errors.Is(err, models.ErrEmbeddingService))
	assert.ErrorContains(t, err, "quota exceeded")
}

type shortEmbedder struct{ *embeddingtest.HashingEmbedder }

func (s shortEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := s.HashingEmbedder.EmbedDocuments(ctx, texts)
	return vectors[:len(vectors)-1], err
}

func TestBuildVectorCountMismatch(t *testing.T) {
	_, err := Build(context.Background(), corpus(), shortEmbedder{embeddingtest.NewHashingEmbedder()}, BuildOptions{})
	assert.True(t, errors.Is(err, models.ErrEmbeddingService))
}

func TestSearchRanksBySimilarity(t *testing.T) {
	ix, err := Build(context.Background(), corpus(), embeddingtest.NewHashingEmbedder(), BuildOptions{})
	require.NoError(t, err)

	hits, err := ix.Search(context.Background(), "What is the capital of France?", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "The capital of France is Paris.", hits[0].Chunk.Content)
	assert.Equal(t, "geo.txt", hits[0].Chunk.Source)
	assert.GreaterOrEqual(t, hits[0].Similarity, hits[1].Similarity)

	all, err := ix.Search(context.Background(), "cell energy", 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Similarity, all[i].Similarity)
	}
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	chunks := []models.Chunk{
		chunk("zebra", "z.txt", 1),
		chunk("alpha beta", "a.txt", 1),
		chunk("alpha beta", "a.txt", 2),
		chunk("alpha beta", "a.txt", 3),
	}
	ix, err := Build(context.Background(), chunks, embeddingtest.NewHashingEmbedder(), BuildOptions{})
	require.NoError(t, err)

	for run := 0; run < 10; run++ {
		hits, err := ix.Search(context.Background(), "alpha beta", 3)
		require.NoError(t, err)
		require.Len(t, hits, 3)
		assert.Equal(t, []int{1, 2, 3}, []int{hits[0].Chunk.Page, hits[1].Chunk.Page, hits[2].Chunk.Page})
	}
}

func TestSearchDeterministic(t *testing.T) {
	embedder := embeddingtest.NewHashingEmbedder()
	ix, err := Build(context.Background(), corpus(), embedder, BuildOptions{})
	require.NoError(t, err)

	first, err := ix.Search(context.Background(), "Paris museum", 3)
	require.NoError(t, err)
	for run := 0; run < 5; run++ {
		again, err := ix.Search(context.Background(), "Paris museum", 3)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, 6, embedder.QueryCalls())
}

func TestSearchInvalidTopK(t *testing.T) {
	ix, err := Build(context.Background(), corpus(), embeddingtest.NewHashingEmbedder(), BuildOptions{})
	require.NoError(t, err)

	_, err = ix.Search(context.Background(), "anything", 0)
	assert.True(t, errors.Is(err, models.ErrInvalidTopK))
	_, err = ix.SearchEmbedding(context.Background(), make([]float32, embeddingtest.DefaultDimensions), -1)
	assert.True(t, errors.Is(err, models.ErrInvalidTopK))
}

func TestSearchEmbeddingDimensionMismatch(t *testing.T) {
	ix, err := Build(context.Background(), corpus(), embeddingtest.NewHashingEmbedder(), BuildOptions{})
	require.NoError(t, err)

	_, err = ix.SearchEmbedding(context.Background(), []float32{1, 2, 3}, 2)
	assert.ErrorContains(t, err, "3 dimensions")
}

func TestSearchEmbeddingPrecomputed(t *testing.T) {
	embedder := embeddingtest.NewHashingEmbedder()
	ix, err := Build(context.Background(), corpus(), embedder, BuildOptions{})
	require.NoError(t, err)

	hits, err := ix.SearchEmbedding(context.Background(), embedder.Vector("mitochondria cell"), 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Mitochondria are the powerhouse of the cell.", hits[0].Chunk.Content)
	assert.Zero(t, embedder.QueryCalls())
}

func TestSearchQueryEmbeddingFailure(t *testing.T) {
	embedder := embeddingtest.NewHashingEmbedder()
	ix, err := Build(context.Background(), corpus(), embedder, BuildOptions{})
	require.NoError(t, err)

	embedder.Err = errors.New("timeout")
	_, err = ix.Search(context.Background(), "Paris", 1)
	assert.True(t, errors.Is(err, models.ErrEmbeddingService))
}

func TestClose(t *testing.T) {
	ix, err := Build(context.Background(), corpus(), embeddingtest.NewHashingEmbedder(), BuildOptions{})
	require.NoError(t, err)
	require.NoError(t, ix.Close())
	assert.Nil(t, ix.db.GetCollection(ix.info.ID, nil))
}
