// Package embeddingtest provides a deterministic offline Embedder for tests.
package embeddingtest

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"
)

const DefaultDimensions = 64

// HashingEmbedder maps every lower-cased word to a hashed bucket and counts
// occurrences. Bucket 0 is a constant bias so no vector is all zeros. Texts
// sharing words end up close in cosine distance.
type HashingEmbedder struct {
	Dimensions int
	Model      string
	// Err, when set, is returned by every call.
	Err error

	mu         sync.Mutex
	batches    [][]string
	queryCalls int
}

func NewHashingEmbedder() *HashingEmbedder {
	return &HashingEmbedder{Dimensions: DefaultDimensions, Model: "hashing-test"}
}

func (e *HashingEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.batches = append(e.batches, append([]string(nil), texts...))
	e.mu.Unlock()

	if e.Err != nil {
		return nil, e.Err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.Vector(text)
	}
	return vectors, nil
}

func (e *HashingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.queryCalls++
	e.mu.Unlock()

	if e.Err != nil {
		return nil, e.Err
	}
	return e.Vector(text), nil
}

func (e *HashingEmbedder) ModelID() string {
	return e.Model
}

// Vector is the embedding of text.
func (e *HashingEmbedder) Vector(text string) []float32 {
	dims := e.Dimensions
	if dims < 2 {
		dims = DefaultDimensions
	}

	vec := make([]float32, dims)
	vec[0] = 0.1
	for _, word := range Words(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[1+int(h.Sum32()%uint32(dims-1))]++
	}
	return vec
}

// Batches returns the texts of every EmbedDocuments call, in call order.
func (e *HashingEmbedder) Batches() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]string(nil), e.batches...)
}

func (e *HashingEmbedder) QueryCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queryCalls
}

// Words splits text into lower-cased letter and digit runs.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
