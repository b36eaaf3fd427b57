package parser

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-chat/internal/models"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    []string
	}{
		{
			name: "fits in one chunk",
			text: "short text", size: 100, overlap: 10,
			want: []string{"short text"},
		},
		{
			name: "words with overlap",
			text: "aaaa bbbb cccc dddd", size: 10, overlap: 3,
			want: []string{"aaaa bbbb ", "bb cccc ", "cc dddd"},
		},
		{
			name: "paragraph boundary preferred",
			text: "Para one.\n\nPara two is here.", size: 15, overlap: 0,
			want: []string{"Para one.\n\n", "Para two is ", "here."},
		},
		{
			name: "no separators falls back to characters",
			text: "abcdefghij", size: 4, overlap: 1,
			want: []string{"abcd", "defg", "ghij"},
		},
		{
			name: "multibyte runes count once",
			text: "ééééé", size: 2, overlap: 0,
			want: []string{"éé", "éé", "é"},
		},
		{
			name: "whitespace only",
			text: " \n\t ", size: 10, overlap: 0,
			want: nil,
		},
		{
			name: "empty",
			text: "", size: 10, overlap: 0,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitText(tt.text, tt.size, tt.overlap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateChunkConfig(t *testing.T) {
	tests := []struct {
		size, overlap int
		valid         bool
	}{
		{1000, 200, true},
		{1, 0, true},
		{10, 9, true},
		{0, 0, false},
		{-5, 0, false},
		{10, 10, false},
		{10, 11, false},
		{10, -1, false},
	}

	for _, tt := range tests {
		err := ValidateChunkConfig(tt.size, tt.overlap)
		if tt.valid {
			assert.NoError(t, err, "size=%d overlap=%d", tt.size, tt.overlap)
			continue
		}
		assert.True(t, errors.Is(err, models.ErrInvalidChunkConfig), "size=%d overlap=%d", tt.size, tt.overlap)
	}

	_, err := splitText("anything", 5, 5)
	assert.True(t, errors.Is(err, models.ErrInvalidChunkConfig))
	_, err = ChunkUnits(nil, 0, 0)
	assert.True(t, errors.Is(err, models.ErrInvalidChunkConfig))
}

func TestChunkUnitsKeepsProvenance(t *testing.T) {
	units := []models.TextUnit{
		{Content: "alpha beta gamma delta", Source: "a.pdf", Page: 1, Format: models.FormatPDF},
		{Content: "   ", Source: "a.pdf", Page: 2, Format: models.FormatPDF},
		{Content: "epsilon", Source: "b.txt", Page: 1, Format: models.FormatTXT},
	}

	chunks, err := ChunkUnits(units, 12, 0)
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	assert.Equal(t, models.Chunk{Content: "alpha beta ", Source: "a.pdf", Page: 1, Format: models.FormatPDF, Index: 0, Offset: 0}, chunks[0])
	assert.Equal(t, models.Chunk{Content: "gamma delta", Source: "a.pdf", Page: 1, Format: models.FormatPDF, Index: 1, Offset: 11}, chunks[1])
	assert.Equal(t, models.Chunk{Content: "epsilon", Source: "b.txt", Page: 1, Format: models.FormatTXT, Index: 0, Offset: 0}, chunks[2])
}

func randomProse(rng *rand.Rand, words int) string {
	var b strings.Builder
	for i := 0; i < words; i++ {
		n := 1 + rng.Intn(6)
		for j := 0; j < n; j++ {
			b.WriteRune(rune('a' + rng.Intn(26)))
		}
		switch r := rng.Intn(20); {
		case r == 0:
			b.WriteString(".\n\n")
		case r < 3:
			b.WriteString("\n")
		case r < 5:
			b.WriteString(". ")
		default:
			b.WriteString(" ")
		}
	}
	return b.String()
}

func TestChunkUnitsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	configs := []struct{ size, overlap int }{{50, 0}, {50, 10}, {20, 5}, {100, 30}, {12, 11}}

	for _, cfg := range configs {
		for trial := 0; trial < 50; trial++ {
			text := randomProse(rng, 10+rng.Intn(120))
			runes := []rune(text)

			chunks, err := ChunkUnits([]models.TextUnit{{Content: text, Source: "p.txt", Page: 1}}, cfg.size, cfg.overlap)
			require.NoError(t, err)
			require.NotEmpty(t, chunks)

			assert.Equal(t, 0, chunks[0].Offset)
			last := chunks[len(chunks)-1]
			assert.Equal(t, len(runes), last.Offset+len([]rune(last.Content)), "final chunk must reach the end")

			for i, c := range chunks {
				n := len([]rune(c.Content))
				assert.LessOrEqual(t, n, cfg.size)
				assert.Positive(t, n)
				assert.Equal(t, i, c.Index)
				assert.Equal(t, string(runes[c.Offset:c.Offset+n]), c.Content)

				if i == 0 {
					continue
				}
				prev := chunks[i-1]
				prevEnd := prev.Offset + len([]rune(prev.Content))
				assert.Greater(t, c.Offset, prev.Offset, "chunks must progress")
				assert.LessOrEqual(t, c.Offset, prevEnd, "chunks must not leave gaps")
				assert.LessOrEqual(t, prevEnd-c.Offset, cfg.overlap, "overlap is bounded")
			}
		}
	}
}

func TestChunkUnitsExactOverlapOnShortWords(t *testing.T) {
	text := strings.Repeat("ab ", 200)

	chunks, err := ChunkUnits([]models.TextUnit{{Content: text}}, 30, 6)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		prevEnd := prev.Offset + len([]rune(prev.Content))
		assert.Equal(t, 6, prevEnd-chunks[i].Offset)
	}
}
