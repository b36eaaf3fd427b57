package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"scholar-chat/internal/models"
)

// span is a half-open rune range [start, end) of a unit's content.
type span struct {
	start, end int
}

// ValidateChunkConfig rejects sizes that cannot produce progressing chunks.
func ValidateChunkConfig(chunkSize, chunkOverlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size %d must be positive", models.ErrInvalidChunkConfig, chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be in [0, %d)", models.ErrInvalidChunkConfig, chunkOverlap, chunkSize)
	}
	return nil
}

// ChunkUnits splits every unit on its own; a chunk never spans two units.
// Chunks inherit the unit's source, page and format.
func ChunkUnits(units []models.TextUnit, chunkSize, chunkOverlap int) ([]models.Chunk, error) {
	if err := ValidateChunkConfig(chunkSize, chunkOverlap); err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for _, unit := range units {
		content := []rune(unit.Content)
		for i, s := range splitSpans(content, chunkSize, chunkOverlap) {
			chunks = append(chunks, models.Chunk{
				Content: string(content[s.start:s.end]),
				Source:  unit.Source,
				Page:    unit.Page,
				Format:  unit.Format,
				Index:   i,
				Offset:  s.start,
			})
		}
	}
	return chunks, nil
}

// splitText chunks a single text.
func splitText(text string, chunkSize, chunkOverlap int) ([]string, error) {
	if err := ValidateChunkConfig(chunkSize, chunkOverlap); err != nil {
		return nil, err
	}
	content := []rune(text)
	var out []string
	for _, s := range splitSpans(content, chunkSize, chunkOverlap) {
		out = append(out, string(content[s.start:s.end]))
	}
	return out, nil
}

func splitSpans(text []rune, chunkSize, chunkOverlap int) []span {
	if strings.TrimSpace(string(text)) == "" {
		return nil
	}
	pieces := splitPieces(text, 0, len(text), chunkSize, models.ChunkSeparators)
	return mergePieces(pieces, chunkSize, chunkOverlap)
}

// splitPieces tiles text[lo:hi] with pieces no longer than chunkSize. The first
// separator present in the range is used, kept at the end of the piece before
// it; pieces that are still too long are split again with the finer separators.
// The empty separator cuts single characters.
func splitPieces(text []rune, lo, hi, chunkSize int, separators []string) []span {
	if hi-lo <= chunkSize {
		return []span{{lo, hi}}
	}

	segment := string(text[lo:hi])
	sep, finer := "", []string(nil)
	for i, s := range separators {
		if s == "" || strings.Contains(segment, s) {
			sep, finer = s, separators[i+1:]
			break
		}
	}

	if sep == "" {
		pieces := make([]span, 0, hi-lo)
		for i := lo; i < hi; i++ {
			pieces = append(pieces, span{i, i + 1})
		}
		return pieces
	}

	var pieces []span
	pos := lo
	for _, part := range strings.SplitAfter(segment, sep) {
		n := utf8.RuneCountInString(part)
		if n == 0 {
			continue
		}
		if n <= chunkSize {
			pieces = append(pieces, span{pos, pos + n})
		} else {
			pieces = append(pieces, splitPieces(text, pos, pos+n, chunkSize, finer)...)
		}
		pos += n
	}
	return pieces
}

// mergePieces greedily packs adjacent pieces into chunks of at most chunkSize.
// A chunk after the first starts chunkOverlap runes before the end of the
// previous one; when the next piece does not fit next to that much overlap the
// start moves forward so the piece still fits.
func mergePieces(pieces []span, chunkSize, chunkOverlap int) []span {
	var chunks []span
	current := span{pieces[0].start, pieces[0].start}

	i := 0
	for i < len(pieces) {
		for i < len(pieces) && pieces[i].end-current.start <= chunkSize {
			current.end = pieces[i].end
			i++
		}
		chunks = append(chunks, current)
		if i == len(pieces) {
			break
		}

		start := current.end - chunkOverlap
		if next := pieces[i]; next.end-start > chunkSize {
			start = next.end - chunkSize
		}
		current = span{start, current.end}
	}
	return chunks
}
