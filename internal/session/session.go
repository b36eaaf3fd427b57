package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"scholar-chat/internal/models"
	"scholar-chat/internal/parser"
	"scholar-chat/internal/rag"
)

// Settings are the user-tunable knobs of a session.
type Settings struct {
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
	TopK         int `json:"top_k"`
}

func (s Settings) Validate() error {
	if err := parser.ValidateChunkConfig(s.ChunkSize, s.ChunkOverlap); err != nil {
		return err
	}
	if s.TopK < 1 {
		return fmt.Errorf("%w: got %d", models.ErrInvalidTopK, s.TopK)
	}
	return nil
}

// Session is the state of one user's conversation: the processed files, the
// index built from them and the chat history. It is not safe for concurrent use.
type Session struct {
	rag      *rag.RAG
	settings Settings

	files   []models.FileMetadata
	history []models.Message
}

func New(r *rag.RAG, settings Settings) (*Session, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Session{rag: r, settings: settings}, nil
}

func (s *Session) Settings() Settings {
	return s.settings
}

// SetSettings changes the settings. Chunking changes apply to the next Process.
func (s *Session) SetSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.settings = settings
	return nil
}

// Process extracts, chunks and indexes a batch of files. Files that fail to
// extract are reported in the returned metadata and skipped.
func (s *Session) Process(ctx context.Context, files []models.File, progress func(done, total int)) ([]models.FileMetadata, error) {
	if s.rag.State() == rag.StateIndexed {
		return nil, models.ErrAlreadyIndexed
	}

	units, metas := parser.ExtractBatch(files)
	s.files = metas
	if len(units) == 0 {
		return metas, models.ErrEmptyCorpus
	}

	chunks, err := parser.ChunkUnits(units, s.settings.ChunkSize, s.settings.ChunkOverlap)
	if err != nil {
		return metas, err
	}
	if len(chunks) == 0 {
		return metas, models.ErrEmptyCorpus
	}

	info, err := s.rag.Build(ctx, chunks, progress)
	if err != nil {
		return metas, err
	}

	log.Info().
		Int("files", len(files)).
		Int("units", len(units)).
		Int("chunks", info.NumChunks).
		Msg("Documents processed")

	return metas, nil
}

// Ask answers question from the indexed documents and records both sides of
// the exchange. A failed answer is recorded as an assistant error message.
func (s *Session) Ask(ctx context.Context, question string) (models.AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.AnswerResult{}, models.ErrEmptyQuestion
	}

	s.history = append(s.history, models.Message{Role: models.RoleUser, Content: question})

	result, err := s.rag.Query(ctx, question, s.settings.TopK)
	if err != nil {
		s.history = append(s.history, models.Message{
			Role:    models.RoleAssistant,
			Content: fmt.Sprintf("Error generating response: %v", err),
			IsError: true,
		})
		return models.AnswerResult{}, err
	}

	s.history = append(s.history, models.Message{
		Role:    models.RoleAssistant,
		Content: result.Answer,
		Sources: result.Sources,
	})
	return result, nil
}

// Reset forgets files, history and the index.
func (s *Session) Reset() {
	s.rag.Reset()
	s.files = nil
	s.history = nil
}

func (s *Session) Indexed() bool {
	return s.rag.State() == rag.StateIndexed
}

func (s *Session) Files() []models.FileMetadata {
	return append([]models.FileMetadata(nil), s.files...)
}

func (s *Session) Info() (models.IndexInfo, bool) {
	return s.rag.Info()
}

func (s *Session) History() []models.Message {
	return append([]models.Message(nil), s.history...)
}

// LastSources are the sources of the most recent successful answer.
func (s *Session) LastSources() []models.Source {
	for i := len(s.history) - 1; i >= 0; i-- {
		if m := s.history[i]; m.Role == models.RoleAssistant && !m.IsError {
			return m.Sources
		}
	}
	return nil
}
